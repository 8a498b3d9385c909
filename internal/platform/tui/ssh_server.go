package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/lobby"
	"github.com/vovakirdan/multipong/internal/multiplayer"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.multipong/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	FPS         int
	BufferSize  int
	RenderDelay time.Duration
}

// SSHConfigFrom builds the SSH server settings from the loaded config.
func SSHConfigFrom(cfg config.Config) SSHServerConfig {
	return SSHServerConfig{
		Address:     cfg.Server.SSHAddress,
		HostKeyPath: cfg.Server.HostKeyPath,
		IdleTimeout: 30 * time.Minute,
		FPS:         cfg.Client.FPS,
		BufferSize:  cfg.Client.BufferSize,
		RenderDelay: time.Duration(cfg.Client.RenderDelay * float64(time.Second)),
	}
}

// SSHServer lets players join the match over SSH. Every session becomes a
// player session on the coordinator.
type SSHServer struct {
	config SSHServerConfig
	coord  *multiplayer.Coordinator
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, coord *multiplayer.Coordinator, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		coord:  coord,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".multipong", "host_key")
	}
	hostKeyPath, err := config.ExpandHome(hostKeyPath)
	if err != nil {
		return nil, err
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if err := os.MkdirAll(hostKeyDir, 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler joins the match for each SSH session and returns its model.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		wish.Fatalln(sshSession, "multipong needs a terminal, connect with ssh -t")
		return nil, nil
	}

	user := sshSession.User()
	session, err := s.coord.Connect("ssh-"+user, lobby.AutoSlot)
	if errors.Is(err, multiplayer.ErrDuplicatePlayer) {
		// Same user twice: fall back to a generated id.
		session, err = s.coord.Connect("", lobby.AutoSlot)
	}
	if err != nil {
		s.logger.Warn("ssh player refused", "user", user, "err", err)
		wish.Fatalln(sshSession, "cannot join: "+err.Error())
		return nil, nil
	}
	s.setNickname(session.ID(), user)

	conn := NewLocalConn(s.coord, session, s.config.BufferSize)
	go func() {
		<-sshSession.Context().Done()
		conn.Close()
	}()

	model := NewGameModel(conn, Options{
		FPS:         s.config.FPS,
		RenderDelay: s.config.RenderDelay,
		Width:       pty.Window.Width,
		Height:      pty.Window.Height,
	})
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// setNickname uses the SSH user name as the player's nickname.
func (s *SSHServer) setNickname(playerID, user string) {
	name := lobby.SanitizeNickname(user)
	if name == "" {
		return
	}
	if err := s.coord.Lobby().Join(playerID, name); err != nil {
		s.logger.Warn("set nickname", "player", playerID, "err", err)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// Start serves until ctx is cancelled.
func (s *SSHServer) Start(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("tui: ssh server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
