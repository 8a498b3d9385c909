package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/multipong/internal/api"
	"github.com/vovakirdan/multipong/internal/config"
	"github.com/vovakirdan/multipong/internal/multiplayer"
	"github.com/vovakirdan/multipong/internal/platform/tui"
	"github.com/vovakirdan/multipong/internal/storage"
	"github.com/vovakirdan/multipong/internal/telemetry"
	"github.com/vovakirdan/multipong/internal/transport/ws"
)

var (
	flagAddr       string
	flagSSH        bool
	flagSSHAddr    string
	flagHostKey    string
	flagDBPath     string
	flagNoDB       bool
	flagDifficulty string
	flagFillBots   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MultiPong server",
	Long: `Start the authoritative game server.

The HTTP listener serves the websocket endpoint (/ws/{slot}), health and
lobby status, and the statistics API. With --ssh, players can also join
with any SSH client.

Difficulty presets pick the bot level for filled slots:
  easy   - reactive tracker with a wide dead zone
  normal - predictive bot
  hard   - Q-learning bot (uses ai.qlearning.model_path)
  fixed  - bots never move

Examples:
  multipong serve
  multipong serve --addr :9000 --ssh
  multipong serve --difficulty hard --fill-bots
  multipong serve --no-db`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (default: server.address)")
	serveCmd.Flags().BoolVar(&flagSSH, "ssh", false, "Also accept players over SSH")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh-addr", "", "SSH listen address (default: server.ssh_address)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key (auto-generated if missing)")
	serveCmd.Flags().StringVar(&flagDBPath, "db", "", "Statistics database path (default: storage.db_path)")
	serveCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Do not record match statistics")
	serveCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Bot difficulty preset: easy, normal, hard, fixed")
	serveCmd.Flags().BoolVar(&flagFillBots, "fill-bots", false, "Fill empty slots with bots")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyServeFlags(&cfg); err != nil {
		return err
	}
	logger := newLogger(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord := multiplayer.NewCoordinator(cfg, logger.WithPrefix("game"))

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
		coord.Loop().SetResultSaver(store)
	}

	if pub := startTelemetry(cfg, logger); pub != nil {
		defer pub.Close()
		coord.Loop().SetPublisher(pub)
	}

	limiter := ws.NewIPRateLimiter(cfg.Server.MaxConnsPerIP, cfg.Server.MessageRate, time.Second)
	go limiter.Cleanup(ctx, time.Minute)
	handler := ws.NewHandler(coord, limiter, cfg.Server.AllowedOrigins, logger.WithPrefix("ws"))

	server := api.New(cfg, coord, handler, store, logger.WithPrefix("http"))

	coord.Start(ctx)
	defer coord.Stop()

	errc := make(chan error, 2)
	go func() { errc <- server.Start(ctx) }()

	if flagSSH {
		sshServer, err := tui.NewSSHServer(tui.SSHConfigFrom(cfg), coord, logger.WithPrefix("ssh"))
		if err != nil {
			return fmt.Errorf("create ssh server: %w", err)
		}
		go func() { errc <- sshServer.Start(ctx) }()
		logger.Info("ssh play enabled", "connect", "ssh -p "+portOf(cfg.Server.SSHAddress)+" localhost")
	}

	logger.Info("server ready",
		"addr", cfg.Server.Address,
		"tick_rate", cfg.Server.TickRate,
		"slots", len(cfg.ActiveSlots()),
		"bots", cfg.AI.FillEmptySlots,
	)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-errc:
		return err
	}
}

func applyServeFlags(cfg *config.Config) error {
	if flagAddr != "" {
		cfg.Server.Address = flagAddr
	}
	if flagSSHAddr != "" {
		cfg.Server.SSHAddress = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagFillBots {
		cfg.AI.FillEmptySlots = true
	}
	if flagDifficulty != "" {
		preset, err := parsePreset(flagDifficulty)
		if err != nil {
			return err
		}
		config.ApplyPreset(cfg, preset)
	}
	return nil
}

func parsePreset(s string) (config.DifficultyPreset, error) {
	switch p := config.DifficultyPreset(s); p {
	case config.DifficultyEasy, config.DifficultyNormal, config.DifficultyHard, config.DifficultyFixed:
		return p, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (expected easy, normal, hard or fixed)", s)
}

// openStore opens the statistics database. The server keeps running
// without statistics when it cannot be opened.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	if flagNoDB || cfg.Storage.DBPath == "" {
		return nil
	}
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn("statistics disabled", "path", cfg.Storage.DBPath, "err", err)
		return nil
	}
	logger.Info("recording statistics", "path", cfg.Storage.DBPath)
	return store
}

func startTelemetry(cfg config.Config, logger *log.Logger) *telemetry.Publisher {
	pub, err := telemetry.New(cfg.Telemetry, logger.WithPrefix("telemetry"))
	if errors.Is(err, telemetry.ErrDisabled) {
		return nil
	}
	if err != nil {
		logger.Warn("telemetry disabled", "err", err)
		return nil
	}
	if err := pub.Connect(5 * time.Second); err != nil {
		// Reconnects in the background; events are skipped until then.
		logger.Warn("telemetry broker unreachable", "broker", cfg.Telemetry.Broker, "err", err)
	}
	return pub
}

func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
