package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/multipong/internal/client"
	"github.com/vovakirdan/multipong/internal/lobby"
	"github.com/vovakirdan/multipong/internal/platform/tui"
)

var (
	flagServer   string
	flagSlot     string
	flagName     string
	flagPlayerID string
	flagFPS      int
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Join a MultiPong server from this terminal",
	Long: `Connect to a MultiPong server and play in the terminal.

Controls:
  up/w, down/s  - Move your paddle
  r             - Toggle ready
  tab/enter     - Pick a slot and move to it
  t             - Chat
  q             - Quit

Examples:
  multipong client
  multipong client --server game.example.com:8000 --name alice
  multipong client --slot B2`,
	RunE: runClient,
}

func init() {
	clientCmd.Flags().StringVar(&flagServer, "server", "", "Server address (default: client.server_url)")
	clientCmd.Flags().StringVar(&flagSlot, "slot", lobby.AutoSlot, "Slot to request, e.g. A1 or auto")
	clientCmd.Flags().StringVar(&flagName, "name", "", "Nickname shown to other players")
	clientCmd.Flags().StringVar(&flagPlayerID, "player", "", "Player id used for statistics (generated if empty)")
	clientCmd.Flags().IntVar(&flagFPS, "fps", 0, "Frame rate (default: client.fps)")
}

func runClient(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The terminal belongs to the game, so only warnings are logged.
	if flagLogLevel == "" {
		cfg.Server.LogLevel = "warn"
	}
	logger := newLogger(cfg.Server.LogLevel)

	server := cfg.Client.ServerURL
	if flagServer != "" {
		server = flagServer
	}
	fps := cfg.Client.FPS
	if flagFPS > 0 {
		fps = flagFPS
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	c, err := client.Dial(dialCtx, server, flagSlot, client.Options{
		PlayerID:   flagPlayerID,
		Name:       flagName,
		BufferSize: cfg.Client.BufferSize,
		Logger:     logger.WithPrefix("client"),
	})
	dialCancel()
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx) }()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	err = tui.Run(tui.NewRemoteConn(ctx, c), tui.Options{
		FPS:         fps,
		RenderDelay: time.Duration(cfg.Client.RenderDelay * float64(time.Second)),
		Width:       width,
		Height:      height,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}

	if readErr := <-runErr; readErr != nil && !errors.Is(readErr, context.Canceled) {
		if msg := c.LastError(); msg != "" {
			return fmt.Errorf("disconnected: %s", msg)
		}
	}
	return nil
}
