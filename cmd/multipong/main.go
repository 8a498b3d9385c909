// multipong is an authoritative team Pong server with a terminal client.
//
// Usage:
//
//	multipong serve          - Start the game server (websocket, HTTP API, optional SSH)
//	multipong client         - Join a server from this terminal
//	multipong stats          - Show the leaderboard and recent matches
//	multipong bots           - List the bot difficulty levels
//	multipong train          - Train a Q-learning bot model
//	multipong config         - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Custom configuration YAML
//	--log-level <level> - debug, info, warn or error (default: from config)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/multipong/internal/config"

	// Register bot strategies
	_ "github.com/vovakirdan/multipong/internal/ai"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "multipong",
	Short: "MultiPong - team Pong for up to eight players",
	Long: `MultiPong runs an authoritative Pong match between two teams of
paddles. Players join over websocket or SSH; empty slots can be filled
with bots.

Available commands:
  serve    - Start the game server
  client   - Play from this terminal
  stats    - View match statistics
  bots     - List bot levels
  train    - Train a Q-learning bot
  config   - Print the effective configuration

Examples:
  multipong serve --ssh
  multipong client --server localhost:8000 --name alice
  multipong stats --interactive
  multipong train --episodes 2000`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(botsCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the configuration named by --config, or the default
// search path.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		cfg.Server.LogLevel = flagLogLevel
	}
	return cfg, nil
}

// newLogger builds the root logger for a command.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "multipong",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else if level != "" {
		logger.Warn("unknown log level, using info", "level", level)
	}
	log.SetDefault(logger)
	return logger
}
