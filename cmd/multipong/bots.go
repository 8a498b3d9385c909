package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/multipong/internal/registry"
)

var botsCmd = &cobra.Command{
	Use:   "bots",
	Short: "List bot difficulty levels",
	Long:  `Shows the bot strategies that can fill empty slots, by level.`,
	Run:   runBots,
}

func runBots(_ *cobra.Command, _ []string) {
	strategies := registry.List()

	if len(strategies) == 0 {
		fmt.Println("No bot strategies available.")
		return
	}

	fmt.Println("Bot levels:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, s := range strategies {
		if len(s.Name) > maxNameLen {
			maxNameLen = len(s.Name)
		}
	}

	fmt.Printf("  %-5s  %-*s  %s\n", "Level", maxNameLen, "Name", "Title")
	fmt.Printf("  %-5s  %-*s  %s\n", "-----", maxNameLen, "----", "-----")

	for _, s := range strategies {
		fmt.Printf("  %-5d  %-*s  %s\n", s.Level, maxNameLen, s.Name, s.Title)
	}

	fmt.Println()
	fmt.Println("Set ai.level in the config, or use 'multipong serve --difficulty <preset>'.")
}
