package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/multipong/internal/platform/tui"
	"github.com/vovakirdan/multipong/internal/storage"
)

var (
	flagStatsDB     string
	flagStatsLimit  int
	flagInteractive bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show match statistics",
	Long: `Display the leaderboard, recent matches and overall counters from
the statistics database.

Examples:
  multipong stats
  multipong stats --limit 20
  multipong stats --interactive`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&flagStatsDB, "db", "", "Statistics database path (default: storage.db_path)")
	statsCmd.Flags().IntVar(&flagStatsLimit, "limit", storage.DefaultLeaderboardLimit, "Rows per table")
	statsCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse statistics in a full-screen view")
}

func runStats(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.Storage.DBPath
	if flagStatsDB != "" {
		dbPath = flagStatsDB
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening statistics database: %w", err)
	}
	defer store.Close()

	if flagInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(store, width, height)
	}

	sum, err := store.Summary()
	if err != nil {
		return err
	}
	if sum.TotalMatches == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Run 'multipong serve' and finish a match to fill the board!")
		return nil
	}

	board, err := store.Leaderboard(flagStatsLimit)
	if err != nil {
		return err
	}
	matches, err := store.Matches(flagStatsLimit)
	if err != nil {
		return err
	}

	fmt.Println("Leaderboard")
	printLeaderboard(board)
	fmt.Println()
	fmt.Println("Recent matches")
	printMatches(matches)
	fmt.Println()

	fmt.Printf("Matches: %d  Players: %d  Goals: %d  (%.1f per match)\n",
		sum.TotalMatches, sum.TotalPlayers, sum.TotalGoals, sum.AverageGoalsPerMatch)
	if scorer, err := store.HottestScorer(); err == nil {
		fmt.Printf("Hottest scorer: %s (%d goals)\n", scorer.Name, scorer.Total)
	}
	if defender, err := store.BestDefender(); err == nil {
		fmt.Printf("Best defender:  %s (%d conceded)\n", defender.Name, defender.Total)
	}
	return nil
}

func printLeaderboard(board []storage.PlayerSummary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Player", "Team", "Matches", "Goals", "Conceded", "Hits", "Hits/Match"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for i, e := range board {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			e.Name,
			e.Team,
			fmt.Sprintf("%d", e.MatchesPlayed),
			fmt.Sprintf("%d", e.TotalGoalsScored),
			fmt.Sprintf("%d", e.TotalGoalsReceived),
			fmt.Sprintf("%d", e.TotalHits),
			fmt.Sprintf("%.1f", e.AverageHitsPerMatch),
		})
	}
	table.Render()
}

func printMatches(matches []storage.Match) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Date", "Score", "Duration"})
	table.SetBorder(false)
	for _, m := range matches {
		table.Append([]string{
			fmt.Sprintf("%d", m.ID),
			m.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d - %d", m.TeamLeftScore, m.TeamRightScore),
			fmt.Sprintf("%.0fs", m.DurationSeconds),
		})
	}
	table.Render()
}
