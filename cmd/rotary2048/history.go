package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/rotary2048/internal/platform/tui"
	"github.com/vovakirdan/rotary2048/internal/storage"
)

var (
	flagBest  bool
	flagLimit int
	flagClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished sessions",
	Long: `Display finished sessions and aggregate statistics.

On a terminal an interactive table is shown; otherwise a plain listing is
printed.

Examples:
  rotary2048 history
  rotary2048 history --best --limit 5
  rotary2048 history --clear`,
	Run: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagBest, "best", false, "List the highest tiles instead of the most recent sessions")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of sessions to list")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the whole session history")
}

func runHistory(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearSessions(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Session history cleared.")
		return
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunHistory(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printHistory(store)
}

// printHistory writes a plain listing for pipes and scripts.
func printHistory(store *storage.Store) {
	var (
		sessions []storage.SessionEntry
		err      error
		title    = "Recent Sessions"
	)
	if flagBest {
		title = "Best Sessions"
		sessions, err = store.BestSessions(flagLimit)
	} else {
		sessions, err = store.RecentSessions(flagLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(title)
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Play 'rotary2048 run' or 'rotary2048 sim' to record the first one!")
		return
	}

	fmt.Printf("  %-4s  %-6s  %-6s  %-6s  %-9s  %s\n", "#", "Result", "Max", "Moves", "Time", "Date")
	fmt.Printf("  %-4s  %-6s  %-6s  %-6s  %-9s  %s\n", "-", "------", "---", "-----", "----", "----")
	for i, s := range sessions {
		fmt.Printf("  %-4d  %-6s  %-6d  %-6d  %-9s  %s\n",
			i+1, s.Status, s.MaxTile, s.Moves, s.Duration.Round(time.Second), s.StartedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.Stats(); err == nil {
		fmt.Println()
		fmt.Println(tui.FormatStats(stats))
	}
}
