// cmd/morpho/main.go
//
// This is the entry point for Morpho.
// When you run `morpho`, this is what executes.
//
// Flow:
// 1. Load .env (for GEMINI_API_KEY) and the ~/.morpho settings
// 2. Open the progress database and the session journal
// 3. Build the Gemini provider and launch the TUI

package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/khanhngn/morpho/internal/config"
	"github.com/khanhngn/morpho/internal/journal"
	"github.com/khanhngn/morpho/internal/progress"
	"github.com/khanhngn/morpho/internal/provider"
	"github.com/khanhngn/morpho/internal/tui"
)

func main() {
	// A .env in the working directory is a convenience for development;
	// missing is fine, the key can come from the real environment.
	_ = godotenv.Load()

	cfg, err := config.New("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "GEMINI_API_KEY is not set.")
		fmt.Fprintln(os.Stderr, "Export it or put it in a .env file, then run morpho again.")
		os.Exit(1)
	}

	j, err := journal.New(cfg.JournalPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		os.Exit(1)
	}
	defer j.Close()

	store, err := progress.Open(cfg.DatabasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening progress database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	prov, err := provider.NewGemini(context.Background(), cfg.APIKey, cfg.Settings.Model, j)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating content provider: %v\n", err)
		os.Exit(1)
	}

	// tea.NewProgram creates a new bubbletea application;
	// tui.NewApp returns our main application model.
	p := tea.NewProgram(
		tui.NewApp(cfg, store, prov, j),
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)

	// Run blocks until the user quits.
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
