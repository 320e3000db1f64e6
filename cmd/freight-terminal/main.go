package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/freightdesk/freight-terminal/internal/api"
	"github.com/freightdesk/freight-terminal/internal/config"
	"github.com/freightdesk/freight-terminal/internal/credentials"
	"github.com/freightdesk/freight-terminal/internal/places"
	"github.com/freightdesk/freight-terminal/internal/ui"
)

func main() {
	token := flag.String("token", "", "Save this API bearer token and exit")
	logout := flag.Bool("logout", false, "Forget the stored API token and exit")
	flag.Parse()

	cfg := config.Load()
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Printf("Error creating data directory: %v\n", err)
		os.Exit(1)
	}

	store := credentials.NewStore(cfg.DBPath())

	if *token != "" {
		if err := store.SaveToken(*token); err != nil {
			fmt.Printf("Error saving token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Token saved.")
		return
	}

	if *logout {
		if err := store.Clear(); err != nil {
			fmt.Printf("Error clearing token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Token cleared.")
		return
	}

	// The TUI owns the terminal, so diagnostics go to a file.
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", cfg.LogPath(), err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	client := api.NewHTTPClient(cfg.APIBaseURL)
	resolver := places.NewNominatimResolver()

	m := ui.NewModel(client, store, resolver, logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}
