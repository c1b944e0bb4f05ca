package main

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/forgepad/forgepad/src"
	"github.com/forgepad/forgepad/src/config"
)

func main() {
	// Optional .env with FORGEPAD_* overrides; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("forgepad: %v", err)
	}

	m := src.NewModel(context.Background(), cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("forgepad: %v", err)
	}
}
