package main

import (
	"context"
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/draughtworks/brewdeck/internal/client"
	"github.com/draughtworks/brewdeck/internal/config"
	"github.com/draughtworks/brewdeck/internal/console"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	baseURL := flag.String("url", "", "backend base URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// The terminal owns stdout, so client logs go to a file when configured
	// and are discarded otherwise.
	logger := zap.NewNop()
	if logPath := cfg.GetString("console.log_file"); logPath != "" {
		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{logPath}
		if l, err := zcfg.Build(); err == nil {
			logger = l
		}
	}
	defer logger.Sync() //nolint:errcheck

	base := cfg.GetString("console.base_url")
	if *baseURL != "" {
		base = *baseURL
	}

	c := client.New(base, client.WithLogger(logger))

	app := console.New(context.Background(), c, cfg.GetInt("console.page_size"))
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		os.Stderr.WriteString("console error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
