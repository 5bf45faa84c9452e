package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BorisDmv/my-todo-api/internal/client"
	"github.com/BorisDmv/my-todo-api/internal/config"
	"github.com/BorisDmv/my-todo-api/internal/logging"
	"github.com/BorisDmv/my-todo-api/internal/tui"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	apiURL := flag.String("api", cfg.APIBaseURL, "base URL of the todo API")
	flag.Parse()

	// stdout belongs to the terminal UI, so logs go to a file.
	log, closeLog, err := logging.NewFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log:", err)
		os.Exit(1)
	}

	api := client.New(*apiURL, client.WithTimeout(cfg.Timeout))
	log.Info("client started", "api", *apiURL)

	_, err = tea.NewProgram(tui.New(api, log), tea.WithAltScreen()).Run()
	if err != nil {
		log.Error("ui exited with error", "error", err)
	}
	_ = closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
