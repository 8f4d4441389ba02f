package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/franclarke/multidub-ai/cmd/dubwatch/tui"
)

func main() {
	_ = godotenv.Load()

	serviceURL := flag.String("url", "http://localhost:8080", "Dubbing service URL")
	videoID := flag.String("video", "", "Video id to watch")
	flag.Parse()

	if *videoID == "" {
		fmt.Fprintln(os.Stderr, "usage: dubwatch -video <video-id> [-url <service-url>]")
		os.Exit(2)
	}

	m := tui.NewModel(*serviceURL, *videoID)
	program := tea.NewProgram(m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
