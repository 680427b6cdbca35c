package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/tailored-agentic-units/converse/controller"
	"github.com/tailored-agentic-units/converse/observability"
	"github.com/tailored-agentic-units/converse/settings"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to config JSON file (optional)")
		baseURL    = flag.String("base-url", "", "OpenAI-compatible server URL (overrides config)")
		storePath  = flag.String("store", "", "Settings persistence path (overrides config)")
		backend    = flag.String("store-backend", "", "Persistence backend: file or sqlite (overrides config)")
		modelID    = flag.String("model", "", "Model to load (overrides persisted selection)")
		policy     = flag.String("policy", "", "Policy text to enforce on every request")
		verbose    = flag.Bool("verbose", false, "Enable verbose event logging to stderr")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *baseURL != "" {
		cfg.Engine.BaseURL = *baseURL
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}

	observer := buildObserver(*verbose)

	c, err := controller.New(cfg, controller.WithObserver(observer))
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}
	defer c.Close()

	patch := settings.Patch{}
	if *modelID != "" {
		patch.ModelID = modelID
	}
	if *policy != "" {
		patch.PolicyText = policy
		enforce := true
		patch.EnforceOnlyPolicy = &enforce
	}
	c.ApplySettings(patch)

	// Ctrl+C interrupts the in-flight generation; Ctrl+D exits.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		for range sigCh {
			c.Cancel()
			fmt.Fprintln(os.Stderr, "\n(interrupted)")
		}
	}()

	repl(c)
}

func loadConfig(path string) (*controller.Config, error) {
	if path == "" {
		cfg := controller.DefaultConfig()
		return &cfg, nil
	}
	return controller.LoadConfig(path)
}

// buildObserver wires the stdout delta printer, optionally fanned out with
// a slog event logger when -verbose is set.
func buildObserver(verbose bool) observability.Observer {
	printer := &chunkPrinter{out: os.Stdout}

	if !verbose {
		return printer
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return observability.NewMultiObserver(printer, observability.NewSlogObserver(logger))
}

func repl(c *controller.Controller) {
	fmt.Printf("session %s (type a message, /help for commands)\n", c.SessionID())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := command(c, line); quit {
				return
			}
			continue
		}

		if err := c.Send(context.Background(), line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println()
	}
}

// command handles a slash command line. Returns true when the REPL should
// exit.
func command(c *controller.Controller, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/help":
		fmt.Print(`commands:
  /reset             clear the conversation
  /model <id>        select a model and reload
  /policy <text>     set policy text and enforce it (empty to disable)
  /settings          show current settings
  /quit              exit
`)

	case "/reset":
		c.Reset()
		fmt.Println("conversation cleared")

	case "/model":
		if arg == "" {
			fmt.Printf("model: %s\n", c.Settings().ModelID)
			return false
		}
		c.ApplySettings(settings.Patch{ModelID: &arg})
		if err := c.ReloadModel(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			return false
		}
		fmt.Printf("model loaded: %s\n", arg)

	case "/policy":
		enforce := arg != ""
		c.ApplySettings(settings.Patch{PolicyText: &arg, EnforceOnlyPolicy: &enforce})
		if enforce {
			fmt.Println("policy enforced")
		} else {
			fmt.Println("policy disabled")
		}

	case "/settings":
		s := c.Settings()
		fmt.Printf("model: %s\ntemperature: %v\nmax tokens: %d\npolicy enforced: %v\n",
			s.ModelID, s.Temperature, s.MaxTokens, s.EnforceOnlyPolicy)

	case "/quit", "/exit":
		return true

	default:
		fmt.Fprintf(os.Stderr, "unknown command %s (try /help)\n", cmd)
	}
	return false
}
