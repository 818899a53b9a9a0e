// Command converse is a terminal assistant that answers questions about
// countries and exchange rates, keeping conversations resumable across runs.
//
// The command takes no flags. Configuration is read from the JSON file
// named by CONVERSE_CONFIG (or converse.json in the working directory,
// when present), with OPENAI_API_KEY and friends applied on top.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"

	"github.com/lcfern/converse/agent"
	"github.com/lcfern/converse/chat"
	"github.com/lcfern/converse/directory"
	"github.com/lcfern/converse/graph"
	"github.com/lcfern/converse/lookup"
	"github.com/lcfern/converse/observability"
	"github.com/lcfern/converse/summarize"
	"github.com/lcfern/converse/tools"
)

const defaultConfigFile = "converse.json"

// summaryTemperature keeps compaction output consistent across runs,
// independent of the chat temperature.
const summaryTemperature = 0.3

func main() {
	logger := newLogger(os.Getenv("CONVERSE_VERBOSE") != "")
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Erro ao inicializar assistente: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Agent.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Agent.Validate(); err != nil {
		return err
	}

	observer := observability.NewSlogObserver(logger)

	chatAgent, err := agent.New(&cfg.Agent)
	if err != nil {
		return err
	}

	// Compaction uses its own low-temperature agent against the same model.
	summaryCfg := cfg.Agent
	summaryCfg.Temperature = summaryTemperature
	summaryAgent, err := agent.New(&summaryCfg)
	if err != nil {
		return err
	}

	if err := tools.RegisterLookupTools(lookup.NewClient()); err != nil {
		return err
	}

	checkpoints, err := graph.NewStore(&cfg.Graph.Checkpoint)
	if err != nil {
		return err
	}
	defer checkpoints.Close()

	engine, err := graph.New(chatAgent, checkpoints,
		graph.WithMaxIterations(cfg.Graph.MaxIterations),
		graph.WithSystemPrompt(cfg.SystemPrompt),
		graph.WithObserver(observer),
	)
	if err != nil {
		return err
	}

	compactor, err := summarize.New(summaryAgent, checkpoints, cfg.Summarize,
		summarize.WithObserver(observer))
	if err != nil {
		return err
	}

	sessions, err := directory.Open(cfg.DirectoryPath)
	if err != nil {
		return err
	}
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shell := chat.NewShell(sessions, engine, compactor, checkpoints)
	fmt.Println("✅ Assistente inicializado com sucesso!")
	return shell.Run(ctx)
}

func loadConfig() (chat.Config, error) {
	path := os.Getenv("CONVERSE_CONFIG")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path == "" {
		return chat.DefaultConfig(), nil
	}

	cfg, err := chat.LoadConfig(path)
	if err != nil {
		return chat.Config{}, err
	}
	return *cfg, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05.000Z07:00",
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() == slog.KindAny {
				if _, ok := a.Value.Any().(error); ok {
					return tint.Attr(9, a)
				}
			}
			return a
		},
	})
	return slog.New(handler)
}
