package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"matchday/internal/config"
	"matchday/internal/conversation"
	"matchday/internal/db"
	"matchday/internal/examples"
	"matchday/internal/llm"
	"matchday/internal/session"
	"matchday/internal/sqlgen"
	"matchday/internal/workflow"
)

var (
	// Global flags
	configPath string
	dbPath     string
	apiKey     string
	verbose    bool
	noFormat   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "matchday",
	Short: "matchday - talk to your club's match history",
	Long: `matchday answers natural-language questions about a club's historical
match database. It resolves player and club names, generates a read-only SQL
query, repairs it when needed, and replies as a fan of the club.

Run without arguments to start the interactive chat.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return a.repl(cmd.Context())
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		answer, err := a.turn(cmd.Context(), a.sessions.Create(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(a.render(answer))
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the database schema description used in prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer database.Close()

		schema, err := database.DescribeSchema(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(schema)
		return nil
	},
}

// app bundles the wired components for the chat commands.
type app struct {
	cfg      *config.Config
	database *db.DB
	history  *db.HistoryStore
	orch     *workflow.Orchestrator
	sessions *session.Manager
	cancel   context.CancelFunc
}

// loadConfig reads .env, the config file, and applies flag overrides. Flags
// beat environment beats file.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if noFormat {
		cfg.Workflow.FormatOutput = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	var history *db.HistoryStore
	if cfg.Database.HistoryPath != "" {
		history, err = db.OpenHistory(cfg.Database.HistoryPath)
		if err != nil {
			database.Close()
			return nil, err
		}
	}

	client, err := llm.New(llm.Config{
		Provider:       cfg.LLM.Provider,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		BaseURL:        cfg.LLM.BaseURL,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	if err != nil {
		database.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	store := examples.NewStore(cfg.Examples.Path, logger)
	if cfg.Examples.Watch {
		if err := store.Watch(ctx); err != nil {
			logger.Warn("example watcher disabled", zap.Error(err))
		}
	}

	generator := sqlgen.NewGenerator(client, store, cfg.ClubName, logger)
	formatter := sqlgen.NewFormatter(client, cfg.ClubName, logger)
	window := conversation.NewWindow(client, cfg.Context.RecentWindow, cfg.Context.OlderCharThreshold, logger)

	orch := workflow.New(database, generator, formatter, window, workflow.Options{
		MaxFixAttempts: cfg.Workflow.MaxFixAttempts,
		FormatOutput:   cfg.Workflow.FormatOutput,
		StepTimeout:    cfg.Workflow.StepTimeout(),
		SchemaTTL:      cfg.Workflow.SchemaTTL(),
	}, logger)

	return &app{
		cfg:      cfg,
		database: database,
		history:  history,
		orch:     orch,
		sessions: session.NewManager(logger),
		cancel:   cancel,
	}, nil
}

// turn runs one utterance through a session and returns the final message.
func (a *app) turn(ctx context.Context, sessionID, utterance string) (string, error) {
	state, err := a.sessions.Acquire(sessionID)
	if err != nil {
		return "", err
	}
	defer a.sessions.Release(sessionID)

	if err := a.orch.Turn(ctx, state, utterance); err != nil {
		return "", err
	}
	if a.history != nil {
		if err := a.history.SaveMessages(ctx, sessionID, state.Messages); err != nil {
			logger.Warn("failed to persist conversation log", zap.Error(err))
		}
	}
	last, ok := state.Last()
	if !ok {
		return "", fmt.Errorf("turn produced no messages")
	}
	return last.Content, nil
}

func (a *app) close() {
	a.cancel()
	if a.history != nil {
		a.history.Close()
	}
	a.database.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "matchday.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the match database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "model API key (overrides config and environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noFormat, "no-format", false, "print raw query results instead of persona answers")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
