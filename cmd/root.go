package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/config"
	"github.com/msalah0e/tripgraph/internal/logging"
	"github.com/msalah0e/tripgraph/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.3.0"

var (
	apiURL     string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tripgraph",
	Short: "tripgraph · travel chat and knowledge graph explorer",
	Long: ui.Brand.Sprint(ui.Mark+" tripgraph") + " · ask about destinations and explore how they connect\n" +
		ui.Subtle.Sprint("Chat with the travel assistant, pick entities and open them as a graph"),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("tripgraph {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(
		chatCmd(),
		askCmd(),
		searchCmd(),
		graphCmd(),
		serveCmd(),
		healthCmd(),
		configCmd(),
		completionCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Fail(os.Stderr, err)
	}
	return err
}

// env is what every backend command runs with.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *api.Metrics
	client  *api.Client
}

// setup loads config and builds the logger and API client. fileLog sends
// logs to the log file instead of stderr.
func setup(fileLog bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if !cfg.UI.Color {
		ui.SetColor(false)
	}

	var logger *zap.Logger
	if fileLog {
		logger, err = logging.NewFile(cfg.LogFile(), cfg.Log.Level, verbose)
	} else {
		logger, err = logging.New(cfg.Log.Level, verbose)
	}
	if err != nil {
		return nil, err
	}

	metrics := api.NewMetrics("tripgraph")
	client := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithBreaker(cfg.BreakerSettings()),
		api.WithMetrics(metrics),
		api.WithLogger(logger.Named("api")),
	)
	return &env{cfg: cfg, logger: logger, metrics: metrics, client: client}, nil
}

func (e *env) close() { _ = e.logger.Sync() }
