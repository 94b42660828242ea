package cli

import (
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/Mohanapavani03/agriconnect/internal/config"
	"github.com/Mohanapavani03/agriconnect/internal/observability"
	"github.com/Mohanapavani03/agriconnect/pkg/alert"
	"github.com/Mohanapavani03/agriconnect/pkg/directory"
	"github.com/Mohanapavani03/agriconnect/pkg/satdata"
	"github.com/Mohanapavani03/agriconnect/pkg/session"
	"github.com/Mohanapavani03/agriconnect/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "agriconnect",
	Short: "AgriConnect - Satellite crop monitoring and farmer alerting",
	Long: `AgriConnect serves satellite-derived crop health data to farmers in
Andhra Pradesh and broadcasts weather, disease, and irrigation alerts over
SMS gateways. It provides phone-based login, bilingual alert messages, and
an HTTP API for dashboards.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.agriconnect/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates the session persistence backend from config.
func initStorage(cfg *config.Config) (storage.SessionStore, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initDirectory loads the farmer directory, falling back to the built-in
// demo roster when no directory file is configured.
func initDirectory(cfg *config.Config) (*directory.Directory, error) {
	if cfg.Directory.Path == "" {
		return directory.Demo(), nil
	}
	return directory.Load(cfg.Directory.Path)
}

// initNotifiers creates SMS gateway notifiers from config.
func initNotifiers(cfg *config.Config, logger *slog.Logger) []alert.Notifier {
	var notifiers []alert.Notifier

	if cfg.Notify.Console.Enabled {
		notifiers = append(notifiers, alert.NewConsoleNotifier(logger))
	}

	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhookNotifier(
			cfg.Notify.Webhook.URL,
			cfg.Notify.Webhook.Secret,
		))
	}

	if cfg.Notify.Kafka.Enabled && len(cfg.Notify.Kafka.Brokers) > 0 {
		notifiers = append(notifiers, alert.NewKafkaNotifier(
			cfg.Notify.Kafka.Brokers,
			cfg.Notify.Kafka.Topic,
		))
	}

	return notifiers
}

// initSessions creates a fully wired session store and its persistence
// backend. The caller owns closing the returned store.
func initSessions(cfg *config.Config, logger *slog.Logger) (*session.Store, storage.SessionStore, error) {
	dir, err := initDirectory(cfg)
	if err != nil {
		return nil, nil, err
	}

	persist, err := initStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	verifier := session.NewDemoVerifier(dir, cfg.Auth.DemoCode)
	return session.NewStore(verifier, persist, logger), persist, nil
}

// initDistributor creates an alert distributor with the configured gateways.
func initDistributor(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *alert.Distributor {
	return alert.NewDistributor(
		initNotifiers(cfg, logger),
		clockwork.NewRealClock(),
		logger,
		metrics,
		cfg.Alerts.DefaultDistrict,
	)
}

// initData creates the environmental data service.
func initData(cfg *config.Config, metrics *observability.Metrics) *satdata.Service {
	return satdata.NewService(clockwork.NewRealClock(), metrics, cfg.Data.ParseLatency())
}
