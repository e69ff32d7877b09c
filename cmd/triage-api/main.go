package main

import (
	"fmt"
	"os"

	"backend-triage/internal/config"
	"backend-triage/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "triage-api",
		Short:         "Patient and triage records API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("host", "", "address to listen on")
	flags.String("port", "", "port to listen on")
	flags.String("database-driver", "", "datastore driver (postgres or sqlite)")
	flags.String("database-url", "", "datastore connection string")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("env-file", "", "dotenv file to read settings from")
	for key, flag := range map[string]string{
		config.KeyHost:           "host",
		config.KeyListenPort:     "port",
		config.KeyDatabaseDriver: "database-driver",
		config.KeyDatabaseURL:    "database-url",
		config.KeyLogLevel:       "log-level",
		config.KeyEnvFile:        "env-file",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), v)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(v)
			},
		},
		newTokenCommand(v),
	)
	return root
}

// setup loads the configuration and builds the process logger.
func setup(v *viper.Viper) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(v)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(os.Stdout, cfg.LogLevel)
	for _, key := range cfg.Missing {
		log.Warn("Setting not provided, using default", zap.String("key", key))
	}
	return cfg, log, nil
}
