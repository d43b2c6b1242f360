// Package cli implements the onestop command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"example.com/onestop-outings/backend/internal/app"
	"example.com/onestop-outings/backend/internal/config"
)

type options struct {
	envFile  string
	logLevel string
}

// NewRootCommand создает корневую команду onestop со всеми подкомандами.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "onestop",
		Short:         "Dublin day-outing planner",
		Long:          "Plans three-stop outings in Dublin using a language model with a local catalog as fallback.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to .env file (default: $ENV_FILE or ./.env)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	root.AddCommand(
		newServeCommand(opts),
		newPlanCommand(opts),
		newCatalogCommand(opts),
	)

	return root
}

func (o *options) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.logLevel, err)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// loadApp читает конфигурацию и собирает приложение. Логи пишутся в stderr.
func (o *options) loadApp(cmd *cobra.Command) (*app.App, error) {
	if o.envFile != "" {
		if err := os.Setenv("ENV_FILE", o.envFile); err != nil {
			return nil, fmt.Errorf("set ENV_FILE: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := o.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return app.New(cfg, logger)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
