package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/myhometown/missionary-import/internal/config"
)

// apiOptions are the backend connection flags shared by every command that
// talks to the API. Unset flags fall back to the IMPORT_* environment.
type apiOptions struct {
	BaseURL string
	Token   string
	Verbose bool
}

func (o *apiOptions) resolve() config.ImportConfig {
	cfg := config.Load().Import
	if o.BaseURL != "" {
		cfg.APIBaseURL = o.BaseURL
	}
	if o.Token != "" {
		cfg.APIToken = o.Token
	}
	return cfg
}

func newRootCmd() *cobra.Command {
	var opts apiOptions

	cmd := &cobra.Command{
		Use:           "mhimport",
		Short:         "Validate and import missionary CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "api-url", "", "backend base URL (default $IMPORT_API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "bearer token (default $IMPORT_API_TOKEN)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress to stderr")

	cmd.AddCommand(newValidateCmd(&opts))
	cmd.AddCommand(newSubmitCmd(&opts))
	cmd.AddCommand(newTemplateCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}

func main() {
	Execute()
}
