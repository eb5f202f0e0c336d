package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/myhometown/missionary-import/internal/importer"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/refdata"
	"github.com/myhometown/missionary-import/internal/submit"
)

func newSubmitCmd(api *apiOptions) *cobra.Command {
	var (
		mappings       []string
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Validate a file and import its valid rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := api.resolve()
			out := cmd.OutOrStdout()

			session, err := validateFile(cmd.Context(), out, args[0], mappings, cfg)
			if err != nil {
				return err
			}

			client := refdata.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout)
			submitter := submit.New(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout,
				submit.WithNotifier(printNotifier{out: out}),
				submit.WithRefresher(recordCounter{client: client, out: out}),
			)

			summary, err := session.Submit(cmd.Context(), keyedSubmitter{submitter: submitter, key: idempotencyKey})
			if err != nil {
				if errors.Is(err, importer.ErrNothingToSubmit) {
					return withCode(exitValidation, err)
				}
				return withCode(exitAPI, err)
			}

			for _, d := range summary.Duplicates {
				fmt.Fprintf(out, "duplicate: %s <%s>\n", d.Name, d.Email)
			}
			for _, f := range summary.Failed {
				fmt.Fprintf(out, "failed: %s: %s\n", f.Email, f.Reason)
			}
			if len(summary.Failed) > 0 {
				return withCode(exitValidation, fmt.Errorf("%d records were rejected by the server", len(summary.Failed)))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&mappings, "map", nil, "map a field to a column, as field=Header (repeatable)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "resend-safe key; a repeated key returns the first result")
	return cmd
}

type keyedSubmitter struct {
	submitter *submit.Submitter
	key       string
}

func (k keyedSubmitter) Submit(ctx context.Context, records []models.CanonicalRecord) (*models.ImportSummary, error) {
	return k.submitter.SubmitWithKey(ctx, records, k.key)
}

type printNotifier struct {
	out io.Writer
}

func (p printNotifier) Notify(level slog.Level, message string) {
	if level >= slog.LevelError {
		fmt.Fprintf(p.out, "error: %s\n", message)
		return
	}
	fmt.Fprintln(p.out, message)
}

// recordCounter re-fetches the record set after an import and reports its size.
type recordCounter struct {
	client *refdata.Client
	out    io.Writer
}

func (r recordCounter) Refresh(ctx context.Context) error {
	missionaries, err := r.client.Missionaries(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%d records on the server\n", len(missionaries))
	return nil
}
