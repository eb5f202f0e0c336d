package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/myhometown/missionary-import/internal/config"
	"github.com/myhometown/missionary-import/internal/importer"
	"github.com/myhometown/missionary-import/internal/refdata"
	"github.com/myhometown/missionary-import/internal/schema"
)

func newValidateCmd(api *apiOptions) *cobra.Command {
	var mappings []string

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a CSV or XLSX file against the API's cities and communities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := validateFile(cmd.Context(), cmd.OutOrStdout(), args[0], mappings, api.resolve())
			if err != nil {
				return err
			}
			if n := len(session.Result().Errors); n > 0 {
				return withCode(exitValidation, fmt.Errorf("%d validation errors", n))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&mappings, "map", nil, "map a field to a column, as field=Header (repeatable)")
	return cmd
}

// parseMappings turns field=Header flags into overrides. An empty header
// unmaps the field.
func parseMappings(flags []string) (map[schema.FieldKey]string, error) {
	out := make(map[schema.FieldKey]string, len(flags))
	for _, f := range flags {
		key, header, ok := strings.Cut(f, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --map %q: want field=Header", f)
		}
		out[schema.FieldKey(key)] = strings.TrimSpace(header)
	}
	return out, nil
}

// validateFile loads path into a new session, applies the mapping overrides
// and validates every row, printing warnings, row errors and the counts.
func validateFile(ctx context.Context, out io.Writer, path string, mappings []string, cfg config.ImportConfig) (*importer.Session, error) {
	overrides, err := parseMappings(mappings)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	defer f.Close()

	session := importer.NewSession(slog.Default())
	if err := session.Load(filepath.Base(path), f); err != nil {
		return nil, withCode(exitValidation, err)
	}
	for key, header := range overrides {
		if err := session.SetMapping(key, header); err != nil {
			return nil, withCode(exitUsage, err)
		}
	}

	source := refdata.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout)
	result, err := session.Validate(ctx, source)
	if err != nil {
		var missing *schema.MissingError
		switch {
		case errors.As(err, &missing):
			fmt.Fprintf(out, "Columns in file: %s\n", strings.Join(session.Table().Header, ", "))
			fmt.Fprintln(out, "Map the missing fields with --map field=Header.")
			return nil, withCode(exitValidation, err)
		case errors.Is(err, refdata.ErrUnavailable):
			return nil, withCode(exitAPI, err)
		default:
			return nil, withCode(exitUsage, err)
		}
	}

	table := session.Table()
	for _, w := range table.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, w := range schema.UnmappedHeaders(table.Header, session.Mapping()) {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintln(out, e)
	}
	fmt.Fprintf(out, "%d of %d rows valid, %d errors\n", len(result.Valid), len(table.Rows), len(result.Errors))
	return session, nil
}
