package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/myhometown/missionary-import/internal/export"
)

func newTemplateCmd() *cobra.Command {
	var (
		outPath string
		xlsx    bool
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the import template (CSV by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.EqualFold(filepath.Ext(outPath), ".xlsx") {
				xlsx = true
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return withCode(exitUsage, err)
				}
				defer f.Close()
				w = f
			}

			write := export.WriteTemplate
			if xlsx {
				write = export.WriteTemplateXLSX
			}
			if err := write(w); err != nil {
				return err
			}
			if outPath != "" && outPath != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "template written to %s\n", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "write an Excel workbook instead of CSV")
	return cmd
}
