package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/wordsync/internal/datasync"
	"github.com/at-ishikawa/wordsync/internal/pdf"
)

type FormatFlag string

const (
	FormatYAML     FormatFlag = "yaml"
	FormatMarkdown FormatFlag = "markdown"
	FormatPDF      FormatFlag = "pdf"
)

// Set implements pflag.Value.
func (f *FormatFlag) Set(v string) error {
	switch FormatFlag(v) {
	case FormatYAML, FormatMarkdown, FormatPDF:
		*f = FormatFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q, %q or %q", v, FormatYAML, FormatMarkdown, FormatPDF)
	}
	return nil
}

// String implements pflag.Value.
func (f *FormatFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FormatFlag) Type() string {
	return "FormatFlag"
}

var (
	_ pflag.Value = (*FormatFlag)(nil)
)

func newExportCommand() *cobra.Command {
	format := FormatYAML
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the local translations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, backend, err := openLocalStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			records := store.List()
			switch format {
			case FormatYAML:
				if err := datasync.NewYAMLSink(outputDir).WriteAll(records, store.LastSyncTime()); err != nil {
					return fmt.Errorf("sink.WriteAll() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d translations exported to %s\n", len(records), outputDir)
			case FormatMarkdown:
				path := filepath.Join(outputDir, "translations.md")
				if err := pdf.WriteMarkdown(records, path); err != nil {
					return fmt.Errorf("pdf.WriteMarkdown() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d translations exported to %s\n", len(records), path)
			case FormatPDF:
				path, err := pdf.ExportPDF(records, filepath.Join(outputDir, "translations.md"))
				if err != nil {
					return fmt.Errorf("pdf.ExportPDF() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d translations exported to %s\n", len(records), path)
			}
			return nil
		},
	}
	cmd.Flags().Var(&format, "format", "Output format. Options: yaml, markdown, pdf")
	cmd.Flags().StringVar(&outputDir, "output", "export", "Output directory")
	return cmd
}
