package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/wordsync/internal/channel"
	"github.com/at-ishikawa/wordsync/internal/core"
	"github.com/at-ishikawa/wordsync/internal/translation"
)

var (
	wordStyle   = color.New(color.Bold)
	sourceStyle = color.New(color.FgHiBlack)
	failStyle   = color.New(color.FgYellow)
)

func newChannelCaller() (*channel.HTTPCaller, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return channel.NewHTTPCaller(cfg.Channel.URL(), cfg.Channel.Timeout()), nil
}

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <text>",
		Short: "Look up a word or a short text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			caller, err := newChannelCaller()
			if err != nil {
				return err
			}
			defer func() { _ = caller.Close() }()

			resp, err := caller.Call(cmd.Context(), channel.TypeLookupWord, core.LookupPayload{Word: term})
			if err != nil {
				printLookupFailure(cmd.OutOrStdout(), term, err.Error())
				return fmt.Errorf("caller.Call() > %w", err)
			}

			var data core.LookupData
			if err := resp.DecodeData(&data); err != nil {
				return fmt.Errorf("decode lookup data: %w", err)
			}
			if !resp.Success {
				if data.Word == "" {
					data.Word = term
				}
				printLookupFailure(cmd.OutOrStdout(), data.Word, resp.Error)
				return nil
			}
			printLookup(cmd.OutOrStdout(), data)
			return nil
		},
	}
}

func newSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <word> <translation>",
		Short: "Save a translation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record translation.Record
			if err := call(cmd, channel.TypeSaveTranslation, core.SavePayload{Word: args[0], Translation: args[1]}, &record); err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), []translation.Record{record})
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved translations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []translation.Record
			if err := call(cmd, channel.TypeGetTranslations, nil, &records); err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data core.DeleteData
			if err := call(cmd, channel.TypeDeleteTranslation, core.DeletePayload{ID: args[0]}, &data); err != nil {
				return err
			}
			if !data.Deleted {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s was not found\n", args[0])
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", args[0])
			return nil
		},
	}
}

// call sends one request to the daemon and decodes the data of a successful reply into out.
func call(cmd *cobra.Command, typ channel.Type, payload any, out any) error {
	caller, err := newChannelCaller()
	if err != nil {
		return err
	}
	defer func() { _ = caller.Close() }()

	resp, err := caller.Call(cmd.Context(), typ, payload)
	if err != nil {
		return fmt.Errorf("caller.Call() > %w", err)
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}
	if err := resp.DecodeData(out); err != nil {
		return fmt.Errorf("decode %s data: %w", typ, err)
	}
	return nil
}

func printLookup(w io.Writer, data core.LookupData) {
	_, _ = wordStyle.Fprint(w, data.Word)
	_, _ = sourceStyle.Fprintf(w, " (%s)\n", data.Source)
	_, _ = fmt.Fprintln(w, data.Translation)
}

// printLookupFailure shows the raw term so that the user still sees what was looked up.
func printLookupFailure(w io.Writer, term, reason string) {
	_, _ = wordStyle.Fprintln(w, term)
	_, _ = failStyle.Fprintf(w, "no translation: %s\n", reason)
}

func printRecords(w io.Writer, records []translation.Record) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "no translations")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tWORD\tTRANSLATION\tCOUNT\tLAST MODIFIED")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Word, firstLine(r.Translation), r.Count, r.LastModified.Local().Format("2006-01-02 15:04:05"))
	}
	_ = tw.Flush()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
