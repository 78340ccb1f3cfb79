// Package main provides the CLI entry point for loghound, a tool that loads
// log lines into a bounded record store and shows the records that pass its
// level, tag and text filters.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/loghound/export"
	"go.jacobcolvin.com/loghound/log"
	"go.jacobcolvin.com/loghound/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	logCfg := log.NewConfig()

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "loghound",
		Short: "Filter log records by level, tag and text",
		Long: `loghound keeps log records in a bounded in-memory store and filters them by
level, by tags under one of four matching modes (any, intersection, only,
exclusion), and by a case-insensitive search text.

Flags can also be set in a loghound.yaml config file, searched for in the
working directory and the user config directory, or through LOGHOUND_*
environment variables, e.g. LOGHOUND_MIN_LEVEL=warn.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd.Flags(), cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./loghound.yaml)")
	logCfg.RegisterFlags(rootCmd.PersistentFlags())

	completionErr := logCfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	rootCmd.AddCommand(
		newViewCmd(logCfg),
		newSchemaCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of exported records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := export.Schema()
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrWriteOutput, err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrWriteOutput, err)
			}

			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeVersion(cmd.OutOrStdout(), version.Get(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format, one of: [text json yaml]")

	err := cmd.RegisterFlagCompletionFunc("format",
		cobra.FixedCompletions([]string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	return cmd
}

func writeVersion(w io.Writer, info version.Info, format string) error {
	var (
		out []byte
		err error
	)

	switch format {
	case "text":
		out = []byte(info.String() + "\n")
	case "json":
		out, err = json.MarshalIndent(info, "", "  ")
		out = append(out, '\n')
	case "yaml":
		out, err = yaml.Marshal(info)
	default:
		return fmt.Errorf("%w: %q", export.ErrUnknownFormat, format)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return nil
}
