package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/handii-app/volunteer-directory/internal/app"
)

type rootOptions struct {
	baseURL  string
	timeout  time.Duration
	hubsFile string
	verbose  bool
}

type consoleFactory func(opts rootOptions) (*app.Console, error)

// cli carries the console shared by every subcommand.
type cli struct {
	opts    rootOptions
	build   consoleFactory
	console *app.Console
}

func newRootCmd(build consoleFactory) *cobra.Command {
	c := &cli{build: build}

	root := &cobra.Command{
		Use:          "volunteers",
		Short:        "Handii volunteer directory CLI",
		Long:         `Browse and manage volunteers in the Handii volunteer registry. Every command prints JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			console, err := c.build(c.opts)
			if err != nil {
				return err
			}
			c.console = console
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.baseURL, "base-url", "", "Directory base URL (overrides DIRECTORY_BASE_URL)")
	flags.DurationVar(&c.opts.timeout, "timeout", 0, "Per-request timeout (overrides DIRECTORY_TIMEOUT_MS)")
	flags.StringVar(&c.opts.hubsFile, "hubs-file", "", "Hub catalog file (overrides HUBS_FILE)")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "Log requests at debug level to stderr")

	root.AddCommand(
		c.listCmd(),
		c.getCmd(),
		c.searchSkillCmd(),
		c.searchLocationCmd(),
		c.availableCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.setAvailabilityCmd(),
		c.healthCmd(),
		c.hubsCmd(),
		c.hubCmd(),
	)
	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
