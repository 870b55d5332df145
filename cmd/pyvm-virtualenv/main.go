package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pyvm/pyvm-virtualenv/pkg/config"
	"github.com/pyvm/pyvm-virtualenv/pkg/executor"
	"github.com/pyvm/pyvm-virtualenv/pkg/logger"
	"github.com/pyvm/pyvm-virtualenv/pkg/pyvm"
	"github.com/pyvm/pyvm-virtualenv/pkg/venv"
)

var exitStatus int

var rootCmd = &cobra.Command{
	Use:   "pyvm-virtualenv",
	Short: "Create Python virtual environments managed by pyvm",
	Long: `pyvm-virtualenv is a pyvm plugin that creates Python virtual environments
using virtualenv or the stdlib venv module, installs virtualenv on demand,
migrates package lists across in-place upgrades, and runs hook scripts
contributed by other plugins.`,
	// The option parser owns flag splitting: unknown flags are forwarded
	// verbatim to the backend tool, which pflag cannot express.
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Debug {
			logger.SetDebug(true)
		}

		exec := executor.NewLocalExecutor()
		client := pyvm.NewClient(exec)

		// Reserved first argument: shell-completion mode prints the known
		// installed versions instead of running the pipeline.
		if len(args) > 0 && args[0] == "--complete" {
			versions, err := client.InstalledVersions(ctx)
			if err != nil {
				return err
			}
			for _, v := range versions {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		}

		pipeline := venv.NewPipeline(cfg, exec, client)
		exitStatus = pipeline.Run(ctx, args)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pyvm-virtualenv: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitStatus)
}
