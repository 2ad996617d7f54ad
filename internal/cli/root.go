// Package cli provides the command-line interface for powerdump.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ccollicutt/powerdump/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(viper.New())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// NewRootCommand creates the root cobra command. Root-level flags are bound
// into v, which also reads POWERDUMP_CONFIG, POWERDUMP_VERBOSE and
// POWERDUMP_DEBUG from the environment.
func NewRootCommand(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "powerdump",
		Short: "Report per-app power usage from a diagnostic dump",
		Long: `powerdump is a batch analyzer for device power-usage diagnostic dumps.

It reports:
  - Per-app consumption, overall and while the screen was off
  - Collector diagnostic windows, newest first
  - Collector totals since the last charge
  - Foreground current with a projected hourly drain

Markers and patterns are configurable; run 'powerdump config' to see the
defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(commands.KeyConfig, "c", "", "Configuration file (defaults built in)")
	flags.BoolP(commands.KeyVerbose, "v", false, "Show progress and run details")
	flags.Bool(commands.KeyDebug, false, "Show diagnostic messages")

	cobra.CheckErr(bindFlags(v, flags))

	g := commands.NewGlobals(v)

	rootCmd.AddCommand(commands.NewAnalyzeCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand(g))
	rootCmd.AddCommand(commands.NewDiagnoseCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

// bindFlags binds every flag in flags into v and enables POWERDUMP_
// environment overrides.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(commands.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}
