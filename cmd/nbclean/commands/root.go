// Package commands implements the CLI commands for nbclean.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/nbclean/internal/config"
	"github.com/jmylchreest/nbclean/internal/repo"
	"github.com/jmylchreest/nbclean/internal/version"
)

// ErrChangesMade is returned when at least one notebook was modified, so the
// process exits non-zero and hooks can tell that files changed.
var ErrChangesMade = errors.New("notebooks were modified")

func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	rootCmd := &cobra.Command{
		Use:   "nbclean [paths...]",
		Short: "Strip outputs and execution state from Jupyter notebooks",
		Long: `nbclean removes volatile execution artifacts from notebooks so they
diff cleanly and can be committed deterministically.

For every code cell it empties "outputs", resets "execution_count" to null
and drops the non-standard "_execution" metadata key. Notebooks are
rewritten only when something changed.

With no arguments every .ipynb file under the repository root is cleaned.
The exit status is 1 when any notebook was (or, with --dry-run, would
be) modified, which makes nbclean usable as a pre-commit check.

Examples:
  # Clean every notebook in the repository
  nbclean

  # Clean specific notebooks
  nbclean analysis.ipynb notebooks/

  # Check without writing, e.g. in CI
  nbclean --dry-run --report-format json`,
		Version:       version.String(),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, v, args)
		},
	}

	// Global flags
	pflags := rootCmd.PersistentFlags()
	pflags.String("config", "", "config file (default .nbclean.yaml in the current directory, repository root or $HOME)")
	pflags.Bool("debug", false, "enable debug logging")
	pflags.BoolP("quiet", "q", false, "only report notebooks that changed or failed")
	pflags.Bool("log-json", false, "write logs as JSON")

	_ = v.BindPFlag("config", pflags.Lookup("config"))
	_ = v.BindPFlag(config.KeyDebug, pflags.Lookup("debug"))
	_ = v.BindPFlag(config.KeyQuiet, pflags.Lookup("quiet"))
	_ = v.BindPFlag(config.KeyLogJSON, pflags.Lookup("log-json"))

	addCleanFlags(rootCmd, v)
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func initConfig(v *viper.Viper) error {
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(".nbclean")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if wd, err := os.Getwd(); err == nil {
			if root, err := repo.Root(wd); err == nil {
				v.AddConfigPath(root)
			}
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		// A missing config file is fine
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}

	// Environment variables
	v.SetEnvPrefix("NBCLEAN")
	v.AutomaticEnv()

	return nil
}

// Execute runs the root command.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil && !errors.Is(err, ErrChangesMade) {
		logError("%v", err)
	}
	return err
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
