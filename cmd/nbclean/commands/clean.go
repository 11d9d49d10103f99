package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/nbclean/internal/config"
	"github.com/jmylchreest/nbclean/internal/discover"
	"github.com/jmylchreest/nbclean/internal/logger"
	"github.com/jmylchreest/nbclean/internal/output"
	"github.com/jmylchreest/nbclean/internal/repo"
	"github.com/jmylchreest/nbclean/internal/report"
	"github.com/jmylchreest/nbclean/internal/runner"
	"github.com/jmylchreest/nbclean/pkg/cleaner"
)

func addCleanFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()

	// Discovery settings
	flags.String("root", "", "directory to search when no paths are given (default: git repository root)")
	flags.String("ext", discover.DefaultExtension, "notebook file extension")
	flags.StringSlice("exclude", nil, "glob of paths to skip during discovery, relative to the root (can be repeated)")

	// Cleaning settings
	flags.StringSlice("metadata-key", []string{cleaner.DefaultMetadataKey}, "cell metadata key to remove (can be repeated)")
	flags.Bool("keep-outputs", false, "do not clear cell outputs")
	flags.Bool("keep-execution-count", false, "do not reset execution counts")

	// Output settings
	flags.Int("indent", 1, "spaces per indentation level in rewritten notebooks")
	flags.Bool("ascii", false, "escape non-ASCII characters in rewritten notebooks")
	flags.BoolP("dry-run", "n", false, "report what would change without writing files")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("report-format", "", "also write a run report: json, jsonl, yaml")
	flags.String("report-file", "", "report destination (default: stdout)")

	// Bind to viper
	_ = v.BindPFlag(config.KeyRoot, flags.Lookup("root"))
	_ = v.BindPFlag(config.KeyExtension, flags.Lookup("ext"))
	_ = v.BindPFlag(config.KeyExclude, flags.Lookup("exclude"))
	_ = v.BindPFlag(config.KeyMetadataKeys, flags.Lookup("metadata-key"))
	_ = v.BindPFlag(config.KeyKeepOutputs, flags.Lookup("keep-outputs"))
	_ = v.BindPFlag(config.KeyKeepExecutionCount, flags.Lookup("keep-execution-count"))
	_ = v.BindPFlag(config.KeyIndent, flags.Lookup("indent"))
	_ = v.BindPFlag(config.KeyEnsureASCII, flags.Lookup("ascii"))
	_ = v.BindPFlag(config.KeyDryRun, flags.Lookup("dry-run"))
	_ = v.BindPFlag(config.KeyNoColor, flags.Lookup("no-color"))
	_ = v.BindPFlag(config.KeyReportFormat, flags.Lookup("report-format"))
	_ = v.BindPFlag(config.KeyReportFile, flags.Lookup("report-file"))
}

func runClean(cmd *cobra.Command, v *viper.Viper, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	// Initialize logger based on flags
	logger.Init(logger.Options{
		Debug:  cfg.Debug,
		Quiet:  cfg.Quiet,
		JSON:   cfg.LogJSON,
		Output: cmd.ErrOrStderr(),
	})
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := cfg.Root
	if root == "" && len(args) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		if root, err = repo.Root(wd); err != nil {
			return err
		}
	}
	c := cleaner.New(&cfg.Cleaner)
	logger.Debug("clean command starting", "root", root, "args", len(args), "rules", c.Name())

	// A report on stdout moves the status lines to stderr
	consoleOut := cmd.OutOrStdout()
	if cfg.ReportFormat != "" && reportToStdout(cfg) {
		consoleOut = cmd.ErrOrStderr()
	}
	console := report.NewConsole(consoleOut, cfg.Quiet)

	r := runner.New(c, runner.Options{
		Root: root,
		Discover: discover.Options{
			Extension: cfg.Extension,
			Exclude:   cfg.Exclude,
		},
		Reporters: []report.Reporter{console},
	})

	summary, runErr := r.Run(ctx, args)
	if runErr == nil {
		console.Summary(summary.Results)
	}

	if cfg.ReportFormat != "" {
		if err := writeReport(cfg, cmd.OutOrStdout(), summary.Results); err != nil {
			logger.Error("failed to write report", "error", err)
			if runErr == nil {
				runErr = err
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	if summary.Changed() {
		return ErrChangesMade
	}
	return nil
}

func reportToStdout(cfg *config.Config) bool {
	return cfg.ReportFile == "" || cfg.ReportFile == "-"
}

func writeReport(cfg *config.Config, stdout io.Writer, results []*cleaner.Result) (err error) {
	format, err := output.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return err
	}

	dst := stdout
	if !reportToStdout(cfg) {
		f, createErr := os.Create(cfg.ReportFile)
		if createErr != nil {
			return fmt.Errorf("creating report file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		dst = f
	}

	w, err := output.NewWriter(dst, format)
	if err != nil {
		return err
	}
	for _, res := range results {
		if err := w.Write(output.FromResult(res)); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	if !reportToStdout(cfg) {
		logger.Info("report written", "file", cfg.ReportFile, "format", format, "records", len(results))
	}
	return nil
}
