// Package main provides the CLI entrypoint for tuivocab.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuivocab/internal/config"
	"github.com/verte-zerg/tuivocab/internal/model"
	"github.com/verte-zerg/tuivocab/internal/store"
	"github.com/verte-zerg/tuivocab/internal/training"
	"github.com/verte-zerg/tuivocab/internal/tui"
)

var (
	trainSet       string
	trainInterval  int
	trainBatchSize int
	trainSave      bool

	logFile string
	envFile string

	configReset bool
	configShow  bool
)

// logger is discarded unless --log-file is given; the TUI owns the terminal.
var (
	logger = slog.New(slog.DiscardHandler)
	logOut *os.File
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "tuivocab",
		Short:             "TUI vocabulary trainer",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupEnv,
		RunE:              runTrainCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write structured logs to this file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "load environment overrides from this file")

	rootCmd.Flags().StringVar(&trainSet, "set", "", "start training this set immediately")
	rootCmd.Flags().IntVar(&trainInterval, "interval", model.DefaultIntervalSeconds, "seconds between batches")
	rootCmd.Flags().IntVar(&trainBatchSize, "batch-size", model.DefaultBatchSize, "words per batch (0 = whole set)")
	rootCmd.Flags().BoolVar(&trainSave, "save", false, "save --interval and --batch-size as the new defaults")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSetsCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newWordCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func setupEnv(_ *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := config.LoadEnv(envFile); err != nil {
			return err
		}
	}
	if logFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	closeLog()
	logOut = file
	logger = slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

// closeLog closes the --log-file handle and discards further log records.
func closeLog() {
	if logOut == nil {
		return
	}
	logger = slog.New(slog.DiscardHandler)
	if cerr := logOut.Close(); cerr != nil {
		logErrf("failed to close log file: %v\n", cerr)
	}
	logOut = nil
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	configPath := config.DefaultConfigPath()
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "interval", &trainInterval, fileCfg.Training.Interval)
	applyIntConfig(cmd, "batch-size", &trainBatchSize, fileCfg.Training.BatchSize)

	cfg := model.SchedulerConfig{IntervalSeconds: trainInterval, BatchSize: trainBatchSize}
	if err := training.ValidateConfig(cfg); err != nil {
		return flagError(err)
	}
	if trainSave {
		if err := config.SaveSchedulerConfig(configPath, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		logErrf("Saved settings to %s\n", configPath)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	m := tui.NewModel(tui.Options{
		Catalog:    st,
		Recorder:   st,
		Logger:     logger,
		Config:     cfg,
		InitialSet: strings.TrimSpace(trainSet),
		SaveConfig: func(c model.SchedulerConfig) error {
			return config.SaveSchedulerConfig(configPath, c)
		},
	})
	defer m.Close()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.Flags().BoolVar(&configReset, "reset", false, "restore default training settings")
	cmd.Flags().BoolVar(&configShow, "show", false, "print the effective training settings")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if configReset {
		cfg, err := config.ResetSchedulerConfig(path)
		if err != nil {
			return fmt.Errorf("failed to reset config: %w", err)
		}
		logErrf("Reset %s to interval=%d batch-size=%d\n", path, cfg.IntervalSeconds, cfg.BatchSize)
		return nil
	}
	if configShow {
		cfg, err := config.LoadSchedulerConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "config: %s\ninterval: %d\nbatch-size: %d\n",
			path, cfg.IntervalSeconds, cfg.BatchSize)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	edit := exec.Command(parts[0], append(parts[1:], path)...)
	edit.Stdin = os.Stdin
	edit.Stdout = os.Stdout
	edit.Stderr = os.Stderr
	if err := edit.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// flagErr rewords a config validation error in terms of the CLI flags.
type flagErr struct {
	msg string
	err error
}

func (e *flagErr) Error() string { return e.msg }

func (e *flagErr) Unwrap() error { return e.err }

func flagError(err error) error {
	msg := err.Error()
	msg = strings.Replace(msg, "interval", "--interval", 1)
	msg = strings.Replace(msg, "batch size", "--batch-size", 1)
	return &flagErr{msg: msg, err: err}
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuivocab configuration
# Uncomment a value to enable it. CLI flags override config values.

[training]
# interval = %d          # Seconds between batches (> 0)
# batch-size = %d          # Words per batch, 0 shows the whole set
`,
		model.DefaultIntervalSeconds,
		model.DefaultBatchSize,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
