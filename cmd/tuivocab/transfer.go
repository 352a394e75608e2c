package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuivocab/internal/model"
	"github.com/verte-zerg/tuivocab/internal/setfile"
	"github.com/verte-zerg/tuivocab/internal/stats"
	"github.com/verte-zerg/tuivocab/internal/store"
)

const (
	defaultCurveWindow = 10
	defaultTopTerms    = 10
)

var (
	importName    string
	importFormat  string
	importReplace bool

	exportFormat string

	statsSet         string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a word set from a TSV or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importName, "name", "", "set name (default: name in file, or file name)")
	cmd.Flags().StringVar(&importFormat, "format", "", "file format: tsv or yaml (default: by extension)")
	cmd.Flags().BoolVar(&importReplace, "replace", false, "replace the words of an existing set")
	return cmd
}

func runImportCmd(_ *cobra.Command, args []string) error {
	path := args[0]
	format, err := setfile.ParseFormat(importFormat, path)
	if err != nil {
		return err
	}
	doc, err := setfile.ReadFile(path, format)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(importName)
	if name == "" {
		name = doc.Name
	}

	return withStore(func(ctx context.Context, st *store.Store) error {
		_, err := st.CreateSet(ctx, name, doc.Description, doc.Words)
		if err == nil {
			logErrf("Imported %d words into %s\n", len(doc.Words), name)
			return nil
		}
		if !errors.Is(err, store.ErrSetExists) {
			return fmt.Errorf("failed to import set: %w", err)
		}
		if !importReplace {
			return fmt.Errorf("set %q already exists (use --replace to overwrite its words)", name)
		}
		return replaceSet(ctx, st, name, doc)
	})
}

func replaceSet(ctx context.Context, st *store.Store, name string, doc setfile.Document) error {
	set, err := st.LoadWordSet(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load set: %w", err)
	}
	if err := st.ReplaceWords(ctx, set.ID, doc.Words); err != nil {
		return fmt.Errorf("failed to replace words: %w", err)
	}
	if doc.Description != "" && doc.Description != set.Description {
		if err := st.DescribeSet(ctx, name, doc.Description); err != nil {
			return fmt.Errorf("failed to update description: %w", err)
		}
	}
	logErrf("Replaced %s with %d words\n", name, len(doc.Words))
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <set> [file]",
		Short: "Export a word set to a TSV or YAML file (stdout when no file is given)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "", "file format: tsv or yaml (default: by extension, tsv on stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 2 && args[1] != "-" {
		path = args[1]
	}
	format, err := setfile.ParseFormat(exportFormat, path)
	if err != nil {
		return err
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		set, err := st.LoadWordSet(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load set: %w", err)
		}
		doc := setfile.Document{Name: set.Name, Description: set.Description, Words: set.Pairs}
		if path == "" {
			return setfile.Write(cmd.OutOrStdout(), format, doc)
		}
		if err := setfile.WriteFile(path, format, doc); err != nil {
			return err
		}
		logErrf("Wrote %d words to %s\n", len(set.Pairs), path)
		return nil
	})
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show training stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSet, "set", "", "word set filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultTopTerms, "number of hardest terms to list")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig()
	if err != nil {
		return err
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		report, err := stats.BuildReport(ctx, st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build stats: %w", err)
		}
		return report.Render(cmd.OutOrStdout(), cfg, stats.TerminalWidth(), stats.StdoutIsTerminal())
	})
}

func buildStatsConfig() (model.StatsConfig, error) {
	var since *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	return model.StatsConfig{
		SetName:     strings.TrimSpace(statsSet),
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Top:         statsTop,
	}, nil
}
