package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuivocab/internal/model"
	"github.com/verte-zerg/tuivocab/internal/setfile"
	"github.com/verte-zerg/tuivocab/internal/store"
)

var (
	setDescription string
	setFrom        string
	setFromFormat  string
)

// withStore opens the database for the duration of fn.
func withStore(fn func(ctx context.Context, st *store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	return fn(context.Background(), st)
}

func newSetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List word sets",
		Args:  cobra.NoArgs,
		RunE:  runSetsCmd,
	}
}

func runSetsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	sets, err := st.ListWordSets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list word sets: %w", err)
	}
	if len(sets) == 0 {
		logErrln("No word sets yet. Create one with: tuivocab set add <name>")
		return nil
	}
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pairs, err := st.LoadWordPairs(ctx, sets[name].ID)
		if err != nil {
			return fmt.Errorf("failed to load %q: %w", name, err)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d words\t%s\n", name, len(pairs), sets[name].Description); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create, rename, describe, or delete word sets",
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a word set",
		Args:  cobra.ExactArgs(1),
		RunE:  runSetAddCmd,
	}
	add.Flags().StringVar(&setDescription, "description", "", "set description")
	add.Flags().StringVar(&setFrom, "from", "", "seed the set from a TSV or YAML file")
	add.Flags().StringVar(&setFromFormat, "format", "", "format of --from (tsv or yaml, default: by extension)")

	rm := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a word set and its words",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				if err := st.DeleteSet(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to delete set: %w", err)
				}
				logErrf("Deleted %s\n", args[0])
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a word set",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				if err := st.RenameSet(ctx, args[0], args[1]); err != nil {
					return fmt.Errorf("failed to rename set: %w", err)
				}
				return nil
			})
		},
	}

	describe := &cobra.Command{
		Use:   "describe <name> <description>",
		Short: "Change the description of a word set",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				if err := st.DescribeSet(ctx, args[0], args[1]); err != nil {
					return fmt.Errorf("failed to describe set: %w", err)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, rm, rename, describe)
	return cmd
}

func runSetAddCmd(_ *cobra.Command, args []string) error {
	var pairs []model.WordPair
	description := setDescription
	if setFrom != "" {
		format, err := setfile.ParseFormat(setFromFormat, setFrom)
		if err != nil {
			return err
		}
		doc, err := setfile.ReadFile(setFrom, format)
		if err != nil {
			return err
		}
		pairs = doc.Words
		if description == "" {
			description = doc.Description
		}
	}
	return withStore(func(ctx context.Context, st *store.Store) error {
		if _, err := st.CreateSet(ctx, args[0], description, pairs); err != nil {
			return fmt.Errorf("failed to create set: %w", err)
		}
		logErrf("Created %s with %d words\n", args[0], len(pairs))
		return nil
	})
}

func newWordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "words <set>",
		Short: "List the words of a set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				set, err := st.LoadWordSet(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to load set: %w", err)
				}
				return setfile.Write(cmd.OutOrStdout(), setfile.FormatTSV, setfile.Document{Words: set.Pairs})
			})
		},
	}
}

func newWordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "word",
		Short: "Add or remove words in a set",
	}
	add := &cobra.Command{
		Use:   "add <set> <term> <definition>",
		Short: "Add a word, replacing the definition of an existing term",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				set, err := st.LoadWordSet(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to load set: %w", err)
				}
				pair := model.WordPair{Term: args[1], Definition: args[2]}
				if err := st.AddWord(ctx, set.ID, pair); err != nil {
					return fmt.Errorf("failed to add word: %w", err)
				}
				return nil
			})
		},
	}
	rm := &cobra.Command{
		Use:   "rm <set> <term>",
		Short: "Remove a word from a set",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, st *store.Store) error {
				set, err := st.LoadWordSet(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to load set: %w", err)
				}
				if err := st.RemoveWord(ctx, set.ID, args[1]); err != nil {
					return fmt.Errorf("failed to remove word: %w", err)
				}
				return nil
			})
		},
	}
	cmd.AddCommand(add, rm)
	return cmd
}
