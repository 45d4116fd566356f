package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/epuerta/kori/internal/config"
	"github.com/epuerta/kori/internal/snapshot"
	"github.com/epuerta/kori/internal/ui"
	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	var view config.ViewMode

	cmd := &cobra.Command{
		Use:   "history FILE FILE...",
		Short: "Step through successive versions of a note",
		Long: `Load two or more files as successive versions of one note, oldest first,
and page through the diff of each adjacent pair.

Keys: n/p next and previous version, tab switch layout, l line numbers, q quit.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.VarP(viewModeValue{mode: &view}, "view", "v", "Layout: side-by-side or unified")
	flags.IntP("width", "w", config.DefaultWidth, "Total output width when printing")
	flags.Bool("line-numbers", config.DefaultLineNumbers, "Show line numbers")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("print", false, "Print every adjacent diff instead of opening the viewer")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, paths []string) error {
	stdinUsed := false
	store := snapshot.NewStore()
	for _, p := range paths {
		if p == stdinArg {
			if stdinUsed {
				return errors.New("only one input can be read from stdin")
			}
			stdinUsed = true
		}
		text, err := readInput(p, cmd.InOrStdin())
		if err != nil {
			return err
		}
		store.Add(inputLabel(p), text)
	}
	a.logger.Log("history: loaded %d snapshots", store.Len())

	if printAll, _ := cmd.Flags().GetBool("print"); !printAll {
		return ui.RunViewer(store, a.cache, a.renderOptions(cmd, os.Stdout), a.logger)
	}

	out := cmd.OutOrStdout()
	opts := a.renderOptions(cmd, out)
	for i := 0; i < store.Pairs(); i++ {
		older, newer, err := store.Pair(i)
		if err != nil {
			return err
		}
		res, err := a.cache.Diff(cmd.Context(), older.Content, newer.Content)
		if err != nil {
			return fmt.Errorf("error computing diff: %w", err)
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		pairOpts := opts
		pairOpts.OldLabel = older.Label
		pairOpts.NewLabel = newer.Label
		fmt.Fprint(out, ui.Render(res, pairOpts))
		fmt.Fprintln(out, ui.RenderSummary(res.Stats()))
	}
	return nil
}
