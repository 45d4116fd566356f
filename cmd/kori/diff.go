package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/epuerta/kori/internal/config"
	"github.com/epuerta/kori/internal/linediff"
	"github.com/epuerta/kori/internal/snapshot"
	"github.com/epuerta/kori/internal/ui"
	"github.com/spf13/cobra"
)

const stdinArg = "-"

// diffOutput is the --json document.
type diffOutput struct {
	Old    string          `json:"old"`
	New    string          `json:"new"`
	Equal  bool            `json:"equal"`
	Stats  linediff.Stats  `json:"stats"`
	Result linediff.Result `json:"result"`
}

func diffCmd(a *app) *cobra.Command {
	var view config.ViewMode

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two versions of a file",
		Long: `Compare two versions of a text file line by line.

Either argument may be "-" to read that version from standard input.
Lines that were edited rather than replaced are shown as modified (~).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDiff(cmd, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.VarP(viewModeValue{mode: &view}, "view", "v", "Layout: side-by-side or unified")
	flags.IntP("width", "w", config.DefaultWidth, "Total output width for side-by-side view")
	flags.Bool("line-numbers", config.DefaultLineNumbers, "Show line numbers")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("json", false, "Print the alignment as JSON")
	flags.Bool("exit-code", false, "Exit with status 1 when the inputs differ")
	flags.BoolP("interactive", "i", false, "Open the result in the full-screen viewer")
	return cmd
}

func (a *app) runDiff(cmd *cobra.Command, oldPath, newPath string) error {
	if oldPath == stdinArg && newPath == stdinArg {
		return errors.New("only one input can be read from stdin")
	}
	oldText, err := readInput(oldPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	newText, err := readInput(newPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	res, err := a.cache.Diff(cmd.Context(), oldText, newText)
	if err != nil {
		return fmt.Errorf("error computing diff: %w", err)
	}
	a.logger.Log("diff %s %s: %s", oldPath, newPath, ui.RenderSummary(res.Stats()))

	flags := cmd.Flags()
	asJSON, _ := flags.GetBool("json")
	interactive, _ := flags.GetBool("interactive")
	exitCode, _ := flags.GetBool("exit-code")
	out := cmd.OutOrStdout()

	switch {
	case interactive:
		store := snapshot.NewStore()
		store.Add(inputLabel(oldPath), oldText)
		store.Add(inputLabel(newPath), newText)
		opts := a.renderOptions(cmd, os.Stdout)
		if err := ui.RunViewer(store, a.cache, opts, a.logger); err != nil {
			return err
		}
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		doc := diffOutput{
			Old:    inputLabel(oldPath),
			New:    inputLabel(newPath),
			Equal:  res.Equal(),
			Stats:  res.Stats(),
			Result: res,
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("error encoding diff: %w", err)
		}
	default:
		opts := a.renderOptions(cmd, out)
		opts.OldLabel = inputLabel(oldPath)
		opts.NewLabel = inputLabel(newPath)
		fmt.Fprint(out, ui.Render(res, opts))
		fmt.Fprintln(out, ui.RenderSummary(res.Stats()))
	}

	if exitCode && !res.Equal() {
		return errDifferent
	}
	return nil
}

// readInput returns the contents of path, or of stdin when path is "-". A single
// trailing newline terminates the last line and is not a line of its own.
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinArg {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("error reading stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("error reading %s: %w", path, err)
		}
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func inputLabel(path string) string {
	if path == stdinArg {
		return "(stdin)"
	}
	return path
}
