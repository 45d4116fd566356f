package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/epuerta/kori/internal/config"
	"github.com/epuerta/kori/internal/diffcache"
	"github.com/epuerta/kori/internal/logging"
	"github.com/epuerta/kori/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is set during build
	Version = "dev"
	// GitCommit is set during build
	GitCommit = "none"
	// BuildDate is set during build
	BuildDate = "unknown"
)

// errDifferent is returned by `kori diff --exit-code` when the inputs differ. main
// exits 1 without printing it.
var errDifferent = errors.New("inputs differ")

// app carries what every subcommand needs once the root pre-run has resolved it.
type app struct {
	cfg    *config.Config
	logger logging.Logger
	cache  *diffcache.Cache
}

// viewModeValue adapts config.ViewMode to a pflag value so that bad modes are rejected
// while flags are parsed.
type viewModeValue struct {
	mode *config.ViewMode
}

var _ pflag.Value = viewModeValue{}

func (v viewModeValue) String() string {
	if v.mode == nil {
		return ""
	}
	return string(*v.mode)
}

func (v viewModeValue) Set(s string) error {
	m, err := config.ParseViewMode(s)
	if err != nil {
		return err
	}
	*v.mode = m
	return nil
}

func (v viewModeValue) Type() string { return "mode" }

// newRootCmd builds the command tree. The returned app is populated by the root
// pre-run before any subcommand runs.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "kori",
		Short: "Compare versions of a note line by line",
		Long: `Kori compares two versions of a text note and shows which lines were
kept, added, removed or modified, side by side or as a unified listing.

Examples:
  kori diff draft.md final.md
  kori diff --view unified --line-numbers old.txt new.txt
  git show HEAD~1:notes.md | kori diff - notes.md
  kori history v1.md v2.md v3.md`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to a file")
	rootCmd.PersistentFlags().String("log-file", "", "Path to the log file (default: <cache dir>/kori/logs/kori-<timestamp>.log)")

	rootCmd.AddCommand(diffCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(completionCmd())
	return rootCmd, a
}

// setup loads the configuration and opens the logger. Flags override config values.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}

	logger, logPath, err := logging.New(cfg.Debug, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("error creating file logger: %w", err)
	}
	logger.Log("--- kori session start --- Version: %s, Commit: %s, Built: %s", Version, GitCommit, BuildDate)
	if logPath != "" {
		logger.Log("Debug logging enabled. Log file: %s", logPath)
	}

	a.cfg = cfg
	a.logger = logger
	a.cache = diffcache.New(diffcache.Options{MaxEntries: cfg.CacheSize, Logger: logger})
	logger.Log("Config loaded: View=%s, Width=%d, LineNumbers=%t, Color=%t, CacheSize=%d",
		cfg.View, cfg.Width, cfg.LineNumbers, cfg.Color, cfg.CacheSize)
	return nil
}

func (a *app) close() error {
	if a.logger == nil {
		return nil
	}
	if a.cache != nil {
		st := a.cache.Stats()
		a.logger.Log("diffcache: %d hits, %d misses, %d evictions", st.Hits, st.Misses, st.Evictions)
	}
	a.logger.Log("--- kori session end ---")
	err := a.logger.Close()
	a.logger = nil
	return err
}

// renderOptions resolves the render settings for cmd: config first, then any flag the
// user set explicitly. Color is turned off when out is not a terminal.
func (a *app) renderOptions(cmd *cobra.Command, out io.Writer) ui.RenderOptions {
	opts := ui.OptionsFromConfig(a.cfg)
	flags := cmd.Flags()

	if f := flags.Lookup("view"); f != nil && f.Changed {
		opts.Mode = config.ViewMode(f.Value.String())
	}
	if flags.Changed("width") {
		opts.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("line-numbers") {
		opts.LineNumbers, _ = flags.GetBool("line-numbers")
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		opts.Color = false
	}
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		opts.Color = false
	}
	return opts
}

// completionCmd creates the completion command for shell completion scripts
func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for kori.
To load completions:

Bash:
  $ source <(kori completion bash)

Zsh:
  $ source <(kori completion zsh)

Fish:
  $ kori completion fish | source
`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish"},
		// Completion output must not depend on config or logging.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			default:
				return cmd.Root().GenFishCompletion(out, true)
			}
		},
	}
}

// main is the entry point of the application
func main() {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd, a := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when RunE fails.
	if closeErr := a.close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error closing logger: %v\n", closeErr)
	}
	if err == nil {
		return
	}
	if !errors.Is(err, errDifferent) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(1)
}
