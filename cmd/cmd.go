package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/git-age/internal/buildinfo"
	"github.com/thiagokokada/git-age/internal/config"
	"github.com/thiagokokada/git-age/internal/git"
	"github.com/thiagokokada/git-age/internal/report"
	"github.com/thiagokokada/git-age/internal/scan"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "git-age [path]",
		Short: "List tracked files from least to most recently committed",
		Long: `git-age prints every file tracked by the git repository containing path
(default: the current directory), oldest last commit first, each followed by
how long ago it was last committed.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       buildinfo.VersionWithTags(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), cfg.Verbose)
			repoPath := "."
			if len(args) > 0 {
				repoPath = args[0]
			}
			return listFiles(cmd.Context(), cmd.OutOrStdout(), repoPath, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "config file (default: .git-age.yaml in the current directory or $HOME)")
	flags.IntP(config.KeyJobs, "j", 0, "number of concurrent commit time lookups (0: one per CPU)")
	flags.String(config.KeyBackend, string(git.KindCLI), "how to read the repository: cli, batch, or native")
	flags.String(config.KeyColor, string(config.ColorAuto), "colorize ages: auto, always, or never")
	flags.BoolP(config.KeyVerbose, "v", false, "enable verbose logging")
	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func listFiles(ctx context.Context, out io.Writer, repoPath string, cfg *config.Config) error {
	kind, err := cfg.Kind()
	if err != nil {
		return err
	}
	mode, err := cfg.ColorMode()
	if err != nil {
		return err
	}
	if kind != git.KindNative {
		if v, err := git.GitVersion(); err == nil {
			slog.Debug("using git executable", slog.String("version", v), slog.String("min", git.MinGitVersion()))
		}
	}
	backend, err := git.Open(repoPath, kind)
	if err != nil {
		return err
	}
	slog.Debug("repository opened", slog.String("path", backend.RepoPath()), slog.String("backend", string(kind)))

	scanner := scan.Scanner{Jobs: cfg.Workers(), Batch: kind.Batched()}
	infos, err := scanner.Scan(ctx, backend)
	if err != nil {
		return err
	}
	return report.NewWriter(out, useColor(mode, out)).Write(infos)
}

func useColor(mode config.ColorMode, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	// color.NoColor reflects whether the process stdout is a terminal.
	return out == os.Stdout && !color.NoColor
}
