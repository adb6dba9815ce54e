package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clintrovert/cutrelease/internal/config"
	"github.com/clintrovert/cutrelease/internal/github"
	"github.com/clintrovert/cutrelease/internal/release"
	"github.com/clintrovert/cutrelease/internal/version"
)

type options struct {
	configPath string
	dir        string
	dryRun     bool
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		red := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cutrelease",
		Short: "Cut the next release branch and keep its pull request notes current",
		Long: `cutrelease reads the conventional commits since the last release, decides the
next semver version, pushes a v<version> branch with the bumped package manifest
and opens (or refreshes) a draft pull request carrying the generated changelog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to the changelog config file")
	cmd.Flags().StringVarP(&opts.dir, "dir", "C", ".", "repository directory")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the release notes without pushing or calling the API")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.LoadOptions{Dir: opts.dir, Path: opts.configPath})
	if err != nil {
		return err
	}

	repo, err := github.OpenRepository(opts.dir, cfg.Remote, cfg.GitHubToken, logger)
	if err != nil {
		return err
	}
	if err := release.ResolveRepository(cfg, repo); err != nil {
		return err
	}

	client := github.NewClient(cfg.GitHubToken, logger)
	if apiURL := os.Getenv("GITHUB_API_URL"); apiURL != "" {
		if err := client.SetBaseURL(apiURL); err != nil {
			return err
		}
	}

	var writer version.Writer
	if cfg.Manifest.Command != "" {
		writer = version.NewNPMWriter(cfg.Manifest.Command, filepath.Dir(cfg.Manifest.Path), logger)
	} else {
		writer = version.NewFileWriter(cfg.Manifest.Path, logger)
	}

	orchestrator := release.NewOrchestrator(
		cfg,
		repo,
		client,
		version.Manifest{Path: cfg.Manifest.Path},
		writer,
		logger,
	)
	orchestrator.SetDryRun(opts.dryRun)

	result, err := orchestrator.Run(ctx)
	if err != nil {
		return err
	}

	if opts.dryRun {
		fmt.Printf("%s (%s)\n\n%s\n", result.Branch, result.Bump.OrDefault(), result.Notes)
	}
	return nil
}

// newLogger writes JSON logs to stderr; only warnings and errors unless verbose
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
