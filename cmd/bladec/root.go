package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	blade "github.com/dangdungcntt/go-blade-compiler"
	"github.com/dangdungcntt/go-blade-compiler/internal/config"
)

type options struct {
	configFile string
	views      string
	cache      string
	debug      bool
}

// app is what every subcommand works with once flags and config are resolved.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	compiler *blade.Compiler
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "bladec [command]",
		Short:         "Compile Blade templates to PHP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to config file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&opts.views, "views", "", "Views directory, overrides the config file")
	rootCmd.PersistentFlags().StringVar(&opts.cache, "cache", "", "Compiled views directory, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newCompileCmd(opts),
		newBuildCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newLintCmd(opts),
		newPathCmd(opts),
	)
	return rootCmd
}

func (o *options) app() (*app, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.views != "" {
		cfg.Views = o.views
	}
	if o.cache != "" {
		cfg.Cache = o.cache
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	logger := newLogger(cfg.LogLevel)

	compiler, err := blade.New(blade.NewLocalFilesystem(), cfg.Cache,
		append(cfg.CompilerOptions(), blade.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(compiler); err != nil {
		return nil, fmt.Errorf("apply config: %w", err)
	}
	return &app{cfg: cfg, logger: logger, compiler: compiler}, nil
}

func (a *app) engine() *blade.Engine {
	return blade.NewEngine(a.cfg.Views, a.compiler, blade.WithEngineLogger(a.logger))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
