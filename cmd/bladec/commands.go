package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	blade "github.com/dangdungcntt/go-blade-compiler"
	"github.com/dangdungcntt/go-blade-compiler/httpapi"
)

func newCompileCmd(opts *options) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "compile <file|->",
		Short: "Compile one template and print the PHP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			if write {
				if args[0] == "-" {
					return errors.New("--write needs a file")
				}
				if err := a.compiler.Compile(args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), a.compiler.CompiledPath(args[0]))
				return err
			}
			source, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), a.compiler.CompileString(source))
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write to the cache directory instead of stdout")
	return cmd
}

func newBuildCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Compile every expired view of the views directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			e := a.engine()
			compiled, err := e.Load()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d views, %d compiled\n", len(e.Views()), compiled)
			return err
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build the views, then recompile them as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			e := a.engine()
			if _, err := e.Load(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			out := cmd.OutOrStdout()
			return e.Watch(ctx, func(ev blade.WatchEvent) {
				switch {
				case ev.Err != nil:
					fmt.Fprintf(out, "error  %s: %v\n", ev.View.Name, ev.Err)
				case ev.Removed:
					fmt.Fprintf(out, "remove %s\n", ev.View.Name)
				default:
					fmt.Fprintf(out, "built  %s\n", ev.View.Name)
				}
			})
		},
	}
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiler over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			e := a.engine()
			if _, err := e.Load(); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewRouter(e, a.compiler, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			a.logger.Info("listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides the config file")
	return cmd
}

func newLintCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file|->...",
		Short: "Report directives that compile to plain text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			found := 0
			for _, arg := range args {
				source, err := readInput(cmd, arg)
				if err != nil {
					return err
				}
				for _, d := range a.compiler.Lint(source) {
					found++
					fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", arg, d)
				}
			}
			if found > 0 {
				return fmt.Errorf("%d problems found", found)
			}
			return nil
		},
	}
}

func newPathCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "path <file>",
		Short: "Print the cache path of a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.compiler.CompiledPath(args[0]))
			return err
		},
	}
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		return string(raw), err
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("error opening file %s: %w", name, err)
	}
	return string(raw), nil
}
