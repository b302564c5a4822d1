package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/docmeta/internal"
	"github.com/starford/docmeta/internal/apperr"
	pkgconfig "github.com/starford/docmeta/pkg/config"
)

// exitError carries a process exit status without terminating the process,
// so commands stay testable.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Status returns the process exit status.
func (e *exitError) Status() int { return e.code }

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// usage prints the help text followed by the known categories.
func usage(cmd *cli.Command, cfg *internal.Config) {
	w := cmd.Root().Writer
	_ = cli.ShowAppHelp(cmd.Root())
	names, err := internal.Categories(internal.WithConfig(cfg))
	if err != nil {
		fmt.Fprintf(w, "\ncategories unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "\nAvailable categories: %s\n", strings.Join(names, ", "))
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	output := func(cmd *cli.Command) internal.Option {
		return internal.WithOutput(cmd.Root().Writer, cmd.Root().ErrWriter)
	}

	return &cli.Command{
		Name:      "docmeta",
		Usage:     "Validate front-matter metadata of a Markdown documentation tree",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		// No command or an unknown command: show usage and categories.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			usage(cmd, cfg)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate every Markdown document under the document root",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "root", Usage: "Document root (overrides docs.root)"},
					&cli.StringFlag{Name: "format", Usage: "Report format: text or json"},
					&cli.BoolFlag{Name: "record", Usage: "Store the run in the history database"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					if root := cmd.String("root"); root != "" {
						cfg.Docs.Root = root
					}
					if format := cmd.String("format"); format != "" {
						cfg.Report.Format = format
						if err := cfg.Report.Validate(); err != nil {
							return fmt.Errorf("--format: %w", err)
						}
					}
					err = internal.Validate(ctx, cmd.Bool("record"), internal.WithConfig(cfg), output(cmd))
					if errors.Is(err, apperr.ErrValidationFailed) {
						return &exitError{code: 1, err: err}
					}
					return err
				},
			},
			{
				Name:      "template",
				Usage:     "Print a front-matter skeleton for a category",
				ArgsUsage: "<category> [filepath]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "write", Usage: "Also write the skeleton to filepath under the document root"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					category := cmd.Args().Get(0)
					target := cmd.Args().Get(1)
					err = internal.Template(category, target, cmd.Bool("write"), internal.WithConfig(cfg), output(cmd))
					if errors.Is(err, apperr.ErrUnknownCategory) {
						if category != "" {
							fmt.Fprintf(cmd.Root().ErrWriter, "unknown category: %q\n", category)
						}
						usage(cmd, cfg)
						return &exitError{code: 1}
					}
					return err
				},
			},
			{
				Name:  "watch",
				Usage: "Validate, then revalidate documents as they change",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "root", Usage: "Document root (overrides docs.root)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					if root := cmd.String("root"); root != "" {
						cfg.Docs.Root = root
					}
					return internal.Watch(ctx, internal.WithConfig(cfg), output(cmd))
				},
			},
			{
				Name:  "serve",
				Usage: "Serve the validation HTTP API with live updates",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					if err := internal.Serve(ctx, internal.WithConfig(cfg), output(cmd)); err != nil {
						return fmt.Errorf("app run error: %w", err)
					}
					return nil
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve validator tools over MCP stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.MCP(internal.WithConfig(cfg), internal.WithOutput(nil, cmd.Root().ErrWriter))
				},
			},
		},
	}
}

// run executes the CLI and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).Run(ctx, args)
	if err == nil {
		return 0
	}

	var status interface{ Status() int }
	if errors.As(err, &status) {
		return status.Status()
	}

	logger := slog.New(slog.NewJSONHandler(stderr, nil))
	logger.Error("application error", slog.String("error", err.Error()))
	return 1
}

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}
