package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/cdir/internal"
	pkgconfig "github.com/starford/cdir/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ExpandPaths()
	return cfg, nil
}

// withApp opens the application for the duration of one command.
func withApp(run func(ctx context.Context, cmd *cli.Command, app *internal.App) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		app, err := internal.New(internal.WithConfig(cfg))
		if err != nil {
			return fmt.Errorf("app init error: %w", err)
		}
		defer app.Close()
		if err := run(ctx, cmd, app); err != nil {
			slog.Error("command failed", slog.String("command", cmd.Name), slog.String("error", err.Error()))
			return err
		}
		return nil
	}
}

// args returns the positional arguments, failing when fewer than lo or
// more than hi are given.
func args(cmd *cli.Command, lo, hi int) ([]string, error) {
	a := cmd.Args().Slice()
	if len(a) < lo || len(a) > hi {
		return nil, fmt.Errorf("%s: expected %s", cmd.Name, cmd.ArgsUsage)
	}
	return append(a, make([]string, hi-len(a))...), nil
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "gui",
			Usage:     "Browse history and shortcuts, print the chosen directory",
			ArgsUsage: "[file]",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 0, 1)
				if err != nil {
					return err
				}
				return app.Navigate(a[0])
			}),
		},
		{
			Name:      "add-path",
			Usage:     "Record a visit to a directory",
			ArgsUsage: "<path>",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 1, 1)
				if err != nil {
					return err
				}
				return app.AddPath(a[0])
			}),
		},
		{
			Name:      "import-paths",
			Usage:     "Import visits from a YAML file",
			ArgsUsage: "<file>",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 1, 1)
				if err != nil {
					return err
				}
				return app.ImportPaths(a[0])
			}),
		},
		{
			Name:      "export-paths",
			Usage:     "Export visits as YAML",
			ArgsUsage: "[file]",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 0, 1)
				if err != nil {
					return err
				}
				return app.ExportPaths(a[0])
			}),
		},
		{
			Name:      "add-shortcut",
			Usage:     "Create or replace a shortcut",
			ArgsUsage: "<name> <path> [description]",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 2, 3)
				if err != nil {
					return err
				}
				return app.AddShortcut(a[0], a[1], a[2])
			}),
		},
		{
			Name:      "delete-shortcut",
			Usage:     "Delete a shortcut",
			ArgsUsage: "<name>",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 1, 1)
				if err != nil {
					return err
				}
				return app.DeleteShortcut(a[0])
			}),
		},
		{
			Name:      "print-shortcut",
			Usage:     "Print the directory a shortcut points to",
			ArgsUsage: "<name>",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 1, 1)
				if err != nil {
					return err
				}
				return app.PrintShortcut(a[0])
			}),
		},
		{
			Name:      "import-shortcuts",
			Usage:     "Import shortcuts from a YAML file",
			ArgsUsage: "<file>",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 1, 1)
				if err != nil {
					return err
				}
				return app.ImportShortcuts(a[0])
			}),
		},
		{
			Name:      "export-shortcuts",
			Usage:     "Export shortcuts as YAML",
			ArgsUsage: "[file]",
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 0, 1)
				if err != nil {
					return err
				}
				return app.ExportShortcuts(a[0])
			}),
		},
		{
			Name:  "lasts",
			Usage: "Print the most recently visited directories",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "limit",
					Usage: "Maximum number of paths (0 = all)",
					Value: 20,
				},
			},
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				return app.Lasts(int(cmd.Int("limit")))
			}),
		},
		{
			Name:      "pretty-print-path",
			Usage:     "Print a directory using shortcut names and ~",
			ArgsUsage: "<path>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "style",
					Usage: "Color the output with the theme",
				},
				&cli.IntFlag{
					Name:  "max-width",
					Usage: "Character budget (0 = ui.max_width)",
				},
			},
			Action: withApp(func(_ context.Context, cmd *cli.Command, app *internal.App) error {
				a, err := args(cmd, 1, 1)
				if err != nil {
					return err
				}
				return app.PrettyPrint(a[0], cmd.Bool("style"), int(cmd.Int("max-width")))
			}),
		},
		{
			Name:  "prune",
			Usage: "Remove history entries whose directory no longer exists",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "Only print what would be removed",
				},
			},
			Action: withApp(func(ctx context.Context, cmd *cli.Command, app *internal.App) error {
				return app.Prune(ctx, cmd.Bool("dry-run"))
			}),
		},
		{
			Name:  "config-file",
			Usage: "Print the configuration file path",
			Action: func(_ context.Context, cmd *cli.Command) error {
				_, err := fmt.Println(cmd.String("config"))
				return err
			},
		},
		{
			Name:  "mcp",
			Usage: "Serve history and shortcuts as MCP tools on stdio",
			Action: withApp(func(_ context.Context, _ *cli.Command, app *internal.App) error {
				return app.ServeMCP()
			}),
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:     "cdir",
		Usage:    "Jump between recently visited directories and named shortcuts",
		Commands: commands(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "$XDG_CONFIG_HOME/cdir/config.yaml",
				Value:       internal.DefaultConfigPath(),
				Sources:     cli.EnvVars("CDIR_CONFIG"),
			},
		},
	}
}

// report prints err for the user. The log file may already be closed here,
// so the message always goes to w.
func report(w io.Writer, err error) {
	fmt.Fprintln(w, "cdir:", err)
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}
