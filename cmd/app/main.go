package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// runMode returns an action that dispatches internal.Run in the given mode.
func runMode(mode string) func(context.Context, *cli.Command) error {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithMode(mode),
			internal.WithTarget(cmd.String("target")),
			internal.WithPreview(cmd.Bool("preview")),
			internal.WithoutSuggest(cmd.Bool("no-suggest")),
		}

		if err := internal.Run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	targetFlag := &cli.StringFlag{
		Name:  "target",
		Usage: "Restrict processing to a subtree of the docs root",
	}
	previewFlag := &cli.BoolFlag{
		Name:  "preview",
		Usage: "Report changes without writing any file",
	}
	noSuggestFlag := &cli.BoolFlag{
		Name:  "no-suggest",
		Usage: "Disable the remote metadata suggester",
	}

	batchFlags := []cli.Flag{configFlag, targetFlag, previewFlag, noSuggestFlag}

	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "SEO toolkit for Markdown documentation: front-matter enhancement, audits, sitemaps and robots.txt",
		Flags:  batchFlags,
		Action: runMode("run"),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Full pass: robots.txt, sitemap index, metadata enhancement and SEO report",
				Flags:  batchFlags,
				Action: runMode("run"),
			},
			{
				Name:   "enhance",
				Usage:  "Merge suggested metadata into document front matter",
				Flags:  batchFlags,
				Action: runMode("enhance"),
			},
			{
				Name:   "analyze",
				Usage:  "Audit documents for SEO issues and write the report",
				Flags:  []cli.Flag{configFlag, targetFlag},
				Action: runMode("analyze"),
			},
			{
				Name:   "sitemap",
				Usage:  "Write the sitemap index XML",
				Flags:  []cli.Flag{configFlag},
				Action: runMode("sitemap"),
			},
			{
				Name:   "robots",
				Usage:  "Write robots.txt",
				Flags:  []cli.Flag{configFlag},
				Action: runMode("robots"),
			},
			{
				Name:   "serve",
				Usage:  "Serve the analysis report over HTTP with live updates",
				Flags:  []cli.Flag{configFlag},
				Action: runMode("serve"),
			},
			{
				Name:   "mcp",
				Usage:  "Expose the tools over the Model Context Protocol on stdio",
				Flags:  []cli.Flag{configFlag, noSuggestFlag},
				Action: runMode("mcp"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
