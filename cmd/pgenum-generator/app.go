package main

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"pgenum-generator/internal/config"
	"pgenum-generator/internal/pipeline"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "pgenum-generator",
		Usage: "Generate PostgreSQL enum registrations for Go enums marked with //pgenum:enum",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the config file (default: " + config.DefaultFile + " when present)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "dump the registrations of every pass",
			},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelInfo
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})))

			return nil
		},
		Commands: []*cli.Command{
			genCommand(),
			checkCommand(),
			listCommand(),
			watchCommand(),
		},
	}
}

// outputFlags are shared by every command.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "write a single consolidated file into this directory",
		},
		&cli.StringFlag{
			Name:  "package",
			Usage: "package name of the consolidated file",
		},
		&cli.StringFlag{
			Name:  "filename",
			Usage: "name of the generated file",
		},
		&cli.StringFlag{
			Name:  "runtime",
			Usage: "import path of the runtime library",
		},
		&cli.StringSliceFlag{
			Name:  "tags",
			Usage: "build tags used while loading packages",
		},
	}
}

// loadOptions merges the config file, command flags and arguments.
func loadOptions(c *cli.Context) (pipeline.Options, error) {
	var (
		cfg *config.Config
		err error
	)

	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Discover(".")
	}

	if err != nil {
		return pipeline.Options{}, err
	}

	if c.IsSet("out") {
		cfg.Output.Dir = c.String("out")
	}

	if c.IsSet("package") {
		cfg.Output.Package = c.String("package")
	}

	if c.IsSet("filename") {
		cfg.Output.Filename = c.String("filename")
	}

	if c.IsSet("runtime") {
		cfg.Runtime = c.String("runtime")
	}

	if c.IsSet("tags") {
		cfg.Tags = slices.Clone(c.StringSlice("tags"))
	}

	if c.Args().Present() {
		cfg.Patterns = c.Args().Slice()
	}

	if err := cfg.Validate(); err != nil {
		return pipeline.Options{}, fmt.Errorf("invalid configuration: %w", err)
	}

	opts := pipeline.OptionsFromConfig(cfg)
	opts.Logger = slog.Default()

	return opts, nil
}

// dump prints the registrations of a pass when --debug is set.
func dump(c *cli.Context, res *pipeline.Result) {
	if !c.Bool("debug") || res == nil {
		return
	}

	cs := spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	cs.Fdump(c.App.ErrWriter, res.Registrations)
}
