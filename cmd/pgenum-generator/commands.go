package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"pgenum-generator/internal/analyze"
	"pgenum-generator/internal/pipeline"
	"pgenum-generator/internal/watch"
	"pgenum-generator/pgenum"
)

func genCommand() *cli.Command {
	return &cli.Command{
		Name:      "gen",
		Usage:     "Generate registration files",
		ArgsUsage: "[packages]",
		Flags:     outputFlags(),
		Action: func(c *cli.Context) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}

			res, err := pipeline.Run(c.Context, opts)
			dump(c, res)

			return err
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Fail when generated files are missing or out of date",
		ArgsUsage: "[packages]",
		Flags:     outputFlags(),
		Action: func(c *cli.Context) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}

			stale, err := pipeline.Check(c.Context, opts)
			if err != nil {
				return err
			}

			for _, p := range stale {
				fmt.Fprintln(c.App.Writer, p)
			}

			if len(stale) > 0 {
				return fmt.Errorf("%d generated file(s) out of date", len(stale))
			}

			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List marked enums",
		ArgsUsage: "[packages]",
		Flags:     outputFlags(),
		Action: func(c *cli.Context) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}

			res, err := pipeline.Render(c.Context, opts)
			if res == nil {
				return err
			}

			dump(c, res)
			printEnums(c, res.Catalog.Enums())

			return err
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Generate, then regenerate whenever sources change",
		ArgsUsage: "[packages]",
		Flags: append(outputFlags(), &cli.DurationFlag{
			Name:  "debounce",
			Usage: "quiet period before regenerating",
			Value: watch.DefaultDebounce,
		}),
		Action: func(c *cli.Context) error {
			opts, err := loadOptions(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := pipeline.Run(ctx, opts)
			if res == nil || res.Catalog == nil {
				return err
			}

			if err != nil && !errors.Is(err, pipeline.ErrInvalidEnums) {
				return err
			}

			w := watch.New(watch.Config{
				Dirs:              packageDirs(res.Catalog),
				Debounce:          c.Duration("debounce"),
				GeneratedFilename: opts.Output.Filename,
				Logger:            opts.Logger,
			}, func(ctx context.Context) error {
				res, err := pipeline.Run(ctx, opts)
				dump(c, res)

				return err
			})

			return w.Run(ctx)
		},
	}
}

func packageDirs(catalog *analyze.Catalog) []string {
	seen := make(map[string]bool)

	var dirs []string

	for _, pkg := range catalog.Packages {
		if pkg.Dir == "" || seen[pkg.Dir] {
			continue
		}

		seen[pkg.Dir] = true
		dirs = append(dirs, pkg.Dir)
	}

	return dirs
}

var listHeader = []string{"Package", "Type", "PostgreSQL name", "Members", "Position"}

// printEnums renders a table on a terminal and tab-separated rows otherwise.
func printEnums(c *cli.Context, enums []*analyze.EnumInfo) {
	rows := make([][]string, 0, len(enums))
	for _, e := range enums {
		rows = append(rows, []string{
			e.ID.PkgPath,
			e.ID.Name,
			e.PGName(pgenum.DefaultNameTranslator),
			strconv.Itoa(len(e.Members)),
			e.Position.String(),
		})
	}

	if !isTerminal(c.App.Writer) {
		for _, row := range rows {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4])
		}

		return
	}

	if len(rows) == 0 {
		fmt.Fprintln(c.App.Writer, "No marked enums found.")
		return
	}

	table := tablewriter.NewWriter(c.App.Writer)
	table.SetHeader(listHeader)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.AppendBulk(rows)
	table.Render()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
