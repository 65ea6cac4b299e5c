package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plykit/internal/meshinfo"
)

func statsCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "stats",
		Usage:     "Print per-property value statistics of a PLY file",
		ArgsUsage: "<file.ply>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "emit the report as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			if c.Args().Len() != 1 {
				return cli.Exit("usage: plykit stats <file.ply>", 2)
			}
			stats, err := meshinfo.CollectStats(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			printStats(stats)
			return nil
		},
	}
}

func printStats(stats meshinfo.Stats) {
	fmt.Printf("File: %s\n", stats.Path)
	fmt.Printf("Format: %s\n", stats.Format)
	for _, e := range stats.Elements {
		section(fmt.Sprintf("%s (%d instances)", e.Name, e.Instances))
		for _, p := range e.Properties {
			if p.Values == 0 {
				fmt.Printf("%-20s (no values)\n", p.Name)
				continue
			}
			line := fmt.Sprintf("%-20s n=%-8d min=%-12g max=%-12g mean=%g", p.Name, p.Values, p.Min, p.Max, p.Mean)
			if p.MaxLength > 0 {
				line += fmt.Sprintf(" lengths=[%d,%d]", p.MinLength, p.MaxLength)
			}
			fmt.Println(line)
		}
	}
}
