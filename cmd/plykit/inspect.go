package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plykit/internal/meshinfo"
)

func inspectCmd() *cli.Command {
	var (
		asJSON       bool
		showComments bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header of a PLY file",
		ArgsUsage: "<file.ply>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "emit the summary as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "comments", Usage: "include comment and obj_info lines", Value: true, Destination: &showComments},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			if c.Args().Len() != 1 {
				return cli.Exit("usage: plykit inspect <file.ply>", 2)
			}
			path := c.Args().First()
			info, err := meshinfo.Load(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			printInfo(info, showComments)
			return nil
		},
	}
}

func printInfo(info meshinfo.Info, showComments bool) {
	fmt.Printf("File: %s (%s)\n", info.Path, formatBytes(uint64(info.Size)))
	fmt.Printf("Format: %s\n", info.Format)
	if showComments {
		for _, c := range info.Comments {
			fmt.Printf("comment  %s\n", c)
		}
		for _, o := range info.ObjInfo {
			fmt.Printf("obj_info %s\n", o)
		}
	}
	for _, e := range info.Elements {
		fmt.Printf("\nelement %s (%d instances)\n", e.Name, e.Count)
		for _, p := range e.Properties {
			if p.List {
				fmt.Printf("  %-20s list %s of %s\n", p.Name, p.LengthType, p.Type)
			} else {
				fmt.Printf("  %-20s %s\n", p.Name, p.Type)
			}
		}
	}
}

func formatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}
