package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plykit/internal/logger"
	"github.com/samcharles93/plykit/pkg/ply"
)

func convertCmd() *cli.Command {
	var format string

	return &cli.Command{
		Name:      "convert",
		Usage:     "Re-encode a PLY file in a different storage mode",
		ArgsUsage: "<in.ply> <out.ply>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output storage mode (ascii, little-endian, big-endian, default)",
				Value:       "default",
				Destination: &format,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return cli.Exit("usage: plykit convert [--format MODE] <in.ply> <out.ply>", 2)
			}
			applyConvertConfig(c, LoadConfig(), &format)

			mode, err := ply.ParseStorageMode(format)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 2)
			}

			log := logger.FromContext(ctx)
			hook := func(err error) { log.Error("ply failure", "err", err) }

			src, err := ply.OpenMapped(c.Args().Get(0), hook)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %s: %v", c.Args().Get(0), err), 1)
			}
			defer func() { _ = src.Close() }()
			if err := src.ParseHeader(); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			dst, err := ply.Create(c.Args().Get(1), mode, hook)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: create %s: %v", c.Args().Get(1), err), 1)
			}
			if err := ply.Transcode(src, dst); err != nil {
				_ = dst.Close()
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := dst.Close(); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			fmt.Printf("wrote %s (%s, %s)\n", c.Args().Get(1), mode, formatBytes(uint64(dst.WrittenSize())))
			return nil
		},
	}
}
