package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/samcharles93/plykit/pkg/ply"
)

func main() {
	var (
		showComments = flag.Bool("comments", true, "show comment and obj_info lines")
		showProps    = flag.Bool("properties", true, "show per-element property listing")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: ply_inspect [--comments] [--properties] <path.ply>")
		os.Exit(2)
	}

	path := flag.Arg(0)
	hook := func(err error) { fmt.Fprintln(os.Stderr, "error:", err) }
	r, err := ply.OpenMapped(path, hook)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = r.Close() }()
	if err := r.ParseHeader(); err != nil {
		os.Exit(1)
	}

	s := r.Schema()
	var instances, props int64
	for i := range s.Elements {
		instances += s.Elements[i].Count
		props += int64(len(s.Elements[i].Properties))
	}
	fmt.Printf("File: %s\n", path)
	fmt.Printf("PLY %s | elements=%d | properties=%d | instances=%d\n",
		s.Mode, len(s.Elements), props, instances)

	if *showComments {
		for _, c := range s.Comments {
			fmt.Printf("comment  %s\n", c)
		}
		for _, o := range s.ObjInfo {
			fmt.Printf("obj_info %s\n", o)
		}
	}

	for i := range s.Elements {
		e := &s.Elements[i]
		fmt.Printf("\nelement %s %d\n", e.Name, e.Count)
		if !*showProps {
			continue
		}
		for _, p := range e.Properties {
			if p.List {
				fmt.Printf("  %-24s list %s %s\n", p.Name, p.LengthKind, p.Kind)
			} else {
				fmt.Printf("  %-24s %s\n", p.Name, p.Kind)
			}
		}
	}
}
