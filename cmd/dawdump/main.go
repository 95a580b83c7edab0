// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command dawdump summarises the resource archives of the desktop adventure games.
//
//	dawdump [-config file] [-yoda] [-v] [-catalog dir] [-tiles glob] archive...
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/elliotnunn/deskadv/internal/catalog"
	"github.com/elliotnunn/deskadv/internal/config"
	"github.com/elliotnunn/deskadv/resource"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("stopping", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, w io.Writer) error {
	flags := flag.NewFlagSet("dawdump", flag.ContinueOnError)
	cfgPath := flags.String("config", "dawdump.yaml", "YAML config `file`")
	yoda := flags.Bool("yoda", false, "archives are YODESK.DTA rather than DESKTOP.DAW")
	verbose := flags.Bool("v", false, "log every chunk")
	catalogDir := flags.String("catalog", "", "record archives in the catalog at `dir`")
	tiles := flags.String("tiles", "", "list tiles whose names match `glob`")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadDump(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "yoda":
			cfg.Variant = "indy"
			if *yoda {
				cfg.Variant = "yoda"
			}
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		case "catalog":
			cfg.CatalogDir = *catalogDir
		}
	})
	if flags.NArg() > 0 {
		cfg.Archives = flags.Args()
	}
	if len(cfg.Archives) == 0 {
		return fmt.Errorf("no archives named")
	}

	level, err := cfg.Level()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts, err := cfg.Options(logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	stores := make([]*resource.Store, len(cfg.Archives))
	defer func() {
		for _, s := range stores {
			if s != nil {
				s.Close()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range cfg.Archives {
		g.Go(func() error {
			s, err := resource.Open(gctx, name, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			stores[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var cat *catalog.Catalog
	if cfg.CatalogDir != "" {
		cat, err = catalog.Open(cfg.CatalogDir, catalog.Options{Logger: logger})
		if err != nil {
			return err
		}
		defer cat.Close()
	}

	for i, s := range stores {
		if err := summarise(w, cfg.Archives[i], s, *tiles); err != nil {
			return err
		}
		if cat != nil {
			if err := cat.Record(s); err != nil {
				return fmt.Errorf("%s: recording in catalog: %w", cfg.Archives[i], err)
			}
		}
	}
	return nil
}

func summarise(w io.Writer, name string, s *resource.Store, tiles string) error {
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "    id=%s variant=%s version=%#x\n", s.ID(), s.Variant(), s.Version())
	fmt.Fprintf(w, "    zones=%d tiles=%d named=%d sounds=%d puzzles=%d characters=%d\n",
		s.ZoneCount(), s.TileCount(), len(s.TileNames()), s.SoundCount(), len(s.Puzzles()), len(s.Characters()))

	sizes := make(map[[2]uint16]int)
	for i := range s.ZoneCount() {
		z := s.Zone(i)
		sizes[[2]uint16{z.Width, z.Height}]++
	}
	for _, dim := range [][2]uint16{{9, 9}, {18, 18}, {9, 18}, {18, 9}} {
		if n := sizes[dim]; n > 0 {
			fmt.Fprintf(w, "    %dx%d zones=%d\n", dim[0], dim[1], n)
		}
	}

	if tiles == "" {
		return nil
	}
	found, err := s.FindTiles(tiles)
	if err != nil {
		return fmt.Errorf("-tiles %q: %w", tiles, err)
	}
	for _, n := range found {
		fmt.Fprintf(w, "    tile 0x%04x flags=0x%04x/0x%04x %q\n",
			n.ID, s.TileFlags(int(n.ID), 0), s.TileFlags(int(n.ID), 1), n.Name)
	}
	return nil
}
