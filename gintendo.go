package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/nesgopher/gintendo/console"
	"github.com/nesgopher/gintendo/mappers"
	"github.com/nesgopher/gintendo/nesrom"
	"github.com/hajimehoshi/ebiten/v2"
)

var romFile = flag.String("nes_rom", "", "Path to NES ROM to run.")
var debug = flag.Bool("debug", false, "Launch into the interactive debug REPL instead of rendering the console.")

func main() {
	flag.Parse()

	path := *romFile
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	rom, err := nesrom.New(path)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}

	m, err := mappers.Get(rom)
	if err != nil {
		log.Fatalf("Couldn't Get() mapper: %v", err)
	}

	gintendo := console.New(m)

	ctx, cancel := context.WithCancel(context.Background())

	if *debug {
		gintendo.BIOS(ctx)
		cancel()
		os.Exit(0)
	}

	go func(ctx context.Context) {
		gintendo.Run(ctx)
	}(ctx)

	if err := ebiten.RunGame(gintendo); err != nil {
		log.Fatal(err)
	}

	cancel()
	os.Exit(0)
}
