// Command gones is a Go NES emulator: 6502 CPU, 2C02 PPU, and a
// partial 2A03 APU behind NROM, UxROM, and MMC1 cartridges.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gones/internal/config"
	"gones/internal/host"
	"gones/internal/nes"
	"gones/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "path to an iNES ROM file")
		configFile = flag.String("config", "", "path to a JSON configuration file")
		debug      = flag.Bool("debug", false, "enable debug logging")
		nogui      = flag.Bool("nogui", false, "run headless, without opening a window")
		frames     = flag.Int("frames", 120, "frames to run in -nogui mode")
		showVer    = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *showVer {
		version.PrintBuildInfo()
		return
	}

	if *debug {
		log.SetFlags(log.Ltime | log.Lmicroseconds)
	} else {
		log.SetFlags(0)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Fatalf("gones: loading config: %v", err)
	}

	system := nes.New()

	if *romFile != "" {
		if err := loadROM(system, *romFile); err != nil {
			log.Fatalf("gones: loading ROM %s: %v", *romFile, err)
		}
		if *debug {
			log.Printf("gones: loaded ROM %s", *romFile)
		}
	} else if *nogui {
		log.Fatal("gones: -nogui requires -rom")
	}

	if *nogui {
		if err := host.RunHeadless(system, *frames); err != nil {
			log.Fatalf("gones: headless run: %v", err)
		}
		fmt.Printf("gones: ran %d frames headless\n", *frames)
		return
	}

	game := host.NewGame(system, cfg)
	if err := game.Run("gones"); err != nil {
		log.Fatalf("gones: %v", err)
	}
}

func loadROM(system *nes.System, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return system.LoadROM(file)
}
