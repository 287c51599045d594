package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"ticsynth/emu"
	"ticsynth/emu/log"
	"ticsynth/hw/sound"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		printVersion()
	case inspectMode:
		bank := loadBank(cli.Inspect.BankPath)
		checkf(inspect(os.Stdout, bank, cli.Inspect.JSON), "failed to inspect bank")
	case exportMode:
		checkf(exportBank(cli.Export.Output, sound.DemoBank()), "failed to export bank")
	case renderMode:
		bank := loadBank(cli.Render.BankPath)
		checkf(renderMain(bank, cli.Render, loadConfig(cli.Config)), "failed to render")
	case playMode:
		bank := loadBank(cli.Play.BankPath)
		checkf(playMain(bank, cli.Play, loadConfig(cli.Config)), "failed to play")
	}
}

func loadConfig(path string) emu.Config {
	if path == "" {
		return emu.LoadConfigOrDefault()
	}
	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load configuration")
	return cfg
}

// loadBank reads the bank at path, or returns the demo bank if path is
// empty.
func loadBank(path string) *sound.Bank {
	if path == "" {
		log.ModEmu.InfoZ("no bank file, using the demo bank").End()
		return sound.DemoBank()
	}

	f, err := os.Open(path)
	checkf(err, "failed to open sound bank")
	defer f.Close()

	bank, err := sound.ReadBank(f)
	checkf(err, "failed to read sound bank %s", path)
	return bank
}

func exportBank(path string, bank *sound.Bank) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := bank.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("sound bank written to %s\n", path)
	return nil
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Println("ticsynth", version)
}
