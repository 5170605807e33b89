package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"github.com/valerio/go-advance/advance"
	"github.com/valerio/go-advance/advance/audio"
	"github.com/valerio/go-advance/advance/backend"
	"github.com/valerio/go-advance/advance/backend/headless"
	"github.com/valerio/go-advance/advance/backend/sdl2"
	"github.com/valerio/go-advance/advance/backend/terminal"
	"github.com/valerio/go-advance/advance/cartridge"
	"github.com/valerio/go-advance/advance/input"
	"github.com/valerio/go-advance/advance/input/action"
	"github.com/valerio/go-advance/advance/input/event"
	"github.com/valerio/go-advance/advance/timing"
	"github.com/valerio/go-advance/advance/video"
	"golang.org/x/term"
)

func main() {
	app := cli.NewApp()
	app.Name = "Advance"
	app.Description = "A Game Boy Advance emulator"
	app.Usage = "advance [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "bios",
			Usage: "Path to a 16 KiB BIOS image (default: built-in BIOS)",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Frontend: terminal, sdl2 or headless (default: terminal on a TTY, headless otherwise)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display, same as --backend headless",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "save-type",
			Usage: "Backup device: auto, eeprom, sram, flash, eeprom+sensor or none",
		},
		cli.IntFlag{
			Name:  "flash-size",
			Usage: "Flash size in bytes: 65536 or 131072",
		},
		cli.BoolFlag{
			Name:  "rtc",
			Usage: "Enable the cartridge real-time clock",
		},
		cli.StringFlag{
			Name:  "wav",
			Usage: "Record audio to a .wav file",
		},
		cli.BoolFlag{
			Name:  "audio",
			Usage: "Play audio (requires a build with -tags oto)",
		},
		cli.StringFlag{
			Name:  "state",
			Usage: "State file for save/load state; loaded at start when it exists",
		},
		cli.StringFlag{
			Name:  "limiter",
			Value: "adaptive",
			Usage: "Frame pacing: adaptive, ticker or none",
		},
		cli.IntFlag{
			Name:  "scale",
			Value: 3,
			Usage: "Window scale for the sdl2 backend",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	kind := backendKind(c)
	if kind == "headless" && c.Int("frames") <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	opts, err := machineOptions(c, kind)
	if err != nil {
		return err
	}
	m, err := advance.LoadFile(romPath, opts...)
	if err != nil {
		return err
	}

	batteryPath := strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ".sav"
	if err := m.LoadBatteryFile(batteryPath); err != nil {
		slog.Error("Failed to load battery file", "error", err)
	}

	emu := advance.NewEmulator(m)
	if statePath := c.String("state"); statePath != "" {
		emu.SetStatePath(statePath)
		if _, err := os.Stat(statePath); err == nil {
			if err := m.LoadStateFile(statePath); err != nil {
				return err
			}
		}
	}

	sink, err := audioSink(c)
	if err != nil {
		return err
	}
	if sink != nil {
		emu.SetSink(sink)
		defer sink.Close()
	}

	be, err := newBackend(c, kind, romPath)
	if err != nil {
		return err
	}
	limiter := timing.NewNoOpLimiter()
	if kind != "headless" {
		limiter = timing.New(c.String("limiter"))
	}

	err = run(emu, be, limiter, backend.Config{
		Title:         "Advance - " + m.Cartridge().Header.Title,
		Scale:         c.Int("scale"),
		DebugProvider: emu.ExtractDebugData,
	})

	if berr := m.SaveBatteryFile(batteryPath); berr != nil {
		slog.Error("Failed to save battery file", "error", berr)
	}
	return err
}

func backendKind(c *cli.Context) string {
	if c.Bool("headless") {
		return "headless"
	}
	if kind := c.String("backend"); kind != "" {
		return kind
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "terminal"
	}
	return "headless"
}

func machineOptions(c *cli.Context, kind string) ([]advance.Option, error) {
	var opts []advance.Option

	if path := c.String("bios"); path != "" {
		image, err := advance.ReadBIOS(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, advance.WithBIOS(image))
	}
	if name := c.String("save-type"); name != "" {
		t, ok := cartridge.ParseSaveType(name)
		if !ok {
			return nil, fmt.Errorf("unknown save type %q", name)
		}
		opts = append(opts, advance.WithSaveType(t))
	}
	if size := c.Int("flash-size"); size != 0 {
		opts = append(opts, advance.WithFlashSize(size))
	}
	if c.Bool("rtc") {
		opts = append(opts, advance.WithRTC(true))
	}
	if kind == "sdl2" {
		opts = append(opts, advance.WithPixelFormat(video.FormatARGB32))
	}
	return opts, nil
}

func audioSink(c *cli.Context) (audio.Sink, error) {
	var sinks []audio.Sink
	if path := c.String("wav"); path != "" {
		s, err := audio.NewWavSink(path)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if c.Bool("audio") {
		s, err := audio.NewOtoSink()
		if err != nil {
			slog.Warn("Audio output disabled", "error", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	}
	return audio.MultiSink(sinks...), nil
}

func newBackend(c *cli.Context, kind, romPath string) (backend.Backend, error) {
	switch kind {
	case "headless":
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, err
		}
		return headless.New(c.Int("frames"), snapshots), nil
	case "terminal":
		return terminal.New(), nil
	case "sdl2":
		return sdl2.New(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", kind)
}

// run drives the frame loop until the backend or the user asks to quit.
func run(emu *advance.Emulator, be backend.Backend, limiter timing.Limiter, cfg backend.Config) error {
	if err := be.Init(cfg); err != nil {
		return err
	}
	defer be.Cleanup()

	quit := false
	mgr := input.NewManager(emu.Keys())
	mgr.On(action.EmulatorQuit, event.Press, func() { quit = true })

	handler, _ := be.(backend.ActionHandler)
	for _, act := range action.All() {
		act := act
		if _, isButton := advance.KeyForAction(act); isButton || act == action.EmulatorQuit {
			continue
		}
		mgr.On(act, event.Press, func() {
			wasPaused := emu.Paused()
			emu.HandleAction(act, true)
			if handler != nil {
				handler.HandleAction(act)
			}
			if wasPaused && !emu.Paused() {
				limiter.Reset()
			}
		})
	}

	for !quit {
		if err := emu.RunUntilFrame(); err != nil {
			return err
		}
		events, err := be.Update(emu.CurrentFrame())
		if err != nil {
			return err
		}
		for _, ev := range events {
			mgr.Trigger(ev.Action, ev.Type)
		}
		limiter.WaitForNextFrame()
	}
	return nil
}
