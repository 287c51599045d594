package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"ticsynth/emu/log"
)

type mode byte

const (
	playMode    mode = iota // Play through the audio output
	renderMode              // Render into a WAV file
	inspectMode             // Show bank content
	exportMode              // Write the demo bank
	versionMode             // Show ticsynth version
)

type (
	CLI struct {
		Play    Play    `cmd:"" help:"Play a track or a sample through the audio output. (default command)" default:"withargs"`
		Render  Render  `cmd:"" help:"Render a track or a sample into a WAV file."`
		Inspect Inspect `cmd:"" help:"Show the content of a sound bank."`
		Export  Export  `cmd:"" help:"Write the demo sound bank into a file."`
		Version Version `cmd:"" help:"Show ticsynth version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `help:"${config_help}" type:"path" placeholder:"FILE"`

		mode mode
	}

	// Source selects what to play from a bank.
	Source struct {
		BankPath string `arg:"" optional:"" name:"/path/to/bank" help:"${bank_help}" type:"existingfile"`

		Track     int  `short:"t" help:"Track to play, -1 for none." default:"0"`
		Frame     int  `short:"f" help:"Frame to start from." default:"0"`
		Row       int  `short:"r" help:"Row to start from, -1 for the frame start." default:"-1"`
		Loop      bool `short:"l" help:"Loop the track."`
		Sustain   bool `help:"Keep notes playing across frames."`
		Tempo     int  `help:"Tempo override, -1 for the track tempo." default:"-1"`
		Speed     int  `help:"Speed override, -1 for the track speed." default:"-1"`
		PlayFrame bool `name:"play-frame" help:"Only play the start frame."`

		Sfx      int `short:"s" help:"Sample to play on channel 0, -1 for none." default:"-1"`
		Note     int `help:"Sample note, -1 for the sample default." default:"-1"`
		Octave   int `help:"Sample octave, -1 for the sample default." default:"-1"`
		Duration int `help:"Sample duration in ticks, -1 for infinite." default:"-1"`
	}

	Play struct {
		Source `embed:""`

		Monitor string `name:"monitor" help:"Serve the websocket monitor on this address." placeholder:"HOST:PORT"`
		Backend string `name:"backend" help:"Audio backend (oto, sdl or null), overrides the configuration."`
		Forever bool   `help:"Keep running once music and samples are over."`
	}

	Render struct {
		Source `embed:""`

		Output   string `short:"o" help:"WAV file to write." type:"path" default:"out.wav"`
		Plot     string `help:"Also plot the waveform into a PNG file." type:"path" placeholder:"FILE"`
		MaxTicks int    `name:"max-ticks" help:"Maximum number of ticks to render." default:"3600"`
	}

	Inspect struct {
		BankPath string `arg:"" optional:"" name:"/path/to/bank" help:"${bank_help}" type:"existingfile"`
		JSON     bool   `name:"json" help:"Output JSON."`
	}

	Export struct {
		Output string `arg:"" name:"/path/to/bank" help:"File to write." type:"path"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"bank_help":   "Sound bank file. The demo bank is used if omitted.",
	"config_help": "Configuration file, defaults to the one in the user config directory.",
	"log_help":    "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("ticsynth"),
		kong.Description("Fantasy console sound engine: sequencer, sfx player and band-limited synthesizer."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")

	switch strings.Fields(ctx.Command())[0] {
	case "render":
		cfg.mode = renderMode
	case "inspect":
		cfg.mode = inspectMode
	case "export":
		cfg.mode = exportMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = playMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}

	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
