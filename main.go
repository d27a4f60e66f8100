// Command ch8 executes CHIP-8 ROMs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nf/ch8/vm"
)

func main() {
	log.SetPrefix("ch8: ")
	log.SetFlags(0)

	var (
		termFlag  = flag.Bool("term", false, "run in the terminal instead of a window")
		devFlag   = flag.Bool("dev", false, "enable developer mode (reload the ROM when it changes)")
		debugFlag = flag.Bool("debug", false, "show machine state in the terminal")
		soundFlag = flag.Bool("sound", false, "play a tone while the sound timer runs")
		scaleFlag = flag.Int("scale", 10, "window `pixels` per CHIP-8 pixel")
		clockFlag = flag.Int("clock", 700, "instructions per second (0 for unlimited)")

		screenshotFlag = flag.String("screenshot", "", "write the final frame to `file` as a PNG")
		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-term | -debug] [-dev] [-sound] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	if *termFlag && *debugFlag {
		log.Fatal("-term and -debug both need the terminal")
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	code, err := run(config{
		rom:        flag.Arg(0),
		term:       *termFlag,
		dev:        *devFlag,
		debug:      *debugFlag,
		sound:      *soundFlag,
		scale:      *scaleFlag,
		clock:      *clockFlag,
		screenshot: *screenshotFlag,
	})

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

type config struct {
	rom                     string
	term, dev, debug, sound bool
	scale, clock            int
	screenshot              string
}

func run(c config) (int, error) {
	var (
		ui    frontEnd
		views []swapper
		opts  = []vm.Option{vm.WithClock(c.clock)}
	)
	if c.term {
		ui = newTerm(!c.sound)
	} else {
		ui = newGUI(c.scale)
	}
	if c.sound {
		b, err := newBeeper()
		if err != nil {
			return 0, fmt.Errorf("sound: %v", err)
		}
		defer b.Close()
		views = append(views, b)
	}
	var d *debugger
	if c.debug {
		d = newDebugger()
		opts = append(opts, vm.WithStateFunc(d.StateFunc))
		views = append(views, d)
	}

	r := NewRunner(c.dev, opts, views...)
	v, err := r.New(c.rom)
	if err != nil {
		return 0, err
	}

	if c.dev {
		stop := make(chan bool)
		defer close(stop)
		if err := watchROM(r, c.rom, stop); err != nil {
			return 0, fmt.Errorf("dev: %v", err)
		}
		if d != nil {
			// The VM being replaced may be waiting on the debugger's
			// update queue, so reload off the debugger's goroutine.
			d.reset = func() { go reloadROM(r, c.rom) }
		}
	}

	if d != nil {
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			if err := d.Run(); err != nil {
				log.SetOutput(os.Stderr)
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("ch8: ")
			r.Quit()
		}()
	}

	v = r.Run(v, ui)
	if d != nil {
		d.app.Stop()
	}

	code := 0
	if err := v.Err(); err != nil {
		log.Printf("halted: %v", err)
		code = 1
	}
	if c.screenshot != "" {
		frame := v.Frame()
		if err := writeScreenshot(c.screenshot, &frame, c.scale); err != nil {
			return code, err
		}
	}
	if err := v.Destroy(); err != nil {
		return code, err
	}
	return code, nil
}
