// Command picturephone places a two-party ASCII video call between two
// terminals over a raw TCP connection. One side listens, the other
// connects; once linked, each side streams its camera as luminance
// frames sized to the peer's terminal.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/render"
	"github.com/danielfalbo/picturephone/session"
	"github.com/danielfalbo/picturephone/terminal"
)

// Capture resolution requested from the source; plenty for any
// terminal-sized output.
const (
	captureW = 320
	captureH = 240
)

var (
	listenFlag       = flag.String("listen", "", "Listen for a peer on this address (e.g. :7777)")
	connectFlag      = flag.String("connect", "", "Connect to a listening peer (e.g. host:7777)")
	mirrorFlag       = flag.Bool("mirror", false, "Local-only mode: show your own capture, no network")
	sourceFlag       = flag.String("source", "camera", "Video source: camera, gradient, noise, bouncer, or an image path")
	densityFlag      = flag.String("density", render.DefaultDensity, "Density ramp, darkest to lightest")
	layoutFlag       = flag.String("layout", "pip", "Initial layout: pip or split")
	mirrorRemoteFlag = flag.Bool("mirror-remote", true, "Mirror the peer's picture too")
	fpsFlag          = flag.Int("fps", 30, "Outbound frames per second (1-60)")
	debugFlag        = flag.Bool("debug", false, "Write a debug log to "+logDir+"/"+logFileName)
)

func main() {
	// Panic recovery: restore the terminal even on a crash, then make
	// the failure visible after the reset
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\npicturephone crashed: %v\r\n", r)
			fmt.Fprintf(os.Stderr, "stack trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "picturephone: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}

	os.Exit(run(cfg))
}

// runConfig is everything main resolved from flags before touching the
// terminal or the network.
type runConfig struct {
	role    session.Role
	addr    string
	mirror  bool
	source  string
	view    render.View
	interval time.Duration
}

func buildConfig() (runConfig, error) {
	var cfg runConfig

	modes := 0
	if *listenFlag != "" {
		modes++
		cfg.role = session.Responder
		cfg.addr = *listenFlag
	}
	if *connectFlag != "" {
		modes++
		cfg.role = session.Initiator
		cfg.addr = *connectFlag
	}
	if *mirrorFlag {
		modes++
		cfg.mirror = true
	}
	if modes != 1 {
		return cfg, fmt.Errorf("need exactly one of -listen, -connect, -mirror")
	}

	table, err := render.NewDensityTable(*densityFlag)
	if err != nil {
		return cfg, err
	}

	var layout render.Layout
	switch *layoutFlag {
	case "pip":
		layout = render.PictureInPicture
	case "split":
		layout = render.SplitScreen
	default:
		return cfg, fmt.Errorf("unknown layout %q", *layoutFlag)
	}

	if *fpsFlag < 1 || *fpsFlag > 60 {
		return cfg, fmt.Errorf("fps %d out of range 1-60", *fpsFlag)
	}

	cfg.source = *sourceFlag
	cfg.view = render.View{
		Table:        table,
		Layout:       layout,
		MirrorLocal:  true,
		MirrorRemote: *mirrorRemoteFlag,
	}
	cfg.interval = time.Second / time.Duration(*fpsFlag)
	return cfg, nil
}

func run(cfg runConfig) int {
	src, err := capture.Open(cfg.source, captureW, captureH)
	if err != nil {
		fmt.Fprintf(os.Stderr, "picturephone: %v\n", err)
		return 1
	}
	defer src.Stop()

	sess := session.Config{
		Role:         cfg.role,
		Addr:         cfg.addr,
		Source:       src,
		View:         cfg.view,
		SendInterval: cfg.interval,
	}

	// Establish the connection before entering the alternate screen so
	// progress and failures stay visible; Ctrl-C aborts the wait
	var conn net.Conn
	if !cfg.mirror {
		cancel := make(chan struct{})
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			close(cancel)
		}()

		if cfg.role == session.Responder {
			fmt.Printf("waiting for a peer on %s (Ctrl-C to abort)...\n", cfg.addr)
		} else {
			fmt.Printf("calling %s...\n", cfg.addr)
		}

		c, err := session.Establish(cfg.role, cfg.addr, cancel)
		signal.Stop(sigCh)
		if err != nil {
			if err == session.ErrCanceled {
				return 0
			}
			fmt.Fprintf(os.Stderr, "picturephone: %v\n", err)
			return 1
		}
		conn = c
	}

	if err := src.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "picturephone: %v\n", err)
		return 1
	}

	term := terminal.New()
	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "picturephone: terminal init: %v\n", err)
		return 1
	}
	if w, h := term.Size(); w <= 0 || h <= 0 {
		term.Fini()
		fmt.Fprintln(os.Stderr, "picturephone: cannot determine terminal size")
		return 1
	}
	sess.Term = term

	var runErr error
	if cfg.mirror {
		runErr = session.RunMirror(sess)
	} else {
		runErr = session.New(sess, conn).Run()
	}

	term.Fini()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "picturephone: %v\n", runErr)
		return 1
	}
	return 0
}
