package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kestrel/internal/config"
	"kestrel/internal/heap"
	"kestrel/internal/observ"
	"kestrel/internal/prof"
	"kestrel/internal/trace"
)

type cliFlags struct {
	configPath   string
	verbose      bool
	color        string
	timings      bool
	traceOutput  string
	traceLevel   string
	traceMode    string
	cpuProfile   string
	memProfile   string
	runtimeTrace string
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	flags    cliFlags
	cfg      config.Config
	tracer   trace.Tracer
	timer    *observ.Timer
	errColor *color.Color
	profiler *prof.Session
	cleanup  func()
}

func (a *app) setup(cmd *cobra.Command) error {
	a.timer = observ.NewTimer()
	if err := a.setupColor(); err != nil {
		return err
	}

	err := a.timer.Measure("config", func() error {
		cfg, err := config.Load(a.flags.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	})
	if err != nil {
		return err
	}
	a.applyFlags(cmd)
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if a.cfg.Heap.GCPercent != 0 {
		heap.SetGCPercent(a.cfg.Heap.GCPercent)
	}
	if err := a.setupTracing(cmd); err != nil {
		return err
	}
	profiler, err := prof.Start(prof.Options{
		CPU:   a.flags.cpuProfile,
		Mem:   a.flags.memProfile,
		Trace: a.flags.runtimeTrace,
	})
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	a.profiler = profiler
	return nil
}

// applyFlags lets explicitly set flags override the configuration file.
func (a *app) applyFlags(cmd *cobra.Command) {
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("verbose") {
		a.cfg.Runtime.Verbose = a.flags.verbose
	}
	if flags.Changed("trace") {
		a.cfg.Trace.Output = a.flags.traceOutput
		if !flags.Changed("trace-level") && a.cfg.Trace.Level == "off" {
			a.cfg.Trace.Level = "phase"
		}
	}
	if flags.Changed("trace-level") {
		a.cfg.Trace.Level = a.flags.traceLevel
	}
	if flags.Changed("trace-mode") {
		a.cfg.Trace.Mode = a.flags.traceMode
	}
}

func (a *app) setupColor() error {
	var stdoutColor, stderrColor bool
	switch a.flags.color {
	case "on":
		stdoutColor, stderrColor = true, true
	case "off":
		stdoutColor, stderrColor = false, false
	case "auto", "":
		stdoutColor = isTerminal(os.Stdout)
		fd := os.Stderr.Fd()
		stderrColor = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", a.flags.color)
	}
	color.NoColor = !stdoutColor
	a.errColor = color.New(color.FgRed, color.Bold)
	if stderrColor {
		a.errColor.EnableColor()
	} else {
		a.errColor.DisableColor()
	}
	return nil
}

// setupTracing creates the tracer and attaches it to the command context.
func (a *app) setupTracing(cmd *cobra.Command) error {
	tc, err := a.cfg.Tracer()
	if err != nil {
		return fmt.Errorf("invalid trace configuration: %w", err)
	}
	tc.Output = nil
	if tc.OutputPath == "" || tc.OutputPath == "-" {
		tc.Output = cmd.ErrOrStderr()
	}
	tracer, err := trace.New(tc)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	a.tracer = tracer
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	a.cleanup = func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return nil
}

// finish releases the tracer and prints timings. It runs even when the
// command failed.
func (a *app) finish(stderr io.Writer) {
	if err := a.profiler.Stop(); err != nil {
		fmt.Fprintf(stderr, "profiling: %v\n", err)
	}
	if a.cleanup != nil {
		a.cleanup()
	}
	if a.flags.timings && a.timer != nil {
		_ = a.timer.WriteSummary(stderr)
	}
}

func (a *app) errLabel(s string) string {
	if a.errColor == nil {
		return s
	}
	return a.errColor.Sprint(s)
}

// ring returns the in-memory trace buffer, if tracing keeps one.
func (a *app) ring() *trace.RingTracer {
	switch t := a.tracer.(type) {
	case *trace.RingTracer:
		return t
	case *trace.MultiTracer:
		return t.Ring()
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
