package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"kestrel/internal/config"
	"kestrel/internal/version"
)

// exitError carries a process status for a failure that was already
// reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "kestrel",
		Short:         "Runtime for compiled kestrel programs",
		Long:          `kestrel loads compiled program images, links them against the native runtime and calls their functions.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.configPath, "config", config.FileName, "runtime configuration file")
	flags.BoolVarP(&a.flags.verbose, "verbose", "v", false, "print the runtime summary and exit statistics")
	flags.StringVar(&a.flags.color, "color", "auto", "colorize output (auto|on|off)")
	flags.BoolVar(&a.flags.timings, "timings", false, "show timing information")
	flags.StringVar(&a.flags.traceOutput, "trace", "", "trace output file (\"-\" for stderr)")
	flags.StringVar(&a.flags.traceLevel, "trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.StringVar(&a.flags.traceMode, "trace-mode", "", "trace storage (stream|ring|both)")
	flags.StringVar(&a.flags.cpuProfile, "cpu-profile", "", "write a CPU profile to file")
	flags.StringVar(&a.flags.memProfile, "mem-profile", "", "write a heap profile to file on exit")
	flags.StringVar(&a.flags.runtimeTrace, "runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newCallCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newPackCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// run executes the CLI and returns the process status.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	a.finish(stderr)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "%s %v\n", a.errLabel("error:"), err)
	return 1
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
