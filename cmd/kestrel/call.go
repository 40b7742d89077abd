package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kestrel/internal/builtin"
	"kestrel/internal/image"
	"kestrel/internal/trace"
	"kestrel/internal/vm"
)

func newCallCmd(a *app) *cobra.Command {
	var imagePath string
	cmd := &cobra.Command{
		Use:   "call [--image file] [function] [args...]",
		Short: "Call a function of an image or a builtin native",
		Long: `Call links the image (or, without --image, the builtin natives alone)
and applies the named function to the literal arguments. Arguments are
parsed as integers, floats, booleans or "()" when possible and passed as
strings otherwise. Without a function name the image entry point is called.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCall(cmd, imagePath, args)
		},
	}
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "program image (.toml, .yaml or .kimg)")
	return cmd
}

func (a *app) runCall(cmd *cobra.Command, imagePath string, args []string) error {
	ctx := cmd.Context()
	natives := builtin.New(cmd.OutOrStdout())
	opts := a.cfg.RuntimeOptions()
	opts.Log = cmd.ErrOrStderr()
	opts.Tracer = a.tracer

	var img *image.Image
	if imagePath != "" {
		err := a.timer.Measure("load", func() error {
			var err error
			img, err = image.Load(ctx, imagePath)
			return err
		})
		if err != nil {
			return err
		}
	}

	var name string
	switch {
	case len(args) > 0:
		name, args = args[0], args[1:]
	case img != nil:
		name = img.EntryName()
	default:
		return fmt.Errorf("no function named and no --image given")
	}
	opts.Args = append([]string{name}, args...)

	var rt *vm.Runtime
	err := a.timer.Measure("link", func() error {
		var err error
		if img != nil {
			rt, err = image.Link(ctx, img, natives, opts)
		} else {
			rt, err = vm.New(natives.Functions(), nil, opts)
		}
		return err
	})
	if err != nil {
		return err
	}

	var out string
	var vmErr *vm.VMError
	_ = a.timer.Measure("call", func() error {
		vmErr = vm.Guard(func() {
			vals := make([]vm.Value, len(args))
			for i, s := range args {
				vals[i] = parseLiteral(rt, s)
			}
			result, callErr := rt.CallFunction(name, vals...)
			if callErr != nil {
				panic(callErr)
			}
			out = rt.Show(result)
		})
		if vmErr != nil {
			return vmErr
		}
		return nil
	})
	if vmErr != nil {
		a.reportFatal(cmd.ErrOrStderr(), vmErr)
		_ = rt.Shutdown()
		return &exitError{code: 1}
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return rt.Shutdown()
}

// reportFatal prints a runtime panic followed by the recent trace events
// when a ring buffer is kept.
func (a *app) reportFatal(w io.Writer, err *vm.VMError) {
	first, rest, _ := strings.Cut(err.Format(), "\n")
	fmt.Fprintln(w, a.errLabel(first))
	fmt.Fprint(w, rest)
	ring := a.ring()
	if ring == nil {
		return
	}
	events := ring.Snapshot()
	if len(events) == 0 {
		return
	}
	fmt.Fprintf(w, "last %d trace events:\n", len(events))
	_ = ring.Dump(w, trace.FormatText)
}
