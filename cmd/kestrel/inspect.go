package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kestrel/internal/builtin"
	"kestrel/internal/image"
)

type imageSummary struct {
	path       string
	format     image.Format
	img        *image.Image
	unresolved int
}

func newInspectCmd(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "inspect <image>...",
		Short: "Summarize program images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var summaries []imageSummary
			err := a.timer.Measure("load", func() error {
				var err error
				summaries, err = loadSummaries(cmd, args, jobs)
				return err
			})
			if err != nil {
				return err
			}
			return writeSummaries(cmd, summaries)
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "max images loaded in parallel (0 = GOMAXPROCS)")
	return cmd
}

// loadSummaries loads every image concurrently. Results keep the argument
// order; the first failure cancels the rest.
func loadSummaries(cmd *cobra.Command, paths []string, jobs int) ([]imageSummary, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	natives := builtin.New(cmd.OutOrStdout())
	summaries := make([]imageSummary, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			format, err := image.DetectFormat(path)
			if err != nil {
				return err
			}
			img, err := image.Load(ctx, path)
			if err != nil {
				return err
			}
			s := imageSummary{path: path, format: format, img: img}
			for _, fn := range img.Functions {
				if _, ok := natives.Lookup(fn.SymbolName()); !ok {
					s.unresolved++
				}
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func writeSummaries(cmd *cobra.Command, summaries []imageSummary) error {
	header := []string{"IMAGE", "NAME", "FORMAT", "TYPES", "CTORS", "FUNCS", "UNRESOLVED", "ENTRY"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			filepath.Base(s.path),
			s.img.Name,
			s.format.String(),
			strconv.Itoa(len(s.img.Types)),
			strconv.Itoa(s.img.ConstructorCount()),
			strconv.Itoa(len(s.img.Functions)),
			strconv.Itoa(s.unresolved),
			s.img.EntryName(),
		})
	}
	if err := writeTable(cmd.OutOrStdout(), header, rows); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
