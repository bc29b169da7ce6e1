package main

import (
	"fmt"
	"os"

	"github.com/raykavin/backview/pkg/report"
	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/view"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	outputDir string
	noImages  bool
	width     int
	height    int
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outputDir, "out", "o", "", "Output directory for PNG charts, overrides render.output_dir")
	cmd.Flags().BoolVar(&f.noImages, "no-images", false, "Only print the summary")
	cmd.Flags().IntVar(&f.width, "width", 0, "Image width, overrides render.width")
	cmd.Flags().IntVar(&f.height, "height", 0, "Image height, overrides render.height")
}

func (a *app) buildRenderCmd() *cobra.Command {
	flags := new(renderFlags)

	renderCmd := &cobra.Command{
		Use:   "render <result.json>",
		Short: "Render a saved backtest response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			arr, err := result.Decode(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return a.present(cmd, arr, flags)
		},
	}
	flags.register(renderCmd)

	return renderCmd
}

// present prints the summary of arr and exports its charts
func (a *app) present(cmd *cobra.Command, arr result.Array, flags *renderFlags) error {
	charts, err := a.charts()
	if err != nil {
		return err
	}
	loc, err := a.cfg.Render.Location()
	if err != nil {
		return err
	}

	v := view.NewBuilder(
		view.WithLogger(a.log),
		view.WithCharts(charts...),
		view.WithLocation(loc),
	).Build(arr)

	if err := report.Summary(cmd.OutOrStdout(), v); err != nil {
		return err
	}
	if flags.noImages {
		return nil
	}

	dir := a.cfg.Render.OutputDir
	if flags.outputDir != "" {
		dir = flags.outputDir
	}
	width, height := a.cfg.Render.Width, a.cfg.Render.Height
	if flags.width > 0 {
		width = flags.width
	}
	if flags.height > 0 {
		height = flags.height
	}

	paths, err := report.NewExporter(dir, width, height, cmd.ErrOrStderr(), a.log).Export(v)
	if err != nil {
		return err
	}
	a.log.WithField("dir", dir).Infof("%d charts written", len(paths))

	if missing := len(v.Panels) - len(paths); missing > 0 {
		return fmt.Errorf("%d of %d charts failed", missing, len(v.Panels))
	}
	return nil
}
