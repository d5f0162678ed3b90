package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelview/pkg/explorer"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/pipeline"
)

// exploreCommand creates the interactive terminal explorer command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		flags       viewFlags
		invertWheel bool
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the set interactively in the terminal",
		Long: `Explore the Mandelbrot set in the terminal.

Scroll up to zoom in at the pointer (--invert-wheel swaps the direction).
Use the arrow keys or hjkl to pan and press space to double the iteration
budget. Press s to toggle smooth colouring,
p to cycle palettes, b to bookmark the view, r to reset and q to quit.
The final center and width are printed on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := flags.apply(ctx, cmd, c, &opts); err != nil {
				return err
			}
			return c.runExplore(ctx, opts, invertWheel)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&invertWheel, "invert-wheel", false, "wheel up zooms out")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options, invertWheel bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	pass, err := opts.Pass()
	if err != nil {
		return err
	}
	palettes, err := explorePalettes(opts.Colors, opts.PaletteSize)
	if err != nil {
		return err
	}

	cfg := explorer.Config{
		Center:      opts.Center(),
		Width:       opts.Width,
		Params:      pass.Params,
		Smooth:      opts.Smooth,
		Palettes:    palettes,
		Workers:     opts.Workers,
		InvertWheel: invertWheel,
	}
	if store, err := c.newBookmarkStore(ctx); err != nil {
		c.Logger.Warn("bookmarks disabled", "err", err)
	} else {
		defer store.Close()
		cfg.Bookmarks = store
	}

	final, err := explorer.Run(ctx, cfg)
	if err != nil {
		return err
	}

	vp := final.Viewport()
	printKeyValue("center", formatPoint(vp.Center))
	printKeyValue("width", fmt.Sprintf("%.17g", vp.Width))
	printKeyValue("iterations", fmt.Sprintf("%d", final.Params().MaxIterations))
	return nil
}

// explorePalettes puts active first, followed by every other built-in.
func explorePalettes(active palette.Palette, size int) ([]palette.Palette, error) {
	out := []palette.Palette{active}
	for _, name := range palette.Names() {
		if name == active.Name() {
			continue
		}
		p, err := palette.Builtin(name, size)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
