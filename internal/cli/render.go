package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelview/pkg/bookmark"
	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/pipeline"
)

// viewFlags are the frame flags shared by render, explore and serve. Only
// flags the user set override the config file.
type viewFlags struct {
	re, im      float64
	width       float64
	size        string
	iter        int
	radius      float64
	smooth      bool
	palette     string
	paletteFile string
	samples     int
	workers     int
	bookmark    string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.re, "re", 0, "real part of the view center")
	cmd.Flags().Float64Var(&f.im, "im", 0, "imaginary part of the view center")
	cmd.Flags().Float64Var(&f.width, "width", 0, "view width in plane units")
	cmd.Flags().StringVar(&f.size, "size", "", "frame size in pixels, WIDTHxHEIGHT")
	cmd.Flags().IntVar(&f.iter, "iter", 0, "maximum iterations")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "escape radius (> 1)")
	cmd.Flags().BoolVar(&f.smooth, "smooth", true, "smooth colouring")
	cmd.Flags().StringVarP(&f.palette, "palette", "p", "", "palette name: "+strings.Join(palette.Names(), ", "))
	cmd.Flags().StringVar(&f.paletteFile, "palette-file", "", "palette file (JSON or TOML)")
	cmd.Flags().IntVar(&f.samples, "samples", 0, "super-sampling grid per pixel axis (1-8)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "rows painted concurrently (0 = all CPUs)")
	cmd.Flags().StringVarP(&f.bookmark, "bookmark", "b", "", "start from a bookmark or preset (id or name)")
	_ = cmd.RegisterFlagCompletionFunc("palette", completePaletteNames)
}

// apply overlays the flags the user set on opts. A bookmark is applied
// first so explicit flags still win over it.
func (f *viewFlags) apply(ctx context.Context, cmd *cobra.Command, c *CLI, opts *pipeline.Options) error {
	changed := cmd.Flags().Changed

	if f.bookmark != "" {
		if err := c.applyBookmark(ctx, f.bookmark, opts); err != nil {
			return err
		}
	}
	if changed("re") {
		opts.CenterRe = f.re
	}
	if changed("im") {
		opts.CenterIm = f.im
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("size") {
		w, h, err := parseSize(f.size)
		if err != nil {
			return err
		}
		opts.PixelWidth, opts.PixelHeight = w, h
	}
	if changed("iter") {
		opts.MaxIterations = f.iter
	}
	if changed("radius") {
		opts.EscapeRadius = f.radius
	}
	if changed("smooth") {
		opts.Smooth = f.smooth
	}
	if changed("samples") {
		opts.Samples = f.samples
	}
	if changed("workers") {
		opts.Workers = f.workers
	}
	switch {
	case f.paletteFile != "":
		p, err := palette.Load(f.paletteFile)
		if err != nil {
			return err
		}
		opts.Colors = p
	case f.palette != "":
		opts.Palette = f.palette
		opts.Colors = palette.Palette{}
	}
	return nil
}

func (c *CLI) applyBookmark(ctx context.Context, ref string, opts *pipeline.Options) error {
	store, err := c.newBookmarkStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	b, err := bookmark.Resolve(ctx, store, ref)
	if err != nil {
		return err
	}
	opts.CenterRe, opts.CenterIm = b.CenterRe, b.CenterIm
	opts.Width = b.Width
	opts.MaxIterations = b.MaxIterations
	opts.Smooth = b.Smooth
	if b.Palette != "" {
		opts.Palette = b.Palette
		opts.Colors = palette.Palette{}
	}
	loggerFromContext(ctx).Debug("using bookmark", "name", b.Name, "id", b.ID)
	return nil
}

// parseSize parses "WIDTHxHEIGHT" or a single number for a square frame.
func parseSize(s string) (int, int, error) {
	ws, hs, found := strings.Cut(strings.ToLower(s), "x")
	if !found {
		hs = ws
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(ws))
	h, err2 := strconv.Atoi(strings.TrimSpace(hs))
	if err1 != nil || err2 != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "invalid size %q (want WIDTHxHEIGHT)", s)
	}
	if err := errors.ValidateDimensions(w, h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// renderCommand creates the render command for painting one frame.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   viewFlags
		output  string
		format  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame to an image file",
		Long: `Render one frame of the Mandelbrot set to a PNG or JPEG file.

Values come from the config file and are overridden by flags. Frames are
cached, so rendering the same view twice is instant.`,
		Example: `  mandelview render
  mandelview render --re -0.7435 --im 0.1314 --width 0.002 --iter 1024 -o spiral.png
  mandelview render -b "Seahorse Valley" --size 1920x1080 --samples 3 -f jpeg`,
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
			if format != "" {
				opts.Format = format
			}
			if output != "" && format == "" {
				if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), "."); ext != "" {
					opts.Format = ext
				}
			}
			opts.Refresh = refresh
			return c.runRender(ctx, opts, output, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default mandelbrot.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: png (default), jpeg")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore a cached frame and render again")

	return cmd
}

// runRender paints, encodes and writes one frame.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if output == "" {
		output = "mandelbrot." + opts.Format
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Painting %dx%d", opts.PixelWidth, opts.PixelHeight))
	prog := newProgress(c.Logger)
	logRows := prog.rows()
	opts.Progress = func(done, total int) {
		spinner.SetProgress(done, total)
		logRows(done, total)
	}
	spinner.Start()

	result, err := runner.Render(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if err := os.WriteFile(output, result.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %s", formatPoint(opts.Center()))
	printStats(frameStats{
		width:      opts.PixelWidth,
		height:     opts.PixelHeight,
		iterations: opts.MaxIterations,
		bytes:      result.Stats.Bytes,
		duration:   result.Stats.PaintTime + result.Stats.EncodeTime,
		cached:     result.CacheHit,
	})
	printFile(output)
	prog.done("Wrote " + output)
	return nil
}
