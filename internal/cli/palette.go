package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelview/pkg/palette"
)

const swatchWidth = 48

// paletteCommand creates the palette command.
func (c *CLI) paletteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "List, preview and export palettes",
	}

	cmd.AddCommand(c.paletteListCommand())
	cmd.AddCommand(c.paletteShowCommand())
	cmd.AddCommand(c.paletteExportCommand())

	return cmd
}

func (c *CLI) paletteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in palettes with a preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range palette.Names() {
				p, err := palette.Builtin(name, swatchWidth)
				if err != nil {
					return err
				}
				marker := "  "
				if name == c.cfg.Palette.Name {
					marker = StyleTitle.Render("▸ ")
				}
				fmt.Printf("%s%-10s %s\n", marker, name, swatch(p, swatchWidth))
			}
			return nil
		},
	}
}

func (c *CLI) paletteShowCommand() *cobra.Command {
	var (
		file string
		size int
	)
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Preview a palette",
		Long: `Preview a built-in palette or a palette file.

Without arguments the configured palette is shown.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completePaletteNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.resolvePalette(args, file, size)
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render(p.Name()))
			fmt.Println(swatch(p, swatchWidth))
			printKeyValue("colors", fmt.Sprintf("%d", p.Len()))
			first, last := p.At(0), p.At(p.Len()-1)
			printKeyValue("first", fmt.Sprintf("#%02x%02x%02x", first.R, first.G, first.B))
			printKeyValue("last", fmt.Sprintf("#%02x%02x%02x", last.R, last.G, last.B))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "palette file (JSON or TOML)")
	cmd.Flags().IntVar(&size, "size", 0, "number of colours for built-in palettes")
	return cmd
}

func (c *CLI) paletteExportCommand() *cobra.Command {
	var (
		output string
		size   int
	)
	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Write a palette as a JSON palette file",
		Long: `Write a palette as a JSON palette file.

The file can be edited and loaded back with --palette-file or the
palette.file config key.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completePaletteNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.resolvePalette(args, "", size)
			if err != nil {
				return err
			}
			if output == "" {
				return palette.Encode(os.Stdout, p)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := palette.Encode(f, p); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Exported %s (%d colours)", p.Name(), p.Len())
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&size, "size", 0, "number of colours")
	return cmd
}

// resolvePalette picks a palette file, a named built-in or the configured
// palette, in that order.
func (c *CLI) resolvePalette(args []string, file string, size int) (palette.Palette, error) {
	if size <= 0 {
		size = c.cfg.Palette.Size
	}
	switch {
	case file != "":
		return palette.Load(file)
	case len(args) == 1:
		return palette.Builtin(args[0], size)
	}
	cfg := c.cfg
	cfg.Palette.Size = size
	return cfg.LoadPalette()
}
