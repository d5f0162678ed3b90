package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelview/pkg/bookmark"
	"github.com/matzehuels/mandelview/pkg/palette"
)

// bookmarkCommand creates the bookmark management command.
func (c *CLI) bookmarkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmark",
		Aliases: []string{"bm"},
		Short:   "Save and recall views",
		Long: `Save and recall views of the set.

Bookmarks live in the configured store: one JSON file per bookmark under
$XDG_CONFIG_HOME/mandelview/bookmarks, or a MongoDB collection when
bookmarks.backend is "mongo". Built-in presets can be used anywhere a
bookmark is accepted.`,
	}

	cmd.AddCommand(c.bookmarkListCommand())
	cmd.AddCommand(c.bookmarkAddCommand())
	cmd.AddCommand(c.bookmarkShowCommand())
	cmd.AddCommand(c.bookmarkRemoveCommand())
	cmd.AddCommand(c.bookmarkPresetsCommand())

	return cmd
}

// withStore opens the bookmark store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(bookmark.Store) error) error {
	store, err := c.newBookmarkStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) bookmarkListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved bookmarks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s bookmark.Store) error {
				all, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(all) == 0 {
					printInfo("No bookmarks yet")
					printNextStep("Save one", "mandelview bookmark add NAME --re X --im Y --width W")
					return nil
				}
				fmt.Println(bookmarkTable(all))
				return nil
			})
		},
	}
}

func (c *CLI) bookmarkAddCommand() *cobra.Command {
	var (
		re, im, width float64
		iter          int
		smooth        bool
		paletteName   string
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Save a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				width = c.cfg.View.Width
			}
			if !cmd.Flags().Changed("iter") {
				iter = c.cfg.Fractal.MaxIterations
			}
			b, err := bookmark.New(args[0], complex(re, im), width, iter)
			if err != nil {
				return err
			}
			b.Smooth = smooth
			if paletteName != "" {
				if _, err := palette.Builtin(paletteName, 0); err != nil {
					return err
				}
				b.Palette = paletteName
			}

			return c.withStore(cmd.Context(), func(s bookmark.Store) error {
				if err := s.Save(cmd.Context(), b); err != nil {
					return err
				}
				printSuccess("Saved bookmark %s", StyleValue.Render(b.Name))
				printDetail("id %s", b.ID)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&re, "re", 0, "real part of the center")
	cmd.Flags().Float64Var(&im, "im", 0, "imaginary part of the center")
	cmd.Flags().Float64Var(&width, "width", 0, "view width in plane units")
	cmd.Flags().IntVar(&iter, "iter", 0, "maximum iterations")
	cmd.Flags().BoolVar(&smooth, "smooth", true, "smooth colouring")
	cmd.Flags().StringVarP(&paletteName, "palette", "p", "", "palette name")
	return cmd
}

func (c *CLI) bookmarkShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show REF",
		Short: "Show a bookmark by id, name or preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s bookmark.Store) error {
				b, err := bookmark.Resolve(cmd.Context(), s, args[0])
				if err != nil {
					return err
				}
				printBookmark(b)
				return nil
			})
		},
	}
}

func (c *CLI) bookmarkRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a bookmark",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s bookmark.Store) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted bookmark %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) bookmarkPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in landmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(bookmarkTable(bookmark.Presets()))
			printNextStep("Render one", `mandelview render -b "Seahorse Valley"`)
			return nil
		},
	}
}

func printBookmark(b *bookmark.Bookmark) {
	fmt.Println(StyleTitle.Render(b.Name))
	printKeyValue("id", b.ID)
	printKeyValue("center", formatPoint(b.Center()))
	printKeyValue("width", fmt.Sprintf("%.17g", b.Width))
	printKeyValue("iterations", fmt.Sprintf("%d", b.MaxIterations))
	printKeyValue("smooth", fmt.Sprintf("%t", b.Smooth))
	if b.Palette != "" {
		printKeyValue("palette", b.Palette)
	}
	printKeyValue("created", b.CreatedAt.Local().Format("2006-01-02 15:04"))
}
