package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelview/pkg/bookmark"
	"github.com/matzehuels/mandelview/pkg/server"
)

const defaultAddr = ":8080"

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags       viewFlags
		addr        string
		noCache     bool
		noBookmarks bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve frames, palettes and bookmarks over HTTP",
		Long: `Serve frames, palettes and bookmarks over HTTP.

Frame flags set the defaults for requests that omit a value. Rendered
frames are cached with the configured cache backend; set cache.backend to
"redis" to share the cache between several servers.`,
		Example: `  mandelview serve --addr :8080
  curl -o frame.png 'localhost:8080/render?cx=-0.75&cy=0.1&width=0.1&iter=256'`,
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
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var store bookmark.Store
			if !noBookmarks {
				if store, err = c.newBookmarkStore(ctx); err != nil {
					return err
				}
				defer store.Close()
			}

			srv := server.New(runner, store, c.Logger, opts)

			printInfo("Serving on %s", addr)
			return srv.Run(ctx, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noBookmarks, "no-bookmarks", false, "disable the bookmark routes")

	return cmd
}
