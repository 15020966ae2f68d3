package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyweaver/pkg/api"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP editing API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			l, err := c.layouter("")
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := api.New(st, api.Options{
				Layouter:   l,
				Export:     cfg.Export.Options(),
				HistoryMax: cfg.History.Max,
				Logger:     c.Logger,
			})
			printInfo("Listening on http://%s (store: %s)", addr, cfg.Store.Backend)
			return srv.Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
