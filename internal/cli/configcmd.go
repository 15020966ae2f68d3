package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyweaver/pkg/config"
)

const redacted = "********"

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.configPath != "" {
				fmt.Println(c.configPath)
				return nil
			}
			fmt.Println(config.DefaultPath())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as TOML",
		Long:  "Print the configuration after applying the config file, .env and STORYWEAVER_* variables. Secrets are masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Print(masked(cfg).String())
			return nil
		},
	})
	return cmd
}

// masked returns a copy of cfg with secrets replaced.
func masked(cfg *config.Config) *config.Config {
	out := *cfg
	if out.Store.RedisPassword != "" {
		out.Store.RedisPassword = redacted
	}
	if u, err := url.Parse(out.Store.MongoURI); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redacted)
			out.Store.MongoURI = u.String()
		}
	}
	return &out
}
