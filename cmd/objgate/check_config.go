package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/objgate/internal/config"
)

func newCheckConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration without serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(configPath)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			reg := config.NewRegistry(cfg)
			keys := make([]string, 0)
			for _, t := range reg.Tenants() {
				keys = append(keys, t.Key)
			}
			slices.Sort(keys)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", path)
			fmt.Fprintf(out, "auth: %s\n", cfg.AuthType.Policy().Name())
			fmt.Fprintf(out, "listen: :%d%s\n", cfg.ServerPort, cfg.MatchPrefix)
			fmt.Fprintf(out, "tenants: %d %v\n", len(keys), keys)
			fmt.Fprintf(out, "session endpoints: %d\n", len(reg.SessionEndpoints()))
			return nil
		},
	}
	addConfigFlag(cmd.Flags(), &configPath)
	return cmd
}
