package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/spage/internal/config"
)

func newConfigCmd(configPath *string) *cobra.Command {
	var write, force bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if write {
				path, err := config.WriteDefault(*configPath, force)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return err
			}
			cfg, err := config.Load(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the default config to the --config path or the default location")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file with --write")
	return cmd
}
