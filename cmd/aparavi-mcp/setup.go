package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/aparavi-software/aparavi-mcp/internal/config"
)

func newSetupCmd() *cobra.Command {
	var freezeFile string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision the virtual environment without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			venv, err := provision(cfg)
			if err != nil {
				return err
			}
			log.Printf("environment ready: %s (python %s)", venv.Root, venv.PythonVersion.String())

			if freezeFile != "" {
				if err := venv.Freeze(freezeFile); err != nil {
					return err
				}
				log.Printf("environment spec written to %s", freezeFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&freezeFile, "freeze", "", "write the provisioned environment spec to this JSON file")
	return cmd
}
