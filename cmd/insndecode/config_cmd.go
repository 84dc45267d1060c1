package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"insndecode/internal/config"
)

func newConfigCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Manage the JSON configuration file",
	}
	root.AddCommand(newConfigInitCmd())
	return root
}

func newConfigInitCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in default configuration to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return errors.New("config init: --out is required")
			}
			return config.Save(outPath, config.Default())
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "path to write the default config JSON to (required)")
	return cmd
}
