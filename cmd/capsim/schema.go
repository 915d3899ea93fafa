package main

import (
	"github.com/spf13/cobra"

	"github.com/rpggio/capsim/internal/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the column schema of both output tables as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return schema.WriteYAML(cmd.OutOrStdout())
		},
	}
}
