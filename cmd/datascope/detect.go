package main

import (
	"github.com/spf13/cobra"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/patterns"
)

func detectCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var advanced bool

	cmd := &cobra.Command{
		Use:   "detect <dataset.json>",
		Short: "Detect statistical, temporal, and relational patterns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ds, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			if advanced {
				return printJSON(patterns.NewAdvancedDetector(cfg).Detect(ds))
			}
			return printJSON(patterns.NewDetector(cfg).Detect(ds))
		},
	}
	cmd.Flags().BoolVar(&advanced, "advanced", false, "run the advanced detector stack")
	return cmd
}
