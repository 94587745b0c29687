package main

import (
	"github.com/spf13/cobra"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/metrics"
	"github.com/datascope/datascope/internal/similarity"
)

func compareCmd(loadConfig func() (*config.Config, error), rec *metrics.Recorder) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <dataset1.json> <dataset2.json>",
		Short: "Compare two datasets by freshly generated fingerprints",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ds1, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			ds2, err := loadDataset(args[1])
			if err != nil {
				return err
			}
			engine := similarity.NewEngine(cfg, rec)
			cmp, err := engine.CompareDatasets(ds1, ds2)
			if err != nil {
				return err
			}
			return printJSON(cmp)
		},
	}
}
