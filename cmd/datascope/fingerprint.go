package main

import (
	"github.com/spf13/cobra"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/fingerprint"
	"github.com/datascope/datascope/internal/patterns"
)

func fingerprintCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "fingerprint <dataset.json>",
		Short: "Compress a dataset's character into a fixed-structure fingerprint",
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
			pats := patterns.NewDetector(cfg).Detect(ds)
			fp := fingerprint.NewGenerator(cfg).Generate(ds, pats, id)
			return printJSON(fp)
		},
	}
	cmd.Flags().StringVar(&id, "id", "dataset", "fingerprint id")
	return cmd
}
