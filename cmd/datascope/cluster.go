package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/fingerprint"
	"github.com/datascope/datascope/internal/metrics"
	"github.com/datascope/datascope/internal/patterns"
	"github.com/datascope/datascope/internal/similarity"
)

func clusterCmd(loadConfig func() (*config.Config, error), rec *metrics.Recorder) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "cluster <dataset.json>...",
		Short: "Fingerprint several datasets and cluster them by similarity",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			detector := patterns.NewDetector(cfg)
			gen := fingerprint.NewGenerator(cfg)
			engine := similarity.NewEngine(cfg, rec)
			if threshold < 0 {
				threshold = engine.DefaultClusterThreshold()
			}
			for _, path := range args {
				ds, err := loadDataset(path)
				if err != nil {
					return err
				}
				id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				engine.Store(gen.Generate(ds, detector.Detect(ds), id))
			}
			return printJSON(engine.ClusterFingerprints(threshold))
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", -1, "cluster similarity threshold (default from config)")
	return cmd
}
