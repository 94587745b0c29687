package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/datascope/datascope/internal/config"
	"github.com/datascope/datascope/internal/metrics"
)

// Execute wires the subcommands and runs the CLI. The CLI is a thin
// collaborator: it decodes JSON datasets and prints JSON results; all
// analysis happens in the internal packages.
func Execute(ctx context.Context) error {
	var configPath string

	root := &cobra.Command{
		Use:           "datascope",
		Short:         "Detect patterns in tabular datasets and compare them by fingerprint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerGlobalFlags(root.PersistentFlags(), &configPath)

	loadConfig := func() (*config.Config, error) {
		if configPath == "" {
			return config.Default(), nil
		}
		return config.Load(configPath)
	}
	rec := metrics.NewRecorder(prometheus.DefaultRegisterer)

	root.AddCommand(detectCmd(loadConfig))
	root.AddCommand(fingerprintCmd(loadConfig))
	root.AddCommand(compareCmd(loadConfig, rec))
	root.AddCommand(clusterCmd(loadConfig, rec))
	return root.ExecuteContext(ctx)
}

// registerGlobalFlags keeps the persistent flag set in one place so new
// subcommands inherit it unchanged.
func registerGlobalFlags(fs *pflag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "config", "", "YAML threshold configuration (defaults apply when empty)")
}
