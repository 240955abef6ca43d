package main

import (
	"github.com/spf13/cobra"

	"vitasurvey/internal/config"
)

var configPath string

func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Survey catalog and token tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.AddCommand(
		ValidateCmd(),
		SeedCmd(),
		TokenCmd(),
	)
	return root
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
