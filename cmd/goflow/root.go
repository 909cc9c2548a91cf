package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "GOFLOW"

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:   "goflow",
		Short: "Identity flow backend in front of an Ory Kratos compatible provider",
		Long: `goflow serves the sign-in, sign-up, recovery, verification and settings
flows of an identity provider as a JSON API for the account pages.

Configuration is read from flags, GOFLOW_* environment variables and an
optional YAML file, in that order of precedence.

Examples:
  goflow serve --provider-url https://id.example.com
  GOFLOW_ROUTES_LOGIN=/login goflow routes
  goflow serve --config goflow.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadViper(v, configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML configuration file")

	root.AddCommand(newServeCmd(v), newRoutesCmd(v), newVersionCmd())
	return root
}

// loadViper wires defaults, the environment and the optional file into v.
func loadViper(v *viper.Viper, configFile string) error {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	return v.ReadInConfig()
}
