// Package cli implements the marketplace command line: the server and a client
// for its HTTP API.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// NewRootCommand creates the root command. Without a subcommand it runs the
// server.
func NewRootCommand(runServerFunc func(cmd *cobra.Command, args []string) error, versionInfo VersionInfo) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "marketplace",
		Short:         "Agent marketplace",
		Long:          `Marketplace is a catalog of callable agents: register agents, discover them with filtered search, and invoke them with a recorded execution history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: runServerFunc,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file (e.g., config/marketplace.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the marketplace server",
		RunE:  runServerFunc,
	}
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().String("host", "", "Listen host (overrides config)")
		c.Flags().Int("port", 0, "Listen port (overrides config)")
		c.Flags().String("store-driver", "", "Storage backend: memory or sqlite")
		c.Flags().String("invoke-mode", "", "Agent invocation: simulated or http")
	}
	rootCmd.AddCommand(serveCmd)

	opts := newClientOptions()
	rootCmd.AddCommand(newAgentsCommand(opts))
	rootCmd.AddCommand(newExecutionsCommand(opts))
	rootCmd.AddCommand(newManifestCommand(opts))
	rootCmd.AddCommand(NewVersionCommand(versionInfo))

	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.SetConfigName("marketplace")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// BindServerFlags copies server flags the user actually set into v, so they
// take precedence over file and environment values.
func BindServerFlags(cmd *cobra.Command, v *viper.Viper) error {
	for flag, key := range map[string]string{
		"host":         "host",
		"port":         "port",
		"store-driver": "store_driver",
		"invoke-mode":  "invoke_mode",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}
