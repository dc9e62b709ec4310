// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata is a versioned store of hierarchical objects",
	Long: `Strata keeps models made of objects and fields, with a revision on every entity.

Every change is a command checked against the revisions it expects, committed atomically
and recorded as an event in the change log of its model.

Models are persisted locally in a key-value store (badger or pebble) and restored at every run.
`,
	SilenceUsage: true,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addDataDirFlag(rootCmd)
	addBackendFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addActorFlag(rootCmd)
	addRepositoryFlag(rootCmd)
	addCacheSizeFlag(rootCmd)
	addMetricsFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault(keyDataDir, ".strata")
	viper.SetDefault(keyBackend, "badger")
	viper.SetDefault(keyLogLevel, "info")
	viper.SetDefault(keyActor, "local")
	viper.SetDefault(keyRepository, "default")
	viper.SetDefault(keyCacheSize, "64MiB")

	if os.Getenv("STRATA_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("STRATA_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.strata")
		viper.AddConfigPath("/etc/strata")
		viper.SetConfigName("strata")
	}

	viper.SetEnvPrefix("strata")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}

	var err error
	config, err = newConfig()
	if err != nil {
		wrapFatalln("invalid configuration", err)
	}
}
