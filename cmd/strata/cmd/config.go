// Copyright © 2018 One Concern

package cmd

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/kv"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	DataDir    string `mapstructure:"data-dir" yaml:"data-dir"`
	Backend    string `mapstructure:"backend" yaml:"backend"`
	LogLevel   string `mapstructure:"log-level" yaml:"log-level"`
	Actor      string `mapstructure:"actor" yaml:"actor"`
	Repository string `mapstructure:"repository" yaml:"repository"`
	CacheSize  string `mapstructure:"cache-size" yaml:"cache-size"`
	Metrics    bool   `mapstructure:"metrics" yaml:"metrics"`
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, config.validate()
}

func (c *CLIConfig) validate() error {
	switch kv.Backend(c.Backend) {
	case kv.Badger, kv.Pebble:
	default:
		return fmt.Errorf("unsupported backend %q", c.Backend)
	}
	if _, err := dlogger.GetLogger(c.LogLevel); err != nil {
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	if _, err := model.NewID(c.Actor); err != nil {
		return fmt.Errorf("invalid actor: %w", err)
	}
	if _, err := model.NewID(c.Repository); err != nil {
		return fmt.Errorf("invalid repository: %w", err)
	}
	if _, err := kv.ParseSize(c.CacheSize); err != nil {
		return fmt.Errorf("invalid cache size: %w", err)
	}
	return nil
}

func (c *CLIConfig) actor() model.ID { return model.ID(c.Actor) }

func (c *CLIConfig) repository() model.ID { return model.ID(c.Repository) }

func (c *CLIConfig) cacheSize() int64 {
	size, _ := kv.ParseSize(c.CacheSize)
	return size
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the CLI config",
	Long: `Commands to manage the strata CLI config.

The configuration is read from strata.yaml in the current directory, $HOME/.strata or /etc/strata,
or from the file named by STRATA_CONFIG. Every key may be overridden by a STRATA_<KEY> environment variable
(e.g. STRATA_DATA_DIR) and by the flag of the same name.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := yaml.Marshal(config)
		if err != nil {
			wrapFatalln("marshal config", err)
			return
		}
		_, _ = cmd.OutOrStdout().Write(out)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
