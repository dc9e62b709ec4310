// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/strata/pkg/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configuration keys, shared by flags, environment variables and the config file
const (
	keyDataDir    = "data-dir"
	keyBackend    = "backend"
	keyLogLevel   = "log-level"
	keyActor      = "actor"
	keyRepository = "repository"
	keyCacheSize  = "cache-size"
	keyMetrics    = "metrics"
)

type flagsT struct {
	exec struct {
		File   string
		Format string
	}
	log struct {
		Since  int64
		Format string
	}
	snapshot struct {
		Revision int64
		Format   string
	}
}

var strataFlags = flagsT{}

func bindPersistentFlag(cmd *cobra.Command, key string) string {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(key)); err != nil {
		wrapFatalln("binding flag "+key, err)
	}
	return key
}

func addDataDirFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyDataDir, "", "The directory holding the persisted change logs and snapshots (default \".strata\")")
	return bindPersistentFlag(cmd, keyDataDir)
}

func addBackendFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyBackend, "", "The key-value store persisting change logs: badger or pebble (default \"badger\")")
	return bindPersistentFlag(cmd, keyBackend)
}

func addLogLevelFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyLogLevel, "", "The logging level: debug, info or none (default \"info\")")
	return bindPersistentFlag(cmd, keyLogLevel)
}

func addActorFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyActor, "", "The actor issuing changes (default \"local\")")
	return bindPersistentFlag(cmd, keyActor)
}

func addRepositoryFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyRepository, "", "The repository holding models (default \"default\")")
	return bindPersistentFlag(cmd, keyRepository)
}

func addCacheSizeFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().String(keyCacheSize, "", "The block cache size of the key-value store, e.g. 64MiB (default \"64MiB\")")
	return bindPersistentFlag(cmd, keyCacheSize)
}

func addMetricsFlag(cmd *cobra.Command) string {
	cmd.PersistentFlags().Bool(keyMetrics, false, "Collect commit metrics and log them when the command is done")
	return bindPersistentFlag(cmd, keyMetrics)
}

func addCommandFileFlag(cmd *cobra.Command) string {
	file := "file"
	cmd.Flags().StringVarP(&strataFlags.exec.File, file, "f", "", "The file holding the commands to execute")
	return file
}

func addCommandFormatFlag(cmd *cobra.Command) string {
	format := "format"
	cmd.Flags().StringVar(&strataFlags.exec.Format, format, "", "The format of the command file: json or yaml. Guessed from the file extension by default")
	return format
}

func addSinceFlag(cmd *cobra.Command) string {
	since := "since"
	cmd.Flags().Int64Var(&strataFlags.log.Since, since, model.RevisionNotSet, "Only show events with a revision strictly greater than this one")
	return since
}

func addLogFormatFlag(cmd *cobra.Command) string {
	format := "format"
	cmd.Flags().StringVarP(&strataFlags.log.Format, format, "o", "", "The output format: json or yaml. Defaults to a human readable log")
	return format
}

func addRevisionFlag(cmd *cobra.Command) string {
	revision := "revision"
	cmd.Flags().Int64Var(&strataFlags.snapshot.Revision, revision, model.RevisionNotSet, "The revision of the snapshot. Defaults to the latest one")
	return revision
}

func addSnapshotFormatFlag(cmd *cobra.Command) string {
	format := "format"
	cmd.Flags().StringVarP(&strataFlags.snapshot.Format, format, "o", "yaml", "The output format: json or yaml")
	return format
}

func requireFlags(cmd *cobra.Command, flags ...string) {
	for _, flag := range flags {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			wrapFatalln("marking flag as required", err)
		}
	}
}
