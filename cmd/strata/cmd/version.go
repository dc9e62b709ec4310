// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X github.com/oneconcern/strata/cmd/strata/cmd.Version=..."
var (
	Version   string
	BuildDate string
	GitCommit string
	GitState  string
)

// VersionInfo describes the build of the binary
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	BuildDate string `json:"buildDate,omitempty" yaml:"buildDate,omitempty"`
	GitCommit string `json:"gitCommit,omitempty" yaml:"gitCommit,omitempty"`
	GitState  string `json:"gitState,omitempty" yaml:"gitState,omitempty"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

// NewVersionInfo returns the build information of the binary. Binaries built without
// version information report a "dev" version.
func NewVersionInfo() VersionInfo {
	v := VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GitState:  GitState,
		GoVersion: runtime.Version(),
	}
	if v.Version == "" {
		v.Version = "dev"
	} else if v.GitState == "" {
		v.GitState = "clean"
	}
	return v
}

// Print the build information, skipping unknown items
func (v VersionInfo) Print(w io.Writer) {
	for _, item := range []struct{ label, value string }{
		{"Version", v.Version},
		{"Build date", v.BuildDate},
		{"Commit", v.GitCommit},
		{"Working tree", v.GitState},
		{"Go", v.GoVersion},
	} {
		if item.value != "" {
			fmt.Fprintf(w, "%s: %s\n", item.label, item.value)
		}
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version of strata",
	Run: func(cmd *cobra.Command, args []string) {
		NewVersionInfo().Print(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
