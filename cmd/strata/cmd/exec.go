// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core"
	"github.com/oneconcern/strata/pkg/serialize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Execute commands from a file",
	Long: `Execute a sequence of commands read from a YAML or JSON file, in order.

Each command is committed on its own: a failed command does not prevent the next ones.
Use a transaction to commit several changes atomically.

Example:

  actor: alice
  commands:
  - type: ADD
    target: /default/phonebook
    id: john
  - type: TRANSACTION
    target: /default/phonebook/john
    commands:
    - type: ADD
      target: /default/phonebook/john
      id: phone
    - type: CHANGE
      target: /default/phonebook/john/phone
      expect: forced
      value:
        kind: string
        string: 555-1234

The actor of the file takes precedence over the configured actor.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		format, err := commandFileFormat(strataFlags.exec.File, strataFlags.exec.Format)
		if err != nil {
			wrapFatalln("command file format", err)
			return
		}
		data, err := afero.ReadFile(afero.NewOsFs(), strataFlags.exec.File)
		if err != nil {
			wrapFatalln("read command file", err)
			return
		}
		actor, commands, err := serialize.UnmarshalCommands(format, data)
		if err != nil {
			wrapFatalln("decode command file", err)
			return
		}
		if actor.IsZero() {
			actor = config.actor()
		}

		var failed int
		err = withSession(func(s *session) error {
			for i, c := range commands {
				result := s.repo.ExecuteCommand(actor, c)
				if result == command.Failed {
					failed++
				}
				printResult(cmd.OutOrStdout(), i, c, result)
				if err := s.repo.HookErr(core.TargetModel(c)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			wrapFatalln("execute commands", err)
			return
		}
		if failed > 0 {
			wrapFatalln(fmt.Sprintf("%d of %d commands failed", failed, len(commands)), nil)
		}
	},
}

func commandFileFormat(file, format string) (serialize.Format, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(file), ".")
	}
	return serialize.ParseFormat(format)
}

func printResult(w io.Writer, i int, c command.Command, result int64) {
	fmt.Fprintf(w, "#%d %v: ", i, c)
	switch result {
	case command.Failed:
		_, _ = color.New(color.FgRed).Fprintln(w, "failed")
	case command.NoChange:
		_, _ = color.New(color.FgYellow).Fprintln(w, "no change")
	default:
		_, _ = color.New(color.FgGreen).Fprintf(w, "revision %d\n", result)
	}
}

func init() {
	requireFlags(execCmd, addCommandFileFlag(execCmd))
	addCommandFormatFlag(execCmd)
	rootCmd.AddCommand(execCmd)
}
