// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/serialize"
	"github.com/spf13/cobra"
)

// logCmd represents the log command
var logCmd = &cobra.Command{
	Use:   "log <model>",
	Short: "Show the change log of a model",
	Long: `Displays the events committed on a model, in revision order.

The change log of a removed model remains available.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := model.NewID(args[0])
		if err != nil {
			wrapFatalln("invalid model", err)
			return
		}
		err = withSession(func(s *session) error {
			changes := s.repo.ChangeLog(id)
			if changes == nil {
				return fmt.Errorf("model %v does not exist", s.modelAddress(id))
			}
			events := changes.Since(strataFlags.log.Since)

			if strataFlags.log.Format == "" {
				printEvents(cmd.OutOrStdout(), events)
				return nil
			}
			format, err := serialize.ParseFormat(strataFlags.log.Format)
			if err != nil {
				return err
			}
			docs := make([]serialize.EventDoc, 0, len(events))
			for _, e := range events {
				docs = append(docs, serialize.FromEvent(e))
			}
			out, err := serialize.Marshal(format, docs)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		})
		if err != nil {
			wrapFatalln("model log", err)
		}
	},
}

func printEvents(w io.Writer, events []event.Event) {
	revision := color.New(color.FgMagenta)
	actor := color.New(color.FgYellow)
	for _, e := range events {
		fmt.Fprint(w, "Revision: ")
		_, _ = revision.Fprintln(w, e.Revision())
		fmt.Fprint(w, "   Actor: ")
		_, _ = actor.Fprintln(w, e.Actor())
		for _, atomic := range event.Atomics(e) {
			fmt.Fprintf(w, "    %v %v\n", atomic.ChangeType(), atomic.ChangedEntity())
			if fe, ok := atomic.(*event.FieldEvent); ok {
				fmt.Fprintf(w, "      %v -> %v\n", fe.OldValue, fe.NewValue)
			}
		}
		fmt.Fprintln(w)
	}
}

func init() {
	addSinceFlag(logCmd)
	addLogFormatFlag(logCmd)
	rootCmd.AddCommand(logCmd)
}
