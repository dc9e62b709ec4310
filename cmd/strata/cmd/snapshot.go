// Copyright © 2018 One Concern

package cmd

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/serialize"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Commands to manage model snapshots",
	Long: `Commands to manage model snapshots.

A snapshot is a file holding the full tree of a model at some revision, with the revision of every entity.
Snapshots are kept in the snapshots directory under the data directory.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <model>",
	Short: "Save a snapshot of a model at its current revision",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := model.NewID(args[0])
		if err != nil {
			wrapFatalln("invalid model", err)
			return
		}
		err = withSession(func(s *session) error {
			m := s.repo.Model(id)
			if m == nil {
				return fmt.Errorf("model %v does not exist", s.modelAddress(id))
			}
			rev, err := s.snapshots().Save(m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved snapshot of %v at revision %d\n", m.Address(), rev)
			return nil
		})
		if err != nil {
			wrapFatalln("save snapshot", err)
		}
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <model>",
	Short: "Show a saved snapshot of a model",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := model.NewID(args[0])
		if err != nil {
			wrapFatalln("invalid model", err)
			return
		}
		format, err := serialize.ParseFormat(strataFlags.snapshot.Format)
		if err != nil {
			wrapFatalln("output format", err)
			return
		}
		err = withSession(func(s *session) error {
			var (
				snapshot *model.ModelState
				err      error
			)
			if strataFlags.snapshot.Revision < 0 {
				snapshot, err = s.snapshots().Latest(s.modelAddress(id))
			} else {
				snapshot, err = s.snapshots().Load(s.modelAddress(id), strataFlags.snapshot.Revision)
			}
			if err != nil {
				return err
			}
			out, err := serialize.MarshalModel(format, snapshot)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		})
		if err != nil {
			wrapFatalln("show snapshot", err)
		}
	},
}

var snapshotListCmd = &cobra.Command{
	Use:     "list <model>",
	Aliases: []string{"ls"},
	Short:   "List the revisions of the saved snapshots of a model",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := model.NewID(args[0])
		if err != nil {
			wrapFatalln("invalid model", err)
			return
		}
		err = withSession(func(s *session) error {
			revs, err := s.snapshots().Revisions(s.modelAddress(id))
			if err != nil {
				return err
			}
			for _, rev := range revs {
				fmt.Fprintln(cmd.OutOrStdout(), rev)
			}
			return nil
		})
		if err != nil {
			wrapFatalln("list snapshots", err)
		}
	},
}

func init() {
	addRevisionFlag(snapshotShowCmd)
	addSnapshotFormatFlag(snapshotShowCmd)

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	rootCmd.AddCommand(snapshotCmd)
}
