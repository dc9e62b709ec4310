// Copyright © 2018 One Concern

package cmd

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/spf13/cobra"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Commands to manage models",
	Long: `Commands to manage the models of a repository.

A model is a versioned tree of objects and fields. Every change to a model increments its revision.`,
}

var modelCreateCmd = &cobra.Command{
	Use:   "create <model>",
	Short: "Create a model",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := model.NewID(args[0])
		if err != nil {
			wrapFatalln("invalid model", err)
			return
		}
		err = withSession(func(s *session) error {
			if s.repo.HasModel(id) {
				return fmt.Errorf("model %v already exists", s.modelAddress(id))
			}
			m, err := s.repo.CreateModel(config.actor(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created model %v at revision %d\n", m.Address(), m.Revision())
			return nil
		})
		if err != nil {
			wrapFatalln("create model", err)
		}
	},
}

var modelRemoveCmd = &cobra.Command{
	Use:     "remove <model>",
	Aliases: []string{"rm"},
	Short:   "Remove a model",
	Long: `Remove a model from the repository.

The change log of a removed model is kept.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := model.NewID(args[0])
		if err != nil {
			wrapFatalln("invalid model", err)
			return
		}
		err = withSession(func(s *session) error {
			removed, err := s.repo.RemoveModel(config.actor(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("model %v does not exist", s.modelAddress(id))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed model %v\n", s.modelAddress(id))
			return nil
		})
		if err != nil {
			wrapFatalln("remove model", err)
		}
	},
}

var modelListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the models of the repository",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := withSession(func(s *session) error {
			for _, id := range s.repo.ModelIDs() {
				m := s.repo.Model(id)
				fmt.Fprintf(cmd.OutOrStdout(), "%v\trevision %d\t%d objects\n", m.Address(), m.Revision(), len(m.ObjectIDs()))
			}
			return nil
		})
		if err != nil {
			wrapFatalln("list models", err)
		}
	},
}

func init() {
	modelCmd.AddCommand(modelCreateCmd)
	modelCmd.AddCommand(modelRemoveCmd)
	modelCmd.AddCommand(modelListCmd)
	rootCmd.AddCommand(modelCmd)
}
