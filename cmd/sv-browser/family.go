package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uconn-ofc/sv-browser/internal/browser"
	"github.com/uconn-ofc/sv-browser/internal/output"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
)

func newFamilyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "family",
		Short: "List families and their members",
	}
	cmd.AddCommand(newFamilyListCmd(), newFamilyShowCmd())
	return cmd
}

func newFamilyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List family identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ids, err := a.families.ListFamilyIDs(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), browser.MsgNoFamilies)
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newFamilyShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "show <family-id>",
		Short:   "Show the parents and children of a family",
		Example: "  sv-browser family show F001",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			m, err := a.families.GetFamilyMembers(cmd.Context(), args[0])
			if errors.Is(err, refdata.ErrNotFound) {
				return errors.New(browser.NoFamilyData(args[0]))
			}
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), m)
			}
			return output.NewTabWriter(cmd.OutOrStdout()).WriteMembers(m)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
