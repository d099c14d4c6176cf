package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stock settings",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the active valuation method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.svc.Settings.Get(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valuation_method: %s\n", st.Method)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <FIFO|Moving Average>",
		Short: "Change the valuation method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.svc.Settings.SetMethod(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valuation_method: %s\n", st.Method)
			return nil
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}
