package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile every template in the themes, reporting errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := a.views()
			if err != nil {
				return err
			}
			defer views.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "templates ok: %v\n", a.cfg.Themes)
			return nil
		},
	}
}
