package main

import (
	"github.com/spf13/cobra"

	"github.com/robfig/ssview/view"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		dataFile string
		args     map[string]string
	)
	var cmd = &cobra.Command{
		Use:   "render [flags] Template...",
		Short: "Render the first of the named templates that exists",
		Long: `Render the first of the named templates that exists, against the data
in the given YAML file. Templates are named "Name" or "Type/Name", where
Type is Includes, Layout or Content, and names may be namespaced with
backslashes, e.g. App\Pages\Home.

Example:
  ssrender render --data home.yaml --arg Preview=1 HomePage Page`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, names []string) error {
			views, err := a.views()
			if err != nil {
				return err
			}
			defer views.Close()

			item, err := a.loadData(dataFile)
			if err != nil {
				return err
			}
			var overlay = make(map[string]any, len(args))
			for k, v := range args {
				overlay[k] = v
			}
			out, err := views.ViewerFor(names...).Process(item, view.Values(overlay), nil)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(out))
			return err
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "YAML file of the item to render")
	cmd.Flags().StringToStringVar(&args, "arg", nil, "arguments available to the template, as Key=Value")
	return cmd
}
