package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newForecastsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forecasts",
		Short: "List the forecasts known to the query service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := a.client().Forecasts(cmd.Context())
			if err != nil {
				return err
			}
			return printLines(a.out, names)
		},
	}
}

func newMonthsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "months FORECAST",
		Short: "List the months available for a forecast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			months, err := a.client().Months(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printLines(a.out, months)
		},
	}
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
