package cmd

import (
	"fmt"

	"github.com/hackforge/atlasman/internal/cluster"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <cluster-id>",
		Short: "Refresh a cluster record against the Atlas control plane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, teardown, err := setup(ctx)
			if err != nil {
				return err
			}
			defer teardown()

			result, err := app.reconciler.RefreshClusterStatus(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch result.Status {
			case cluster.StatusActive:
				color.New(color.FgGreen).Fprintf(out, "status: %s\n", result.Status)
				fmt.Fprintf(out, "connection string: %s\n", result.ConnectionString)
			case cluster.StatusFailed:
				color.New(color.FgRed).Fprintf(out, "status: %s\n", result.Status)
			default:
				fmt.Fprintf(out, "status: %s\n", result.Status)
			}
			return nil
		},
	}
}
