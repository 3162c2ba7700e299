package cmd

import (
	"fmt"

	"github.com/hackforge/atlasman/internal/cluster"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func clustersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Inspect and tear down provisioned clusters",
	}
	cmd.AddCommand(clustersListCmd())
	cmd.AddCommand(clustersDeleteCmd())
	return cmd
}

func clustersListCmd() *cobra.Command {
	var (
		eventID string
		teamID  string
		status  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cluster records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, teardown, err := setup(ctx)
			if err != nil {
				return err
			}
			defer teardown()

			filter := cluster.Filter{EventID: eventID, TeamID: teamID}
			if status != "" {
				filter.Statuses = []cluster.Status{cluster.Status(status)}
			}

			clusters, err := app.provisioner.ListClusters(ctx, filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(clusters) == 0 {
				fmt.Fprintln(out, "no clusters found")
				return nil
			}

			bold := color.New(color.Bold)
			bold.Fprintf(out, "%-26s %-24s %-24s %-8s %-14s %s\n",
				"ID", "EVENT", "TEAM", "PROVIDER", "REGION", "STATUS")
			for _, c := range clusters {
				fmt.Fprintf(out, "%-26s %-24s %-24s %-8s %-14s %s\n",
					c.ID.Hex(), c.EventID, c.TeamID, c.Provider, c.Region, c.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "Filter by event")
	cmd.Flags().StringVar(&teamID, "team", "", "Filter by team")
	cmd.Flags().StringVar(&status, "status", "", "Filter by lifecycle status")

	return cmd
}

func clustersDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <cluster-id>",
		Short: "Tear down a cluster and remove its record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, teardown, err := setup(ctx)
			if err != nil {
				return err
			}
			defer teardown()

			record, err := app.clusters.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if _, err := app.guard.RequireTeamLeader(ctx, record.TeamID); err != nil {
				return err
			}

			if !yes {
				proceed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Delete cluster %s owned by team %s?", record.Name, record.TeamID),
				}
				if err := survey.AskOne(prompt, &proceed); err != nil {
					return err
				}
				if !proceed {
					return nil
				}
			}

			if err := app.provisioner.DeleteCluster(ctx, args[0]); err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "cluster deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
