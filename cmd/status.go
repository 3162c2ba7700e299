package cmd

import (
	"fmt"

	"github.com/hackforge/atlasman/internal/cli"
	"github.com/hackforge/atlasman/internal/cloud/atlas"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the Atlas control plane is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := cli.NewProfile(flagProfile)
			if err != nil {
				return err
			}
			if err := profile.Load(); err != nil {
				return err
			}

			client := atlas.NewAuthClient(profile.AtlasBaseURL(), profile.Credentials())
			if err := client.Status(); err != nil {
				color.New(color.FgRed).Fprintln(cmd.OutOrStdout(), err.Error())
				return err
			}

			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Atlas control plane is available")

			groups, err := client.Groups()
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "credential check failed: %s\n", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credentials valid, %d project(s) reachable\n", len(groups))
			return nil
		},
	}
}
