package cmd

import (
	"github.com/hackforge/atlasman/internal/cleanup"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

func cleanupCmd() *cobra.Command {
	var (
		eventID string
		dryRun  bool
		yes     bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete the remaining clusters of concluded events",
		Long: "Finds concluded events with auto-cleanup enabled and deletes their " +
			"remaining clusters. Scope to one event with --event, or preview with --dry-run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, teardown, err := setup(ctx)
			if err != nil {
				return err
			}
			defer teardown()

			var reports []cleanup.Report

			switch {
			case eventID != "" && dryRun:
				report, err := app.cleaner.PreviewEventClusters(ctx, eventID)
				if err != nil {
					return err
				}
				reports = []cleanup.Report{report}

			case eventID != "":
				report, err := app.cleaner.CleanupEventClusters(ctx, eventID)
				if err != nil {
					return err
				}
				reports = []cleanup.Report{report}

			case dryRun:
				if reports, err = app.cleaner.PreviewScheduledCleanup(ctx); err != nil {
					return err
				}

			default:
				if !yes {
					proceed := false
					prompt := &survey.Confirm{
						Message: "This deletes the clusters of every concluded auto-cleanup event. Continue?",
					}
					if err := survey.AskOne(prompt, &proceed); err != nil {
						return err
					}
					if !proceed {
						return nil
					}
				}
				if reports, err = app.cleaner.RunScheduledCleanup(ctx); err != nil {
					return err
				}
			}

			return renderReports(cmd.OutOrStdout(), reports, output)
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "Limit cleanup to a single event")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be deleted without deleting anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the fleet-wide confirmation prompt")
	outputFlag(cmd.Flags(), &output)

	return cmd
}
