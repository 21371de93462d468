package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"lingq_upload/internal/config"
	"lingq_upload/internal/publish"
)

func newPodcastCommand(ctx *commandContext) *cobra.Command {
	var title string
	var description string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "podcast <dir|file.mp3>",
		Short: "Import MP3 episodes as a Podcast collection transcribed by LingQ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveSourceDir(args[0])
			if err != nil {
				return err
			}
			plan, err := publish.PlanPodcast(path, title, description)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				rows := make([][]string, 0, len(plan.Episodes))
				for i, episode := range plan.Episodes {
					rows = append(rows, []string{fmt.Sprintf("%d", i+1), episode.Title, episode.AudioPath})
				}
				fmt.Fprintf(out, "Podcast: %s\n", plan.Title)
				fmt.Fprintln(out, renderTable(numeric(columns("#", "Episode", "Audio"), "#"), rows,
					shouldColorize(out)))
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock, err := acquireSourceLock(cfg, plan.Dir)
			if err != nil {
				return err
			}
			defer lock.Release()

			return ctx.withPublisher(func(_ *config.Config, publisher *publish.Publisher, _ *slog.Logger) error {
				report, err := publisher.ImportPodcast(cmd.Context(), plan)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Imported %d episodes into collection %d\n", len(report.LessonIDs), report.CollectionID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Collection title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Collection description")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the episodes without importing")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
