package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"lingq_upload/internal/config"
	"lingq_upload/internal/ingest"
	"lingq_upload/internal/publish"
)

func newTimestampsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "timestamps <collection-id>",
		Short: "Request audio timestamp generation for every lesson in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCollectionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withPublisher(func(_ *config.Config, publisher *publish.Publisher, _ *slog.Logger) error {
				report, err := publisher.GenerateTimestamps(cmd.Context(), id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Requested timestamps for %d lessons in collection %d\n", report.Requested, id)
				if report.Failed > 0 {
					fmt.Fprintf(out, "%d requests failed; see the log for details\n", report.Failed)
				}
				return nil
			})
		},
	}
}

func newUpdateMetadataCommand(ctx *commandContext) *cobra.Command {
	var tags string
	var level string

	cmd := &cobra.Command{
		Use:   "update-metadata <collection-id>",
		Short: "Apply tags, level and shared status to the lessons of an existing collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCollectionID(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("level") {
				if err := validateLevel(level); err != nil {
					return err
				}
			}
			tagList := ingest.WithBookTag(ingest.ParseTagList(tags))
			return ctx.withPublisher(func(_ *config.Config, publisher *publish.Publisher, _ *slog.Logger) error {
				if err := publisher.UpdateMetadata(cmd.Context(), id, tagList, level); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated lessons in collection %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tag list")
	cmd.Flags().StringVar(&level, "level", "", "Level name applied to every lesson")
	return cmd
}
