package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"lingq_upload/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var orphansOnly bool
	var source string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent upload runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				var (
					runs []*history.Run
					err  error
				)
				switch {
				case orphansOnly:
					runs, err = store.Orphans(cmd.Context())
				case source != "":
					dir, resolveErr := resolveSourceDir(source)
					if resolveErr != nil {
						return resolveErr
					}
					runs, err = store.ForSource(cmd.Context(), dir)
				default:
					runs, err = store.Recent(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No uploads recorded")
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, historyRow(run, colorize))
				}
				fmt.Fprintln(out, renderTable(
					numeric(columns("Started", "Kind", "Title", "Status", "Lessons", "Collection", "Note"), "Lessons", "Collection"),
					rows,
					colorize,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&orphansOnly, "orphans", false, "Only show runs that left a remote collection behind")
	cmd.Flags().StringVar(&source, "source", "", "Only show runs for this source directory")
	return cmd
}

func historyRow(run *history.Run, colorize bool) []string {
	collection := "-"
	if run.CollectionID != 0 {
		collection = strconv.Itoa(run.CollectionID)
	}
	status := string(run.Status)
	switch run.Status {
	case history.StatusCompleted:
		status = highlight(status, colorize, text.FgGreen)
	case history.StatusFailed, history.StatusRejected:
		status = highlight(status, colorize, text.FgRed)
	}
	note := ""
	if run.LeftRemoteState() {
		note = highlight("remote collection left behind", colorize, text.FgYellow)
	} else if run.TimestampsFailed > 0 {
		note = fmt.Sprintf("%d timestamp requests failed", run.TimestampsFailed)
	}
	return []string{
		run.StartedAt.Local().Format(time.DateTime),
		string(run.Kind),
		run.Title,
		status,
		fmt.Sprintf("%d/%d", run.LessonsUploaded, run.LessonsTotal),
		collection,
		note,
	}
}
