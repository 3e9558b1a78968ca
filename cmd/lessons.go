package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonflow/internal/player"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons and the learner's status for each",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		doc, err := rt.env.Progress(cmd.Context())
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-4s  %-32s  %6s  %-12s  %s\n",
			"ID", "Title", "Slides", "Status", "Detail")
		fmt.Fprintln(out, strings.Repeat("─", 72))

		for _, l := range rt.env.Catalog.Lessons() {
			title := l.Title
			if len(title) > 32 {
				title = title[:29] + "..."
			}
			status := player.StatusOf(doc, l.ID)
			detail := ""
			rec := doc.Record(l.ID)
			switch status {
			case player.StatusCompleted:
				detail = fmt.Sprintf("score %d", rec.Score)
			case player.StatusInProgress:
				detail = fmt.Sprintf("slide %d of %d", rec.LastSlide+1, len(l.Slides))
			}
			fmt.Fprintf(out, "%-4d  %-32s  %6d  %-12s  %s\n",
				l.ID, title, len(l.Slides), status, detail)
		}

		fmt.Fprintf(out, "\n%d of %d lessons completed\n", len(doc.CompletedLessons), rt.env.Catalog.Len())
		return nil
	},
}
