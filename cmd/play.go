package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonflow/internal/app"
	"github.com/abhisek/lessonflow/internal/progress"
)

var playCmd = &cobra.Command{
	Use:   "play [lesson-id]",
	Short: "Open the lesson player, optionally at a lesson",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var lessonID *progress.LessonID
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid lesson id %q", args[0])
			}
			id := progress.LessonID(n)
			lessonID = &id
		}
		slide, _ := cmd.Flags().GetString("slide")
		return runPlayer(cmd, lessonID, slide)
	},
}

func init() {
	playCmd.Flags().String("slide", "", "Slide index to open the lesson at (0-based)")
}

// runPlayer launches the TUI for the configured learner.
func runPlayer(cmd *cobra.Command, lessonID *progress.LessonID, slide string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	if lessonID != nil {
		if _, err := rt.env.Catalog.Get(*lessonID); err != nil {
			rt.Close()
			return err
		}
	}

	runErr := app.Run(app.Options{Env: rt.env, Lesson: lessonID, SlideParam: slide})
	if err := rt.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
