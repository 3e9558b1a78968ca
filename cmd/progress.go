package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonflow/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Print the learner's progress document as JSON",
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

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			LearnerID string `json:"learnerId"`
			Mode      string `json:"mode"`
			Store     string `json:"store"`
			*progress.LearnerProgress
		}{
			LearnerID:       rt.env.Session.Identity.ID,
			Mode:            rt.env.Session.Identity.Mode.String(),
			Store:           rt.store.Kind(),
			LearnerProgress: doc,
		})
	},
}
