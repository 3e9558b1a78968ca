package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the learner session and clear unfinished progress",
	Long: `For an account, lessons that were started but never completed are removed
from the durable store. For a guest, all progress on this device is
discarded; the guest identity itself is kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		logoutErr := rt.env.Logout(ctx)
		if err := rt.Close(); err != nil && logoutErr == nil {
			logoutErr = err
		}
		if logoutErr != nil {
			return fmt.Errorf("logout: %w", logoutErr)
		}

		out := cmd.OutOrStdout()
		if rt.env.Session.Identity.IsGuest() {
			fmt.Fprintln(out, "Guest progress on this device was discarded.")
		} else {
			fmt.Fprintf(out, "Logged out %s; unfinished lessons were cleared.\n", rt.env.Session.Identity.ID)
		}
		return nil
	},
}
