package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lessonflow",
	Short: "Slide-based lessons with saved progress",
	Long: `Lessonflow plays slide-based lessons in the terminal and remembers where
each learner left off. Without --learner progress is kept on this device
for a guest; with --learner it is stored in the configured backend.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd, nil, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("learner", "", "Account learner id (overrides LESSONFLOW_LEARNER); empty plays as guest")
	f.String("backend", "", "Durable backend: sqlite, postgres or redis (overrides LESSONFLOW_BACKEND)")
	f.String("dsn", "", "Database connection string (overrides LESSONFLOW_DSN)")
	f.String("redis-addr", "", "Redis address (overrides LESSONFLOW_REDIS_ADDR)")
	f.String("lessons", "", "Path to a YAML lesson catalog (overrides LESSONFLOW_LESSONS)")
	f.String("env", "", "Path to a .env file (default .env)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(versionCmd)
}
