package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "exam-engine",
		Short:         "Exam-taking engine",
		Long:          "exam-engine hosts timed exam sessions: it loads papers, derives answer templates, runs the countdown and submits answers exactly once.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newScanCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
