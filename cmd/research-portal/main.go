package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title School Research Repository
// @version 1.0.0
// @description Research paper repository for students, research advisers and administrators
// @BasePath /
// @schemes http https

func main() {
	root := &cobra.Command{
		Use:           "research-portal",
		Short:         "School research repository server",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newBackfillCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
