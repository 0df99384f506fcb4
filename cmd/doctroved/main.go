package main

import (
	"fmt"
	"os"

	"github.com/doctrove/doctrove/internal/cli"
	"github.com/doctrove/doctrove/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "doctroved",
		Short: "Doctrove daemon and CLI",
		Long:  "Doctrove daemon for running the document ingestion API server and admin tasks",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.CleanupCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
