// marketctl is the admin CLI: schema migrations and local demo data.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "marketctl",
		Short:        "Autos marketplace admin tool",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("database-url", "", "postgres URL (defaults to $DATABASE_URL)")

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

func databaseURL(cmd *cobra.Command) (string, error) {
	url, _ := cmd.Flags().GetString("database-url")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return "", errMissingDatabaseURL
	}
	return url, nil
}
