package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docrepo",
	Short: "multi-tenant document repository tool",
	Example: `docrepo create -t <tenant-id> -y <type-id> -T <title> -f <file>
docrepo get -d <doc-id>
docrepo list -t <tenant-id>
docrepo version -d <doc-id> -f <file>
docrepo versions -d <doc-id>
docrepo delete -d <doc-id> -u <user-id>
docrepo restore -d <doc-id>
docrepo archive -d <doc-id>
docrepo dedup -t <tenant-id> -H <hash>
docrepo reindex
docrepo jobs`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
