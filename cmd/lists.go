package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/homepage-finder/internal/lists"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Inspect the curated domain and keyword lists",
}

var listsDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective curated lists as YAML",
	Long:  "Prints the compiled-in lists merged with the file at lists.path, if any. The output is a valid lists file.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := loadLists()
		if err != nil {
			return err
		}
		return lists.Write(os.Stdout, l)
	},
}

func init() {
	listsCmd.AddCommand(listsDumpCmd)
	rootCmd.AddCommand(listsCmd)
}
