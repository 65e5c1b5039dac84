package commands

import (
	"github.com/spf13/cobra"
)

var (
	characterClass string
	characterForce bool

	byURLServer string
	byURLName   string
)

func init() {
	characterCmd.Flags().StringVar(&characterClass, "class", "", "Class label used when the page shows none.")
	characterCmd.Flags().BoolVar(&characterForce, "force", false, "Ignore the record cache.")
	rootCmd.AddCommand(characterCmd)

	urlCmd.Flags().StringVar(&byURLServer, "server", "", "Server name used when the page shows none.")
	urlCmd.Flags().StringVar(&byURLName, "name", "", "Character name used when the page shows none.")
	rootCmd.AddCommand(urlCmd)
}

var characterCmd = &cobra.Command{
	Use:   "character <server> <name> [--class <class>] [--force]",
	Short: "Searches a character by server and name and prints its record.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		record, err := c.Lookup.Lookup(cmd.Context(), args[0], args[1], characterClass, characterForce)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), record)
	},
}

var urlCmd = &cobra.Command{
	Use:   "url <detail-url> [--server <server>] [--name <name>]",
	Short: "Parses a known character detail page and prints its record.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		record, err := c.Lookup.LookupByURL(cmd.Context(), args[0], byURLServer, byURLName)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), record)
	},
}
