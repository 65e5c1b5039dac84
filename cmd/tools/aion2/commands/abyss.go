package commands

import (
	"github.com/spf13/cobra"

	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/service/aion2"
)

var (
	abyssLimit    int
	abyssListOnly bool
)

func init() {
	abyssCmd.Flags().IntVar(&abyssLimit, "limit", constants.BatchConfig.DefaultLimit, "Number of rankers to read.")
	abyssCmd.Flags().BoolVar(&abyssListOnly, "list-only", false, "Print the ranking targets without fetching details.")
	rootCmd.AddCommand(abyssCmd)
}

var abyssCmd = &cobra.Command{
	Use:   "abyss <server> <race> [--limit <n>] [--list-only]",
	Short: "Reads the abyss leaderboard and prints each ranker's record as it is fetched.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		q := aion2.AbyssQuery{Server: args[0], Race: args[1], Limit: abyssLimit}
		if abyssListOnly {
			targets, err := c.Lookup.CollectAbyssTargets(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), targets)
		}

		out := cmd.OutOrStdout()
		return c.Lookup.StreamAbyss(cmd.Context(), q, func(record *domain.CharacterRecord) error {
			return writeJSON(out, record)
		})
	},
}
