package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kapu/aion2-character-go/internal/character"
	"github.com/kapu/aion2-character-go/internal/dom"
	"github.com/kapu/aion2-character-go/internal/domain"
)

var (
	parseServer string
	parseName   string
	parseClass  string
)

func init() {
	parseCmd.Flags().StringVar(&parseServer, "server", "", "Server name used when the page shows none.")
	parseCmd.Flags().StringVar(&parseName, "name", "", "Character name used when the page shows none.")
	parseCmd.Flags().StringVar(&parseClass, "class", "", "Class label used when the page shows none.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file.html>",
	Short: "Extracts a record from a saved character page without a browser.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read page: %w", err)
		}
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		page, err := dom.NewStaticPage("file://"+filepath.ToSlash(abs), string(raw))
		if err != nil {
			return fmt.Errorf("failed to parse page: %w", err)
		}

		record := character.NewAssembler(0, logger).Assemble(cmd.Context(), page, domain.Identity{
			Server:    parseServer,
			Name:      parseName,
			ClassHint: parseClass,
		})
		return writeJSON(cmd.OutOrStdout(), record)
	},
}
