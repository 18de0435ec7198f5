package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pickledire/feign-server-go/internal/game"
)

var cardsType string

// cardsCmd lists the card pool
var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the cards in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		cards := c.Cards()
		if cardsType != "" {
			ct, err := game.ParseCardType(cardsType)
			if err != nil {
				return err
			}
			cards = c.ByType(ct)
		}
		return printCards(cmd.OutOrStdout(), cards)
	},
}

func init() {
	cardsCmd.Flags().StringVar(&cardsType, "type", "", "only list cards of this type (Creature, Feign or Effect)")
	rootCmd.AddCommand(cardsCmd)
}

func printCards(out io.Writer, cards []game.Card) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCOLOR\tCOST\tSTATS\tTEXT")
	for _, card := range cards {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			card.ID, card.Name, card.CardType, card.Color, card.ManaCost, cardStats(card), card.Description)
	}
	return w.Flush()
}

func cardStats(card game.Card) string {
	switch {
	case card.Attack != nil && card.Defense != nil:
		return fmt.Sprintf("%d/%d", *card.Attack, *card.Defense)
	case card.Duration != nil:
		return fmt.Sprintf("%d turns", *card.Duration)
	case card.Effect != "":
		return string(card.Effect)
	default:
		return "-"
	}
}
