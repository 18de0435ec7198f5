package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pickledire/feign-server-go/internal/catalog"
)

var (
	cardsFile string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "feign",
	Short:        "Play and inspect Feign card games",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cardsFile, "cards", "", "YAML card list to use instead of the built-in catalog")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine events to stderr")
}

func loadCatalog() (*catalog.Catalog, error) {
	if cardsFile != "" {
		return catalog.LoadFile(cardsFile)
	}
	return catalog.Default()
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
