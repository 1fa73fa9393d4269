package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the ledger of recorded jobs",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the titles recorded in the configured ledger",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		showLedger()
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
}

func showLedger() {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	l, err := ledger.Open(ctx, config.Ledger, logger)
	if err != nil {
		logger.Fatal("opening ledger", zap.Error(err))
	}
	defer l.Close()

	if err := l.Init(ctx); err != nil {
		logger.Fatal("initializing ledger", zap.Error(err))
	}

	titles, err := l.Titles(ctx)
	if err != nil {
		logger.Fatal("reading ledger", zap.Error(err))
	}

	for _, title := range titles {
		fmt.Println(title)
	}
	logger.Info("ledger read", zap.Int("count", len(titles)))
}
