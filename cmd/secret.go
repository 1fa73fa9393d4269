package cmd

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage secrets stored in the OS keyring",
}

var secretSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a secret under the given keyring account (e.g. search-api-key)",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		setSecret(args[0])
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd)
}

func setSecret(name string) {
	logger := newLogger()

	prompt := promptui.Prompt{
		Label: "Value for " + name,
		Mask:  '*',
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("value must not be empty")
			}
			return nil
		},
	}

	value, err := prompt.Run()
	if err != nil {
		logger.Fatal("reading secret", zap.Error(err))
	}

	if err := secrets.Store(name, value); err != nil {
		logger.Fatal("storing secret", zap.Error(err))
	}

	logger.Info("secret stored",
		zap.String("service", secrets.KeyringService),
		zap.String("account", name),
		zap.String("hint", "reference it with search.api-key-keyring"),
	)
}
