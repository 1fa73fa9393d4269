package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/filtering"
	"github.com/spigell/intern-scout/internal/keywords"
	"github.com/spigell/intern-scout/internal/ledger"
	"github.com/spigell/intern-scout/internal/logger"
	"github.com/spigell/intern-scout/internal/matching"
	"github.com/spigell/intern-scout/internal/scout"
	"github.com/spigell/intern-scout/internal/search"
	"github.com/spigell/intern-scout/internal/secrets"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptMatchesToFile       = "Dump matches to file"
	PromptAppendToExcludeFile = "Append matches to exclude file"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search for internships and record the new matches",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before recording matches")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with jobs to exclude. Default is unset.")
	runCmd.Flags().IntP("results", "n", 0, "number of postings to fetch (overrides search.results)")
	runCmd.Flags().Bool("dry-run", false, "rank and report without touching the configured ledger")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := logger.WithRunID(newLogger(), uuid.NewString())

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if n, _ := cmd.Flags().GetInt("results"); n > 0 {
		config.Search.Results = n
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		config.Ledger = &ledger.Config{Kind: ledger.KindMemory}
	}

	logger.Info("starting the intern-scout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redactedConfig(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if strings.TrimSpace(config.Search.Query) == "" {
		logger.Fatal("search.query is required")
	}
	if strings.TrimSpace(config.Search.EngineID) == "" {
		logger.Fatal("search.engine-id is required", zap.String("hint", "set INTERN_SCOUT_SEARCH_ENGINE_ID or the 'search.engine-id' key"))
	}

	client, err := newSearchClient(config.Search, logger)
	if err != nil {
		logger.Fatal(
			"loading search api key",
			zap.Error(err),
			zap.String("hint", "set search.api-key-file, store it with 'intern-scout secret set', or export INTERN_SCOUT_SEARCH_API_KEY"),
		)
	}

	extractor, err := keywords.New()
	if err != nil {
		logger.Fatal("loading keyword extractor", zap.Error(err))
	}

	l, err := ledger.Open(ctx, config.Ledger, logger)
	if err != nil {
		logger.Fatal("opening ledger", zap.Error(err))
	}

	var confirm func(context.Context, *matching.Matches) (bool, error)
	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); !autoApprove {
		confirm = promptConfirm(logger, config.ExcludeFile)
	}

	runner := scout.New(scout.Config{
		Query:      config.Search.Query,
		Location:   config.Search.Location,
		Results:    config.Search.Results,
		ResumePath: config.Resume,
		Filters:    config.Filters,
	}, scout.Deps{
		Fetcher:   client,
		Extractor: extractor,
		Ledger:    l,
		Filters:   filtering.Default(),
		Confirm:   confirm,
		Report:    os.Stdout,
		Logger:    logger,
	})

	logger.Info("starting the search",
		zap.String("query", search.BuildQuery(config.Search.Query, config.Search.Location)),
		zap.Int("results", config.Search.Results),
	)

	result, err := runner.Run(ctx)
	if closeErr := l.Close(); closeErr != nil {
		logger.Warn("closing ledger", zap.Error(closeErr))
	}
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	switch result.Outcome {
	case scout.OutcomeNoPostings:
		fmt.Println("No job descriptions found.")
	case scout.OutcomeNothingToMatch:
		logger.Info("exiting", zap.String("reason", "nothing to match"))
	case scout.OutcomeDeclined:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
	default:
		logger.Info("exiting", zap.Int("recorded", len(result.Added)), zap.Bool("dry_run", dryRun))
	}
}

func newSearchClient(cfg *SearchConfig, logger *zap.Logger) (*search.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:    "search api key",
		Value:   cfg.APIKey,
		File:    cfg.APIKeyFile,
		Keyring: cfg.APIKeyKeyring,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	client := search.New(logger, apiKey, cfg.EngineID)
	client.SetRequestsPerSecond(cfg.RequestsPerSecond)

	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	if cfg.Endpoint != "" {
		client.APIURL = cfg.Endpoint
	}

	return client, nil
}

// promptConfirm asks once per action until the user answers Yes or No.
func promptConfirm(logger *zap.Logger, excludeFile string) func(context.Context, *matching.Matches) (bool, error) {
	items := []string{PromptYes, PromptNo, PromptMatchesToFile}
	if excludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}

	prompt := promptui.Select{
		Label: "Proceed?",
		Items: items,
	}

	return func(_ context.Context, m *matching.Matches) (bool, error) {
		for {
			logger.Info("current list of matches", zap.Int("count", m.Len()), zap.Strings("titles", m.Titles()))

			_, action, err := prompt.Run()
			if err != nil {
				return false, err
			}

			switch action {
			case PromptYes:
				return true, nil
			case PromptNo:
				return false, nil
			case PromptMatchesToFile:
				filename, err := m.DumpToTmpFile()
				if err != nil {
					return false, fmt.Errorf("dump matches to file: %w", err)
				}
				logger.Info("dumping matches to file", zap.String("filename", filename))
			case PromptAppendToExcludeFile:
				total, err := filtering.AppendToExcludeFile(excludeFile, m)
				if err != nil {
					return false, fmt.Errorf("append to exclude file: %w", err)
				}
				logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("excluded_total", total))
				// Everything offered is excluded now, so there is nothing left to record.
				return false, nil
			default:
				return false, errors.New("invalid action: " + action)
			}
		}
	}
}

// redactedConfig hides credentials before the config is logged.
func redactedConfig(config *Config) *Config {
	c := *config

	sc := *config.Search
	if sc.APIKey != "" {
		sc.APIKey = "REDACTED"
	}
	c.Search = &sc

	lc := *config.Ledger
	if lc.DSN != "" {
		lc.DSN = "REDACTED"
	}
	c.Ledger = &lc

	return &c
}
