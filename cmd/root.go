package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/filtering"
	"github.com/spigell/intern-scout/internal/ledger"
	"github.com/spigell/intern-scout/internal/logger"
)

const (
	app       = "intern-scout"
	envPrefix = "INTERN_SCOUT"
)

type Config struct {
	Resume      string            `mapstructure:"resume"`
	ExcludeFile string            `mapstructure:"exclude-file"`
	Search      *SearchConfig     `mapstructure:"search"`
	Ledger      *ledger.Config    `mapstructure:"ledger"`
	Filters     *filtering.Config `mapstructure:"filters"`
}

type SearchConfig struct {
	Query             string  `mapstructure:"query"`
	Location          string  `mapstructure:"location"`
	Results           int     `mapstructure:"results"`
	EngineID          string  `mapstructure:"engine-id"`
	APIKey            string  `mapstructure:"api-key"`
	APIKeyFile        string  `mapstructure:"api-key-file"`
	APIKeyKeyring     string  `mapstructure:"api-key-keyring"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
	UserAgent         string  `mapstructure:"user-agent"`
	Endpoint          string  `mapstructure:"endpoint"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "intern-scout searches for internships, ranks them against a resume and records the new ones",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is intern-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))

	setDefaults()
}

// configKeys lists every key of Config. viper.Unmarshal only sees env values
// for keys it already knows, so each one is bound explicitly.
var configKeys = []string{
	"resume",
	"exclude-file",
	"search.query",
	"search.location",
	"search.results",
	"search.engine-id",
	"search.api-key",
	"search.api-key-file",
	"search.api-key-keyring",
	"search.requests-per-second",
	"search.user-agent",
	"search.endpoint",
	"ledger.kind",
	"ledger.path",
	"ledger.sheet",
	"ledger.spreadsheet-id",
	"ledger.credentials-file",
	"ledger.dsn",
	"ledger.table",
	"filters.minimum-relevance",
	"filters.excluded-sites",
}

func setDefaults() {
	viper.SetDefault("resume", "resume.txt")
	viper.SetDefault("search.results", 10)
	viper.SetDefault("ledger.kind", ledger.KindMemory)
	viper.SetDefault("filters.minimum-relevance", 0.0)
}

func setupEnv() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	for _, key := range configKeys {
		// BindEnv only fails when called without a key.
		_ = viper.BindEnv(key)
	}
}

func initConfig() {
	// A missing .env is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	setupEnv()

	// Only commands that touch the search API or a ledger need the config file.
	if runCmd.CalledAs() == "" && ledgerShowCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Ledger == nil {
		config.Ledger = &ledger.Config{}
	}
	if config.Filters == nil {
		config.Filters = &filtering.Config{}
	}
	config.Filters.ExcludeFile = config.ExcludeFile

	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: viper.GetString("log-file"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}
