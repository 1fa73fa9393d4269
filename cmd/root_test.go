package cmd

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/spigell/intern-scout/internal/ledger"
)

func TestGetConfigFromEnvOnly(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	t.Setenv("INTERN_SCOUT_SEARCH_QUERY", "software engineering internship")
	t.Setenv("INTERN_SCOUT_SEARCH_LOCATION", "Berlin")
	t.Setenv("INTERN_SCOUT_SEARCH_API_KEY_KEYRING", "search-api-key")
	t.Setenv("INTERN_SCOUT_LEDGER_KIND", ledger.KindSheets)
	t.Setenv("INTERN_SCOUT_LEDGER_SPREADSHEET_ID", "sheet-123")
	t.Setenv("INTERN_SCOUT_LEDGER_SHEET", "Internships")
	t.Setenv("INTERN_SCOUT_FILTERS_EXCLUDED_SITES", "linkedin.com,indeed.com")
	setupEnv()

	config, err := getConfig()
	if err != nil {
		t.Fatalf("get config: %v", err)
	}

	if config.Search.Query != "software engineering internship" {
		t.Fatalf("unexpected query %q", config.Search.Query)
	}
	if config.Search.Location != "Berlin" {
		t.Fatalf("unexpected location %q", config.Search.Location)
	}
	if config.Search.APIKeyKeyring != "search-api-key" {
		t.Fatalf("unexpected keyring account %q", config.Search.APIKeyKeyring)
	}
	if config.Ledger.Kind != ledger.KindSheets || config.Ledger.SpreadsheetID != "sheet-123" || config.Ledger.Sheet != "Internships" {
		t.Fatalf("unexpected ledger config %+v", config.Ledger)
	}
	if len(config.Filters.ExcludedSites) != 2 || config.Filters.ExcludedSites[1] != "indeed.com" {
		t.Fatalf("unexpected excluded sites %v", config.Filters.ExcludedSites)
	}
	if config.Search.Results != 10 || config.Resume != "resume.txt" {
		t.Fatalf("defaults lost: results=%d resume=%q", config.Search.Results, config.Resume)
	}
}

func TestGetConfigMixesSetValuesAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	t.Setenv("INTERN_SCOUT_LEDGER_PATH", "/tmp/env-jobs.xlsx")
	setupEnv()
	viper.Set("ledger.kind", ledger.KindXLSX)

	config, err := getConfig()
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if config.Ledger.Kind != ledger.KindXLSX || config.Ledger.Path != "/tmp/env-jobs.xlsx" {
		t.Fatalf("unexpected ledger config %+v", config.Ledger)
	}
}
