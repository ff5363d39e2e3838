package main

import (
	"os"

	"github.com/kobihk/bzgate"
	"github.com/spf13/cobra"
)

var (
	flagConfig         string
	flagURL            string
	flagAPIKey         string
	flagProductVersion string
	flagLooseFields    string
)

var rootCmd = &cobra.Command{
	Use:   "bzgate",
	Short: "Inspect Bugzilla-based test gating",
	Long: `bzgate inspects the gating decisions the bzgate library would make
for a set of Bugzilla bugs, using the same bugzilla.yaml / environment
configuration the test suite uses.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to bugzilla.yaml (default ./bugzilla.yaml)")
	pf.StringVar(&flagURL, "url", "", "Bugzilla URL, overrides config")
	pf.StringVar(&flagAPIKey, "api-key", "", "Bugzilla API key, overrides config")
	pf.StringVar(&flagProductVersion, "product-version", "", "tested product version, overrides config")
	pf.StringVar(&flagLooseFields, "looseversion-fields", "", "comma-separated bug fields compared as versions, overrides config")

	rootCmd.AddCommand(checkCmd)
}

// loadCLIConfig layers flags over environment over file, the same
// precedence the library documents for explicit options.
func loadCLIConfig() (bzgate.Config, error) {
	if flagConfig != "" {
		os.Setenv("BZGATE_CONFIG", flagConfig)
	}
	cfg, err := bzgate.LoadConfig()
	if err != nil {
		return bzgate.Config{}, err
	}
	if flagURL != "" {
		cfg.URL = flagURL
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagProductVersion != "" {
		cfg.ProductVersion = flagProductVersion
	}
	if flagLooseFields != "" {
		cfg.LooseFields = splitComma(flagLooseFields)
	}
	return cfg, nil
}
