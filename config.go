package bzgate

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the tracker integration surface. Precedence is explicit values
// set by the caller (or CLI flags) over environment variables over the
// config file. Missing required values do not error: gating is silently
// disabled and every annotated test runs normally.
type Config struct {
	URL      string `yaml:"bugzilla_url"`
	Username string `yaml:"bugzilla_username"`
	Password string `yaml:"bugzilla_password"`
	APIKey   string `yaml:"bugzilla_api_key"`

	ProductVersion string `yaml:"product_version"`

	// LooseFields names the bug fields whose reads go through the
	// ordered-version overlay, e.g. fixed_in and target_release.
	LooseFields []string `yaml:"looseversion_fields"`

	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`
}

const defaultConfigPath = "bugzilla.yaml"

// LoadConfig reads bugzilla.yaml (or $BZGATE_CONFIG) if present, then
// applies environment overrides. A missing file is fine; a malformed one is
// not.
func LoadConfig() (Config, error) {
	var cfg Config

	configPath := defaultConfigPath
	if envPath := os.Getenv("BZGATE_CONFIG"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	envOverride(&cfg.URL, "BUGZILLA_URL")
	envOverride(&cfg.Username, "BUGZILLA_USERNAME")
	envOverride(&cfg.Password, "BUGZILLA_PASSWORD")
	envOverride(&cfg.APIKey, "BUGZILLA_API_KEY")
	envOverride(&cfg.ProductVersion, "BUGZILLA_PRODUCT_VERSION")
	if err := envOverrideInt(&cfg.HTTPTimeoutSeconds, "BUGZILLA_HTTP_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	}

	if fields := os.Getenv("BUGZILLA_LOOSEVERSION_FIELDS"); fields != "" {
		cfg.LooseFields = splitFieldList(fields)
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return Config{}, fmt.Errorf("invalid http_timeout_seconds %d: must be >= 0", cfg.HTTPTimeoutSeconds)
	}
	return cfg, nil
}

// Complete reports whether enough is configured to gate tests: the tracker
// URL and the tested product version. Credentials stay optional, anonymous
// REST reads work on public trackers.
func (c Config) Complete() bool {
	return c.URL != "" && c.ProductVersion != ""
}

func splitFieldList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
