package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override, e.g. BRIDGE_TABLEAU__API_TIMEOUT_SECONDS.
const EnvPrefix = "BRIDGE_"

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	AI      AIConfig      `koanf:"ai"`
	Tableau TableauConfig `koanf:"tableau"`
	Caching CachingConfig `koanf:"caching"`
	Prompt  PromptConfig  `koanf:"prompt"`
	Log     LogConfig     `koanf:"log"`
}

type ServerConfig struct {
	Port                   int      `koanf:"port"`
	CORSOrigins            []string `koanf:"cors_origins"`
	ShutdownTimeoutSeconds int      `koanf:"shutdown_timeout_seconds"`
}

type AIConfig struct {
	Provider         string           `koanf:"provider"` // gemini | openai
	ModelName        string           `koanf:"model_name"`
	Project          string           `koanf:"project"`
	Location         string           `koanf:"location"`
	APIKey           string           `koanf:"api_key"`
	OpenAIAPIKey     string           `koanf:"openai_api_key"`
	OpenAIBaseURL    string           `koanf:"openai_base_url"`
	GenerationConfig GenerationConfig `koanf:"generation_config"`
}

type GenerationConfig struct {
	Temperature     float32 `koanf:"temperature"`
	TopP            float32 `koanf:"top_p"`
	TopK            float32 `koanf:"top_k"`
	MaxOutputTokens int32   `koanf:"max_output_tokens"`
}

type TableauConfig struct {
	DefaultAPIVersion          string `koanf:"default_api_version"`
	VersionCheckTimeoutSeconds int    `koanf:"version_check_timeout_seconds"`
	APITimeoutSeconds          int    `koanf:"api_timeout_seconds"`
	SignoutTimeoutSeconds      int    `koanf:"signout_timeout_seconds"`
	// InsecureSkipVerify accepts self-signed certificates of on-premises servers.
	InsecureSkipVerify bool `koanf:"insecure_skip_verify"`
}

type CachingConfig struct {
	DatasourceLUIDTTLHours float64 `koanf:"datasource_luid_ttl_hours"`
}

type PromptConfig struct {
	MaxRows      int    `koanf:"max_rows"`
	MaxFields    int    `koanf:"max_fields"`
	SampleFormat string `koanf:"sample_format"` // csv | markdown
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json | console
}

func (c TableauConfig) VersionCheckTimeout() time.Duration {
	return time.Duration(c.VersionCheckTimeoutSeconds) * time.Second
}

func (c TableauConfig) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

func (c TableauConfig) SignoutTimeout() time.Duration {
	return time.Duration(c.SignoutTimeoutSeconds) * time.Second
}

func (c CachingConfig) DatasourceLUIDTTL() time.Duration {
	return time.Duration(c.DatasourceLUIDTTLHours * float64(time.Hour))
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c ServerConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load builds the configuration from, in increasing priority: built-in
// defaults, the YAML file at path (skipped when path is empty and no default
// file exists), BRIDGE_* environment variables, the well-known variables of
// existing deployments (PORT, GEMINI_API_KEY, ...) and explicitly set flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	// .env is optional, same as in local development setups
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// BRIDGE_TABLEAU__API_TIMEOUT_SECONDS -> tableau.api_timeout_seconds
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if err := k.Load(confmap.Provider(wellKnownEnv(k.String("ai.provider")), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			switch f.Name {
			case "port":
				return "server.port", posflag.FlagVal(flags, f)
			case "log-level":
				return "log.level", posflag.FlagVal(flags, f)
			}
			return "", nil
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// wellKnownEnv maps the plain variable names used by existing deployments
// onto config keys. Only variables that are set are returned. OPENAI_MODEL
// names an OpenAI model, so it only applies to the openai provider.
func wellKnownEnv(provider string) map[string]interface{} {
	out := map[string]interface{}{}
	mapping := map[string]string{
		"PORT":                  "server.port",
		"GOOGLE_CLOUD_PROJECT":  "ai.project",
		"GOOGLE_CLOUD_LOCATION": "ai.location",
		"GEMINI_API_KEY":        "ai.api_key",
		"OPENAI_API_KEY":        "ai.openai_api_key",
	}
	if provider == ProviderOpenAI {
		mapping["OPENAI_MODEL"] = "ai.model_name"
	}
	for name, key := range mapping {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			out[key] = v
		}
	}
	return out
}

func findConfigFile() string {
	for _, name := range []string{"config.yaml", "config.yml", "configs/config.yaml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid ai provider: %q", c.AI.Provider)
	}
	switch c.Prompt.SampleFormat {
	case SampleFormatCSV, SampleFormatMarkdown:
	default:
		return fmt.Errorf("invalid prompt sample format: %q", c.Prompt.SampleFormat)
	}
	if c.Prompt.MaxRows <= 0 || c.Prompt.MaxFields <= 0 {
		return fmt.Errorf("prompt caps must be positive (max_rows=%d, max_fields=%d)",
			c.Prompt.MaxRows, c.Prompt.MaxFields)
	}
	if c.Tableau.DefaultAPIVersion == "" {
		return fmt.Errorf("tableau default_api_version is required")
	}
	if c.Tableau.VersionCheckTimeoutSeconds <= 0 ||
		c.Tableau.APITimeoutSeconds <= 0 ||
		c.Tableau.SignoutTimeoutSeconds <= 0 {
		return fmt.Errorf("tableau timeouts must be positive")
	}
	if c.Caching.DatasourceLUIDTTLHours <= 0 {
		return fmt.Errorf("caching datasource_luid_ttl_hours must be positive")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}
	return nil
}
