package config

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	SampleFormatCSV      = "csv"
	SampleFormatMarkdown = "markdown"
)

// Default configuration values.
const (
	DefaultPort              = 8000
	DefaultModelName         = "gemini-2.0-flash"
	DefaultLocation          = "us-central1"
	DefaultAPIVersion        = "3.19"
	DefaultMaxRows           = 50
	DefaultMaxFields         = 15
	DefaultLUIDCacheTTLHours = 4
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.port":                            DefaultPort,
		"server.cors_origins":                    []string{"*"},
		"server.shutdown_timeout_seconds":        10,
		"ai.provider":                            ProviderGemini,
		"ai.model_name":                          DefaultModelName,
		"ai.location":                            DefaultLocation,
		"ai.generation_config.temperature":       0.3,
		"ai.generation_config.top_p":             0.8,
		"ai.generation_config.top_k":             20,
		"ai.generation_config.max_output_tokens": 1024,
		"tableau.default_api_version":            DefaultAPIVersion,
		"tableau.version_check_timeout_seconds":  5,
		"tableau.api_timeout_seconds":            30,
		"tableau.signout_timeout_seconds":        5,
		"tableau.insecure_skip_verify":           true,
		"caching.datasource_luid_ttl_hours":      DefaultLUIDCacheTTLHours,
		"prompt.max_rows":                        DefaultMaxRows,
		"prompt.max_fields":                      DefaultMaxFields,
		"prompt.sample_format":                   SampleFormatCSV,
		"log.level":                              "info",
		"log.format":                             "json",
	}
}
