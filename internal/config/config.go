package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	CORS     CORSConfig
	Fetch    FetchConfig
	Pipeline PipelineConfig
	OCR      OCRConfig
	LLM      LLMConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// FetchConfig holds document retrieval settings.
type FetchConfig struct {
	MaxIngestSizeMB int64  `mapstructure:"max_ingest_size_mb"`
	MaxAssetSizeMB  int64  `mapstructure:"max_asset_size_mb"`
	TimeoutSecs     int    `mapstructure:"timeout_secs"`
	AllowLocalPaths bool   `mapstructure:"allow_local_paths"`
	UserAgent       string `mapstructure:"user_agent"`
}

// PipelineConfig holds page normalization and extraction settings.
type PipelineConfig struct {
	RenderDPI             int     `mapstructure:"render_dpi"`
	MaxPages              int     `mapstructure:"max_pages"`
	PageConcurrency       int     `mapstructure:"page_concurrency"`
	MinOCRLines           int     `mapstructure:"min_ocr_lines"`
	ConfidenceFloor       float64 `mapstructure:"confidence_floor"`
	SimilarityThreshold   float64 `mapstructure:"similarity_threshold"`
	MaxPrimaryPerCategory int     `mapstructure:"max_primary_per_category"`
	RetryAttempts         int     `mapstructure:"retry_attempts"`
	RetryBaseDelayMS      int     `mapstructure:"retry_base_delay_ms"`
}

// OCRConfig holds OCR engine and PDF rendering tool settings.
type OCRConfig struct {
	TesseractPath string `mapstructure:"tesseract_path"`
	PdftoppmPath  string `mapstructure:"pdftoppm_path"`
	Languages     string `mapstructure:"languages"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
}

// LLMProviderConfig holds settings for a single LLM structuring provider.
type LLMProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	TextModel   string `mapstructure:"text_model"`
	VisionModel string `mapstructure:"vision_model"`
	MaxRetries  int    `mapstructure:"max_retries"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds LLM structuring settings with multi-provider support.
type LLMConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	TextModel   string `mapstructure:"text_model"`
	VisionModel string `mapstructure:"vision_model"`
	MaxRetries  int    `mapstructure:"max_retries"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
	Tertiary  LLMProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary LLM provider config, falling back to legacy flat fields.
func (l *LLMConfig) PrimaryConfig() *LLMProviderConfig {
	if l.Primary.Provider != "" {
		return &l.Primary
	}
	return &LLMProviderConfig{
		Provider:    l.Provider,
		APIKey:      l.APIKey,
		TextModel:   l.TextModel,
		VisionModel: l.VisionModel,
		MaxRetries:  l.MaxRetries,
		TimeoutSecs: l.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary LLM provider config, or nil if not configured.
func (l *LLMConfig) SecondaryConfig() *LLMProviderConfig {
	if l.Secondary.Provider != "" {
		return &l.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary LLM provider config, or nil if not configured.
func (l *LLMConfig) TertiaryConfig() *LLMProviderConfig {
	if l.Tertiary.Provider != "" {
		return &l.Tertiary
	}
	return nil
}

// MaxIngestSizeBytes returns the ingest ceiling in bytes.
func (f *FetchConfig) MaxIngestSizeBytes() int64 {
	return f.MaxIngestSizeMB * 1024 * 1024
}

// MaxAssetSizeBytes returns the generic asset ceiling in bytes.
func (f *FetchConfig) MaxAssetSizeBytes() int64 {
	return f.MaxAssetSizeMB * 1024 * 1024
}

// Timeout returns the fetch wall-clock timeout.
func (f *FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// Load reads configuration from environment variables with the DOCSIFT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:3001,http://127.0.0.1:3001")

	// Fetch defaults
	v.SetDefault("fetch.max_ingest_size_mb", 50)
	v.SetDefault("fetch.max_asset_size_mb", 10)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.allow_local_paths", false)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	// Pipeline defaults
	v.SetDefault("pipeline.render_dpi", 200)
	v.SetDefault("pipeline.max_pages", 20)
	v.SetDefault("pipeline.page_concurrency", 4)
	v.SetDefault("pipeline.min_ocr_lines", 3)
	v.SetDefault("pipeline.confidence_floor", 0.6)
	v.SetDefault("pipeline.similarity_threshold", 0.5)
	v.SetDefault("pipeline.max_primary_per_category", 2)
	v.SetDefault("pipeline.retry_attempts", 2)
	v.SetDefault("pipeline.retry_base_delay_ms", 500)

	// OCR defaults
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.pdftoppm_path", "pdftoppm")
	v.SetDefault("ocr.languages", "eng")
	v.SetDefault("ocr.timeout_secs", 120)

	// LLM defaults (legacy flat)
	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.text_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.vision_model", "llama-3.2-90b-vision-preview")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.timeout_secs", 120)

	// LLM primary/secondary/tertiary defaults
	v.SetDefault("llm.primary.provider", "")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.text_model", "")
	v.SetDefault("llm.primary.vision_model", "")
	v.SetDefault("llm.primary.max_retries", 2)
	v.SetDefault("llm.primary.timeout_secs", 120)
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.text_model", "")
	v.SetDefault("llm.secondary.vision_model", "")
	v.SetDefault("llm.secondary.max_retries", 2)
	v.SetDefault("llm.secondary.timeout_secs", 120)
	v.SetDefault("llm.tertiary.provider", "")
	v.SetDefault("llm.tertiary.api_key", "")
	v.SetDefault("llm.tertiary.text_model", "")
	v.SetDefault("llm.tertiary.vision_model", "")
	v.SetDefault("llm.tertiary.max_retries", 2)
	v.SetDefault("llm.tertiary.timeout_secs", 120)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "DOCSIFT_SERVER_PORT",
		"server.read_timeout":  "DOCSIFT_SERVER_READ_TIMEOUT",
		"server.write_timeout": "DOCSIFT_SERVER_WRITE_TIMEOUT",
		"server.environment":   "DOCSIFT_SERVER_ENVIRONMENT",
		"log.level":            "DOCSIFT_LOG_LEVEL",
		"log.format":           "DOCSIFT_LOG_FORMAT",
		"cors.allowed_origins": "DOCSIFT_CORS_ALLOWED_ORIGINS",
		"fetch.max_ingest_size_mb":          "DOCSIFT_FETCH_MAX_INGEST_SIZE_MB",
		"fetch.max_asset_size_mb":           "DOCSIFT_FETCH_MAX_ASSET_SIZE_MB",
		"fetch.timeout_secs":                "DOCSIFT_FETCH_TIMEOUT_SECS",
		"fetch.allow_local_paths":           "DOCSIFT_FETCH_ALLOW_LOCAL_PATHS",
		"fetch.user_agent":                  "DOCSIFT_FETCH_USER_AGENT",
		"pipeline.render_dpi":               "DOCSIFT_PIPELINE_RENDER_DPI",
		"pipeline.max_pages":                "DOCSIFT_PIPELINE_MAX_PAGES",
		"pipeline.page_concurrency":         "DOCSIFT_PIPELINE_PAGE_CONCURRENCY",
		"pipeline.min_ocr_lines":            "DOCSIFT_PIPELINE_MIN_OCR_LINES",
		"pipeline.confidence_floor":         "DOCSIFT_PIPELINE_CONFIDENCE_FLOOR",
		"pipeline.similarity_threshold":     "DOCSIFT_PIPELINE_SIMILARITY_THRESHOLD",
		"pipeline.max_primary_per_category": "DOCSIFT_PIPELINE_MAX_PRIMARY_PER_CATEGORY",
		"pipeline.retry_attempts":           "DOCSIFT_PIPELINE_RETRY_ATTEMPTS",
		"pipeline.retry_base_delay_ms":      "DOCSIFT_PIPELINE_RETRY_BASE_DELAY_MS",
		"ocr.tesseract_path":                "DOCSIFT_OCR_TESSERACT_PATH",
		"ocr.pdftoppm_path":                 "DOCSIFT_OCR_PDFTOPPM_PATH",
		"ocr.languages":                     "DOCSIFT_OCR_LANGUAGES",
		"ocr.timeout_secs":                  "DOCSIFT_OCR_TIMEOUT_SECS",
		"llm.provider":                      "DOCSIFT_LLM_PROVIDER",
		"llm.api_key":                       "DOCSIFT_LLM_API_KEY",
		"llm.text_model":                    "DOCSIFT_LLM_TEXT_MODEL",
		"llm.vision_model":                  "DOCSIFT_LLM_VISION_MODEL",
		"llm.max_retries":                   "DOCSIFT_LLM_MAX_RETRIES",
		"llm.timeout_secs":                  "DOCSIFT_LLM_TIMEOUT_SECS",
		"llm.primary.provider":              "DOCSIFT_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":               "DOCSIFT_LLM_PRIMARY_API_KEY",
		"llm.primary.text_model":            "DOCSIFT_LLM_PRIMARY_TEXT_MODEL",
		"llm.primary.vision_model":          "DOCSIFT_LLM_PRIMARY_VISION_MODEL",
		"llm.primary.max_retries":           "DOCSIFT_LLM_PRIMARY_MAX_RETRIES",
		"llm.primary.timeout_secs":          "DOCSIFT_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":            "DOCSIFT_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":             "DOCSIFT_LLM_SECONDARY_API_KEY",
		"llm.secondary.text_model":          "DOCSIFT_LLM_SECONDARY_TEXT_MODEL",
		"llm.secondary.vision_model":        "DOCSIFT_LLM_SECONDARY_VISION_MODEL",
		"llm.secondary.max_retries":         "DOCSIFT_LLM_SECONDARY_MAX_RETRIES",
		"llm.secondary.timeout_secs":        "DOCSIFT_LLM_SECONDARY_TIMEOUT_SECS",
		"llm.tertiary.provider":             "DOCSIFT_LLM_TERTIARY_PROVIDER",
		"llm.tertiary.api_key":              "DOCSIFT_LLM_TERTIARY_API_KEY",
		"llm.tertiary.text_model":           "DOCSIFT_LLM_TERTIARY_TEXT_MODEL",
		"llm.tertiary.vision_model":         "DOCSIFT_LLM_TERTIARY_VISION_MODEL",
		"llm.tertiary.max_retries":          "DOCSIFT_LLM_TERTIARY_MAX_RETRIES",
		"llm.tertiary.timeout_secs":         "DOCSIFT_LLM_TERTIARY_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCSIFT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCSIFT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Fetch = FetchConfig{
		MaxIngestSizeMB: v.GetInt64("fetch.max_ingest_size_mb"),
		MaxAssetSizeMB:  v.GetInt64("fetch.max_asset_size_mb"),
		TimeoutSecs:     v.GetInt("fetch.timeout_secs"),
		AllowLocalPaths: v.GetBool("fetch.allow_local_paths"),
		UserAgent:       v.GetString("fetch.user_agent"),
	}

	cfg.Pipeline = PipelineConfig{
		RenderDPI:             v.GetInt("pipeline.render_dpi"),
		MaxPages:              v.GetInt("pipeline.max_pages"),
		PageConcurrency:       v.GetInt("pipeline.page_concurrency"),
		MinOCRLines:           v.GetInt("pipeline.min_ocr_lines"),
		ConfidenceFloor:       v.GetFloat64("pipeline.confidence_floor"),
		SimilarityThreshold:   v.GetFloat64("pipeline.similarity_threshold"),
		MaxPrimaryPerCategory: v.GetInt("pipeline.max_primary_per_category"),
		RetryAttempts:         v.GetInt("pipeline.retry_attempts"),
		RetryBaseDelayMS:      v.GetInt("pipeline.retry_base_delay_ms"),
	}

	cfg.OCR = OCRConfig{
		TesseractPath: v.GetString("ocr.tesseract_path"),
		PdftoppmPath:  v.GetString("ocr.pdftoppm_path"),
		Languages:     v.GetString("ocr.languages"),
		TimeoutSecs:   v.GetInt("ocr.timeout_secs"),
	}

	cfg.LLM = LLMConfig{
		Provider:    v.GetString("llm.provider"),
		APIKey:      v.GetString("llm.api_key"),
		TextModel:   v.GetString("llm.text_model"),
		VisionModel: v.GetString("llm.vision_model"),
		MaxRetries:  v.GetInt("llm.max_retries"),
		TimeoutSecs: v.GetInt("llm.timeout_secs"),
		Primary: LLMProviderConfig{
			Provider:    v.GetString("llm.primary.provider"),
			APIKey:      v.GetString("llm.primary.api_key"),
			TextModel:   v.GetString("llm.primary.text_model"),
			VisionModel: v.GetString("llm.primary.vision_model"),
			MaxRetries:  v.GetInt("llm.primary.max_retries"),
			TimeoutSecs: v.GetInt("llm.primary.timeout_secs"),
		},
		Secondary: LLMProviderConfig{
			Provider:    v.GetString("llm.secondary.provider"),
			APIKey:      v.GetString("llm.secondary.api_key"),
			TextModel:   v.GetString("llm.secondary.text_model"),
			VisionModel: v.GetString("llm.secondary.vision_model"),
			MaxRetries:  v.GetInt("llm.secondary.max_retries"),
			TimeoutSecs: v.GetInt("llm.secondary.timeout_secs"),
		},
		Tertiary: LLMProviderConfig{
			Provider:    v.GetString("llm.tertiary.provider"),
			APIKey:      v.GetString("llm.tertiary.api_key"),
			TextModel:   v.GetString("llm.tertiary.text_model"),
			VisionModel: v.GetString("llm.tertiary.vision_model"),
			MaxRetries:  v.GetInt("llm.tertiary.max_retries"),
			TimeoutSecs: v.GetInt("llm.tertiary.timeout_secs"),
		},
	}

	return cfg, nil
}
