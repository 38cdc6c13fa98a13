package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. EDGAR
	// rejects requests without a contact, e.g. "Jane Doe jane@example.com".
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
}

// FetchConfig holds settings for the document source.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Form is the filing form type to retrieve (default "10-K").
	Form string `json:"form" yaml:"form" mapstructure:"form" validate:"required"`

	// DataDir is the base directory holding data-<SYMBOL>/ corpus directories.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir" validate:"required"`

	// Concurrency bounds the number of years fetched at once (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency" validate:"min=1"`

	// RequestsPerSecond caps the request rate against EDGAR (default 8).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
}

// RecognizerBackend selects the named-entity recognizer.
type RecognizerBackend string

const (
	RecognizerProse RecognizerBackend = "prose"
	RecognizerSpacy RecognizerBackend = "spacy"
	RecognizerLLM   RecognizerBackend = "llm"
)

// RecognizerConfig holds settings for the entity extractor.
type RecognizerConfig struct {
	// Backend selects the recognizer: llm (default), spacy, or prose. prose
	// only labels PERSON.
	Backend RecognizerBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=prose spacy llm"`

	// BatchSize is the number of documents per recognizer call (default 1000).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size" validate:"min=1"`

	// Endpoint is the URL of the spaCy NER service (spacy backend only).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`

	// Model is the NER model name passed to the spaCy service (default
	// "en_core_web_sm"). The llm backend uses ai.model instead.
	Model string `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`

	// CachePath is the SQLite file used to cache per-document entities.
	// Empty disables the cache.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty" mapstructure:"cache_path"`

	// MaxRetries is the retry count for failed recognizer calls (llm backend, default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0"`
}

// AIConfig holds settings for the chat service used by curation and narration.
type AIConfig struct {
	// Provider selects the chat backend: together, openai, or ollama.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider" validate:"oneof=together openai ollama"`

	// Model is the model identifier (e.g. "mistralai/Mixtral-8x22B-Instruct-v0.1").
	Model string `json:"model" yaml:"model" mapstructure:"model" validate:"required"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey is the authentication key for hosted providers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is passed to the provider client. Curation calls the service
	// once, so the default is 0.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0"`
}

// RenderConfig holds settings for the word cloud renderer.
type RenderConfig struct {
	Width       int     `json:"width" yaml:"width" mapstructure:"width" validate:"min=1"`
	Height      int     `json:"height" yaml:"height" mapstructure:"height" validate:"min=1"`
	MaxWords    int     `json:"max_words" yaml:"max_words" mapstructure:"max_words" validate:"min=1"`
	MinFontSize float64 `json:"min_font_size" yaml:"min_font_size" mapstructure:"min_font_size" validate:"gt=0"`
	MaxFontSize float64 `json:"max_font_size" yaml:"max_font_size" mapstructure:"max_font_size" validate:"gtefield=MinFontSize"`

	// Background is a hex colour such as "#000000".
	Background string `json:"background" yaml:"background" mapstructure:"background"`
}

// OutputConfig names the run artifacts. Both are overwritten on every run.
type OutputConfig struct {
	ImagePath  string `json:"image_path" yaml:"image_path" mapstructure:"image_path" validate:"required"`
	ReportPath string `json:"report_path" yaml:"report_path" mapstructure:"report_path" validate:"required"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Recognizer RecognizerConfig `json:"recognizer" yaml:"recognizer" mapstructure:"recognizer"`
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Render     RenderConfig     `json:"render" yaml:"render" mapstructure:"render"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
}

// RunRequest identifies one analysis run.
type RunRequest struct {
	Symbol    string `json:"symbol" yaml:"symbol" validate:"required"`
	StartYear int    `json:"start_year" yaml:"start_year" validate:"min=1,max=9999"`
	EndYear   int    `json:"end_year" yaml:"end_year" validate:"min=1,max=9999"`
}
