// Package config loads and validates all environment variables at startup.
// Every other package receives typed values — nothing reads os.Getenv directly.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingCredential is returned when no text upstream can be configured.
var ErrMissingCredential = errors.New("config: at least one of GEMINI_API_KEY or OPENAI_API_KEY must be set")

// Topic is one entry of the topic catalogue.
type Topic struct {
	Name    string `json:"name"`
	Premium bool   `json:"premium"`
}

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port          string `envconfig:"PORT" default:"8080"`
	Env           string `envconfig:"ENV" default:"development"` // "development" | "staging" | "production"
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"*"`

	// ── Text upstreams ────────────────────────────────────────────────────────
	// Gemini is primary. An OpenAI-compatible endpoint is the secondary, or the
	// only provider when GEMINI_API_KEY is empty.
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	TextAttempts       int           `envconfig:"TEXT_ATTEMPTS" default:"2"`
	TextAttemptTimeout time.Duration `envconfig:"TEXT_ATTEMPT_TIMEOUT" default:"20s"`

	// ── Images ────────────────────────────────────────────────────────────────
	// Without UNSPLASH_ACCESS_KEY every image is the placeholder.
	UnsplashAccessKey   string        `envconfig:"UNSPLASH_ACCESS_KEY"`
	UnsplashBaseURL     string        `envconfig:"UNSPLASH_BASE_URL" default:"https://api.unsplash.com"`
	PlaceholderImageURL string        `envconfig:"PLACEHOLDER_IMAGE_URL"`
	ImageAttempts       int           `envconfig:"IMAGE_ATTEMPTS" default:"2"`
	ImageAttemptTimeout time.Duration `envconfig:"IMAGE_ATTEMPT_TIMEOUT" default:"5s"`
	ImageConcurrency    int           `envconfig:"IMAGE_CONCURRENCY" default:"0"` // 0 = unlimited

	MaxRoundSize int `envconfig:"MAX_ROUND_SIZE" default:"64"`

	// ── Cache ─────────────────────────────────────────────────────────────────
	RedisURL string        `envconfig:"REDIS_URL"` // empty → in-memory cache
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"24h"`

	// ── Question store ────────────────────────────────────────────────────────
	DatabaseURL        string `envconfig:"DATABASE_URL"` // empty → no persistence
	StoreLowWatermark  int    `envconfig:"STORE_LOW_WATERMARK" default:"20"`
	StoreHighWatermark int    `envconfig:"STORE_HIGH_WATERMARK" default:"100"`

	// ── Worker ────────────────────────────────────────────────────────────────
	WorkerCount      int `envconfig:"WORKER_COUNT" default:"3"`
	PersistQueueSize int `envconfig:"PERSIST_QUEUE_SIZE" default:"64"`
	MaxRetries       int `envconfig:"MAX_RETRIES" default:"3"`

	// ── Warmer ────────────────────────────────────────────────────────────────
	WarmTopics   []string      `envconfig:"WARM_TOPICS"`
	WarmInterval time.Duration `envconfig:"WARM_INTERVAL" default:"10m"`
	WarmBatch    int           `envconfig:"WARM_BATCH" default:"8"`

	// ── Catalogue ─────────────────────────────────────────────────────────────
	// Comma separated; a trailing * marks a premium topic.
	TopicList []string `envconfig:"TOPICS" default:"love,work,food,horror*"`
	Topics    []Topic  `ignored:"true"`
}

// Load reads all environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; real
// environment variables always take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // absent file is fine

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.Topics = ParseTopics(c.TopicList)
	c.WarmTopics = trimAll(c.WarmTopics)

	return &c, c.validate()
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

func (c *Config) validate() error {
	var errs []error

	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" {
		errs = append(errs, ErrMissingCredential)
	}
	if c.TextAttempts < 1 {
		errs = append(errs, fmt.Errorf("TEXT_ATTEMPTS must be at least 1, got %d", c.TextAttempts))
	}
	if c.ImageAttempts < 1 {
		errs = append(errs, fmt.Errorf("IMAGE_ATTEMPTS must be at least 1, got %d", c.ImageAttempts))
	}
	if c.MaxRoundSize < 2 {
		errs = append(errs, fmt.Errorf("MAX_ROUND_SIZE must be at least 2, got %d", c.MaxRoundSize))
	}
	if c.StoreLowWatermark < 0 || c.StoreHighWatermark < c.StoreLowWatermark {
		errs = append(errs, fmt.Errorf("store watermarks must satisfy 0 <= low (%d) <= high (%d)",
			c.StoreLowWatermark, c.StoreHighWatermark))
	}
	if len(c.Topics) == 0 {
		errs = append(errs, errors.New("TOPICS must name at least one topic"))
	}

	return errors.Join(errs...)
}

// ParseTopics turns "love", "horror*" entries into a catalogue, skipping
// blanks and duplicates.
func ParseTopics(list []string) []Topic {
	seen := make(map[string]bool, len(list))
	out := make([]Topic, 0, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		premium := strings.HasSuffix(raw, "*")
		name := strings.TrimSpace(strings.TrimSuffix(raw, "*"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, Topic{Name: name, Premium: premium})
	}
	return out
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
