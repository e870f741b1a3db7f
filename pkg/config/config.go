package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	CORSOrigins []string
	DataDir     string `mapstructure:"DATA_DIR"`

	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseClientEmail     string `mapstructure:"FIREBASE_CLIENT_EMAIL"`
	FirebasePrivateKey      string `mapstructure:"FIREBASE_PRIVATE_KEY"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DevAuthSecret string `mapstructure:"DEV_AUTH_SECRET"`

	AIProvider    string `mapstructure:"AI_PROVIDER"`
	GroqAPIKey    string `mapstructure:"GROQ_API_KEY"`
	GroqModel     string `mapstructure:"GROQ_MODEL"`
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`
	OllamaBaseURL string `mapstructure:"OLLAMA_BASE_URL"`
	OllamaModel   string `mapstructure:"OLLAMA_MODEL"`

	TranscriptionProvider string `mapstructure:"TRANSCRIPTION_PROVIDER"`
	AssemblyAIAPIKey      string `mapstructure:"ASSEMBLYAI_API_KEY"`
	DeepgramAPIKey        string `mapstructure:"DEEPGRAM_API_KEY"`
	OpenAIAPIKey          string `mapstructure:"OPENAI_API_KEY"`

	MaxUploadMB int64 `mapstructure:"MAX_UPLOAD_MB"`
}

// keys lists every variable the service reads. check-config iterates it.
var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "CORS_ORIGINS", "DATA_DIR",
	"FIREBASE_PROJECT_ID", "FIREBASE_CLIENT_EMAIL", "FIREBASE_PRIVATE_KEY", "FIREBASE_CREDENTIALS_FILE",
	"DATABASE_URL", "DEV_AUTH_SECRET",
	"AI_PROVIDER", "GROQ_API_KEY", "GROQ_MODEL", "GEMINI_API_KEY", "OLLAMA_BASE_URL", "OLLAMA_MODEL",
	"TRANSCRIPTION_PROVIDER", "ASSEMBLYAI_API_KEY", "DEEPGRAM_API_KEY", "OPENAI_API_KEY",
	"MAX_UPLOAD_MB",
}

// Keys returns the names of all supported environment variables
func Keys() []string {
	return append([]string(nil), keys...)
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("AI_PROVIDER", "auto")
	v.SetDefault("GROQ_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434")
	v.SetDefault("OLLAMA_MODEL", "llama3")
	v.SetDefault("TRANSCRIPTION_PROVIDER", "assemblyai")
	v.SetDefault("MAX_UPLOAD_MB", 100)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.FirebasePrivateKey = NormalizePrivateKey(cfg.FirebasePrivateKey)
	cfg.AIProvider = strings.ToLower(cfg.AIProvider)
	cfg.TranscriptionProvider = strings.ToLower(cfg.TranscriptionProvider)
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 100
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) IsDev() bool {
	return !c.IsProduction()
}

// HasFirebaseEnvCredentials reports whether the three inline service-account variables are set
func (c *Config) HasFirebaseEnvCredentials() bool {
	return c.FirebaseProjectID != "" && c.FirebaseClientEmail != "" && c.FirebasePrivateKey != ""
}

// HasFirebase reports whether any Firebase credential source is configured
func (c *Config) HasFirebase() bool {
	return c.HasFirebaseEnvCredentials() || c.FirebaseCredentialsFile != ""
}

// MaxUploadBytes is the multipart limit for transcription uploads
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Validate checks that the configuration is safe to run
func (c *Config) Validate() error {
	var errs []error
	if c.Env != "production" && c.Env != "development" && c.Env != "test" {
		errs = append(errs, fmt.Errorf("ENV must be development, test or production, got %q", c.Env))
	}
	if c.IsProduction() {
		if c.DevAuthSecret != "" {
			errs = append(errs, errors.New("DEV_AUTH_SECRET must not be set in production"))
		}
		if !c.HasFirebase() {
			errs = append(errs, errors.New("firebase credentials are required in production"))
		}
	}
	partial := c.FirebaseProjectID != "" || c.FirebaseClientEmail != "" || c.FirebasePrivateKey != ""
	if partial && !c.HasFirebaseEnvCredentials() && c.FirebaseCredentialsFile == "" {
		errs = append(errs, errors.New("FIREBASE_PROJECT_ID, FIREBASE_CLIENT_EMAIL and FIREBASE_PRIVATE_KEY must be set together"))
	}
	switch c.AIProvider {
	case "auto", "groq", "gemini", "ollama":
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider))
	}
	switch c.TranscriptionProvider {
	case "assemblyai", "deepgram", "whisper":
	default:
		errs = append(errs, fmt.Errorf("unknown TRANSCRIPTION_PROVIDER %q", c.TranscriptionProvider))
	}
	return errors.Join(errs...)
}

// NormalizePrivateKey strips surrounding quotes and expands literal \n sequences, which is how
// PEM keys survive being pasted into a single env var.
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) >= 2 {
		if (key[0] == '"' && key[len(key)-1] == '"') || (key[0] == '\'' && key[len(key)-1] == '\'') {
			key = key[1 : len(key)-1]
		}
	}
	return strings.ReplaceAll(key, `\n`, "\n")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
