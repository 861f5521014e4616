package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Examiner ExaminerConfig
	STT      STTConfig
	LLM      LLMConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	StaticDir string
}

type ExaminerConfig struct {
	MinAudioBytes int
	Language      string
	PromptsFile   string // optional override for the embedded prompt set
}

type STTConfig struct {
	Backend      string // "groq", "openai" or "local"
	GroqKey      string
	OpenAIKey    string
	Model        string
	BaseURL      string
	LocalBaseURL string // default: "http://localhost:8178"
}

type LLMConfig struct {
	GoogleKey       string
	OpenAIKey       string
	AnthropicKey    string
	OllamaURL       string
	DefaultProvider string
	DefaultModel    string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	minAudio, err := getEnvInt("MIN_AUDIO_BYTES", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_AUDIO_BYTES: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	redisEnabled, err := getEnvBool("REDIS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ENABLED: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "0.0.0.0"),
			Port:      port,
			StaticDir: getEnv("STATIC_DIR", "static"),
		},
		Examiner: ExaminerConfig{
			MinAudioBytes: minAudio,
			Language:      getEnv("STT_LANGUAGE", "en"),
			PromptsFile:   getEnv("PROMPTS_FILE", ""),
		},
		STT: STTConfig{
			Backend:      strings.ToLower(getEnv("STT_BACKEND", "groq")),
			GroqKey:      getEnv("GROQ_API_KEY", ""),
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			Model:        getEnv("STT_MODEL", ""),
			BaseURL:      getEnv("STT_BASE_URL", ""),
			LocalBaseURL: getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
		},
		LLM: LLMConfig{
			GoogleKey:       getEnv("GOOGLE_API_KEY", ""),
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:    getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:       getEnv("OLLAMA_URL", ""),
			DefaultProvider: strings.ToLower(getEnv("LLM_DEFAULT_PROVIDER", "gemini")),
			DefaultModel:    getEnv("LLM_DEFAULT_MODEL", "gemini-2.5-flash"),
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", ""), // empty: embedded schema
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MissingCredentials lists the provider keys required by the selected
// backends that are not set. A non-empty result does not stop the process.
func (c *Config) MissingCredentials() []string {
	var missing []string

	switch c.STT.Backend {
	case "groq":
		if c.STT.GroqKey == "" {
			missing = append(missing, "GROQ_API_KEY")
		}
	case "openai":
		if c.STT.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	}

	switch c.LLM.DefaultProvider {
	case "gemini":
		if c.LLM.GoogleKey == "" {
			missing = append(missing, "GOOGLE_API_KEY")
		}
	case "openai":
		if c.LLM.OpenAIKey == "" && !contains(missing, "OPENAI_API_KEY") {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case "ollama":
		if c.LLM.OllamaURL == "" {
			missing = append(missing, "OLLAMA_URL")
		}
	}

	return missing
}

func (c *Config) Validate() error {
	switch c.STT.Backend {
	case "groq", "openai", "local":
	default:
		return fmt.Errorf("unknown STT_BACKEND %q", c.STT.Backend)
	}
	switch c.LLM.DefaultProvider {
	case "gemini", "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("unknown LLM_DEFAULT_PROVIDER %q", c.LLM.DefaultProvider)
	}
	if c.Examiner.MinAudioBytes < 0 {
		return fmt.Errorf("MIN_AUDIO_BYTES must not be negative")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}
