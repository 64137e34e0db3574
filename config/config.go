package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string              `mapstructure:"port"`
	UploadDir  string              `mapstructure:"upload_dir"`
	TopK       int                 `mapstructure:"top_k"`
	AuthKey    string              `mapstructure:"AUTH_KEY"`
	MongoURI   string              `mapstructure:"MONGODB_URI"`
	AI         AIConfig            `mapstructure:"ai"`
	Embedding  EmbeddingConfig     `mapstructure:"embedding"`
	Weaviate   WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
	Classifier ClassifierConfig    `mapstructure:"classifier"`
	Chunking   ChunkingConfig      `mapstructure:"chunking"`
}

type AIConfig struct {
	Provider      string   `mapstructure:"provider"` // "openai" or "gemini"
	Endpoint      string   `mapstructure:"endpoint"`
	Model         string   `mapstructure:"model"`
	OpenAIAPIKey  string   `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys []string `mapstructure:"gemini_api_keys"`
}

type EmbeddingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"` // Matches env var
}

type ClassifierConfig struct {
	// ConfidenceFloor is the minimum distinct keyword matches a type needs
	// to win classification. Tunable rather than a hidden constant.
	ConfidenceFloor int `mapstructure:"confidence_floor"`
}

type ChunkingConfig struct {
	MaxChunkSize int `mapstructure:"max_chunk_size"`
	OverlapSize  int `mapstructure:"overlap_size"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("AUTH_KEY")
	v.BindEnv("ai.gemini_api_keys", "GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	// Secrets are bound at the top level; copy the nested ones down.
	config.AI.OpenAIAPIKey = v.GetString("OPENAI_API_KEY")
	config.Weaviate.APIKey = v.GetString("WEAVIATE_APIKEY")
	if keys := v.GetStringSlice("ai.gemini_api_keys"); len(keys) > 0 {
		config.AI.GeminiAPIKeys = keys
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Classifier.ConfidenceFloor <= 0 {
		c.Classifier.ConfidenceFloor = 3
	}
	if c.Chunking.MaxChunkSize <= 0 {
		c.Chunking.MaxChunkSize = 1000
	}
	if c.Chunking.OverlapSize <= 0 {
		c.Chunking.OverlapSize = 200
	}
}

// validate fails fast on missing deployment secrets; the process must not
// come up partially configured.
func (c *Config) validate() error {
	if c.AuthKey == "" {
		return fmt.Errorf("AUTH_KEY is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.Weaviate.Host == "" {
		return fmt.Errorf("weaviate_store_config.host is required")
	}
	if c.AI.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.AI.Provider == "gemini" && len(c.AI.GeminiAPIKeys) == 0 {
		return fmt.Errorf("GEMINI_API_KEY is required when ai.provider is gemini")
	}
	return nil
}
