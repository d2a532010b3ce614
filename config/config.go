package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string              `mapstructure:"port"`
	AIEndpoint          string              `mapstructure:"ai_endpoint"`
	ChatModels          []string            `mapstructure:"chat_models"`
	OpenAIAPIKey        string              `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys       []string            `mapstructure:"-"`
	GeminiModel         string              `mapstructure:"gemini_model"`
	Chunking            ChunkingConfig      `mapstructure:"chunking"`
	Embedding           EmbeddingConfig     `mapstructure:"embedding"`
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
	MinioConfig         MinioConfig         `mapstructure:"minio_config"`
	MongoURI            string              `mapstructure:"MONGODB_URI"`
	MongoDatabase       string              `mapstructure:"mongo_database"`
}

type ChunkingConfig struct {
	MaxChunkSize int `mapstructure:"max_chunk_size"`
	OverlapSize  int `mapstructure:"overlap_size"`
}

type EmbeddingConfig struct {
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
	BatchSize int    `mapstructure:"batch_size"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
	Class  string `mapstructure:"class"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	SecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	Bucket    string `mapstructure:"bucket"`
	Secure    bool   `mapstructure:"secure"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEYS")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MINIO_ACCESS_KEY")
	v.BindEnv("MINIO_SECRET_KEY")
	v.BindEnv("MONGODB_URI")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// GEMINI_API_KEYS is a comma-separated list in the environment.
	for _, key := range strings.Split(v.GetString("GEMINI_API_KEYS"), ",") {
		if key = strings.TrimSpace(key); key != "" {
			config.GeminiAPIKeys = append(config.GeminiAPIKeys, key)
		}
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Chunking.MaxChunkSize == 0 {
		c.Chunking.MaxChunkSize = 512
	}
	if c.Chunking.OverlapSize == 0 {
		c.Chunking.OverlapSize = 50
	}
	if c.Embedding.Dimension == 0 {
		c.Embedding.Dimension = 384
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 5
	}
	if c.WeaviateStoreConfig.Class == "" {
		c.WeaviateStoreConfig.Class = "DocumentChunk"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "docchat"
	}
}
