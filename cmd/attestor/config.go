package main

import (
	"fmt"
	"os"
	"time"

	"github.com/poiesic/attestor/ai"
	"github.com/poiesic/attestor/cache"
	"github.com/poiesic/attestor/core"
	"github.com/poiesic/attestor/search"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional --config YAML file. Explicit flags win over it.
type fileConfig struct {
	DB                  string        `yaml:"db"`
	Host                string        `yaml:"host"`
	Model               string        `yaml:"model"`
	Token               string        `yaml:"token"`
	Temperature         *float64      `yaml:"temperature"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	CallTimeout         time.Duration `yaml:"timeout"`
	BatchSize           int           `yaml:"batch_size"`
	PoolSize            int           `yaml:"pool_size"`
	QuestionConcurrency int           `yaml:"question_concurrency"`
	Retries             *int          `yaml:"retries"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
}

func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// stringSetting returns the flag value when set explicitly, then the config
// value, then the flag default.
func stringSetting(c *cli.Context, flag, fromFile string) string {
	if c.IsSet(flag) || fromFile == "" {
		return c.String(flag)
	}
	return fromFile
}

func intSetting(c *cli.Context, flag string, fromFile int) int {
	if c.IsSet(flag) || fromFile == 0 {
		return c.Int(flag)
	}
	return fromFile
}

func durationSetting(c *cli.Context, flag string, fromFile time.Duration) time.Duration {
	if c.IsSet(flag) || fromFile == 0 {
		return c.Duration(flag)
	}
	return fromFile
}

// searchSettings collects everything the search command needs after merging
// flags over the config file.
type searchSettings struct {
	db          string
	aiConfig    *ai.Config
	cacheConfig cache.Config
	options     []search.Option
}

func resolveSearchSettings(c *cli.Context, cfg *fileConfig) (*searchSettings, error) {
	db := stringSetting(c, "db", cfg.DB)
	if db == "" {
		return nil, fmt.Errorf("database path is required")
	}

	aiOpts := []ai.ConfigOption{
		ai.WithHost(stringSetting(c, "host", cfg.Host)),
		ai.WithModel(stringSetting(c, "model", cfg.Model)),
		ai.WithRequestTimeout(durationSetting(c, "request-timeout", cfg.RequestTimeout)),
	}
	if token := stringSetting(c, "token", cfg.Token); token != "" {
		aiOpts = append(aiOpts, ai.WithToken(token))
	}
	if cfg.Temperature != nil && !c.IsSet("temperature") {
		aiOpts = append(aiOpts, ai.WithTemperature(*cfg.Temperature))
	} else {
		aiOpts = append(aiOpts, ai.WithTemperature(c.Float64("temperature")))
	}
	aiConfig := ai.NewConfig(aiOpts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	cacheConfig := cache.DefaultConfig()
	cacheConfig.TTL = durationSetting(c, "cache-ttl", cfg.CacheTTL)
	if err := cacheConfig.Validate(); err != nil {
		return nil, err
	}

	retries := c.Int("retries")
	if cfg.Retries != nil && !c.IsSet("retries") {
		retries = *cfg.Retries
	}

	return &searchSettings{
		db:          db,
		aiConfig:    aiConfig,
		cacheConfig: cacheConfig,
		options: []search.Option{
			search.WithBatchSize(intSetting(c, "batch-size", cfg.BatchSize)),
			search.WithPoolSize(intSetting(c, "pool-size", cfg.PoolSize)),
			search.WithQuestionConcurrency(intSetting(c, "question-concurrency", cfg.QuestionConcurrency)),
			search.WithCallTimeout(durationSetting(c, "timeout", cfg.CallTimeout)),
			search.WithRetry(retries, search.DefaultRetryDelay),
		},
	}, nil
}

// loadQuestions reads a YAML or JSON list of {number, text} entries.
func loadQuestions(path string) ([]core.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions file: %w", err)
	}

	var questions []core.Question
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions file %s: %w", path, err)
	}
	return questions, nil
}
