package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobpilot"
)

type Config struct {
	Region    string        `mapstructure:"region"`
	Search    *SearchConfig `mapstructure:"search"`
	Resume    string        `mapstructure:"resume"`
	Output    string        `mapstructure:"output"`
	UserAgent string        `mapstructure:"user-agent"`
	Cache     *CacheConfig  `mapstructure:"cache"`
	AI        *AIConfig     `mapstructure:"ai"`
}

type SearchConfig struct {
	Titles       []string `mapstructure:"titles"`
	Location     string   `mapstructure:"location"`
	LocationType string   `mapstructure:"location-type"`
	DaysAgo      int      `mapstructure:"days-ago"`
}

type CacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis-url"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	TargetScore  int           `mapstructure:"target-score"`
	MaxAttempts  int           `mapstructure:"max-attempts"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobpilot searches job boards and tailors your CV to the postings it finds",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.openai.api-key", "OPENAI_API_KEY"); err != nil {
		log.Fatalf("binding OPENAI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("cache.redis-url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobpilot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	// A .env file is optional; environment bindings pick up what it sets.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
