package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hoangphuccoder123/tutorbond/internal/dropzone"
	"github.com/hoangphuccoder123/tutorbond/internal/keypool"
)

const (
	app = "agentcv"
)

type Config struct {
	Locale    string         `mapstructure:"locale"`
	OutputDir string         `mapstructure:"output-dir"`
	AI        *AIConfig      `mapstructure:"ai"`
	Watch     *WatchConfig   `mapstructure:"watch"`
	Metrics   *MetricsConfig `mapstructure:"metrics"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string          `mapstructure:"api-key"`
	APIKeyFile   string          `mapstructure:"api-key-file"`
	PoolFile     string          `mapstructure:"pool-file"`
	PoolKeys     []string        `mapstructure:"pool-keys"`
	Model        string          `mapstructure:"model"`
	Temperature  float32         `mapstructure:"temperature"`
	MaxLogLength int             `mapstructure:"max-log-length"`
	Rotation     *RotationConfig `mapstructure:"rotation"`
}

type RotationConfig struct {
	MaxRequests int           `mapstructure:"max-requests"`
	MaxAge      time.Duration `mapstructure:"max-age"`
	CursorTTL   time.Duration `mapstructure:"cursor-ttl"`
	Redis       *RedisConfig  `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type WatchConfig struct {
	Settle time.Duration `mapstructure:"settle"`
	Export bool          `mapstructure:"export"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "agentcv extracts, analyzes and edits a CV with the help of Gemini",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"ai.gemini.api-key":                "GEMINI_API_KEY",
	"ai.gemini.api-key-file":           "GEMINI_API_KEY_FILE",
	"ai.gemini.pool-file":              "GEMINI_KEY_POOL_FILE",
	"ai.gemini.rotation.redis.address": "AGENTCV_REDIS_ADDR",
	"locale":                           "AGENTCV_LOCALE",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}
	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is agentcv.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("locale", "l", "", "language of the AI feedback and messages (en, vi)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("locale", rootCmd.PersistentFlags().Lookup("locale"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("locale", "en")
	v.SetDefault("output-dir", ".")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.temperature", 0.3)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("ai.gemini.rotation.max-requests", 50)
	v.SetDefault("ai.gemini.rotation.max-age", "10m")
	v.SetDefault("ai.gemini.rotation.cursor-ttl", "24h")
	v.SetDefault("ai.gemini.rotation.redis.key", keypool.DefaultRedisKey)
	v.SetDefault("watch.settle", dropzone.DefaultSettle.String())
	v.SetDefault("watch.export", true)
}

func initConfig() {
	// Nothing to configure for printing the version.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless it was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.AllSettings())
}

func decodeConfig(settings map[string]any) (*Config, error) {
	config := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           config,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.Gemini.Rotation == nil {
		config.AI.Gemini.Rotation = &RotationConfig{}
	}
	if config.AI.Gemini.Rotation.Redis == nil {
		config.AI.Gemini.Rotation.Redis = &RedisConfig{}
	}
	if config.Watch == nil {
		config.Watch = &WatchConfig{}
	}
	if config.Metrics == nil {
		config.Metrics = &MetricsConfig{}
	}

	return config, nil
}
