package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "BIOCHAR"

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Config holds runtime settings. Values come from defaults, an optional
// biochar.yaml in the data directory, BIOCHAR_* env vars and bound flags.
type Config struct {
	DataDir          string      `mapstructure:"data_dir"`
	DBPath           string      `mapstructure:"db_path"`
	EvidenceDir      string      `mapstructure:"evidence_dir"`
	JournalDir       string      `mapstructure:"journal_dir"`
	IntegrationsPath string      `mapstructure:"integrations_path"`
	User             string      `mapstructure:"user"`
	LogLevel         string      `mapstructure:"log_level"`
	Kafka            KafkaConfig `mapstructure:"kafka"`
}

// New returns the default layout rooted at dataDir.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:          dataDir,
		DBPath:           filepath.Join(dataDir, "biochar.db"),
		EvidenceDir:      filepath.Join(dataDir, "evidence"),
		JournalDir:       filepath.Join(dataDir, "journal"),
		IntegrationsPath: filepath.Join(dataDir, "integrations.toml"),
		LogLevel:         "warn",
		Kafka:            KafkaConfig{Topic: "biochar.batches"},
	}, nil
}

// Load resolves the configuration from v. Paths left unset fall back to
// the layout under data_dir.
func Load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("data_dir", ".biochar")

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("biochar")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	defaults, err := New(v.GetString("data_dir"))
	if err != nil {
		return Config{}, err
	}
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("evidence_dir", defaults.EvidenceDir)
	v.SetDefault("journal_dir", defaults.JournalDir)
	v.SetDefault("integrations_path", defaults.IntegrationsPath)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("kafka.topic", defaults.Kafka.Topic)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("user", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = splitBrokers(cfg.Kafka.Brokers)
	return cfg, nil
}

// splitBrokers accepts both list values and a single comma separated env value.
func splitBrokers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
