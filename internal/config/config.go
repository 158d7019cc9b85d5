package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	AttentionChecks AttentionChecksConfig `yaml:"attention_checks" mapstructure:"attention_checks"`
	GoldStandards   GoldStandardsConfig   `yaml:"gold_standards" mapstructure:"gold_standards"`
	PreAnnotation   PreAnnotationConfig   `yaml:"pre_annotation" mapstructure:"pre_annotation"`
	Log             LogConfig             `yaml:"log" mapstructure:"log"`
}

// AttentionChecksConfig configures attention-check injection, scoring
// and escalation. Frequency and Probability are independent injection
// paths: a nonzero Frequency injects every N regular items, otherwise a
// nonzero Probability injects per call at that rate.
type AttentionChecksConfig struct {
	Enabled            bool    `yaml:"enabled" mapstructure:"enabled"`
	ItemsFile          string  `yaml:"items_file" mapstructure:"items_file"`
	Frequency          int     `yaml:"frequency" mapstructure:"frequency"`
	Probability        float64 `yaml:"probability" mapstructure:"probability"`
	WarnThreshold      int     `yaml:"warn_threshold" mapstructure:"warn_threshold"`
	BlockThreshold     int     `yaml:"block_threshold" mapstructure:"block_threshold"`
	WarnMessage        string  `yaml:"warn_message" mapstructure:"warn_message"`
	BlockMessage       string  `yaml:"block_message" mapstructure:"block_message"`
	MinResponseSeconds float64 `yaml:"min_response_seconds" mapstructure:"min_response_seconds"`
}

// GoldStandardsConfig configures gold-standard injection and silent
// accuracy tracking. Feedback is opt-in: with neither ShowGoldLabel nor
// ShowExplanation set, workers get no correctness signal.
type GoldStandardsConfig struct {
	Enabled         bool              `yaml:"enabled" mapstructure:"enabled"`
	ItemsFile       string            `yaml:"items_file" mapstructure:"items_file"`
	Frequency       int               `yaml:"frequency" mapstructure:"frequency"`
	Mode            string            `yaml:"mode" mapstructure:"mode"`
	ShowGoldLabel   bool              `yaml:"show_gold_label" mapstructure:"show_gold_label"`
	ShowExplanation bool              `yaml:"show_explanation" mapstructure:"show_explanation"`
	MinAccuracy     float64           `yaml:"min_accuracy" mapstructure:"min_accuracy"`
	MinEvaluations  int               `yaml:"min_evaluations" mapstructure:"min_evaluations"`
	AutoPromote     AutoPromoteConfig `yaml:"auto_promote" mapstructure:"auto_promote"`
}

// AutoPromoteConfig configures consensus-based promotion of ordinary
// items into gold standards.
type AutoPromoteConfig struct {
	Enabled            bool    `yaml:"enabled" mapstructure:"enabled"`
	MinAnnotators      int     `yaml:"min_annotators" mapstructure:"min_annotators"`
	AgreementThreshold float64 `yaml:"agreement_threshold" mapstructure:"agreement_threshold"`
}

// PreAnnotationConfig configures model-prediction caching and its
// front-end projection.
type PreAnnotationConfig struct {
	Field              string  `yaml:"field" mapstructure:"field"`
	Enabled            bool    `yaml:"enabled" mapstructure:"enabled"`
	AllowModification  bool    `yaml:"allow_modification" mapstructure:"allow_modification"`
	ShowConfidence     bool    `yaml:"show_confidence" mapstructure:"show_confidence"`
	HighlightThreshold float64 `yaml:"highlight_threshold" mapstructure:"highlight_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ANNOTQC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("attention_checks.items_file", "attention_checks.json")
	v.SetDefault("attention_checks.frequency", 10)
	v.SetDefault("attention_checks.warn_threshold", 2)
	v.SetDefault("attention_checks.block_threshold", 3)
	v.SetDefault("attention_checks.warn_message", "Please review the annotation guidelines before continuing.")
	v.SetDefault("attention_checks.block_message", "Your account has been suspended pending review.")
	v.SetDefault("attention_checks.min_response_seconds", 2.0)
	v.SetDefault("gold_standards.items_file", "gold_standards.json")
	v.SetDefault("gold_standards.frequency", 20)
	v.SetDefault("gold_standards.mode", "production")
	v.SetDefault("gold_standards.min_accuracy", 0.8)
	v.SetDefault("gold_standards.min_evaluations", 5)
	v.SetDefault("gold_standards.auto_promote.min_annotators", 3)
	v.SetDefault("gold_standards.auto_promote.agreement_threshold", 1.0)
	v.SetDefault("pre_annotation.field", "model_predictions")
	v.SetDefault("pre_annotation.highlight_threshold", 0.5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
