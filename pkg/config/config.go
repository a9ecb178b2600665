package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/xR0am/contribpulse/internal/models"
)

type Config struct {
	Server       ServerConfig         `mapstructure:"server"`
	Database     DatabaseConfig       `mapstructure:"database"`
	GitHub       GitHubConfig         `mapstructure:"github"`
	Ollama       OllamaConfig         `mapstructure:"ollama"`
	Pipeline     PipelineConfig       `mapstructure:"pipeline"`
	Scoring      models.ScoringConfig `mapstructure:"scoring"`
	Tags         []models.TagConfig   `mapstructure:"tags"`
	Repositories []TrackedRepo        `mapstructure:"repositories"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Token   string `mapstructure:"token"`
}

// PipelineConfig holds run-level defaults for the processing pipelines.
type PipelineConfig struct {
	Workers   int      `mapstructure:"workers"`
	OutputDir string   `mapstructure:"output_dir"`
	Intervals []string `mapstructure:"intervals"`
}

// TrackedRepo identifies a repository selected for processing.
type TrackedRepo struct {
	ID            string `mapstructure:"id"` // owner/name
	DefaultBranch string `mapstructure:"default_branch"`
}

// Load reads configuration from an optional config file, a .env file and
// CONTRIBPULSE_* environment variables. Flags bound by the CLI take
// precedence through the shared viper instance.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".contribpulse")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("CONTRIBPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, a broken one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", 15)
	viper.SetDefault("server.write_timeout", 15)
	viper.SetDefault("database.path", "./contribpulse.db")
	viper.SetDefault("ollama.base_url", "http://localhost:11434")
	viper.SetDefault("ollama.model", "qwen3")
	viper.SetDefault("pipeline.workers", 4)
	viper.SetDefault("pipeline.output_dir", "./data")
	viper.SetDefault("pipeline.intervals", []string{"day", "week", "month"})

	// Per-field defaults so a config file can override any single
	// scoring weight without restating the rest.
	scoring := models.NewScoringConfig()
	viper.SetDefault("scoring.pull_request.base", scoring.PullRequest.Base)
	viper.SetDefault("scoring.pull_request.merged_bonus", scoring.PullRequest.MergedBonus)
	viper.SetDefault("scoring.pull_request.description_multiplier", scoring.PullRequest.DescriptionMultiplier)
	viper.SetDefault("scoring.pull_request.complexity_multiplier", scoring.PullRequest.ComplexityMultiplier)
	viper.SetDefault("scoring.pull_request.optimal_size_bonus", scoring.PullRequest.OptimalSizeBonus)
	viper.SetDefault("scoring.pull_request.max_per_day", scoring.PullRequest.MaxPerDay)
	viper.SetDefault("scoring.issue.base", scoring.Issue.Base)
	viper.SetDefault("scoring.issue.closed_bonus", scoring.Issue.ClosedBonus)
	viper.SetDefault("scoring.issue.per_comment", scoring.Issue.PerComment)
	viper.SetDefault("scoring.issue.max_per_thread", scoring.Issue.MaxPerThread)
	viper.SetDefault("scoring.review.base", scoring.Review.Base)
	viper.SetDefault("scoring.review.approved_bonus", scoring.Review.ApprovedBonus)
	viper.SetDefault("scoring.review.changes_requested_bonus", scoring.Review.ChangesRequestedBonus)
	viper.SetDefault("scoring.review.commented_bonus", scoring.Review.CommentedBonus)
	viper.SetDefault("scoring.comment.base", scoring.Comment.Base)
	viper.SetDefault("scoring.comment.diminishing_returns", scoring.Comment.DiminishingReturns)
	viper.SetDefault("scoring.comment.max_per_thread", scoring.Comment.MaxPerThread)
	viper.SetDefault("scoring.code_change.max_lines", scoring.CodeChange.MaxLines)
	viper.SetDefault("scoring.code_change.max_files", scoring.CodeChange.MaxFiles)
	viper.SetDefault("scoring.code_change.optimal_min", scoring.CodeChange.OptimalMin)
	viper.SetDefault("scoring.code_change.optimal_max", scoring.CodeChange.OptimalMax)
	viper.SetDefault("scoring.code_change.penalty_threshold", scoring.CodeChange.PenaltyThreshold)
	viper.SetDefault("scoring.code_change.large_penalty", scoring.CodeChange.LargePenalty)

	// Tag rules replace as a whole set, not per rule.
	viper.SetDefault("tags", models.DefaultTagConfigs())
}
