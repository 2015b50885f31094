package server

import (
	"fmt"
	"os"
	"time"

	"github.com/chess-vn/movecoach/internal/coach"
	"github.com/chess-vn/movecoach/internal/engine"
	"github.com/chess-vn/movecoach/internal/quality"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	RequestTimeout time.Duration
	AllowOrigins   []string

	Engine     engine.Config
	Coach      coach.Config
	Classifier *quality.Classifier

	GameLogPath    string
	GameLogTable   string
	ReviewQueueUrl string

	AuthSecret     string
	LogLevel       string
	LogDevelopment bool
}

// bucketRow mirrors one entry of Quality.Buckets. Min is omitted on the
// catch-all row.
type bucketRow struct {
	Min    *int   `mapstructure:"min"`
	Bucket string `mapstructure:"bucket"`
	Label  string `mapstructure:"label"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "7202")
	v.SetDefault("Server.RequestTimeout", "30s")
	v.SetDefault("Server.AllowOrigins", []string{"*"})
	v.SetDefault("Engine.Path", "stockfish")
	v.SetDefault("Engine.Threads", 2)
	v.SetDefault("Engine.Hash", 128)
	v.SetDefault("Engine.EvalDepth", 12)
	v.SetDefault("Engine.BestMoveDepth", 18)
	v.SetDefault("Quality.Step", quality.DefaultStep)
	v.SetDefault("GameLog.Path", "logs/games.jsonl")
	v.SetDefault("Review.MaxPlies", 80)
	v.SetDefault("Log.Level", "info")
}

// NewConfig loads configs/server/config.yaml and the optional env files.
// It panics when the result is unusable.
func NewConfig() Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs/server")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %s", err))
		}
	}

	// Env files are optional; the process environment always wins.
	envFiles := []string{
		"./configs/server/app.env",
		"./configs/aws/base.env",
	}
	if err := loadEnvFiles(v, envFiles); err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	cfg, err := LoadConfig(v)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	return cfg
}

// LoadConfig reads every key from v, applying defaults first.
func LoadConfig(v *viper.Viper) (Config, error) {
	setDefaults(v)

	var cfg Config
	cfg.Port = v.GetString("Server.Port")
	timeout, err := time.ParseDuration(v.GetString("Server.RequestTimeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid Server.RequestTimeout: %w", err)
	}
	cfg.RequestTimeout = timeout
	cfg.AllowOrigins = v.GetStringSlice("Server.AllowOrigins")

	enginePath := v.GetString("Engine.Path")
	if p := v.GetString("STOCKFISH_PATH"); p != "" {
		enginePath = p
	}
	cfg.Engine = engine.Config{
		Path:    enginePath,
		Threads: v.GetInt("Engine.Threads"),
		Hash:    v.GetInt("Engine.Hash"),
	}
	cfg.Coach = coach.Config{
		EvalDepth:      v.GetInt("Engine.EvalDepth"),
		BestMoveDepth:  v.GetInt("Engine.BestMoveDepth"),
		MaxReviewPlies: v.GetInt("Review.MaxPlies"),
	}

	cfg.Classifier, err = loadClassifier(v)
	if err != nil {
		return Config{}, err
	}

	cfg.GameLogPath = v.GetString("GameLog.Path")
	cfg.GameLogTable = v.GetString("GameLog.Table")
	cfg.ReviewQueueUrl = v.GetString("Review.QueueUrl")
	if u := v.GetString("REVIEW_QUEUE_URL"); cfg.ReviewQueueUrl == "" && u != "" {
		cfg.ReviewQueueUrl = u
	}
	cfg.AuthSecret = v.GetString("Auth.Secret")
	cfg.LogLevel = v.GetString("Log.Level")
	cfg.LogDevelopment = v.GetBool("Log.Development")
	return cfg, nil
}

func loadClassifier(v *viper.Viper) (*quality.Classifier, error) {
	step := v.GetInt("Quality.Step")
	if !v.IsSet("Quality.Buckets") {
		return quality.NewClassifier(step, quality.DefaultThresholds())
	}
	var rows []bucketRow
	if err := v.UnmarshalKey("Quality.Buckets", &rows); err != nil {
		return nil, fmt.Errorf("invalid Quality.Buckets: %w", err)
	}
	table := make([]quality.Threshold, 0, len(rows))
	for i, row := range rows {
		b, err := quality.ParseBucket(row.Bucket)
		if err != nil {
			return nil, fmt.Errorf("Quality.Buckets[%d]: %w", i, err)
		}
		t := quality.Threshold{Bucket: b, Label: row.Label}
		if row.Min != nil {
			t.Min = *row.Min
		} else if i != len(rows)-1 {
			return nil, fmt.Errorf("Quality.Buckets[%d]: only the last row may omit min", i)
		}
		table = append(table, t)
	}
	c, err := quality.NewClassifier(step, table)
	if err != nil {
		return nil, fmt.Errorf("invalid Quality.Buckets: %w", err)
	}
	return c, nil
}

func loadEnvFiles(v *viper.Viper, filenames []string) error {
	for _, file := range filenames {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		v.SetConfigFile(file)
		v.SetConfigType("env")
		v.AutomaticEnv()

		err := v.MergeInConfig()
		if err != nil {
			return err
		}
	}
	v.AutomaticEnv()
	return nil
}
