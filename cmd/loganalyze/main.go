package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chess-vn/movecoach/internal/aws/storage"
	"github.com/chess-vn/movecoach/internal/gamelog"
	"github.com/chess-vn/movecoach/pkg/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	flags := pflag.NewFlagSet("loganalyze", pflag.ExitOnError)
	flags.String("client-id", "", "Filter by clientId")
	flags.String("difficulty", "", "Filter by difficulty (easy/medium/hard)")
	flags.String("mode", "computer", "Filter by mode (computer/human-local)")
	flags.String("log-file", "logs/games.jsonl", "JSONL game log, optionally gzip-compressed (.gz)")
	flags.String("table", "", "Read games from this DynamoDB table instead of the log file")
	flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("LOGANALYZE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Init("warn", false)
	defer logging.Sync()

	if err := run(context.Background(), v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, v *viper.Viper) error {
	source, err := openSource(ctx, v)
	if err != nil {
		return err
	}
	if source == nil {
		return nil
	}
	res, err := source.Load(ctx)
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed records\n", res.Skipped)
	}
	if len(res.Entries) == 0 {
		return nil
	}

	filter := gamelog.Filter{
		ClientId:   v.GetString("client-id"),
		Difficulty: v.GetString("difficulty"),
		Mode:       v.GetString("mode"),
	}
	if filter.ClientId == "" {
		gamelog.RenderOverview(os.Stdout, gamelog.Overview(res.Entries, filter))
		return nil
	}
	gamelog.Analyze(res.Entries, filter).Render(os.Stdout)
	return nil
}

// openSource returns nil when the log file does not exist.
func openSource(ctx context.Context, v *viper.Viper) (gamelog.Source, error) {
	if table := v.GetString("table"); table != "" {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load aws config: %w", err)
		}
		return storage.NewClient(dynamodb.NewFromConfig(awsCfg), table), nil
	}
	path := v.GetString("log-file")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Printf("No log file found at %s\n", path)
		return nil, nil
	}
	return gamelog.NewFileStore(path), nil
}
