package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"scalper_bot/internal/exchange"
	"scalper_bot/internal/helper"
	"scalper_bot/internal/indicator"
	"scalper_bot/internal/strategy"
)

const defaultConfigName = ".scan"

func loadConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(defaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("configs")

	v.SetEnvPrefix("SCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("broker.timeout", "10s")
	v.SetDefault("timeframe", "5m")
	v.SetDefault("decision_window", 100)
	v.SetDefault("region_window", 6)
	v.SetDefault("region_k", 2.0)
	v.SetDefault("timeout", "1m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read scan config")
		}
	}
	if v.GetString("broker.base_url") == "" {
		return nil, errors.New("broker.base_url is required")
	}
	if len(v.GetStringSlice("symbols")) == 0 {
		return nil, errors.New("symbols are required")
	}
	return v, nil
}

func run() error {
	v, err := loadConfig()
	if err != nil {
		return err
	}

	tf, err := helper.ParseTimeframe(v.GetString("timeframe"))
	if err != nil {
		return errors.Wrap(err, "scan config")
	}

	client := exchange.NewClient(exchange.Config{
		BaseURL:   v.GetString("broker.base_url"),
		APIKey:    v.GetString("broker.api_key"),
		APISecret: v.GetString("broker.api_secret"),
		Timeout:   v.GetDuration("broker.timeout"),
	})
	agg := strategy.NewAggregator(indicator.NewTalib(), strategy.DefaultConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, v.GetDuration("timeout"))
	defer cancel()

	started := time.Now()
	results := scanMarket(ctx, client, agg, v.GetStringSlice("symbols"), scanOptions{
		Timeframe:      tf,
		DecisionWindow: v.GetInt("decision_window"),
		RegionWindow:   v.GetInt("region_window"),
		RegionK:        v.GetFloat64("region_k"),
	})
	printResults(os.Stdout, results)
	fmt.Printf("scanned %d symbols in %s\n", len(results), time.Since(started).Round(time.Millisecond))
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scan: %v\n", err)
		os.Exit(1)
	}
}
