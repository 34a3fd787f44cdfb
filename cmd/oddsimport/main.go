package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Rut304/Matchups-sub003/adapters/theoddsapi"
	"github.com/Rut304/Matchups-sub003/internal/config"
	"github.com/Rut304/Matchups-sub003/internal/delta"
	"github.com/Rut304/Matchups-sub003/internal/logging"
	"github.com/Rut304/Matchups-sub003/internal/metered"
	"github.com/Rut304/Matchups-sub003/internal/oddsimport"
	"github.com/Rut304/Matchups-sub003/internal/publisher"
	"github.com/Rut304/Matchups-sub003/internal/registry"
	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/Rut304/Matchups-sub003/internal/store"
	"github.com/Rut304/Matchups-sub003/sports"
	"github.com/redis/go-redis/v9"
)

const dateLayout = "2006-01-02"

func main() {
	os.Exit(importOdds())
}

func importOdds() int {
	l := logging.Init(logging.FromEnv("oddsimport"))

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return 1
	}

	var (
		fSports       = flag.String("sports", "", "comma-separated sport keys in import order (default: all configured)")
		fFrom         = flag.String("from", cfg.Odds.From, "first sampling date YYYY-MM-DD")
		fTo           = flag.String("to", "", "last sampling date YYYY-MM-DD (default: today UTC)")
		fInterval     = flag.Int("interval", 0, "days between sampled dates (0 = per-sport default)")
		fMaxCredits   = flag.Int("max-credits", cfg.Odds.MaxCredits, "credit budget for this run")
		fDryRun       = flag.Bool("dry-run", false, "fetch and aggregate but write and publish nothing")
		fCreateTables = flag.Bool("create-tables", false, "create tables before importing")
		fDelay        = flag.Duration("delay", cfg.Odds.Delay, "pause after every upstream call")
		fRedis        = flag.Bool("redis", cfg.Redis.Enabled(), "publish changed records and the run summary to Redis")
	)
	flag.Parse()

	from, err := time.Parse(dateLayout, *fFrom)
	if err != nil {
		fmt.Printf("✗ invalid -from %q: %v\n", *fFrom, err)
		return 1
	}
	to := time.Now().UTC()
	if *fTo != "" {
		if to, err = time.Parse(dateLayout, *fTo); err != nil {
			fmt.Printf("✗ invalid -to %q: %v\n", *fTo, err)
			return 1
		}
	}
	if to.Before(from) {
		fmt.Printf("✗ -to %s is before -from %s\n", to.Format(dateLayout), from.Format(dateLayout))
		return 1
	}
	if cfg.Odds.APIKey == "" {
		fmt.Println("✗ ODDS_API_KEY environment variable is required")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Register sports in configured order, then select in caller order
	sportRegistry := registry.NewSportRegistry()
	modules, err := sports.NewModules(cfg.Sports)
	if err != nil {
		fmt.Printf("✗ invalid sport config: %v\n", err)
		return 1
	}
	for _, m := range modules {
		if err := sportRegistry.Register(m); err != nil {
			fmt.Printf("✗ failed to register %s: %v\n", m.GetSportKey(), err)
			return 1
		}
	}
	fmt.Printf("✓ Registered %d sport(s)\n", sportRegistry.Count())

	selected, err := sportRegistry.Select(splitCSV(*fSports))
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return 1
	}
	for _, sport := range selected {
		fmt.Printf("  [%s] %d season(s), every %d day(s), markets %v\n",
			sport.GetDisplayName(), len(sport.GetSeasons()), sport.GetSampleIntervalDays(), sport.GetMarkets())
	}

	st, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return 1
	}
	defer st.Close()
	fmt.Println("✓ Connected to Postgres")

	if *fCreateTables {
		if err := st.CreateTables(ctx); err != nil {
			fmt.Printf("✗ %v\n", err)
			return 1
		}
		fmt.Println("✓ Tables ready")
	}

	client := theoddsapi.NewClient(theoddsapi.Options{
		APIKey:       cfg.Odds.APIKey,
		BaseURL:      cfg.Odds.BaseURL,
		SnapshotHour: cfg.Odds.SnapshotHour,
		Metered: metered.Options{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
	}, logging.Named("theoddsapi"))

	importer := oddsimport.New(client, st, logging.Named("oddsimport"))

	var pub *publisher.Publisher
	if *fRedis {
		redisClient, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			fmt.Printf("✗ %v\n", err)
			return 1
		}
		defer redisClient.Close()
		fmt.Println("✓ Connected to Redis")

		pub = publisher.New(redisClient)
		importer.WithPublishing(delta.NewEngine(redisClient, cfg.Redis.CacheTTL), pub)
	}

	rc := run.New("odds", *fMaxCredits, *fDryRun)
	l.Info().
		Str("run_id", rc.ID).
		Int("sports", len(selected)).
		Str("from", from.Format(dateLayout)).
		Str("to", to.Format(dateLayout)).
		Int("max_credits", *fMaxCredits).
		Bool("dry_run", *fDryRun).
		Msg("starting historical odds import")

	runErr := importer.Run(ctx, rc, selected, oddsimport.Options{
		From:         from,
		To:           to,
		IntervalDays: *fInterval,
		Delay:        *fDelay,
	})

	summary := rc.Summary()
	fmt.Print(summary.String())
	l.Info().Interface("summary", summary).Msg("run finished")

	if limits := client.GetRateLimits(); limits.RequestsRemaining > 0 {
		fmt.Printf("  upstream credits remaining: %d\n", limits.RequestsRemaining)
	}

	if pub != nil && !rc.DryRun {
		// the run context may already be cancelled
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pub.PublishRunSummary(pubCtx, summary); err != nil {
			l.Warn().Err(err).Msg("publish run summary failed")
		}
	}

	if runErr != nil {
		fmt.Printf("✗ interrupted: %v\n", runErr)
		return 1
	}
	if rc.Err() != nil {
		return 1
	}
	return 0
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
