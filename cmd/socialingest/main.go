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

	"github.com/Rut304/Matchups-sub003/adapters/xapi"
	"github.com/Rut304/Matchups-sub003/internal/config"
	"github.com/Rut304/Matchups-sub003/internal/extract"
	"github.com/Rut304/Matchups-sub003/internal/logging"
	"github.com/Rut304/Matchups-sub003/internal/metered"
	"github.com/Rut304/Matchups-sub003/internal/publisher"
	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/Rut304/Matchups-sub003/internal/socialingest"
	"github.com/Rut304/Matchups-sub003/internal/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	os.Exit(ingestSocial())
}

func ingestSocial() int {
	l := logging.Init(logging.FromEnv("socialingest"))

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return 1
	}

	var (
		fHandles      = flag.String("handles", strings.Join(cfg.Social.Handles, ","), "comma-separated handles to register as tracked sources")
		fBatchSize    = flag.Int("batch-size", cfg.Social.BatchSize, "tracked sources visited per run")
		fMaxPosts     = flag.Int("max-posts", cfg.Social.MaxPosts, "posts per timeline call (5..100)")
		fMaxCalls     = flag.Int("max-calls", cfg.Social.MaxCalls, "upstream call budget for this run")
		fDelay        = flag.Duration("delay", cfg.Social.Delay, "pause after every source")
		fDryRun       = flag.Bool("dry-run", false, "fetch and extract but write and publish nothing")
		fCreateTables = flag.Bool("create-tables", false, "create tables before ingesting")
		fRedis        = flag.Bool("redis", cfg.Redis.Enabled(), "publish picks and the run summary to Redis")
	)
	flag.Parse()

	if cfg.Social.BearerToken == "" {
		fmt.Println("✗ X_BEARER_TOKEN environment variable is required")
		return 1
	}

	aliases, err := extract.NewAliasTable(cfg.Aliases)
	if err != nil {
		fmt.Printf("✗ invalid alias table: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	client := xapi.NewClient(xapi.Options{
		BearerToken: cfg.Social.BearerToken,
		BaseURL:     cfg.Social.BaseURL,
		Metered: metered.Options{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
	}, logging.Named("xapi"))

	ingester := socialingest.New(client, st, extract.NewEngine(aliases), logging.Named("socialingest"))

	var pub *publisher.Publisher
	if *fRedis {
		opts, err := cfg.Redis.Options()
		if err != nil {
			fmt.Printf("✗ %v\n", err)
			return 1
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			fmt.Printf("✗ failed to connect to Redis: %v\n", err)
			return 1
		}
		fmt.Println("✓ Connected to Redis")

		pub = publisher.New(redisClient)
		ingester.WithPublisher(pub)
	}

	rc := run.New("social", *fMaxCalls, *fDryRun)
	l.Info().
		Str("run_id", rc.ID).
		Int("batch_size", *fBatchSize).
		Int("max_calls", *fMaxCalls).
		Int("aliases", aliases.Len()).
		Bool("dry_run", *fDryRun).
		Msg("starting social ingest")

	runErr := ingester.Run(ctx, rc, socialingest.Options{
		Handles:   strings.Split(*fHandles, ","),
		BatchSize: *fBatchSize,
		MaxPosts:  xapi.ClampMaxResults(*fMaxPosts),
		Delay:     *fDelay,
	})

	summary := rc.Summary()
	fmt.Print(summary.String())
	l.Info().Interface("summary", summary).Msg("run finished")

	if pub != nil && !rc.DryRun {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pub.PublishRunSummary(pubCtx, summary); err != nil {
			l.Warn().Err(err).Msg("publish run summary failed")
		}
	}

	if runErr != nil {
		fmt.Printf("✗ %v\n", runErr)
		return 1
	}
	if rc.Err() != nil {
		return 1
	}
	return 0
}
