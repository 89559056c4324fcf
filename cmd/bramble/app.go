package main

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ramsey-B/bramble/config"
	"github.com/Ramsey-B/bramble/internal/database"
	"github.com/Ramsey-B/bramble/pkg/blocking"
	"github.com/Ramsey-B/bramble/pkg/graph"
	"github.com/Ramsey-B/bramble/pkg/kafka"
	"github.com/Ramsey-B/bramble/pkg/normalizers"
	"github.com/Ramsey-B/bramble/pkg/pipeline"
	"github.com/Ramsey-B/bramble/pkg/rules"
	"github.com/Ramsey-B/bramble/pkg/similarity"
	"github.com/Ramsey-B/bramble/pkg/startup"
)

type app struct {
	cfg    *config.Config
	logger ectologger.Logger
	sync   func()
}

func loadApp(cmd *cobra.Command) (*app, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if Version != "dev" {
		cfg.Version = Version
	}

	logger, sync, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, sync: sync}, nil
}

func (a *app) close() {
	a.sync()
}

func newLogger(cfg *config.Config) (ectologger.Logger, func(), error) {
	zcfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = level

	zapLogger, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil), func() { _ = zapLogger.Sync() }, nil
}

// newPipeline builds every stage from config. Bad thresholds or an unknown algorithm fail here,
// before any record is read.
func (a *app) newPipeline() (*pipeline.Pipeline, *rules.Engine, error) {
	thresholds, err := a.cfg.Thresholds()
	if err != nil {
		return nil, nil, err
	}
	scorer, err := similarity.NewScorer(a.cfg.Similarity())
	if err != nil {
		return nil, nil, err
	}

	engine := rules.NewEngine(a.logger, thresholds)
	p := pipeline.NewPipeline(
		a.logger,
		a.cfg.Pipeline(),
		normalizers.NewRecordNormalizer(a.cfg.Zip()),
		blocking.NewIndex(a.logger, a.cfg.Blocking(), blocking.DefaultExtractors()...),
		scorer,
		engine,
	)
	return p, engine, nil
}

type services struct {
	db       *database.DatabaseInstance
	graph    *graph.Client
	producer *kafka.Producer
}

type needs struct {
	database bool
	graph    bool
	kafka    bool
}

// startServices connects the requested backends with retries. The returned Startup stops them.
func (a *app) startServices(ctx context.Context, n needs) (*services, *startup.Startup, error) {
	svc := &services{}
	st := startup.NewStartup(a.logger, a.cfg.StartupMaxAttempts)

	if n.database {
		st.AddDependency(startup.Func{
			Name: "database",
			StartFunc: func(ctx context.Context) error {
				db, err := database.Connect(ctx, a.logger, a.cfg.Database())
				if err != nil {
					return err
				}
				svc.db = db
				return nil
			},
			StopFunc: func(context.Context) error { return svc.db.Close() },
		})
	}

	if n.graph {
		st.AddDependency(startup.Func{
			Name: "graph",
			StartFunc: func(ctx context.Context) error {
				if svc.graph == nil {
					client, err := graph.NewClient(a.cfg.Graph(), a.logger)
					if err != nil {
						return err
					}
					svc.graph = client
				}
				return svc.graph.VerifyConnectivity(ctx)
			},
			StopFunc: func(ctx context.Context) error { return svc.graph.Close(ctx) },
		})
	}

	if n.kafka {
		st.AddDependency(startup.Func{
			Name: "kafka",
			StartFunc: func(ctx context.Context) error {
				if err := kafka.Ping(ctx, a.cfg.KafkaBrokers); err != nil {
					return err
				}
				svc.producer = kafka.NewProducer(a.cfg.Producer(), a.logger)
				return nil
			},
			StopFunc: func(context.Context) error { return svc.producer.Close() },
		})
	}

	if err := st.Start(ctx); err != nil {
		_ = st.Stop(context.Background())
		return nil, nil, err
	}
	return svc, st, nil
}
