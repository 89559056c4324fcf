// Package pipeline runs the resolution stages end to end: normalize, block, score, classify
// and cluster. Each stage takes the previous stage's output and builds a new collection.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/bramble/pkg/blocking"
	"github.com/Ramsey-B/bramble/pkg/clustering"
	"github.com/Ramsey-B/bramble/pkg/metrics"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/normalizers"
	"github.com/Ramsey-B/bramble/pkg/rules"
	"github.com/Ramsey-B/bramble/pkg/similarity"
	"github.com/Ramsey-B/bramble/pkg/source"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

// DefaultWorkers is the fan-out used for per-record and per-pair stages
const DefaultWorkers = 4

// Stage names used in logs and metrics
const (
	StageRead      = "read"
	StageNormalize = "normalize"
	StageBlock     = "block"
	StageScore     = "score"
	StageClassify  = "classify"
	StageCluster   = "cluster"
)

// checkEvery is how many items a worker processes between cancellation checks
const checkEvery = 1024

// Config controls pipeline execution
type Config struct {
	Workers int
}

// Pipeline wires the resolution stages together. It holds no per-run state and can run
// repeatedly.
type Pipeline struct {
	logger     ectologger.Logger
	normalizer *normalizers.RecordNormalizer
	index      *blocking.Index
	scorer     *similarity.Scorer
	engine     *rules.Engine
	workers    int
}

// NewPipeline creates a pipeline over already-validated stage components
func NewPipeline(
	logger ectologger.Logger,
	cfg Config,
	normalizer *normalizers.RecordNormalizer,
	index *blocking.Index,
	scorer *similarity.Scorer,
	engine *rules.Engine,
) *Pipeline {
	workers := cfg.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		logger:     logger,
		normalizer: normalizer,
		index:      index,
		scorer:     scorer,
		engine:     engine,
		workers:    workers,
	}
}

// Stats summarizes one run
type Stats struct {
	Records     int                       `json:"records"`
	Duplicates  int                       `json:"duplicates"`
	Blocking    blocking.Stats            `json:"blocking"`
	Candidates  int                       `json:"candidates"`
	Labels      map[models.MatchLabel]int `json:"labels"`
	Matches     int                       `json:"matches"`
	Clusters    int                       `json:"clusters"`
	MultiMember int                       `json:"multi_member"`
	Ignored     int                       `json:"ignored"`
	Stages      map[string]time.Duration  `json:"stages"`
	Duration    time.Duration             `json:"duration"`
}

// Result is the output of one run
type Result struct {
	RunID     string
	ZipPolicy normalizers.ZipPolicy
	StartedAt time.Time
	// Records are the normalized accounts ordered by account id
	Records   []models.NormalizedRecord
	Partition *clustering.Partition
	// Matches are the non-NO_MATCH decisions ordered by (AID, BID), the audit trail
	Matches []models.MatchDecision
	Stats   Stats
}

// Run resolves the records of src
func (p *Pipeline) Run(ctx context.Context, src source.Source) (*Result, error) {
	start := time.Now()
	raw, err := source.ReadAll(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to read records from %s: %w", src.Name(), err)
	}
	metrics.ObserveStage(StageRead, start)

	return p.Resolve(ctx, raw)
}

// Resolve runs every stage over raw. A repeated account id keeps its first record.
func (p *Pipeline) Resolve(ctx context.Context, raw []models.RawRecord) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Resolve")
	defer span.End()

	result := &Result{
		RunID:     uuid.NewString(),
		ZipPolicy: p.normalizer.ZipPolicy(),
		StartedAt: time.Now().UTC(),
		Stats: Stats{
			Labels: make(map[models.MatchLabel]int),
			Stages: make(map[string]time.Duration),
		},
	}
	log := p.logger.WithContext(ctx).WithField("run_id", result.RunID)
	log.WithFields(map[string]any{
		"records":    len(raw),
		"workers":    p.workers,
		"algorithm":  p.scorer.Name(),
		"zip_policy": string(result.ZipPolicy),
	}).Info("Starting resolution run")

	unique, duplicates := dedupe(raw)
	if duplicates > 0 {
		log.WithField("duplicates", duplicates).Warn("Dropped records with a repeated account id")
		metrics.DuplicateRecords.Add(float64(duplicates))
	}
	result.Stats.Duplicates = duplicates

	// normalize
	stageStart := time.Now()
	records, err := parallelMap(ctx, unique, p.workers, p.normalizer.Normalize)
	if err != nil {
		return nil, p.fail(ctx, StageNormalize, err)
	}
	result.Records = records
	result.Stats.Records = len(records)
	metrics.RecordsProcessed.Add(float64(len(records)))
	p.stageDone(result, StageNormalize, stageStart)

	// block
	stageStart = time.Now()
	candidates, blockStats, err := p.index.Build(ctx, records)
	if err != nil {
		return nil, p.fail(ctx, StageBlock, err)
	}
	result.Stats.Blocking = blockStats
	result.Stats.Candidates = len(candidates)
	for key, ks := range blockStats.Keys {
		metrics.CandidatePairs.WithLabelValues(key).Add(float64(ks.Pairs))
		if ks.SkippedGroups > 0 {
			metrics.SkippedBlocks.WithLabelValues(key).Add(float64(ks.SkippedGroups))
		}
	}
	p.stageDone(result, StageBlock, stageStart)

	// score
	stageStart = time.Now()
	scored, err := parallelMap(ctx, candidates, p.workers, p.scorer.Score)
	if err != nil {
		return nil, p.fail(ctx, StageScore, err)
	}
	p.stageDone(result, StageScore, stageStart)

	// classify
	stageStart = time.Now()
	decisions, err := p.engine.ClassifyAll(ctx, scored, p.workers)
	if err != nil {
		return nil, p.fail(ctx, StageClassify, err)
	}
	for _, d := range decisions {
		result.Stats.Labels[d.Label]++
		if d.Label.IsMatch() {
			result.Matches = append(result.Matches, d)
		}
	}
	for label, n := range result.Stats.Labels {
		metrics.Decisions.WithLabelValues(string(label)).Add(float64(n))
	}
	result.Stats.Matches = len(result.Matches)
	p.stageDone(result, StageClassify, stageStart)

	// cluster
	if err := ctx.Err(); err != nil {
		return nil, p.fail(ctx, StageCluster, err)
	}
	stageStart = time.Now()
	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].AccountID
	}
	result.Partition = clustering.Build(ids, result.Matches)
	result.Stats.Clusters = len(result.Partition.Clusters())
	result.Stats.MultiMember = result.Partition.MultiMemberCount()
	result.Stats.Ignored = result.Partition.Ignored
	for _, c := range result.Partition.Clusters() {
		metrics.ClusterSize.Observe(float64(c.Size()))
	}
	p.stageDone(result, StageCluster, stageStart)

	result.Stats.Duration = time.Since(result.StartedAt)
	metrics.RunsTotal.WithLabelValues(models.RunStatusCompleted).Inc()
	log.WithFields(map[string]any{
		"records":      result.Stats.Records,
		"candidates":   result.Stats.Candidates,
		"matches":      result.Stats.Matches,
		"clusters":     result.Stats.Clusters,
		"multi_member": result.Stats.MultiMember,
		"duration_ms":  result.Stats.Duration.Milliseconds(),
	}).Info("Resolution run completed")

	return result, nil
}

func (p *Pipeline) stageDone(result *Result, stage string, start time.Time) {
	result.Stats.Stages[stage] = time.Since(start)
	metrics.ObserveStage(stage, start)
}

func (p *Pipeline) fail(ctx context.Context, stage string, err error) error {
	metrics.RunsTotal.WithLabelValues(models.RunStatusFailed).Inc()
	p.logger.WithContext(ctx).WithError(err).WithField("stage", stage).Error("Resolution run failed")
	return fmt.Errorf("%s stage failed: %w", stage, err)
}

// dedupe keeps the first record of each account id and returns them ordered by id
func dedupe(raw []models.RawRecord) ([]models.RawRecord, int) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]models.RawRecord, 0, len(raw))
	for _, r := range raw {
		if _, ok := seen[r.AccountID]; ok {
			continue
		}
		seen[r.AccountID] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, len(raw) - len(out)
}

// parallelMap applies fn to every element across workers, writing results by index
func parallelMap[T, R any](ctx context.Context, in []T, workers int, fn func(T) R) ([]R, error) {
	out := make([]R, len(in))
	if len(in) == 0 {
		return out, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(in) + workers - 1) / workers
	for start := 0; start < len(in); start += chunk {
		end := min(start+chunk, len(in))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = fn(in[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
