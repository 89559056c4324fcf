// Package blocking groups records by cheap strong keys and emits deduplicated candidate pairs
package blocking

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/tracing"
)

// Config controls block construction
type Config struct {
	// MaxBlockSize skips groups larger than this many records. 0 means unlimited.
	MaxBlockSize int
}

// KeyStats describes the blocks produced by one extractor
type KeyStats struct {
	Groups        int `json:"groups"`
	Pairs         int `json:"pairs"`
	SkippedGroups int `json:"skipped_groups"`
}

// Stats describes a blocking pass
type Stats struct {
	Keys       map[string]KeyStats `json:"keys"`
	Candidates int                 `json:"candidates"`
}

// Index builds candidate pairs from normalized records
type Index struct {
	logger     ectologger.Logger
	extractors []KeyExtractor
	config     Config
}

// NewIndex creates a blocking index over the given extractors.
// With no extractors the four default strong keys are used.
func NewIndex(logger ectologger.Logger, config Config, extractors ...KeyExtractor) *Index {
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	return &Index{
		logger:     logger,
		extractors: extractors,
		config:     config,
	}
}

type pairKey struct {
	a, b string
}

// Build returns the union of within-block pairs over all extractors, deduplicated and
// sorted by (AID, BID). Records sharing no key with any other record produce no pairs.
func (ix *Index) Build(ctx context.Context, records []models.NormalizedRecord) ([]models.CandidatePair, Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "blocking.Index.Build")
	defer span.End()

	stats := Stats{Keys: make(map[string]KeyStats, len(ix.extractors))}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	if len(records) == 0 {
		return []models.CandidatePair{}, stats, nil
	}

	byID := make(map[string]*models.NormalizedRecord, len(records))
	for i := range records {
		byID[records[i].AccountID] = &records[i]
	}

	perKey := make([][]pairKey, len(ix.extractors))
	keyStats := make([]KeyStats, len(ix.extractors))

	g, gctx := errgroup.WithContext(ctx)
	for i, extractor := range ix.extractors {
		g.Go(func() error {
			pairs, ks, err := ix.pairsForKey(gctx, extractor, records)
			if err != nil {
				return err
			}
			perKey[i] = pairs
			keyStats[i] = ks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	seen := make(map[pairKey]struct{})
	for i, pairs := range perKey {
		stats.Keys[ix.extractors[i].Name] = keyStats[i]
		for _, p := range pairs {
			seen[p] = struct{}{}
		}
	}

	candidates := make([]models.CandidatePair, 0, len(seen))
	for p := range seen {
		candidates = append(candidates, models.CandidatePair{
			AID: p.a,
			BID: p.b,
			A:   byID[p.a],
			B:   byID[p.b],
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].AID != candidates[j].AID {
			return candidates[i].AID < candidates[j].AID
		}
		return candidates[i].BID < candidates[j].BID
	})
	stats.Candidates = len(candidates)

	ix.logger.WithContext(ctx).WithFields(map[string]any{
		"records":    len(records),
		"candidates": stats.Candidates,
	}).Debug("Built candidate pairs")

	return candidates, stats, nil
}

// pairsForKey groups records by one extractor and emits every 2-combination per group
func (ix *Index) pairsForKey(ctx context.Context, extractor KeyExtractor, records []models.NormalizedRecord) ([]pairKey, KeyStats, error) {
	groups := make(map[string][]string)
	for i := range records {
		key, ok := extractor.Key(&records[i])
		if !ok {
			continue
		}
		groups[key] = append(groups[key], records[i].AccountID)
	}

	var ks KeyStats
	var pairs []pairKey
	for key, ids := range groups {
		if err := ctx.Err(); err != nil {
			return nil, ks, err
		}
		ids = distinctSorted(ids)
		if len(ids) < 2 {
			continue
		}
		if ix.config.MaxBlockSize > 0 && len(ids) > ix.config.MaxBlockSize {
			ks.SkippedGroups++
			ix.logger.WithContext(ctx).WithFields(map[string]any{
				"block_key": extractor.Name,
				"key":       key,
				"size":      len(ids),
			}).Warn("Skipping oversized block")
			continue
		}
		ks.Groups++
		for a := 0; a < len(ids); a++ {
			for b := a + 1; b < len(ids); b++ {
				pairs = append(pairs, pairKey{a: ids[a], b: ids[b]})
			}
		}
	}
	ks.Pairs = len(pairs)
	return pairs, ks, nil
}

// distinctSorted sorts ids ascending and drops repeats, so every pair satisfies a < b
func distinctSorted(ids []string) []string {
	sort.Strings(ids)
	out := ids[:0]
	for _, id := range ids {
		if len(out) > 0 && out[len(out)-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}
