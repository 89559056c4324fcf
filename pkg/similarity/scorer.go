// Package similarity scores candidate pairs on name and address similarity
package similarity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/normalizers"
)

// Algorithm names
const (
	AlgorithmTrigram     = "trigram"
	AlgorithmJaroWinkler = "jaro_winkler"
	AlgorithmLevenshtein = "levenshtein"
)

// DefaultNGramSize is the trigram window
const DefaultNGramSize = 3

// yobFNPrefix is how many leading runes of the first name join the birth year in YOBFN
const yobFNPrefix = 2

// Func scores two normalized strings in [0, 1]. Implementations must be symmetric and
// return 0 when either side is empty.
type Func func(a, b string) float64

// Config selects the similarity algorithm
type Config struct {
	Algorithm string
	NGramSize int
}

// DefaultConfig returns the trigram configuration
func DefaultConfig() Config {
	return Config{
		Algorithm: AlgorithmTrigram,
		NGramSize: DefaultNGramSize,
	}
}

// Algorithms lists the registered algorithm names
func Algorithms() []string {
	names := []string{AlgorithmTrigram, AlgorithmJaroWinkler, AlgorithmLevenshtein}
	sort.Strings(names)
	return names
}

// resolve returns the scoring function for cfg, or an error if it cannot be provided
func resolve(cfg Config) (Func, error) {
	switch strings.ToLower(cfg.Algorithm) {
	case AlgorithmTrigram, "":
		n := cfg.NGramSize
		if n == 0 {
			n = DefaultNGramSize
		}
		if n < 2 {
			return nil, fmt.Errorf("n-gram size must be at least 2, got %d", n)
		}
		return func(a, b string) float64 { return NGramSimilarity(a, b, n) }, nil
	case AlgorithmJaroWinkler:
		return JaroWinkler, nil
	case AlgorithmLevenshtein:
		return Levenshtein, nil
	default:
		return nil, fmt.Errorf("similarity algorithm %q is not available (known: %s)", cfg.Algorithm, strings.Join(Algorithms(), ", "))
	}
}

// Scorer computes the per-pair similarity scores
type Scorer struct {
	cfg Config
	fn  Func
}

// NewScorer resolves the configured algorithm. An unknown algorithm is an error so the
// caller can fail before processing any record.
func NewScorer(cfg Config) (*Scorer, error) {
	fn, err := resolve(cfg)
	if err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg, fn: fn}, nil
}

// Name returns the configured algorithm name
func (s *Scorer) Name() string {
	if s.cfg.Algorithm == "" {
		return AlgorithmTrigram
	}
	return strings.ToLower(s.cfg.Algorithm)
}

// Similarity scores two strings with the configured algorithm
func (s *Scorer) Similarity(a, b string) float64 {
	return s.fn(a, b)
}

// Score computes the similarity scores and birth-year signals for a candidate pair
func (s *Scorer) Score(pair models.CandidatePair) models.ScoredPair {
	scored := models.ScoredPair{CandidatePair: pair}
	if pair.A == nil || pair.B == nil {
		return scored
	}

	scored.FNScore = s.fn(pair.A.CFN, pair.B.CFN)
	scored.LNScore = s.fn(pair.A.CLN, pair.B.CLN)
	scored.AddrScore = s.fn(pair.A.CAddr, pair.B.CAddr)
	scored.YOBA = pair.A.YearOfBirth()
	scored.YOBB = pair.B.YearOfBirth()
	scored.YOBFNA = yobFN(scored.YOBA, pair.A.CFN)
	scored.YOBFNB = yobFN(scored.YOBB, pair.B.CFN)
	return scored
}

// yobFN builds "<year>_<first two runes of the first name>", nil when the year is unknown
func yobFN(yob *int, cfn string) *string {
	if yob == nil {
		return nil
	}
	key := strconv.Itoa(*yob) + "_" + normalizers.Prefix(cfn, yobFNPrefix)
	return &key
}
