package similarity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/models"
)

func TestTrigrams(t *testing.T) {
	grams := Trigrams("FINN")
	assert.Len(t, grams, 6)
	for _, g := range []string{"$$F", "$FI", "FIN", "INN", "NN$", "N$$"} {
		assert.Contains(t, grams, g)
	}

	assert.Empty(t, Trigrams(""))
	// repeated trigrams count once
	assert.Len(t, Trigrams("AAAA"), 5)
}

func TestNGramSimilarity(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		assert.Equal(t, 1.0, NGramSimilarity("OBRIEN", "OBRIEN", 3))
	})

	t.Run("disjoint", func(t *testing.T) {
		assert.Equal(t, 0.0, NGramSimilarity("JOHN", "ROBERT", 3))
	})

	t.Run("empty is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, NGramSimilarity("", "", 3))
		assert.Equal(t, 0.0, NGramSimilarity("", "JOHN", 3))
	})

	t.Run("partial overlap", func(t *testing.T) {
		// JON: $$J $JO JON ON$ N$$ ; JOHN: $$J $JO JOH OHN HN$ N$$
		assert.InDelta(t, 3.0/8.0, NGramSimilarity("JON", "JOHN", 3), 1e-9)
	})
}

func TestSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"JONATHAN", "JOHNATHAN"},
		{"CATHERINE", "KATHERINE"},
		{"12 MAIN ST", "12 MAIN STREET"},
		{"A", ""},
		{"ANNE MARIE", "ANNEMARIE"},
	}
	for _, algo := range []string{AlgorithmTrigram, AlgorithmLevenshtein} {
		scorer, err := NewScorer(Config{Algorithm: algo})
		require.NoError(t, err)
		for _, p := range pairs {
			assert.Equal(t, scorer.Similarity(p[0], p[1]), scorer.Similarity(p[1], p[0]), "%s %v", algo, p)
		}
	}
}

func TestNewScorer(t *testing.T) {
	s, err := NewScorer(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, AlgorithmTrigram, s.Name())

	_, err = NewScorer(Config{Algorithm: "pg_trgm"})
	assert.Error(t, err)

	_, err = NewScorer(Config{Algorithm: AlgorithmTrigram, NGramSize: 1})
	assert.Error(t, err)

	s, err = NewScorer(Config{Algorithm: "Jaro_Winkler"})
	require.NoError(t, err)
	assert.Equal(t, AlgorithmJaroWinkler, s.Name())
}

func TestScorer_Score(t *testing.T) {
	scorer, err := NewScorer(DefaultConfig())
	require.NoError(t, err)

	dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	a := &models.NormalizedRecord{AccountID: "A", CFN: "FINN", CLN: "OBRIEN", CAddr: "1 HIGH ST", DOB: &dob}
	b := &models.NormalizedRecord{AccountID: "B", CFN: "FINN", CLN: "OBRIEN", CAddr: ""}

	scored := scorer.Score(models.CandidatePair{AID: "A", BID: "B", A: a, B: b})
	assert.Equal(t, 1.0, scored.FNScore)
	assert.Equal(t, 1.0, scored.LNScore)
	assert.Equal(t, 0.0, scored.AddrScore)
	require.NotNil(t, scored.YOBA)
	assert.Equal(t, 1990, *scored.YOBA)
	require.NotNil(t, scored.YOBFNA)
	assert.Equal(t, "1990_FI", *scored.YOBFNA)
	assert.Nil(t, scored.YOBB)
	assert.Nil(t, scored.YOBFNB)

	reversed := scorer.Score(models.CandidatePair{AID: "A", BID: "B", A: b, B: a})
	assert.Equal(t, scored.FNScore, reversed.FNScore)
	assert.Equal(t, scored.LNScore, reversed.LNScore)
	assert.Equal(t, scored.AddrScore, reversed.AddrScore)
}

func TestJaroWinkler(t *testing.T) {
	assert.Equal(t, 1.0, JaroWinkler("MARTHA", "MARTHA"))
	assert.InDelta(t, 0.961, JaroWinkler("MARTHA", "MARHTA"), 0.001)
	assert.Equal(t, 0.0, JaroWinkler("", "MARTHA"))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 3, LevenshteinDistance("KITTEN", "SITTING"))
	assert.InDelta(t, 1-3.0/7.0, Levenshtein("KITTEN", "SITTING"), 1e-9)
	assert.Equal(t, 0.0, Levenshtein("", ""))
}
