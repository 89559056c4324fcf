package models

// MatchLabel identifies the rule that linked two accounts, or NoMatch.
type MatchLabel string

// NoMatch is the fallthrough label when no rule fires
const NoMatch MatchLabel = "NO_MATCH"

// IsMatch reports whether the label links two accounts
func (l MatchLabel) IsMatch() bool {
	return l != "" && l != NoMatch
}

// CandidatePair is an unordered pair of accounts selected by blocking.
// AID < BID always holds so each unordered pair is represented once.
type CandidatePair struct {
	AID string            `json:"aid"`
	BID string            `json:"bid"`
	A   *NormalizedRecord `json:"-"`
	B   *NormalizedRecord `json:"-"`
}

// ScoredPair is a CandidatePair with its similarity scores and birth-year signals
type ScoredPair struct {
	CandidatePair
	FNScore   float64 `json:"fn_score"`
	LNScore   float64 `json:"ln_score"`
	AddrScore float64 `json:"addr_score"`
	YOBA      *int    `json:"yob_a,omitempty"`
	YOBB      *int    `json:"yob_b,omitempty"`
	YOBFNA    *string `json:"yob_fn_a,omitempty"`
	YOBFNB    *string `json:"yob_fn_b,omitempty"`
}

// MatchDecision is the rule engine verdict for one candidate pair
type MatchDecision struct {
	AID   string     `json:"aid" db:"aid"`
	BID   string     `json:"bid" db:"bid"`
	Label MatchLabel `json:"label" db:"label"`
}

// Edge is one direction of an undirected match connection
type Edge struct {
	Src string `json:"src"`
	Tgt string `json:"tgt"`
}
