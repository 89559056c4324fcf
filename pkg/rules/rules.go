// Package rules classifies scored pairs with an ordered, first-match-wins rule list
package rules

import (
	"github.com/Ramsey-B/bramble/pkg/models"
)

// Rule labels. Slots 11-15 are reserved and intentionally unused.
const (
	Rule01 models.MatchLabel = "RULE_01"
	Rule02 models.MatchLabel = "RULE_02"
	Rule03 models.MatchLabel = "RULE_03"
	Rule04 models.MatchLabel = "RULE_04"
	Rule05 models.MatchLabel = "RULE_05"
	Rule06 models.MatchLabel = "RULE_06"
	Rule07 models.MatchLabel = "RULE_07"
	Rule08 models.MatchLabel = "RULE_08"
	Rule09 models.MatchLabel = "RULE_09"
	Rule10 models.MatchLabel = "RULE_10"
	Rule16 models.MatchLabel = "RULE_16"
	Rule17 models.MatchLabel = "RULE_17"
	Rule18 models.MatchLabel = "RULE_18"
)

// Predicate reports whether a rule fires for a pair. Predicates must treat missing values
// as non-matching.
type Predicate func(p *models.ScoredPair) bool

// Rule is one entry of the ordered rule list
type Rule struct {
	Label       models.MatchLabel `json:"label"`
	Tier        int               `json:"tier"`
	Description string            `json:"description"`
	Match       Predicate         `json:"-"`
}

// Build returns the rule list in evaluation order
func Build(t Thresholds) []Rule {
	return []Rule{
		// Tier 0: exact strong identifier gated by a name floor
		{
			Label: Rule01, Tier: 0,
			Description: "gov id equal and first name similar",
			Match: func(p *models.ScoredPair) bool {
				return govIDEqual(p) && p.FNScore > t.Rule01.FN
			},
		},
		{
			Label: Rule02, Tier: 0,
			Description: "gov id equal, first name similar, last name identical",
			Match: func(p *models.ScoredPair) bool {
				return govIDEqual(p) && p.FNScore > t.Rule02.FN && lastNameEqual(p)
			},
		},
		{
			Label: Rule03, Tier: 0,
			Description: "email, phone and gov id equal",
			Match: func(p *models.ScoredPair) bool {
				return emailEqual(p) && phoneEqual(p) && govIDEqual(p)
			},
		},
		{
			Label: Rule04, Tier: 0,
			Description: "email equal and both names similar",
			Match: func(p *models.ScoredPair) bool {
				return emailEqual(p) && p.FNScore > t.Rule04.FN && p.LNScore > t.Rule04.LN
			},
		},
		{
			Label: Rule05, Tier: 0,
			Description: "phone equal and both names similar",
			Match: func(p *models.ScoredPair) bool {
				return phoneEqual(p) && p.FNScore > t.Rule05.FN && p.LNScore > t.Rule05.LN
			},
		},

		// Tier 1: contact tokens and address stand in for a missing identifier
		{
			Label: Rule06, Tier: 1,
			Description: "address and names similar with phone or email equal",
			Match: func(p *models.ScoredPair) bool {
				return p.AddrScore > t.Rule06.Addr && p.FNScore > t.Rule06.FN && p.LNScore > t.Rule06.LN &&
					(phoneEqual(p) || emailEqual(p))
			},
		},
		{
			Label: Rule07, Tier: 1,
			Description: "gov id missing, email and phone equal, last name similar",
			Match: func(p *models.ScoredPair) bool {
				return govIDMissing(p) && emailEqual(p) && phoneEqual(p) && p.LNScore > t.Rule07.LN
			},
		},
		{
			Label: Rule08, Tier: 1,
			Description: "gov id missing, phone equal, both names similar",
			Match: func(p *models.ScoredPair) bool {
				return govIDMissing(p) && phoneEqual(p) && p.FNScore > t.Rule08.FN && p.LNScore > t.Rule08.LN
			},
		},
		{
			Label: Rule09, Tier: 1,
			Description: "gov id missing, email equal, both names similar",
			Match: func(p *models.ScoredPair) bool {
				return govIDMissing(p) && emailEqual(p) && p.FNScore > t.Rule09.FN && p.LNScore > t.Rule09.LN
			},
		},
		{
			Label: Rule10, Tier: 1,
			Description: "gov id equal with email or phone equal",
			Match: func(p *models.ScoredPair) bool {
				return govIDEqual(p) && (emailEqual(p) || phoneEqual(p))
			},
		},

		// Tier 2: transcription noise tolerated when anchored by birth year or gov id
		{
			Label: Rule16, Tier: 2,
			Description: "birth year and first-name token equal, years within window, names similar",
			Match: func(p *models.ScoredPair) bool {
				return yobFNEqual(p) && yearsWithin(p, t.Rule16.YearWindow) &&
					p.FNScore > t.Rule16.FN && p.LNScore > t.Rule16.LN
			},
		},
		{
			Label: Rule17, Tier: 2,
			Description: "birth year equal and names very similar",
			Match: func(p *models.ScoredPair) bool {
				return yearsWithin(p, 0) && p.FNScore > t.Rule17.FN && p.LNScore > t.Rule17.LN
			},
		},
		{
			Label: Rule18, Tier: 2,
			Description: "gov id equal and average name similarity high",
			Match: func(p *models.ScoredPair) bool {
				return govIDEqual(p) && (p.FNScore+p.LNScore)/2 > t.Rule18.Avg
			},
		},
	}
}

// govIDEqual is false whenever either side is missing
func govIDEqual(p *models.ScoredPair) bool {
	a, b := p.A.CID, p.B.CID
	return a != nil && b != nil && *a != "" && *a == *b
}

func govIDMissing(p *models.ScoredPair) bool {
	return p.A.CID == nil || p.B.CID == nil
}

func emailEqual(p *models.ScoredPair) bool {
	return p.A.CEmail != "" && p.A.CEmail == p.B.CEmail
}

func phoneEqual(p *models.ScoredPair) bool {
	return p.A.CPhone != "" && p.A.CPhone == p.B.CPhone
}

func lastNameEqual(p *models.ScoredPair) bool {
	return p.A.CLN != "" && p.A.CLN == p.B.CLN
}

func yobFNEqual(p *models.ScoredPair) bool {
	return p.YOBFNA != nil && p.YOBFNB != nil && *p.YOBFNA == *p.YOBFNB
}

// yearsWithin is false when either birth year is unknown
func yearsWithin(p *models.ScoredPair, window int) bool {
	if p.YOBA == nil || p.YOBB == nil {
		return false
	}
	diff := *p.YOBA - *p.YOBB
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
