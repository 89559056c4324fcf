package pipeline

import (
	"github.com/Ramsey-B/bramble/pkg/models"
)

const dobLayout = "2006-01-02"

// CustomerAccounts returns one assignment row per account, carrying its normalized fields
func (r *Result) CustomerAccounts() []models.CustomerAccount {
	out := make([]models.CustomerAccount, 0, len(r.Records))
	for _, rec := range r.Records {
		customerID, _ := r.Partition.CustomerID(rec.AccountID)
		account := models.CustomerAccount{
			RunID:      r.RunID,
			AccountID:  rec.AccountID,
			CustomerID: customerID,
			CFN:        rec.CFN,
			CLN:        rec.CLN,
			CEmail:     rec.CEmail,
			CPhone:     rec.CPhone,
			CID:        rec.CID,
			CAddr:      rec.CAddr,
			Zip:        rec.Zip,
			CreatedAt:  r.StartedAt,
		}
		if rec.DOB != nil {
			dob := rec.DOB.Format(dobLayout)
			account.DOB = &dob
		}
		out = append(out, account)
	}
	return out
}

// Run returns the run row for the result
func (r *Result) Run() models.ResolutionRun {
	return models.ResolutionRun{
		ID:             r.RunID,
		Status:         models.RunStatusCompleted,
		RecordCount:    r.Stats.Records,
		CandidateCount: r.Stats.Candidates,
		MatchCount:     r.Stats.Matches,
		ClusterCount:   r.Stats.Clusters,
		MultiMember:    r.Stats.MultiMember,
		ZipPolicy:      string(r.ZipPolicy),
		StartedAt:      r.StartedAt,
	}
}

// Review returns multi-member clusters with their member records and audit decisions,
// largest first, capped at limit
func (r *Result) Review(limit int) []models.ReviewCluster {
	accounts := make(map[string]models.CustomerAccount, len(r.Records))
	for _, a := range r.CustomerAccounts() {
		accounts[a.AccountID] = a
	}

	var out []models.ReviewCluster
	for _, c := range r.Partition.MultiMember(limit) {
		review := models.ReviewCluster{
			CustomerID:  c.CustomerID,
			MemberCount: c.Size(),
		}
		for _, id := range c.Members {
			review.Members = append(review.Members, accounts[id])
		}
		for _, m := range r.Matches {
			if cid, _ := r.Partition.CustomerID(m.AID); cid == c.CustomerID {
				review.Decisions = append(review.Decisions, m)
			}
		}
		out = append(out, review)
	}
	return out
}
