package models

import "time"

// Cluster is one connected component of accounts sharing a golden customer ID.
// Members are sorted ascending, so Members[0] == CustomerID.
type Cluster struct {
	CustomerID string   `json:"customer_id"`
	Members    []string `json:"members"`
}

// Size returns the member count
func (c Cluster) Size() int {
	return len(c.Members)
}

// CustomerAccount is a persisted account -> customer assignment
type CustomerAccount struct {
	RunID      string    `json:"run_id" db:"run_id"`
	AccountID  string    `json:"account_id" db:"account_id"`
	CustomerID string    `json:"customer_id" db:"customer_id"`
	CFN        string    `json:"cfn" db:"cfn"`
	CLN        string    `json:"cln" db:"cln"`
	DOB        *string   `json:"dob,omitempty" db:"dob"`
	CEmail     string    `json:"cemail" db:"cemail"`
	CPhone     string    `json:"cphone" db:"cphone"`
	CID        *string   `json:"cid,omitempty" db:"cid"`
	CAddr      string    `json:"caddr" db:"caddr"`
	Zip        string    `json:"zip" db:"zip"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ReviewCluster is a multi-member cluster with the member records, as listed for stewardship review
type ReviewCluster struct {
	CustomerID  string            `json:"customer_id"`
	MemberCount int               `json:"member_count"`
	Members     []CustomerAccount `json:"members"`
	Decisions   []MatchDecision   `json:"decisions,omitempty"`
}

// ClusterSize is a customer ID with its member count
type ClusterSize struct {
	CustomerID  string `json:"customer_id" db:"customer_id"`
	MemberCount int    `json:"member_count" db:"member_count"`
}
