package models

import "time"

// RawRecord is an account as delivered by the ingestion side. It is never modified.
type RawRecord struct {
	AccountID string  `json:"account_id" db:"account_id"`
	FirstName string  `json:"first_name" db:"first_name"`
	LastName  string  `json:"last_name" db:"last_name"`
	DOB       *string `json:"dob,omitempty" db:"dob"`
	Email     string  `json:"email" db:"email"`
	Phone     string  `json:"phone" db:"phone"`
	Address   string  `json:"address" db:"address"`
	GovID     *string `json:"gov_id,omitempty" db:"gov_id"`
}

// NormalizedRecord is the comparison-ready form of a RawRecord.
// Produced once per raw record and read-only afterwards.
type NormalizedRecord struct {
	AccountID string     `json:"account_id" db:"account_id"`
	CFN       string     `json:"cfn" db:"cfn"`
	CLN       string     `json:"cln" db:"cln"`
	DOB       *time.Time `json:"dob,omitempty" db:"dob"`
	CEmail    string     `json:"cemail" db:"cemail"`
	CPhone    string     `json:"cphone" db:"cphone"`
	CID       *string    `json:"cid,omitempty" db:"cid"`
	CAddr     string     `json:"caddr" db:"caddr"`
	Zip       string     `json:"zip" db:"zip"`
}

// YearOfBirth returns the birth year, or nil when the date of birth is unknown.
func (r *NormalizedRecord) YearOfBirth() *int {
	if r == nil || r.DOB == nil {
		return nil
	}
	y := r.DOB.Year()
	return &y
}
