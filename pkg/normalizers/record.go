package normalizers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ramsey-B/bramble/pkg/models"
)

// ZipPolicy selects how the postal code candidate is derived from an address
type ZipPolicy string

const (
	// ZipPolicyAddressDigits takes the rightmost 6 digits found anywhere in the address.
	ZipPolicyAddressDigits ZipPolicy = "address_digits"
	// ZipPolicyRawSuffix takes the rightmost 6 characters of the trimmed raw address.
	ZipPolicyRawSuffix ZipPolicy = "raw_suffix"
)

// ZipLength is the width of the postal code candidate
const ZipLength = 6

// ParseZipPolicy validates a configured zip policy name
func ParseZipPolicy(s string) (ZipPolicy, error) {
	switch p := ZipPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ZipPolicyAddressDigits, ZipPolicyRawSuffix:
		return p, nil
	case "":
		return ZipPolicyAddressDigits, nil
	default:
		return "", fmt.Errorf("unknown zip policy %q (use %q or %q)", s, ZipPolicyAddressDigits, ZipPolicyRawSuffix)
	}
}

// Zip derives the postal code candidate from a raw address
func (p ZipPolicy) Zip(address string) string {
	if p == ZipPolicyRawSuffix {
		return rightmost(strings.TrimSpace(address), ZipLength)
	}
	return rightmost(DigitsOnly(address), ZipLength)
}

// dobLayouts are tried in order; the first that parses wins
var dobLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"20060102",
	time.RFC3339,
}

// ParseDOB parses a date of birth. Blank or unparseable input yields nil.
func ParseDOB(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}

// Record fields that run through a normalizer chain
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldAddress = "address"
	FieldGovID   = "gov_id"
)

// DefaultChains returns the production chain of every field
func DefaultChains() map[string][]string {
	return map[string][]string{
		FieldName:    {"nname"},
		FieldEmail:   {"nemail"},
		FieldPhone:   {"nphone"},
		FieldAddress: {"naddress"},
		FieldGovID:   {"ngovid"},
	}
}

// RecordNormalizer maps raw accounts to comparison-ready records
type RecordNormalizer struct {
	zipPolicy ZipPolicy
	chains    map[string][]string
}

// NewRecordNormalizer creates a record normalizer using the given zip policy
func NewRecordNormalizer(zipPolicy ZipPolicy) *RecordNormalizer {
	if zipPolicy == "" {
		zipPolicy = ZipPolicyAddressDigits
	}
	return &RecordNormalizer{zipPolicy: zipPolicy, chains: DefaultChains()}
}

// ZipPolicy returns the policy in use
func (n *RecordNormalizer) ZipPolicy() ZipPolicy {
	return n.zipPolicy
}

// WithChain replaces the chain of one field. Every name must be registered.
func (n *RecordNormalizer) WithChain(field string, names ...string) error {
	if _, ok := n.chains[field]; !ok {
		return fmt.Errorf("unknown record field %q", field)
	}
	for _, name := range names {
		if _, ok := Get(name); !ok {
			return fmt.Errorf("unknown normalizer %q for field %s", name, field)
		}
	}
	n.chains[field] = names
	return nil
}

// Normalize never fails; malformed fields degrade to empty or nil.
func (n *RecordNormalizer) Normalize(raw models.RawRecord) models.NormalizedRecord {
	rec := models.NormalizedRecord{
		AccountID: raw.AccountID,
		CFN:       ApplyChain(raw.FirstName, n.chains[FieldName]...),
		CLN:       ApplyChain(raw.LastName, n.chains[FieldName]...),
		DOB:       ParseDOB(raw.DOB),
		CEmail:    ApplyChain(raw.Email, n.chains[FieldEmail]...),
		CPhone:    ApplyChain(raw.Phone, n.chains[FieldPhone]...),
		CAddr:     ApplyChain(raw.Address, n.chains[FieldAddress]...),
		Zip:       n.zipPolicy.Zip(raw.Address),
	}
	if raw.GovID != nil {
		if id := ApplyChain(*raw.GovID, n.chains[FieldGovID]...); id != "" {
			rec.CID = &id
		}
	}
	return rec
}
