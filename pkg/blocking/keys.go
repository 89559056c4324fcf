package blocking

import (
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/normalizers"
)

// Key extractor names
const (
	KeyGovID   = "gov_id"
	KeyPhone   = "phone"
	KeyEmail   = "email"
	KeyNameZip = "name_zip"
)

// nameZipPrefix is the number of leading first-name runes in the name/zip key
const nameZipPrefix = 3

// KeyFunc extracts a block key from a record. ok is false when the record has no key.
type KeyFunc func(rec *models.NormalizedRecord) (key string, ok bool)

// KeyExtractor is a named strong-key extractor
type KeyExtractor struct {
	Name string
	Key  KeyFunc
}

// DefaultExtractors returns the four strong-key extractors
func DefaultExtractors() []KeyExtractor {
	return []KeyExtractor{
		{Name: KeyGovID, Key: govIDKey},
		{Name: KeyPhone, Key: phoneKey},
		{Name: KeyEmail, Key: emailKey},
		{Name: KeyNameZip, Key: nameZipKey},
	}
}

func govIDKey(rec *models.NormalizedRecord) (string, bool) {
	if rec.CID == nil || *rec.CID == "" {
		return "", false
	}
	return *rec.CID, true
}

func phoneKey(rec *models.NormalizedRecord) (string, bool) {
	return rec.CPhone, rec.CPhone != ""
}

func emailKey(rec *models.NormalizedRecord) (string, bool) {
	return rec.CEmail, rec.CEmail != ""
}

// nameZipKey has no null guard: an empty prefix and zip still form a (weak) block
func nameZipKey(rec *models.NormalizedRecord) (string, bool) {
	return normalizers.Prefix(rec.CFN, nameZipPrefix) + "|" + rec.Zip, true
}
