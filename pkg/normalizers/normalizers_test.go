package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/models"
)

func strPtr(s string) *string { return &s }

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" Finn ", "FINN"},
		{"O'Brien", "OBRIEN"},
		{"O'BRIEN", "OBRIEN"},
		{"Mary-Jane", "MARYJANE"},
		{"Anne Marie", "ANNE MARIE"},
		{"José", "JOSE"},
		{"Łukasz", "ŁUKASZ"},
		{"Straße", "STRAßE"},
		{"Иван", "ИВАН"},
		{"R2-D2", "RD"},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "5551234567", NormalizePhone("555.123.4567"))
	assert.Equal(t, "1234", NormalizePhone("12-34"))
	assert.Equal(t, "", NormalizePhone("n/a"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "f.obrien@mail.com", NormalizeEmail("  F.OBrien@Mail.com "))
	assert.Equal(t, "a+b@x.io", NormalizeEmail("A+B@X.IO"))
}

func TestNormalizeGovIDAndAddress(t *testing.T) {
	assert.Equal(t, "AB123456C", NormalizeGovID(" ab-123 456/c "))
	assert.Equal(t, "", NormalizeGovID("--"))
	assert.Equal(t, "12 MAIN ST APT 4  560001", NormalizeAddress("12, Main St. Apt #4 - 560001"))
	assert.Equal(t, "ŁODZ 12", NormalizeAddress("Łódź 12"))
}

func TestZipPolicy(t *testing.T) {
	addr := "12 Main St, Springfield 560001 "

	t.Run("address digits", func(t *testing.T) {
		assert.Equal(t, "560001", ZipPolicyAddressDigits.Zip(addr))
		// house number digits are included before the suffix is taken
		assert.Equal(t, "123456", ZipPolicyAddressDigits.Zip("123 Elm 456"))
	})

	t.Run("raw suffix", func(t *testing.T) {
		assert.Equal(t, "560001", ZipPolicyRawSuffix.Zip(addr))
		assert.Equal(t, "lm 456", ZipPolicyRawSuffix.Zip("123 Elm 456"))
	})

	t.Run("parse", func(t *testing.T) {
		p, err := ParseZipPolicy("")
		require.NoError(t, err)
		assert.Equal(t, ZipPolicyAddressDigits, p)

		p, err = ParseZipPolicy("RAW_SUFFIX")
		require.NoError(t, err)
		assert.Equal(t, ZipPolicyRawSuffix, p)

		_, err = ParseZipPolicy("both")
		assert.Error(t, err)
	})
}

func TestParseDOB(t *testing.T) {
	for _, in := range []string{"1984-03-07", "1984/03/07", "03/07/1984", "19840307"} {
		got := ParseDOB(strPtr(in))
		require.NotNil(t, got, in)
		assert.Equal(t, 1984, got.Year())
	}
	assert.Nil(t, ParseDOB(nil))
	assert.Nil(t, ParseDOB(strPtr("")))
	assert.Nil(t, ParseDOB(strPtr("not a date")))
}

func TestRecordNormalizer_Normalize(t *testing.T) {
	n := NewRecordNormalizer(ZipPolicyAddressDigits)

	t.Run("worked example", func(t *testing.T) {
		a := n.Normalize(models.RawRecord{AccountID: "ACC_003", FirstName: " Finn ", LastName: "OBrien", Email: "f.obrien@mail.com"})
		b := n.Normalize(models.RawRecord{AccountID: "ACC_101", FirstName: "FINN", LastName: "O'BRIEN", Email: "f.obrien@mail.com"})

		assert.Equal(t, "FINN", a.CFN)
		assert.Equal(t, a.CFN, b.CFN)
		assert.Equal(t, "OBRIEN", a.CLN)
		assert.Equal(t, a.CLN, b.CLN)
		assert.Equal(t, a.CEmail, b.CEmail)
	})

	t.Run("blank gov id becomes nil", func(t *testing.T) {
		rec := n.Normalize(models.RawRecord{AccountID: "A", GovID: strPtr(" - ")})
		assert.Nil(t, rec.CID)

		rec = n.Normalize(models.RawRecord{AccountID: "A", GovID: strPtr("x1-2")})
		require.NotNil(t, rec.CID)
		assert.Equal(t, "X12", *rec.CID)
	})

	t.Run("malformed input degrades", func(t *testing.T) {
		rec := n.Normalize(models.RawRecord{AccountID: "A", DOB: strPtr("31/31/31"), Phone: "none"})
		assert.Nil(t, rec.DOB)
		assert.Nil(t, rec.YearOfBirth())
		assert.Equal(t, "", rec.CPhone)
		assert.Equal(t, "", rec.Zip)
	})
}

func TestApplyChain(t *testing.T) {
	assert.Equal(t, "ABC", ApplyChain(" a-b c ", "alphanumeric", "uppercase"))
	assert.Equal(t, "unchanged", Apply("unchanged", "missing"))

	fn, ok := Get("nphone")
	require.True(t, ok)
	assert.Equal(t, "5551234567", fn("1-555-123-4567"))
}

func TestRecordNormalizer_WithChain(t *testing.T) {
	n := NewRecordNormalizer(ZipPolicyAddressDigits)
	require.NoError(t, n.WithChain(FieldEmail, "trim", "uppercase"))

	rec := n.Normalize(models.RawRecord{AccountID: "A", Email: " a.b@Mail.com "})
	assert.Equal(t, "A.B@MAIL.COM", rec.CEmail)

	assert.Error(t, n.WithChain(FieldEmail, "rot13"))
	assert.Error(t, n.WithChain("middle_name", "nname"))

	// other instances keep the default chain
	rec = NewRecordNormalizer(ZipPolicyAddressDigits).Normalize(models.RawRecord{AccountID: "A", Email: " a.b@Mail.com "})
	assert.Equal(t, "a.b@mail.com", rec.CEmail)
}
