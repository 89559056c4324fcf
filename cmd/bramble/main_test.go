package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountsCSV = `account_id,first_name,last_name,dob,email,phone,address,gov_id
ACC_101,FINN,O'BRIEN,,f.obrien@mail.com,,,
ACC_003, Finn ,OBrien,,f.obrien@mail.com,,,
ACC_200,MARIA,GOMEZ,,,555-010-2000,,
ACC_201,María,Gómez,,mg@mail.com,+1 (555) 010-2000,,
ACC_202,Maria,Gomez,,mg@mail.com,,,
ACC_900,Zed,Loner,,,,1 Nowhere Rd 999999,
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "accounts.csv")
	output := filepath.Join(dir, "mapping.csv")
	require.NoError(t, os.WriteFile(input, []byte(accountsCSV), 0o600))

	out, err := execute(t, "resolve", "--input", input, "--output", output)
	require.NoError(t, err)

	assert.Contains(t, out, "Records:      6")
	assert.Contains(t, out, "ACC_200  3 accounts")
	assert.Contains(t, out, "ACC_003  2 accounts")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "account_id,customer_id", lines[0])
	assert.Contains(t, lines, "ACC_101,ACC_003")
	assert.Contains(t, lines, "ACC_202,ACC_200")
	assert.Contains(t, lines, "ACC_900,ACC_900")
}

func TestResolveCommand_Errors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		_, err := execute(t, "resolve")
		assert.ErrorContains(t, err, "--input is required")
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := execute(t, "resolve", "--source", "s3")
		assert.ErrorContains(t, err, "unknown source")
	})

	t.Run("unknown algorithm fails before reading", func(t *testing.T) {
		t.Setenv("SIMILARITY_ALGORITHM", "cosine")
		_, err := execute(t, "resolve", "--input", filepath.Join(t.TempDir(), "missing.csv"))
		assert.ErrorContains(t, err, "invalid config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "resolve", "--input", filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)

	assert.Contains(t, out, " 1. RULE_01")
	assert.Contains(t, out, "13. RULE_18")
	assert.Contains(t, out, "otherwise NO_MATCH")
}
