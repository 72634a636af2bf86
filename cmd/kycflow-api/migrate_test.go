package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpSection(t *testing.T) {
	got := upSection("-- +goose Up\nCREATE TABLE a (id int);\n\n-- +goose Down\nDROP TABLE a;\n")
	assert.Contains(t, got, "CREATE TABLE a")
	assert.NotContains(t, got, "DROP TABLE")
	assert.NotContains(t, got, "+goose")

	assert.Equal(t, "SELECT 1;", upSection("SELECT 1;"))
}

func TestUpSection_InitMigration(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)
	up := upSection(string(raw))
	assert.Contains(t, up, "kyc_cases_one_open_per_applicant")
	assert.NotContains(t, up, "DROP TABLE")
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, 1, extractVersion("migrations/0001_init.sql"))
	assert.Equal(t, 12, extractVersion("/x/0012_add_index.sql"))
	assert.Equal(t, 0, extractVersion("notes.sql"))
}
