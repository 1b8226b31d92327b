package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "WEAVIATE_HOST", "REDIS_URL", "KAFKA_BROKERS", "ARCHIVE_S3_ENDPOINT"} {
		t.Setenv(k, "")
	}
	t.Setenv("SUPPORTFLOW_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--provider", "fake"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProcess_Complaint(t *testing.T) {
	out, err := runCLI(t, "process", "--id", "CLI-1",
		"--subject", "Terrible service",
		"--description", "This is unacceptable, I want to complain about the staff.",
		"--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     escalated")
	assert.Contains(t, out, "ESCALATED TICKET CLI-1")
	assert.Contains(t, out, "complaints require human review")
}

func TestProcess_RequiresText(t *testing.T) {
	processFlags.subject, processFlags.description = "", ""
	_, err := runCLI(t, "process", "--subject", "", "--description", "")
	assert.Error(t, err)
}

func TestTicketsRecent(t *testing.T) {
	out, err := runCLI(t, "tickets", "recent", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "TKT-00001")
}

func TestTicketsStats(t *testing.T) {
	out, err := runCLI(t, "tickets", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1")
}

func TestKBIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
articles:
  - article_id: kb-900
    title: Lost and found
    content: Items left at the venue are kept for 30 days.
    category: General
`), 0o644))

	out, err := runCLI(t, "kb", "index", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 of 1 article(s)")
}
