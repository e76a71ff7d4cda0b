package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelez/sleuth/pkg/research"
)

func TestReportMarkdown(t *testing.T) {
	state := &research.State{
		Query: "grafana alternatives",
		Companies: []research.Company{
			{Name: "SigNoz", Website: "https://signoz.io"},
			{Name: "Chronograf"},
		},
		Analysis: "Use SigNoz.",
	}

	doc := reportMarkdown(state)

	assert.Contains(t, doc, "# Research: grafana alternatives")
	assert.Contains(t, doc, "- **SigNoz** (https://signoz.io)")
	assert.Contains(t, doc, "- **Chronograf**\n")
	assert.Contains(t, doc, "Use SigNoz.")
}

func TestReportMarkdown_NoCompanies(t *testing.T) {
	state := &research.State{Query: "q", Analysis: "No companies found for analysis."}

	doc := reportMarkdown(state)

	assert.NotContains(t, doc, "## Candidates")
	assert.Contains(t, doc, "No companies found for analysis.")
}

func TestListReports(t *testing.T) {
	tmp := t.TempDir()

	out := listReports(tmp + "/missing")
	assert.Contains(t, out, "sleuth init")

	out = listReports(tmp)
	assert.Contains(t, out, "No saved reports")

	state := &research.State{Query: "CI tools", Analysis: "report body"}
	_, err := saveReport(tmp, "CI tools", state)
	require.NoError(t, err)

	out = listReports(tmp)
	assert.Contains(t, out, "Saved reports:")
	assert.Contains(t, out, "ci-tools-")
}

func TestSaveReport(t *testing.T) {
	tmp := t.TempDir()
	state := &research.State{Query: "CI tools", Analysis: "report body"}

	path, err := saveReport(tmp, "CI tools", state)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "report body")
	assert.Contains(t, path, "ci-tools-")
}
