package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

func runCLI(t *testing.T, stdin string, args ...string) string {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestScan_LocalFromStdin(t *testing.T) {
	out := runCLI(t, "card 4111111111111111 and password hunter2", "scan", "--local")

	assert.Contains(t, out, "Compliance scan: stdin")
	assert.Contains(t, out, "PCI-DSS")
	assert.Contains(t, out, "Security-Credentials")
	assert.Contains(t, out, "Critical")
}

func TestScan_LocalCleanInput(t *testing.T) {
	out := runCLI(t, "lunch at noon?", "scan", "--local", "-")

	assert.Contains(t, out, "No compliance issues found in stdin.")
}

func TestScan_FileNameSupplementsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patient_list.txt")
	require.NoError(t, os.WriteFile(path, []byte("nothing sensitive here"), 0o600))

	out := runCLI(t, "", "scan", "--local", path)

	assert.Contains(t, out, "HIPAA")
}

func TestScan_MissingFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"scan", "--local", filepath.Join(t.TempDir(), "absent.txt")})

	assert.Error(t, cmd.Execute())
}

func TestRender_CombinedSeverity(t *testing.T) {
	out := render("-", []models.Issue{
		models.NewIssue(models.CategoryHIPAA, models.SeverityHigh, "Healthcare information detected"),
	})

	assert.Contains(t, out, "Combined severity: ")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "1 issue(s)")
}
