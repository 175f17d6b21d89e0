package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dctmd-mcp-server/internal/diagnosis"
	"github.com/dctmd-mcp-server/internal/domain"
)

const myalgiaYAML = `sq:
  SQ1: "yes"
  SQ3: intermittent
  SQ4_A: "yes"
e1:
  painLocation:
    left: [temporalis]
e9:
  left:
    temporalisPosterior:
      familiarPain: "yes"
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func useTempRecords(t *testing.T) {
	t.Helper()
	t.Setenv("DCTMD_RECORDS_DRIVER", "sqlite")
	t.Setenv("DCTMD_RECORDS_SQLITE_PATH", filepath.Join(t.TempDir(), "records.db"))
}

func TestDiagnosesCommand(t *testing.T) {
	out, err := run(t, "diagnoses")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 13)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, out, "headacheAttributedToTmd")

	out, err = run(t, "diagnoses", "--json")
	require.NoError(t, err)
	var summaries []diagnosis.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	assert.Len(t, summaries, 12)
}

func TestEvaluateCommand(t *testing.T) {
	path := writeFile(t, "patient.yaml", myalgiaYAML)

	out, err := run(t, "evaluate", "--file", path, "-d", "myalgia")
	require.NoError(t, err)
	assert.Equal(t, "Myalgia: positive (left temporalis)\n", out)

	out, err = run(t, "evaluate", "--file", path, "--json")
	require.NoError(t, err)
	var resp struct {
		PositiveDiagnoses []domain.DiagnosisID `json:"positive_diagnoses"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Contains(t, resp.PositiveDiagnoses, domain.MYALGIA)

	_, err = run(t, "evaluate")
	assert.Error(t, err, "--file is required")

	_, err = run(t, "evaluate", "--file", path, "-d", "bruxism")
	assert.ErrorIs(t, err, domain.ErrUnknownDiagnosis)
}

func TestRelevanceCommand(t *testing.T) {
	path := writeFile(t, "answers.yaml", "SQ8: \"no\"\nSQ9: \"no\"\n")

	out, err := run(t, "relevance", "--file", path)
	require.NoError(t, err)

	var res diagnosis.RelevanceResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Contains(t, res.RuledOutDiagnoses, domain.DEGENERATIVE_JOINT_DISEASE)
}

func TestImportExportCommands(t *testing.T) {
	useTempRecords(t)
	path := writeFile(t, "patient.yaml", myalgiaYAML)

	out, err := run(t, "import", "--id", "patient-3", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "patient-3\n", out)

	out, err = run(t, "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"patient-3"`)

	bundle := writeFile(t, "bundle.json", out)
	out, err = run(t, "import", "--bundle", bundle)
	require.NoError(t, err)
	assert.Equal(t, "imported 0 records, skipped 1 existing\n", out)

	_, err = run(t, "import", "--id", "x")
	assert.Error(t, err)
}

func TestImportWithoutStore(t *testing.T) {
	t.Setenv("DCTMD_RECORDS_DRIVER", "none")
	path := writeFile(t, "patient.yaml", myalgiaYAML)

	_, err := run(t, "import", "--file", path)
	assert.Error(t, err)
}

func TestMigrateCommandRejectsDirection(t *testing.T) {
	_, err := run(t, "migrate", "sideways")
	assert.Error(t, err)

	_, err = run(t, "migrate")
	assert.Error(t, err)
}

func TestSetupRegisterAndStatus(t *testing.T) {
	dir := t.TempDir()
	clientConfig := filepath.Join(dir, "claude_desktop_config.json")
	binary := filepath.Join(dir, "mcp-server-lite")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	out, err := run(t, "setup", "register", "--client-config", clientConfig, "--binary", binary, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `"mcpServers"`)
	_, err = os.Stat(clientConfig)
	assert.True(t, os.IsNotExist(err), "dry run must not write the file")

	_, err = run(t, "setup", "register", "--client-config", clientConfig, "--binary", binary, "--data-dir", dir)
	require.NoError(t, err)

	out, err = run(t, "setup", "status", "--client-config", clientConfig)
	require.NoError(t, err)
	var st struct {
		Registered bool   `json:"registered"`
		Command    string `json:"command"`
		DataDir    string `json:"data_dir"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.True(t, st.Registered)
	assert.Equal(t, binary, st.Command)
	assert.Equal(t, dir, st.DataDir)
}
