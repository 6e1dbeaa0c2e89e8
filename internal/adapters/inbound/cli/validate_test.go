package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulegate/rulegate/internal/adapters/inbound/cli"
)

const fixtureDir = "../../../../testdata/rules"

func TestValidateCommand_JSON(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", "--format", "sigma", "--json", fixtureDir + "/sigma_valid.yml"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"status": "SUCCESS"`)
	assert.Contains(t, buf.String(), `"confidenceScore": 100`)
}

func TestValidateCommand_DefaultTUI(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", "--format", "crowdstrike", fixtureDir + "/crowdstrike_valid.json"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "rulegate")
	assert.Contains(t, buf.String(), "SUCCESS")
}

func TestValidateCommand_FailsOnErrorResult(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"validate", "--format", "sigma", fixtureDir + "/sigma_missing_detection.yml"})
	assert.Error(t, cmd.Execute())
}

func TestValidateCommand_MixedBatch(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{
		"validate", "--format", "crowdstrike", "--json",
		fixtureDir + "/crowdstrike_valid.json",
		fixtureDir + "/crowdstrike_invalid.json",
	})
	assert.Error(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"SUCCESS"`)
	assert.Contains(t, buf.String(), `"ERROR"`)
}

func TestValidateCommand_UnknownFormat(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetArgs([]string{"validate", "--format", "snort", fixtureDir + "/sigma_valid.yml"})
	assert.Error(t, cmd.Execute())
}

func TestFormatsCommand(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"formats"})
	require.NoError(t, cmd.Execute())
	for _, want := range []string{"splunk", "qradar", "sigma", "kql", "paloalto", "crowdstrike", "yara", "yaral"} {
		assert.Contains(t, buf.String(), want)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "rulegate")
}
