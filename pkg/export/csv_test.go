package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/flow"
	"github.com/flowlens/flowlens/pkg/json"
)

func makeUnit(t *testing.T, doc, group string) *flow.Processor {
	t.Helper()
	v, err := json.DecodeBytes([]byte(doc))
	require.NoError(t, err)
	obj, ok := v.(*json.Object)
	require.True(t, ok)
	return flow.ParseUnit(obj, group)
}

func parseCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteSummary(t *testing.T) {
	units := []*flow.Processor{
		makeUnit(t, `{
			"identifier": "p1",
			"name": "Ingest",
			"type": "org.example.processors.standard.GetFile",
			"state": "RUNNING",
			"schedulingPeriod": "5 sec",
			"concurrentlySchedulableTaskCount": 2,
			"autoTerminatedRelationships": ["failure", "retry"],
			"properties": {"Input Directory": "/data/in"}
		}`, "Root"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, units))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, summaryHeaders, rows[0])
	assert.Equal(t, []string{
		"Ingest", "p1", "org.example.processors.standard.GetFile", "Root",
		"RUNNING", "2", "5 sec", "Unknown", "Unknown", "Unknown",
		"failure; retry", "1",
	}, rows[1])
}

func TestWriteMatrixUnionFirstSeenOrder(t *testing.T) {
	units := []*flow.Processor{
		makeUnit(t, `{"identifier":"a","properties":{"zeta":"1","alpha":"2"}}`, "Root"),
		makeUnit(t, `{"identifier":"b","properties":{"alpha":"3","omega":"4"}}`, "Root"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, units))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t, append(append([]string{}, identityHeaders...), "zeta", "alpha", "omega"), rows[0])

	// missing properties render as empty cells
	assert.Equal(t, []string{"1", "2", ""}, rows[1][len(identityHeaders):])
	assert.Equal(t, []string{"", "3", "4"}, rows[2][len(identityHeaders):])
}

func TestWriteKeyConfigSelectsKeyProperties(t *testing.T) {
	units := []*flow.Processor{
		makeUnit(t, `{"identifier":"a","properties":{
			"Remote URL": "https://example.invalid",
			"Character Set": "UTF-8",
			"Secret Access Key": "abc123"
		}}`, "Root"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteKeyConfig(&buf, units))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 2)

	header := rows[0][len(identityHeaders):]
	assert.Equal(t, []string{"Remote URL", "Secret Access Key"}, header)

	values := rows[1][len(identityHeaders):]
	assert.Equal(t, "https://example.invalid", values[0])
	// redacted at parse time; the raw value never reaches the writer
	assert.Equal(t, flow.RedactedMarker, values[1])
	assert.NotContains(t, buf.String(), "abc123")
}

func TestIsKeyProperty(t *testing.T) {
	assert.True(t, IsKeyProperty("Remote URL"))
	assert.True(t, IsKeyProperty("Bootstrap Servers Endpoint"))
	assert.True(t, IsKeyProperty("Password"))
	assert.True(t, IsKeyProperty("SQL select statement"))
	assert.False(t, IsKeyProperty("Character Set"))
	assert.False(t, IsKeyProperty("Compression Level"))
}

func TestWriteMatrixNoUnits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, nil))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 1)
	assert.Equal(t, identityHeaders, rows[0])
}
