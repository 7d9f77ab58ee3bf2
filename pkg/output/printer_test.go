package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/scttfrdmn/awsmp/pkg/aws"
	"github.com/scttfrdmn/awsmp/pkg/dispatch"
	"github.com/scttfrdmn/awsmp/pkg/matrix"
)

func sampleRows() []Row {
	results := []any{
		&aws.Identity{Profile: "prod", Region: "us-east-1", Account: "222222222222", ARN: "arn:aws:iam::222222222222:user/ci"},
		map[string]any{"profile": "dev", "region": "us-east-1", "total": float64(3)},
	}
	errs := []error{
		&dispatch.TaskError{
			Task:   "whoami",
			Params: matrix.Params{Profile: "dev", Region: "eu-west-1"},
			Err:    errors.New("ExpiredToken"),
		},
	}
	return Rows(results, errs)
}

func TestRows(t *testing.T) {
	rows := sampleRows()
	require.Len(t, rows, 3)

	assert.Equal(t, "dev", rows[0].Profile)
	assert.Equal(t, "eu-west-1", rows[0].Region)
	assert.Equal(t, "ExpiredToken", rows[0].Error)
	assert.Nil(t, rows[0].Value)

	assert.Equal(t, "dev", rows[1].Profile)
	assert.Equal(t, "us-east-1", rows[1].Region)

	assert.Equal(t, "prod", rows[2].Profile)
	assert.Empty(t, rows[2].Error)
}

func TestRowsPlainValues(t *testing.T) {
	rows := Rows([]any{"dev:us-east-1"}, []error{errors.New("plain failure")})
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Value: "dev:us-east-1"}, rows[0])
	assert.Equal(t, Row{Error: "plain failure"}, rows[1])
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "dev:us-east-1", "dev:us-east-1"},
		{"number", 42, "42"},
		{"struct", &aws.InstanceCount{Profile: "dev", Region: "us-east-1", Total: 2, ByState: map[string]int{"running": 2}},
			`by_state={"running":2} total=2`},
		{"map", map[string]any{"profile": "dev", "region": "x", "account": "1"}, "account=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.value))
		})
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Print("json", sampleRows()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "ExpiredToken", decoded[0]["error"])
	assert.NotContains(t, decoded[0], "value")
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Print("yaml", sampleRows()))

	var decoded []Row
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "prod", decoded[2].Profile)
}

func TestPrintCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Print("csv", sampleRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "profile,region,result,error", lines[0])
	assert.Equal(t, "dev,eu-west-1,,ExpiredToken", lines[1])
	assert.Equal(t, "dev,us-east-1,total=3,", lines[2])
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Print("table", sampleRows()))

	out := buf.String()
	assert.Contains(t, out, "PROFILE")
	assert.Contains(t, out, "ExpiredToken")
	assert.Contains(t, out, "account=222222222222")
}

func TestPrintUnsupported(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	assert.ErrorContains(t, p.Print("xml", nil), "unsupported output format")
	assert.ErrorContains(t, p.PrintList("xml", "Profile", nil), "unsupported output format")
}

func TestPrintList(t *testing.T) {
	items := []string{"dev", "prod"}

	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	require.NoError(t, p.PrintList("csv", "Profile", items))
	assert.Equal(t, "profile\ndev\nprod\n", buf.String())

	buf.Reset()
	require.NoError(t, p.PrintList("json", "Profile", items))
	assert.JSONEq(t, `["dev","prod"]`, buf.String())

	buf.Reset()
	require.NoError(t, p.PrintList("table", "Profile", items))
	assert.Contains(t, buf.String(), "PROFILE")
	assert.Contains(t, buf.String(), "prod")
}

func TestStatus(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Status(false, "1 task failed")
	assert.Equal(t, "1 task failed\n", buf.String())
}
