package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scttfrdmn/awsmp/pkg/matrix"
)

func decodeEnvelope(t *testing.T, b []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(b), &env))
	return env
}

func TestRunChild(t *testing.T) {
	ctx := context.Background()
	p := matrix.Params{Profile: "dev", Region: "us-west-2"}

	var buf bytes.Buffer
	require.NoError(t, RunChild(ctx, "test.concat", p, &buf))
	assert.Equal(t, envelope{Value: "dev:us-west-2"}, decodeEnvelope(t, buf.Bytes()))

	buf.Reset()
	require.NoError(t, RunChild(ctx, "test.fail", p, &buf))
	assert.Equal(t, envelope{Failed: true, Error: "boom in us-west-2"}, decodeEnvelope(t, buf.Bytes()))

	// a failure with an empty message is still a failure
	buf.Reset()
	require.NoError(t, RunChild(ctx, "test.emptyerr", p, &buf))
	assert.Equal(t, envelope{Failed: true}, decodeEnvelope(t, buf.Bytes()))

	buf.Reset()
	require.NoError(t, RunChild(ctx, "nope", p, &buf))
	env := decodeEnvelope(t, buf.Bytes())
	assert.True(t, env.Failed)
	assert.Contains(t, env.Error, "unknown task")
}

func TestServeChildArgs(t *testing.T) {
	var buf bytes.Buffer
	err := ServeChild(context.Background(), []string{"test.concat", "dev"}, &buf)
	assert.ErrorContains(t, err, "expects <task> <profile> <region>")
	assert.Zero(t, buf.Len())

	require.NoError(t, ServeChild(context.Background(), []string{"test.concat", "dev", "eu-west-1"}, &buf))
	assert.Equal(t, "dev:eu-west-1", decodeEnvelope(t, buf.Bytes()).Value)

	buf.Reset()
	require.NoError(t, ServeChild(context.Background(), []string{"--", "test.concat", "-dev", "eu-west-1"}, &buf))
	assert.Equal(t, "-dev:eu-west-1", decodeEnvelope(t, buf.Bytes()).Value)
}

func TestProcessRunnerDashProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("starts child processes")
	}

	v, err := testRunner().Func("test.concat")(context.Background(), matrix.Params{Profile: "-dev", Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, "-dev:us-east-1", v)
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, []byte(`{"value":1}`), lastLine([]byte("noise\n{\"value\":1}\n")))
	assert.Equal(t, []byte(`{}`), lastLine([]byte("{}")))
	assert.Empty(t, lastLine(nil))
}

func TestProcessRunnerMissingCommand(t *testing.T) {
	r := ProcessRunner{Command: "/nonexistent/awsmp-binary"}
	_, err := r.Func("test.concat")(context.Background(), matrix.Params{Profile: "dev", Region: "us-east-1"})

	var ce *ChildError
	require.ErrorAs(t, err, &ce)
}
