package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/scttfrdmn/awsmp/pkg/matrix"
)

// ChildCommand is the argument that switches an executable into child mode:
//
//	<executable> __awsmp-task <task> <profile> <region>
const ChildCommand = "__awsmp-task"

// envelope is the single JSON document a child writes to stdout.
type envelope struct {
	Value  any    `json:"value,omitempty"`
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RemoteError is a task error reported by a child process.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// ChildError reports a child process that exited without a readable result.
type ChildError struct {
	Err    error
	Stderr string
}

func (e *ChildError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("child process failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("child process failed: %v", e.Err)
}

func (e *ChildError) Unwrap() error { return e.Err }

// ProcessRunner runs registered tasks in child processes.
type ProcessRunner struct {
	// Command is the executable to start. Empty means the running binary.
	Command string
	// Args are placed before ChildCommand.
	Args []string
	// Env is appended to the parent's environment.
	Env []string
}

// Func returns a Func that runs the task called name in a child process.
// Values come back JSON decoded, so structs arrive as map[string]any.
func (r ProcessRunner) Func(name string) Func {
	return func(ctx context.Context, p matrix.Params) (any, error) {
		command := r.Command
		if command == "" {
			exe, err := os.Executable()
			if err != nil {
				return nil, fmt.Errorf("failed to locate executable: %w", err)
			}
			command = exe
		}

		args := make([]string, 0, len(r.Args)+5)
		args = append(args, r.Args...)
		// "--" keeps profiles that start with "-" from parsing as flags.
		args = append(args, ChildCommand, "--", name, p.Profile, p.Region)

		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Env = append(os.Environ(), r.Env...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		runErr := cmd.Run()

		var env envelope
		if err := json.Unmarshal(lastLine(stdout.Bytes()), &env); err != nil {
			if runErr == nil {
				runErr = fmt.Errorf("unreadable result: %w", err)
			}
			return nil, &ChildError{Err: runErr, Stderr: strings.TrimSpace(stderr.String())}
		}
		if env.Failed || env.Error != "" {
			return nil, &RemoteError{Message: env.Error}
		}
		return env.Value, nil
	}
}

func lastLine(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		return b[i+1:]
	}
	return b
}

// ErrUnknownTask is reported by a child asked to run an unregistered task.
var ErrUnknownTask = errors.New("unknown task")

// RunChild is the child side of ProcessRunner: it runs the registered task
// called name and writes its envelope to w. Task failures are reported in the
// envelope; the returned error is only set when w could not be written.
func RunChild(ctx context.Context, name string, p matrix.Params, w io.Writer) error {
	var env envelope

	task, ok := Lookup(name)
	if !ok {
		env.Failed = true
		env.Error = fmt.Sprintf("%v: %q", ErrUnknownTask, name)
	} else if v, err := callSafely(ctx, task.Func, p); err != nil {
		env.Failed = true
		env.Error = err.Error()
	} else {
		env.Value = v
	}

	data, err := json.Marshal(env)
	if err != nil {
		data, err = json.Marshal(envelope{Failed: true, Error: fmt.Sprintf("failed to encode result: %v", err)})
		if err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// ServeChild parses the arguments following ChildCommand (task, profile,
// region, optionally preceded by "--") and calls RunChild.
func ServeChild(ctx context.Context, args []string, w io.Writer) error {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) != 3 {
		return fmt.Errorf("%s expects <task> <profile> <region>, got %d argument(s)", ChildCommand, len(args))
	}
	return RunChild(ctx, args[0], matrix.Params{Profile: args[1], Region: args[2]}, w)
}
