package ops

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// Subprocess is the production ProcessOps implementation: os/exec with a
// bounded wall-clock timeout per spawn, matching the teacher's preference
// for explicit cwd/args over shell strings.
type Subprocess struct {
	Timeout time.Duration
}

// NewSubprocess returns a ProcessOps with a sane default timeout.
func NewSubprocess() *Subprocess {
	return &Subprocess{Timeout: 10 * time.Minute}
}

func (s *Subprocess) Spawn(spec ProcessSpec) (ProcessResult, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, spec.Cmd, spec.Args...)
	cmd.Dir = spec.Cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ProcessResult{
		OK:     err == nil,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.Message = err.Error()
	}
	return result, nil
}
