package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	expect "github.com/google/goexpect"
	"github.com/nanoncore/olt-console/types"
	"github.com/nanoncore/olt-console/vendors/common"
	"golang.org/x/crypto/ssh"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultPromptPattern matches any console prompt: "MA5600T>", "MA5600T#",
// "MA5600T(config)#", "MA5600T(config-if-gpon-0/1)#".
var DefaultPromptPattern = regexp.MustCompile(`(?m)[\w\-.]+(\([\w\-/.]+\))?[>#]\s*$`)

// ExpectSession wraps google/goexpect for Huawei console interaction
type ExpectSession struct {
	expecter *expect.GExpect
	timeout  time.Duration

	// stale is set when a read gave up before its prompt arrived
	stale bool
}

// ExpectSessionConfig holds configuration for creating an expect session
type ExpectSessionConfig struct {
	SSHClient *ssh.Client
	Timeout   time.Duration

	// Transcript receives a copy of everything read from the device
	Transcript io.WriteCloser
}

// NewExpectSession spawns an interactive session and waits for the first prompt
func NewExpectSession(cfg ExpectSessionConfig) (*ExpectSession, error) {
	if cfg.SSHClient == nil {
		return nil, fmt.Errorf("SSH client is required")
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := []expect.Option{
		expect.Verbose(false),
		expect.CheckDuration(100 * time.Millisecond),
	}
	if cfg.Transcript != nil {
		opts = append(opts, expect.Tee(cfg.Transcript))
	}

	exp, _, err := expect.SpawnSSH(cfg.SSHClient, cfg.Timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn SSH expect session: %w", err)
	}

	session := &ExpectSession{
		expecter: exp,
		timeout:  cfg.Timeout,
	}

	// The login banner may stop at a parameter prompt or pager before the
	// first prompt shows up.
	if _, err := session.readUntil(DefaultPromptPattern, cfg.Timeout); err != nil {
		exp.Close()
		return nil, fmt.Errorf("failed to detect initial prompt: %w", err)
	}

	return session, nil
}

// Execute sends a command and collects the reply until prompt matches,
// answering pager and parameter prompts on the way.
func (s *ExpectSession) Execute(command string, prompt *regexp.Regexp, timeout time.Duration) (string, error) {
	if s.expecter == nil {
		return "", types.ErrNotConnected
	}
	if prompt == nil {
		prompt = DefaultPromptPattern
	}
	if timeout <= 0 {
		timeout = s.timeout
	}

	if s.stale {
		s.drain()
	}
	if err := s.expecter.Send(command + "\n"); err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	raw, err := s.readUntil(prompt, timeout)
	output := cleanOutput(raw, command, prompt)
	if err != nil {
		s.stale = true
		return output, fmt.Errorf("waiting for prompt after %q: %w", command, err)
	}
	return output, nil
}

// Prompt sends an empty line and returns the prompt the device answers with.
// Output still pending from earlier commands is discarded first.
func (s *ExpectSession) Prompt(timeout time.Duration) (string, error) {
	if s.expecter == nil {
		return "", types.ErrNotConnected
	}
	if timeout <= 0 {
		timeout = s.timeout
	}
	s.drain()
	if err := s.expecter.Send("\n"); err != nil {
		return "", fmt.Errorf("failed to send newline: %w", err)
	}
	raw, err := s.readUntil(DefaultPromptPattern, timeout)
	if err != nil {
		s.stale = true
		return "", fmt.Errorf("waiting for prompt: %w", err)
	}
	return lastPrompt(raw), nil
}

const (
	// the console counts as idle after this long without output
	drainWindow   = 50 * time.Millisecond
	maxDrainReads = 32
)

var anyOutput = regexp.MustCompile(`(?s).+`)

// drain discards whatever the device sends until it stays quiet for
// drainWindow, such as a prompt that arrived after its read timed out.
func (s *ExpectSession) drain() {
	cases := []expect.Caser{&expect.Case{R: anyOutput, T: expect.OK()}}
	for i := 0; i < maxDrainReads; i++ {
		if _, _, _, err := s.expecter.ExpectSwitchCase(cases, drainWindow); err != nil {
			break
		}
	}
	s.stale = false
}

const (
	caseDone = iota
	casePager
	caseParam
)

// readUntil accumulates device output until prompt is seen. All three cases
// share one deadline.
func (s *ExpectSession) readUntil(prompt *regexp.Regexp, timeout time.Duration) (string, error) {
	cases := []expect.Caser{
		caseDone:  &expect.Case{R: prompt, T: expect.OK()},
		casePager: &expect.Case{R: common.PagerRegex, T: expect.OK()},
		caseParam: &expect.Case{R: common.ParamPromptRegex, T: expect.OK()},
	}

	var buf strings.Builder
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return buf.String(), classifyError(expect.TimeoutError(timeout))
		}

		out, _, idx, err := s.expecter.ExpectSwitchCase(cases, remaining)
		buf.WriteString(out)
		if err != nil {
			return buf.String(), classifyError(err)
		}

		switch idx {
		case caseDone:
			return buf.String(), nil
		case casePager:
			err = s.expecter.Send(" ")
		case caseParam:
			err = s.expecter.Send("\n")
		}
		if err != nil {
			return buf.String(), fmt.Errorf("failed to answer prompt: %w", err)
		}
	}
}

// Close closes the expect session
func (s *ExpectSession) Close() error {
	if s.expecter != nil {
		return s.expecter.Close()
	}
	return nil
}

// classifyError maps the ways goexpect reports an expired timer to
// types.ErrTimeout.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var te expect.TimeoutError
	if errors.As(err, &te) ||
		status.Code(err) == codes.DeadlineExceeded ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", types.ErrTimeout, err)
	}
	return err
}

// cleanOutput removes the command echo, console residue and the trailing prompt
func cleanOutput(output, command string, prompt *regexp.Regexp) string {
	lines := strings.Split(common.CleanConsole(output), "\n")

	start := 0
	if command != "" && len(lines) > 0 && strings.Contains(lines[0], command) {
		start = 1
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end > start && prompt.MatchString(strings.TrimSpace(lines[end-1])) {
		end--
	}
	// Leading indentation is kept, the parsers anchor on it.
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}

	return strings.TrimRight(strings.Join(lines[start:end], "\n"), " \t\n")
}

func lastPrompt(output string) string {
	lines := strings.Split(common.CleanConsole(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
