package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/nanoncore/olt-console/metrics"
	"github.com/nanoncore/olt-console/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

// Driver is the SSH console transport. The connection is opened on the
// first Send and reused until Close.
type Driver struct {
	mu            sync.Mutex
	config        *types.EquipmentConfig
	sshClient     *ssh.Client
	expectSession *ExpectSession
	transcript    *os.File

	log     zerolog.Logger
	metrics *metrics.Collectors
}

// Option configures a Driver
type Option func(*Driver)

func WithLogger(log zerolog.Logger) Option {
	return func(d *Driver) { d.log = log }
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(d *Driver) { d.metrics = m }
}

// NewDriver creates a new CLI driver. No connection is made until the first command.
func NewDriver(config *types.EquipmentConfig, opts ...Option) (*Driver, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}

	// Default SSH port
	if config.Port == 0 {
		config.Port = 22
	}

	// Default timeout
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	d := &Driver{
		config: config,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Str("host", config.Address).Logger()
	return d, nil
}

// Connect establishes the SSH connection and the interactive session.
// It is a no-op when already connected.
func (d *Driver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connect(ctx)
}

func (d *Driver) connect(ctx context.Context) error {
	if d.expectSession != nil {
		return nil
	}

	// Some firmwares only offer keyboard-interactive
	keyboardInteractive := ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = d.config.Password
		}
		return answers, nil
	})

	sshConfig := &ssh.ClientConfig{
		User: d.config.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(d.config.Password),
			keyboardInteractive,
		},
		Timeout:         d.config.Timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // OLT management networks rarely carry known_hosts
	}

	target := net.JoinHostPort(d.config.Address, strconv.Itoa(d.config.Port))

	dialer := net.Dialer{Timeout: d.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return fmt.Errorf("failed to dial SSH: %w", err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, target, sshConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SSH handshake failed: %w", err)
	}
	client := ssh.NewClient(c, chans, reqs)

	cfg := ExpectSessionConfig{
		SSHClient: client,
		Timeout:   d.config.Timeout,
	}
	if d.config.TranscriptPath != "" {
		f, err := os.OpenFile(d.config.TranscriptPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			client.Close()
			return fmt.Errorf("failed to open transcript: %w", err)
		}
		d.transcript = f
		cfg.Transcript = f
	}

	session, err := NewExpectSession(cfg)
	if err != nil {
		client.Close()
		d.closeTranscript()
		return fmt.Errorf("failed to create expect session: %w", err)
	}

	d.sshClient = client
	d.expectSession = session
	d.log.Info().Int("port", d.config.Port).Msg("connected")
	return nil
}

// Close ends the session. Closing a driver that never connected is a no-op.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expectSession != nil {
		_ = d.expectSession.Close()
		d.expectSession = nil
	}
	d.closeTranscript()
	if d.sshClient != nil {
		err := d.sshClient.Close()
		d.sshClient = nil
		d.log.Info().Msg("disconnected")
		return err
	}
	return nil
}

func (d *Driver) closeTranscript() {
	if d.transcript != nil {
		_ = d.transcript.Close()
		d.transcript = nil
	}
}

// IsConnected returns true if connected
func (d *Driver) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sshClient != nil && d.expectSession != nil
}

// Send implements types.Transport.
func (d *Driver) Send(ctx context.Context, command string, prompt *regexp.Regexp, timeout time.Duration) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", classifyError(err)
	}
	if err := d.connect(ctx); err != nil {
		return "", err
	}

	timeout = d.effectiveTimeout(ctx, timeout)
	start := time.Now()
	output, err := d.expectSession.Execute(command, prompt, timeout)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		d.metrics.ObserveCommand(d.config.Address, metrics.ResultOK, elapsed)
		d.log.Debug().Str("command", command).Dur("duration", elapsed).Msg("command completed")
	case errors.Is(err, types.ErrTimeout):
		d.metrics.ObserveCommand(d.config.Address, metrics.ResultTimeout, elapsed)
		d.log.Warn().Str("command", command).Dur("duration", elapsed).Msg("prompt not seen before timeout")
	default:
		d.metrics.ObserveCommand(d.config.Address, metrics.ResultError, elapsed)
		d.log.Error().Err(err).Str("command", command).Msg("command failed")
	}
	return output, err
}

// CurrentPrompt implements types.Transport.
func (d *Driver) CurrentPrompt(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.connect(ctx); err != nil {
		return "", err
	}
	return d.expectSession.Prompt(d.effectiveTimeout(ctx, 0))
}

// effectiveTimeout bounds timeout by the context deadline.
func (d *Driver) effectiveTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if timeout <= 0 {
		timeout = d.config.Timeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = max(left, time.Millisecond)
		}
	}
	return timeout
}

var _ types.Transport = (*Driver)(nil)
