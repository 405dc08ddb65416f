package mock

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nanoncore/olt-console/types"
)

// Driver simulates a Huawei OLT console without connecting to real equipment.
// It follows enable/config/interface/quit like the device, answers other
// commands from canned replies and reports a timeout whenever the prompt
// the caller waits for is not the one the console would show.
type Driver struct {
	mu         sync.RWMutex
	hostname   string
	mode       types.Mode
	iface      types.InterfaceID
	subContext string
	connected  bool
	closed     int
	replies    map[string]string
	timeouts   map[string]bool
	boards     map[types.InterfaceID]bool
	cmdHistory []string
}

var ifaceCommand = regexp.MustCompile(`^interface gpon (\d+)/(\d+)$`)

// NewDriver creates a console that starts in USER mode.
func NewDriver(hostname string) *Driver {
	if hostname == "" {
		hostname = "MA5600T"
	}
	return &Driver{
		hostname: hostname,
		mode:     types.ModeUser,
		replies: map[string]string{
			"display version": defaultVersionOutput,
		},
		timeouts:   make(map[string]bool),
		cmdHistory: make([]string, 0),
	}
}

// SetMode places the console in mode; iface is only used for ModeInterface.
func (d *Driver) SetMode(mode types.Mode, iface types.InterfaceID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = mode
	d.iface = iface
	d.subContext = ""
}

// SetSubContext places the console in a config sub-context such as
// "ont-srvprofile-10". One `quit` returns it to CONFIG.
func (d *Driver) SetSubContext(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = types.ModeConfig
	d.subContext = name
}

// Mode returns the mode the console is in.
func (d *Driver) Mode() types.Mode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mode
}

// SetReply sets the text returned for command.
func (d *Driver) SetReply(command, reply string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.replies[command] = reply
}

// SetTimeout makes command never return a prompt.
func (d *Driver) SetTimeout(command string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeouts[command] = true
}

// SetBoards restricts `interface gpon` to the given boards. By default every
// board exists.
func (d *Driver) SetBoards(ids ...types.InterfaceID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.boards = make(map[types.InterfaceID]bool, len(ids))
	for _, id := range ids {
		d.boards[id] = true
	}
}

// Send implements types.Transport.
func (d *Driver) Send(ctx context.Context, command string, prompt *regexp.Regexp, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.connected = true
	d.cmdHistory = append(d.cmdHistory, command)

	if d.timeouts[command] {
		return "", fmt.Errorf("%w: no prompt after %q within %s", types.ErrTimeout, command, timeout)
	}

	reply := d.apply(command)

	current := d.prompt()
	if prompt != nil && !prompt.MatchString(current) {
		return reply, fmt.Errorf("%w: prompt %q does not match %s", types.ErrTimeout, current, prompt)
	}
	return reply, nil
}

// apply runs a mode command against the simulated console and returns the reply.
func (d *Driver) apply(command string) string {
	switch {
	case command == "quit" && d.subContext != "":
		d.subContext = ""
	case command == "enable" && d.mode == types.ModeUser:
		d.mode = types.ModeEnable
	case command == "disable" && d.mode == types.ModeEnable:
		d.mode = types.ModeUser
	case command == "config" && d.mode == types.ModeEnable:
		d.mode = types.ModeConfig
	case command == "btv" && d.mode == types.ModeConfig:
		d.mode = types.ModeBTV
	case command == "quit":
		switch d.mode {
		case types.ModeInterface, types.ModeBTV:
			d.mode = types.ModeConfig
		case types.ModeConfig:
			d.mode = types.ModeEnable
		}
	case strings.HasPrefix(command, "interface gpon ") && d.mode == types.ModeConfig:
		var id types.InterfaceID
		if m := ifaceCommand.FindStringSubmatch(command); m != nil {
			id.Frame, _ = strconv.Atoi(m[1])
			id.Board, _ = strconv.Atoi(m[2])
			if d.boards == nil || d.boards[id] {
				d.mode = types.ModeInterface
				d.iface = id
				return ""
			}
		}
		return "  Failure: The board does not exist"
	}
	return d.replies[command]
}

func (d *Driver) prompt() string {
	if d.subContext != "" {
		return fmt.Sprintf("%s(config-%s)#", d.hostname, d.subContext)
	}
	switch d.mode {
	case types.ModeUser:
		return d.hostname + ">"
	case types.ModeConfig:
		return d.hostname + "(config)#"
	case types.ModeInterface:
		return fmt.Sprintf("%s(config-if-gpon-%s)#", d.hostname, d.iface)
	case types.ModeBTV:
		return d.hostname + "(config-btv)#"
	default:
		return d.hostname + "#"
	}
}

// CurrentPrompt implements types.Transport.
func (d *Driver) CurrentPrompt(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = true
	return d.prompt(), nil
}

// Close implements types.Transport.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.connected {
		d.closed++
	}
	d.connected = false
	return nil
}

// IsConnected returns true once a command was sent and until Close.
func (d *Driver) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// CloseCount returns how many times an open session was closed.
func (d *Driver) CloseCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// GetCommandHistory returns the command history (useful for testing)
func (d *Driver) GetCommandHistory() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	history := make([]string, len(d.cmdHistory))
	copy(history, d.cmdHistory)
	return history
}

// ResetHistory forgets the commands sent so far.
func (d *Driver) ResetHistory() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmdHistory = d.cmdHistory[:0]
}

const defaultVersionOutput = `
  VERSION : MA5600V800R018C10
  PATCH   : SPC100
  PRODUCT : MA5600T
  Active Mainboard Running Area Information:
  --------------------------------------------------
  Current Program Area : Area A
  Current Data Area : Area A

  Program Area A Version : MA5600V800R018C10
  Program Area B Version : MA5600V800R018C10

  Data Area A Version : MA5600V800R018C10
  Data Area B Version : MA5600V800R018C10
  --------------------------------------------------

  Uptime is 12 day(s), 4 hour(s), 31 minute(s), 7 second(s)
`

var _ types.Transport = (*Driver)(nil)
