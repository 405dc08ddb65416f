package huawei

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nanoncore/olt-console/metrics"
	"github.com/nanoncore/olt-console/types"
	"github.com/rs/zerolog"
)

// Console prompts, one per mode
var (
	userPrompt   = regexp.MustCompile(`(?m)[\w\-.]+>\s*$`)
	enablePrompt = regexp.MustCompile(`(?m)[\w\-.]+#\s*$`)
	configPrompt = regexp.MustCompile(`(?m)\(config\)#\s*$`)
	btvPrompt    = regexp.MustCompile(`(?m)\(config-btv\)#\s*$`)

	anyInterfacePrompt = regexp.MustCompile(`\(config-if-gpon-(\d+)/(\d+)\)#\s*$`)

	// any prompt the console can show, including contexts not modelled as modes
	anyPrompt        = regexp.MustCompile(`(?m)[\w\-.]+(\([\w\-/.]+\))?[>#]\s*$`)
	subContextPrompt = regexp.MustCompile(`\(config-[\w\-/.]+\)#\s*$`)
	promptHostname   = regexp.MustCompile(`([\w\-.]+)(?:\([\w\-/.]+\))?[>#]\s*$`)
)

func interfacePrompt(id types.InterfaceID) *regexp.Regexp {
	return regexp.MustCompile(`(?m)\(config-if-gpon-` + regexp.QuoteMeta(id.String()) + `\)#\s*$`)
}

// promptSet holds the prompts of one console. anyHostPrompts accepts any
// hostname; once the hostname is known a line of output ending in `#` or
// `>` no longer passes for a prompt.
type promptSet struct {
	host                      string
	user, enable, config, btv *regexp.Regexp
}

var anyHostPrompts = promptSet{
	user:   userPrompt,
	enable: enablePrompt,
	config: configPrompt,
	btv:    btvPrompt,
}

func hostPrompts(host string) promptSet {
	p := promptSet{host: host}
	p.user = p.compile(`>`)
	p.enable = p.compile(`#`)
	p.config = p.compile(`\(config\)#`)
	p.btv = p.compile(`\(config-btv\)#`)
	return p
}

// compile anchors suffix on the hostname. The hostname starts a line or
// follows the cursor movement the pager leaves behind.
func (p promptSet) compile(suffix string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)(?:^|[^\w\-.]|\x1b\[\d+D)` + regexp.QuoteMeta(p.host) + suffix + `\s*$`)
}

func (p promptSet) forMode(mode types.Mode, iface *types.InterfaceID) *regexp.Regexp {
	switch mode {
	case types.ModeUser:
		return p.user
	case types.ModeConfig:
		return p.config
	case types.ModeBTV:
		return p.btv
	case types.ModeInterface:
		var id types.InterfaceID
		if iface != nil {
			id = *iface
		}
		if p.host == "" {
			return interfacePrompt(id)
		}
		return p.compile(`\(config-if-gpon-` + regexp.QuoteMeta(id.String()) + `\)#`)
	default:
		return p.enable
	}
}

// Hop is a single mode-changing command and the prompt that confirms it.
type Hop struct {
	From    types.Mode
	To      types.Mode
	Command string
	Prompt  *regexp.Regexp
}

type edge struct{ from, to types.Mode }

// hierarchy edges. CONFIG -> INTERFACE needs an interface id and is built
// by EnterInterface.
var hops = map[edge]Hop{
	{types.ModeUser, types.ModeEnable}:      {types.ModeUser, types.ModeEnable, "enable", enablePrompt},
	{types.ModeEnable, types.ModeUser}:      {types.ModeEnable, types.ModeUser, "disable", userPrompt},
	{types.ModeEnable, types.ModeConfig}:    {types.ModeEnable, types.ModeConfig, "config", configPrompt},
	{types.ModeConfig, types.ModeEnable}:    {types.ModeConfig, types.ModeEnable, "quit", enablePrompt},
	{types.ModeInterface, types.ModeConfig}: {types.ModeInterface, types.ModeConfig, "quit", configPrompt},
}

// depth in the USER -> ENABLE -> CONFIG -> INTERFACE chain
var depth = map[types.Mode]int{
	types.ModeUser:      0,
	types.ModeEnable:    1,
	types.ModeConfig:    2,
	types.ModeInterface: 3,
}

// PathBetween returns the hops leading from one mode to another, one per
// hierarchy level. The target must be USER, ENABLE or CONFIG; INTERFACE is
// entered with EnterInterface. Leaving BTV is not supported yet.
func PathBetween(from, to types.Mode) ([]Hop, error) {
	if !from.Valid() || !to.Valid() {
		return nil, &types.TransitionError{From: from, To: to, Reason: "unknown mode"}
	}
	switch {
	case to == types.ModeInterface || to == types.ModeBTV:
		return nil, &types.TransitionError{From: from, To: to, Reason: "requires a dedicated entry operation"}
	case from == types.ModeBTV:
		return nil, &types.TransitionError{From: from, To: to, Reason: "btv context", Err: types.ErrNotImplemented}
	}

	var path []Hop
	for cur := from; cur != to; {
		var next types.Mode
		if depth[cur] > depth[to] {
			next = parentOf(cur)
		} else {
			next = childOf(cur)
		}
		path = append(path, hops[edge{cur, next}])
		cur = next
	}
	return path, nil
}

func parentOf(m types.Mode) types.Mode {
	switch m {
	case types.ModeInterface:
		return types.ModeConfig
	case types.ModeConfig:
		return types.ModeEnable
	default:
		return types.ModeUser
	}
}

func childOf(m types.Mode) types.Mode {
	if m == types.ModeUser {
		return types.ModeEnable
	}
	return types.ModeConfig
}

// ModeController tracks the CLI mode of one console session and moves it
// between modes. It is not safe for concurrent use; the owning Olt runs one
// operation at a time.
type ModeController struct {
	transport types.Transport
	host      string
	timeout   time.Duration

	mode    types.Mode
	iface   *types.InterfaceID
	prompts promptSet

	log     zerolog.Logger
	metrics *metrics.Collectors
}

// NewModeController returns a controller that assumes the session starts in
// USER mode. Call Sync to read the actual mode from the device.
func NewModeController(transport types.Transport, host string, timeout time.Duration, log zerolog.Logger, m *metrics.Collectors) *ModeController {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ModeController{
		transport: transport,
		host:      host,
		timeout:   timeout,
		mode:      types.ModeUser,
		prompts:   anyHostPrompts,
		log:       log,
		metrics:   m,
	}
}

// Mode returns the last confirmed mode.
func (c *ModeController) Mode() types.Mode {
	return c.mode
}

// Interface returns the active GPON board while in INTERFACE mode.
func (c *ModeController) Interface() (types.InterfaceID, bool) {
	if c.mode != types.ModeInterface || c.iface == nil {
		return types.InterfaceID{}, false
	}
	return *c.iface, true
}

// Hostname returns the device name read from the prompt by Sync, or "" before
// the first Sync.
func (c *ModeController) Hostname() string {
	return c.prompts.host
}

// Prompt returns the prompt the console shows in the recorded mode.
func (c *ModeController) Prompt() *regexp.Regexp {
	return c.prompts.forMode(c.mode, c.iface)
}

// EnsureMode moves the session to target, sending one command per level.
// On failure the mode is left at the last confirmed hop.
func (c *ModeController) EnsureMode(ctx context.Context, target types.Mode) error {
	path, err := PathBetween(c.mode, target)
	if err != nil {
		return err
	}
	for _, hop := range path {
		hop.Prompt = c.prompts.forMode(hop.To, nil)
		if err := c.step(ctx, hop, nil); err != nil {
			return err
		}
	}
	return nil
}

// EnterInterface moves the session to the interface context of a GPON
// board. It does nothing when that board is already active. A board that
// does not exist shows up as a timeout, the device prints no distinct error.
func (c *ModeController) EnterInterface(ctx context.Context, frame, board int) error {
	id := types.InterfaceID{Frame: frame, Board: board}
	if cur, ok := c.Interface(); ok && cur == id {
		return nil
	}
	if err := c.EnsureMode(ctx, types.ModeConfig); err != nil {
		return err
	}
	hop := Hop{
		From:    types.ModeConfig,
		To:      types.ModeInterface,
		Command: "interface gpon " + id.String(),
		Prompt:  c.prompts.forMode(types.ModeInterface, &id),
	}
	return c.step(ctx, hop, &id)
}

// EnterBTV is reserved for multicast membership provisioning.
func (c *ModeController) EnterBTV(ctx context.Context) error {
	return &types.TransitionError{From: c.mode, To: types.ModeBTV, Reason: "btv context", Err: types.ErrNotImplemented}
}

func (c *ModeController) step(ctx context.Context, hop Hop, iface *types.InterfaceID) error {
	if _, err := c.transport.Send(ctx, hop.Command, hop.Prompt, c.timeout); err != nil {
		c.log.Warn().Err(err).
			Str("mode", hop.From.String()).
			Str("target_mode", hop.To.String()).
			Str("command", hop.Command).
			Msg("mode change failed")
		return fmt.Errorf("%s -> %s: %w", hop.From, hop.To, err)
	}

	c.mode = hop.To
	c.iface = iface
	c.metrics.ObserveTransition(c.host, hop.From.String(), hop.To.String())
	c.log.Debug().
		Str("mode", hop.From.String()).
		Str("target_mode", hop.To.String()).
		Str("command", hop.Command).
		Msg("mode changed")
	return nil
}

// maxContextExits bounds the quits Sync sends to leave contexts that are not
// modelled as modes, such as profile editing.
const maxContextExits = 3

// Sync reads the current prompt and adopts the mode it shows. Use it after
// a timeout, when the device may be in a different mode than recorded. A
// config sub-context other than interface or btv is left with `quit` until
// a known prompt shows. Sync also learns the hostname the prompts are
// anchored on.
func (c *ModeController) Sync(ctx context.Context) error {
	for exits := 0; ; exits++ {
		prompt, err := c.transport.CurrentPrompt(ctx)
		if err != nil {
			return fmt.Errorf("reading prompt: %w", err)
		}
		if mode, iface, ok := ParsePrompt(prompt); ok {
			c.adopt(prompt, mode, iface)
			return nil
		}
		if exits == maxContextExits || !subContextPrompt.MatchString(strings.TrimSpace(prompt)) {
			return fmt.Errorf("unrecognized prompt %q", prompt)
		}

		c.log.Debug().Str("prompt", prompt).Msg("leaving unsupported context")
		if _, err := c.transport.Send(ctx, "quit", anyPrompt, c.timeout); err != nil {
			return fmt.Errorf("leaving %q: %w", strings.TrimSpace(prompt), err)
		}
	}
}

func (c *ModeController) adopt(prompt string, mode types.Mode, iface types.InterfaceID) {
	c.mode = mode
	c.iface = nil
	if mode == types.ModeInterface {
		c.iface = &iface
	}
	if m := promptHostname.FindStringSubmatch(strings.TrimSpace(prompt)); m != nil && m[1] != c.prompts.host {
		c.prompts = hostPrompts(m[1])
	}
	c.log.Debug().Str("mode", mode.String()).Str("prompt", prompt).Msg("mode synchronized")
}

// ParsePrompt infers the mode from a prompt line. The interface id is only
// set for INTERFACE prompts.
func ParsePrompt(prompt string) (types.Mode, types.InterfaceID, bool) {
	prompt = strings.TrimSpace(prompt)
	if m := anyInterfacePrompt.FindStringSubmatch(prompt); m != nil {
		frame, _ := strconv.Atoi(m[1])
		board, _ := strconv.Atoi(m[2])
		return types.ModeInterface, types.InterfaceID{Frame: frame, Board: board}, true
	}
	switch {
	case btvPrompt.MatchString(prompt):
		return types.ModeBTV, types.InterfaceID{}, true
	case configPrompt.MatchString(prompt):
		return types.ModeConfig, types.InterfaceID{}, true
	case enablePrompt.MatchString(prompt):
		return types.ModeEnable, types.InterfaceID{}, true
	case userPrompt.MatchString(prompt):
		return types.ModeUser, types.InterfaceID{}, true
	}
	return types.ModeUser, types.InterfaceID{}, false
}
