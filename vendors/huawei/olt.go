package huawei

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nanoncore/olt-console/metrics"
	"github.com/nanoncore/olt-console/types"
	"github.com/rs/zerolog"
)

// Operation names, used in ProvisionError and metrics
const (
	OpAddOnu         = "add_onu"
	OpAddServicePort = "add_service_port"
)

// Olt drives the console of one Huawei OLT. Every operation first moves the
// session to the mode it needs. An Olt runs one operation at a time and
// must not be shared between goroutines; use one Olt per device.
type Olt struct {
	host      string
	transport types.Transport
	modes     *ModeController
	contract  Contract

	timeout          time.Duration
	inventoryTimeout time.Duration

	// synced is cleared whenever the recorded mode may be wrong
	synced bool

	log     zerolog.Logger
	metrics *metrics.Collectors
}

// Option configures an Olt
type Option func(*Olt)

func WithLogger(log zerolog.Logger) Option {
	return func(o *Olt) { o.log = log }
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(o *Olt) { o.metrics = m }
}

// WithContract replaces the reply markers, for firmware that words them differently.
func WithContract(c Contract) Option {
	return func(o *Olt) { o.contract = c }
}

// WithTimeouts sets the per-command timeout and the longer one used for
// inventory dumps. Zero values keep the defaults.
func WithTimeouts(command, inventory time.Duration) Option {
	return func(o *Olt) {
		if command > 0 {
			o.timeout = command
		}
		if inventory > 0 {
			o.inventoryTimeout = inventory
		}
	}
}

// NewOlt creates a driver on top of transport. Nothing is sent until the
// first operation.
func NewOlt(host string, transport types.Transport, opts ...Option) *Olt {
	o := &Olt{
		host:             host,
		transport:        transport,
		contract:         DefaultContract,
		timeout:          30 * time.Second,
		inventoryTimeout: 90 * time.Second,
		log:              zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With().Str("host", host).Logger()
	o.modes = NewModeController(transport, host, o.timeout, o.log, o.metrics)
	return o
}

// Host returns the management address of the OLT.
func (o *Olt) Host() string {
	return o.host
}

// Mode returns the last confirmed console mode.
func (o *Olt) Mode() types.Mode {
	return o.modes.Mode()
}

// Modes exposes the session's mode controller.
func (o *Olt) Modes() *ModeController {
	return o.modes
}

// Close releases the console session. It is safe to call more than once and
// on an Olt that never connected.
func (o *Olt) Close() error {
	o.synced = false
	return o.transport.Close()
}

// sync adopts the device's mode once per session, and again after a
// failure left the recorded mode in doubt.
func (o *Olt) sync(ctx context.Context) error {
	if o.synced {
		return nil
	}
	if err := o.modes.Sync(ctx); err != nil {
		return err
	}
	o.synced = true
	return nil
}

func (o *Olt) ensureMode(ctx context.Context, target types.Mode) error {
	if err := o.sync(ctx); err != nil {
		return err
	}
	if err := o.modes.EnsureMode(ctx, target); err != nil {
		o.markUncertain(err)
		return err
	}
	return nil
}

func (o *Olt) enterInterface(ctx context.Context, frame, board int) error {
	if err := o.sync(ctx); err != nil {
		return err
	}
	if err := o.modes.EnterInterface(ctx, frame, board); err != nil {
		o.markUncertain(err)
		return err
	}
	return nil
}

// markUncertain forces a prompt read before the next operation when err
// came from the transport.
func (o *Olt) markUncertain(err error) {
	var te *types.TransitionError
	if !errors.As(err, &te) {
		o.synced = false
	}
}

func (o *Olt) send(ctx context.Context, command string, timeout time.Duration) (string, error) {
	out, err := o.transport.Send(ctx, command, o.modes.Prompt(), timeout)
	if err != nil {
		o.synced = false
	}
	return out, err
}

// GetVersion runs `display version`. It works from USER, ENABLE and CONFIG
// and leaves an interface context for CONFIG first.
func (o *Olt) GetVersion(ctx context.Context) (types.VersionInfo, error) {
	if err := o.sync(ctx); err != nil {
		return nil, err
	}
	if m := o.modes.Mode(); m == types.ModeInterface || m == types.ModeBTV {
		if err := o.ensureMode(ctx, types.ModeConfig); err != nil {
			return nil, err
		}
	}

	out, err := o.send(ctx, versionCommand, o.timeout)
	if err != nil {
		return nil, fmt.Errorf("display version: %w", err)
	}

	info := ParseVersion(out)
	if len(info) == 0 {
		return nil, fmt.Errorf("display version: %w", types.ErrNoData)
	}
	return info, nil
}

// GetOnuInventory lists the ONTs on the OLT, optionally narrowed to a
// frame, board or port. A transport failure is logged and yields a nil
// map without error, so a poller can carry on with the next device.
func (o *Olt) GetOnuInventory(ctx context.Context, filter types.InventoryFilter) (map[string]types.OnuRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	command := inventoryCommand(filter)
	if err := o.ensureMode(ctx, types.ModeEnable); err != nil {
		var te *types.TransitionError
		if errors.As(err, &te) {
			return nil, err
		}
		o.log.Error().Err(err).Str("command", command).Msg("inventory failed")
		return nil, nil
	}

	out, err := o.send(ctx, command, o.inventoryTimeout)
	if err != nil {
		o.log.Error().Err(err).Str("command", command).Msg("inventory failed")
		return nil, nil
	}
	return ParseInventory(out), nil
}

// AddOnu registers onu on its GPON port. On success the OLT-assigned ONT ID
// is written to onu.OnuID. Invalid records fail with a *types.ValidationError
// before anything is sent; device rejections and timeouts come back as a
// *types.ProvisionError.
func (o *Olt) AddOnu(ctx context.Context, onu *types.Onu) error {
	if err := onu.Validate(); err != nil {
		o.metrics.ObserveProvision(o.host, OpAddOnu, metrics.ResultInvalid)
		return err
	}

	log := o.log.With().
		Str("serial", onu.Serial).
		Int("frame", *onu.Frame).
		Int("board", *onu.Board).
		Int("port", *onu.Port).
		Logger()

	if err := o.enterInterface(ctx, *onu.Frame, *onu.Board); err != nil {
		return o.provisionFailed(log, OpAddOnu, "", err)
	}

	out, err := o.send(ctx, addOnuCommand(onu), o.timeout)
	if err != nil {
		return o.provisionFailed(log, OpAddOnu, "", err)
	}
	if !o.contract.OnuAdded(out) {
		return o.provisionFailed(log, OpAddOnu, out, nil)
	}

	if id, ok := o.contract.AssignedOnuID(out); ok {
		onu.OnuID = &id
		log = log.With().Int("onu_id", id).Logger()
	} else {
		log.Warn().Msg("ONT added but no ONT ID in reply")
	}
	o.metrics.ObserveProvision(o.host, OpAddOnu, metrics.ResultSuccess)
	log.Info().Msg("ONT added")
	return nil
}

// AddServicePort creates a service port for a provisioned ONT. A missing
// UserVLAN takes the value of VLAN. Errors follow AddOnu.
func (o *Olt) AddServicePort(ctx context.Context, onu *types.Onu, sp *types.ServicePort) error {
	if err := onu.ValidateAddress(); err != nil {
		o.metrics.ObserveProvision(o.host, OpAddServicePort, metrics.ResultInvalid)
		return err
	}
	if err := sp.Validate(); err != nil {
		o.metrics.ObserveProvision(o.host, OpAddServicePort, metrics.ResultInvalid)
		return err
	}

	log := o.log.With().
		Str("serial", onu.Serial).
		Int("onu_id", *onu.OnuID).
		Int("vlan", *sp.VLAN).
		Logger()

	if err := o.ensureMode(ctx, types.ModeConfig); err != nil {
		return o.provisionFailed(log, OpAddServicePort, "", err)
	}

	out, err := o.send(ctx, addServicePortCommand(onu, sp), o.timeout)
	if err != nil {
		return o.provisionFailed(log, OpAddServicePort, "", err)
	}
	if o.contract.ServicePortRejected(out) {
		return o.provisionFailed(log, OpAddServicePort, out, nil)
	}

	o.metrics.ObserveProvision(o.host, OpAddServicePort, metrics.ResultSuccess)
	log.Info().Msg("service port added")
	return nil
}

// provisionFailed wraps a device rejection (output) or a transport error
// (cause) into a ProvisionError. Mode conflicts are returned unchanged.
func (o *Olt) provisionFailed(log zerolog.Logger, op, output string, cause error) error {
	var te *types.TransitionError
	if errors.As(cause, &te) {
		return cause
	}
	o.metrics.ObserveProvision(o.host, op, metrics.ResultFailure)
	if cause != nil {
		log.Warn().Err(cause).Msg(op + " failed")
	} else {
		log.Warn().Str("output", output).Msg(op + " rejected")
	}
	return &types.ProvisionError{Operation: op, Output: output, Err: cause}
}

// GetServicePorts lists the service ports of a provisioned ONT.
func (o *Olt) GetServicePorts(ctx context.Context, onu *types.Onu) ([]types.ServicePort, error) {
	if err := onu.ValidateAddress(); err != nil {
		return nil, err
	}
	if err := o.ensureMode(ctx, types.ModeEnable); err != nil {
		return nil, err
	}

	out, err := o.send(ctx, servicePortsCommand(onu), o.timeout)
	if err != nil {
		return nil, fmt.Errorf("display service-port: %w", err)
	}
	return ParseServicePorts(out), nil
}

// GetOnuBySerial finds where an ONT is registered. It returns nil without
// error when the OLT does not know the serial.
func (o *Olt) GetOnuBySerial(ctx context.Context, serial string) (*types.OnuRecord, error) {
	if err := types.ValidateSerial(serial); err != nil {
		return nil, err
	}
	if err := o.ensureMode(ctx, types.ModeEnable); err != nil {
		return nil, err
	}

	out, err := o.send(ctx, bySerialCommand(serial), o.timeout)
	if err != nil {
		return nil, fmt.Errorf("display ont info by-sn: %w", err)
	}
	return ParseOnuBySerial(out, serial), nil
}

// AddBtvUser is reserved for multicast membership provisioning.
func (o *Olt) AddBtvUser(ctx context.Context, onu *types.Onu, user *types.BtvUser) error {
	return fmt.Errorf("add btv user: %w", types.ErrNotImplemented)
}
