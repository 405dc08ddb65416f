package southbound

import (
	"fmt"

	"github.com/nanoncore/olt-console/drivers/cli"
	"github.com/nanoncore/olt-console/drivers/mock"
	"github.com/nanoncore/olt-console/drivers/snmp"
	"github.com/nanoncore/olt-console/metrics"
	"github.com/nanoncore/olt-console/vendors/huawei"
	"github.com/rs/zerolog"
)

// CapabilityMatrix defines what each vendor supports
var CapabilityMatrix = map[Vendor]VendorCapabilities{
	VendorHuawei: {
		ConfigMethod:    ProtocolCLI,
		TelemetryMethod: ProtocolSNMP,
	},
	VendorMock: {
		ConfigMethod:    ProtocolCLI,
		TelemetryMethod: ProtocolCLI,
	},
}

// VendorCapabilities defines how a vendor is provisioned and monitored
type VendorCapabilities struct {
	ConfigMethod    Protocol
	TelemetryMethod Protocol
}

type factoryOptions struct {
	log     zerolog.Logger
	metrics *metrics.Collectors
}

// Option configures the drivers built by NewOlt.
type Option func(*factoryOptions)

func WithLogger(log zerolog.Logger) Option {
	return func(o *factoryOptions) { o.log = log }
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(o *factoryOptions) { o.metrics = m }
}

// NewOlt creates the OLT driver for config: an SSH console for real
// equipment, the simulator for VendorMock. No connection is made until the
// first operation.
func NewOlt(config *EquipmentConfig, opts ...Option) (*huawei.Olt, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	vendor := config.Vendor
	if vendor == "" {
		vendor = VendorHuawei
	}
	if _, ok := CapabilityMatrix[vendor]; !ok {
		return nil, fmt.Errorf("unsupported vendor: %s", vendor)
	}

	o := factoryOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With().Str("device", config.Name).Logger()

	var transport Transport
	switch vendor {
	case VendorMock:
		transport = mock.NewDriver(config.Metadata["hostname"])
	default:
		d, err := cli.NewDriver(config, cli.WithLogger(log), cli.WithMetrics(o.metrics))
		if err != nil {
			return nil, fmt.Errorf("failed to create console driver: %w", err)
		}
		transport = d
	}

	return huawei.NewOlt(config.Address, transport,
		huawei.WithLogger(log),
		huawei.WithMetrics(o.metrics),
		huawei.WithTimeouts(config.Timeout, config.InventoryTimeout),
	), nil
}

// NewStatusProbe creates the SNMP probe for config, or fails when the
// vendor is not monitored over SNMP or no community is configured.
func NewStatusProbe(config *EquipmentConfig) (*snmp.Probe, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	vendor := config.Vendor
	if vendor == "" {
		vendor = VendorHuawei
	}
	if caps, ok := CapabilityMatrix[vendor]; !ok || caps.TelemetryMethod != ProtocolSNMP {
		return nil, fmt.Errorf("vendor %s has no SNMP telemetry", vendor)
	}
	return snmp.NewProbe(config)
}
