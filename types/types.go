package types

import (
	"context"
	"regexp"
	"time"
)

// Vendor represents the network equipment vendor
type Vendor string

const (
	VendorHuawei Vendor = "huawei"
	VendorMock   Vendor = "mock" // For testing/simulation
)

// EquipmentConfig contains configuration for a managed OLT
type EquipmentConfig struct {
	// Name is a unique identifier for this equipment
	Name string

	// Vendor is the equipment vendor
	Vendor Vendor

	// Address is the management IP/hostname
	Address string

	// Port is the SSH port (default 22)
	Port int

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// Timeout is the per-command timeout
	Timeout time.Duration

	// InventoryTimeout is used for large inventory dumps
	InventoryTimeout time.Duration

	// TranscriptPath receives a copy of the raw session when set
	TranscriptPath string

	// SNMPCommunity enables the SNMP status probe when set
	SNMPCommunity string

	// SNMPPort is the SNMP agent port (default 161)
	SNMPPort int

	// Metadata contains vendor-specific configuration
	Metadata map[string]string
}

// Transport is the interactive request/response primitive a device driver
// runs on. Send writes command followed by a newline and returns the reply
// once prompt matches; it fails with ErrTimeout when prompt is not observed
// within timeout.
type Transport interface {
	Send(ctx context.Context, command string, prompt *regexp.Regexp, timeout time.Duration) (string, error)

	// CurrentPrompt returns the prompt line the device is currently showing.
	CurrentPrompt(ctx context.Context) (string, error)

	// Close releases the session. Closing a never-opened transport is a no-op.
	Close() error
}
