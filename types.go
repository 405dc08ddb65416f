package southbound

// Re-export types from the types sub-package so callers can build drivers
// without importing it.

import (
	"github.com/nanoncore/olt-console/types"
)

// Protocol is a management protocol of the equipment.
type Protocol string

const (
	ProtocolCLI  Protocol = "cli"
	ProtocolSNMP Protocol = "snmp"
)

type (
	Vendor          = types.Vendor
	EquipmentConfig = types.EquipmentConfig
	Transport       = types.Transport
	Onu             = types.Onu
	ServicePort     = types.ServicePort
	OnuRecord       = types.OnuRecord
	VersionInfo     = types.VersionInfo
	InventoryFilter = types.InventoryFilter
	BulkResult      = types.BulkResult
	SystemStatus    = types.SystemStatus
)

const (
	VendorHuawei = types.VendorHuawei
	VendorMock   = types.VendorMock
)
