package huawei

import (
	"time"

	"github.com/nanoncore/olt-console/types"
	"github.com/nanoncore/olt-console/vendors/common"
)

// MIB-II system group and SmartAX control board OIDs.
const (
	OIDSysDescr  = "1.3.6.1.2.1.1.1.0"
	OIDSysUpTime = "1.3.6.1.2.1.1.3.0" // hundredths of seconds
	OIDSysName   = "1.3.6.1.2.1.1.5.0"

	// Indexed by frame.slot; the status probe reads the first control board.
	OIDSmartAXCPU    = "1.3.6.1.4.1.2011.6.3.4.1.2.0.0.0"
	OIDSmartAXMemory = "1.3.6.1.4.1.2011.6.3.4.1.8.0.0.0"
)

// StatusOIDs are fetched in one GET by the status probe.
var StatusOIDs = []string{OIDSysDescr, OIDSysUpTime, OIDSysName, OIDSmartAXCPU, OIDSmartAXMemory}

// ParseSystemStatus builds a SystemStatus from the values of StatusOIDs.
// Missing or invalid board readings are reported as -1.
func ParseSystemStatus(results map[string]interface{}) types.SystemStatus {
	status := types.SystemStatus{CPUPercent: -1, MemoryPercent: -1}

	if v, ok := common.GetSNMPResult(results, OIDSysName); ok {
		status.Name, _ = common.ParseStringSNMPValue(v)
	}
	if v, ok := common.GetSNMPResult(results, OIDSysDescr); ok {
		status.Description, _ = common.ParseStringSNMPValue(v)
	}
	if v, ok := common.GetSNMPResult(results, OIDSysUpTime); ok {
		if ticks, ok := common.ParseIntSNMPValue(v); ok {
			status.Uptime = time.Duration(ticks) * 10 * time.Millisecond
		}
	}
	if v, ok := common.GetSNMPResult(results, OIDSmartAXCPU); ok {
		if n, ok := common.ParseIntSNMPValue(v); ok && n != common.SNMPInvalidValue {
			status.CPUPercent = float64(n)
		}
	}
	if v, ok := common.GetSNMPResult(results, OIDSmartAXMemory); ok {
		if n, ok := common.ParseIntSNMPValue(v); ok && n != common.SNMPInvalidValue {
			status.MemoryPercent = float64(n)
		}
	}
	return status
}

// DecodeHexSerial renders a hex serial as printed by `display ont info`
// ("485754430011D168") in vendor form ("HWTC0011D168"). Serials that already
// start with a four-letter vendor ID are returned unchanged.
func DecodeHexSerial(hexSerial string) string {
	if len(hexSerial) < 8 || isASCIISerial(hexSerial) {
		return hexSerial
	}

	vendorID := make([]byte, 0, 4)
	for i := 0; i < 8; i += 2 {
		b := hexToByte(hexSerial[i : i+2])
		if b >= 32 && b <= 126 {
			vendorID = append(vendorID, b)
		}
	}
	return string(vendorID) + hexSerial[8:]
}

func isASCIISerial(serial string) bool {
	for i := 0; i < 4; i++ {
		c := serial[i]
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func hexToByte(hex string) byte {
	var b byte
	for _, c := range hex {
		b <<= 4
		switch {
		case c >= '0' && c <= '9':
			b |= byte(c - '0')
		case c >= 'A' && c <= 'F':
			b |= byte(c - 'A' + 10)
		case c >= 'a' && c <= 'f':
			b |= byte(c - 'a' + 10)
		}
	}
	return b
}
