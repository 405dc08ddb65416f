package huawei

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nanoncore/olt-console/types"
)

var (
	// "  VERSION : MA5600V800R018C10"
	versionLineRe = regexp.MustCompile(`(?m)\s+([A-Za-z ]+[A-Za-z]+?)\s+:\s+([A-Za-z0-9 -]+?)\s*$`)
	uptimeRe      = regexp.MustCompile(`Uptime is\s([^\n]+)`)

	// "  0/ 1/2    5  48575443A1B2C3D4  active  online  normal  match  no"
	// Columns never span lines; the description table below it shares the
	// F/S/P ONT-ID prefix.
	inventoryRowRe = regexp.MustCompile(`(?m)^[ \t]*(\d+)[ \t]*/[ \t]*(\d+)[ \t]*/[ \t]*(\d+)[ \t]+(\d+)[ \t]+([0-9A-Fa-f]{16})[ \t]+(\S+)[ \t]+(\S+)[ \t]+(\S+)[ \t]+(\S+)[ \t]+(\S+)[ \t]*\r?$`)

	// "   12  100 common   gpon 0/1 /2  5    1     vlan  100        10   10   up"
	servicePortRowRe = regexp.MustCompile(`(?m)^[ \t]*(\d+)[ \t]+(\d+)[ \t]+(\S+)[ \t]+gpon[ \t]+(\d+)[ \t]*/[ \t]*(\d+)[ \t]*/[ \t]*(\d+)[ \t]+(\d+)[ \t]+(\d+)[ \t]+vlan[ \t]+(\d+)[ \t]+(\d+)[ \t]+(\d+)`)

	bySerialRe = regexp.MustCompile(`F/S/P\s*:\s*(\d+)/(\d+)/(\d+)\s+ONT-ID\s*:\s*(\d+)`)

	detailFieldRe = regexp.MustCompile(`(?m)^\s*(Control flag|Run state|Config state|Match state|Description)\s*:[ \t]*(.*?)\s*$`)
)

// ParseVersion extracts the "label : value" pairs of `display version`.
// Labels are lower-cased; a repeated label keeps its last value. The text
// after "Uptime is" is stored under "uptime".
func ParseVersion(output string) types.VersionInfo {
	info := types.VersionInfo{}
	for _, m := range versionLineRe.FindAllStringSubmatch(output, -1) {
		info[strings.ToLower(strings.TrimSpace(m[1]))] = m[2]
	}
	if m := uptimeRe.FindAllStringSubmatch(output, -1); len(m) > 0 {
		info["uptime"] = strings.TrimSpace(m[len(m)-1][1])
	}
	return info
}

// FormatVersion renders info in the `display version` layout ParseVersion reads.
func FormatVersion(info types.VersionInfo) string {
	keys := make([]string, 0, len(info))
	for k := range info {
		if k != "uptime" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s : %s\n", k, info[k])
	}
	if uptime, ok := info.Uptime(); ok {
		fmt.Fprintf(&sb, "  Uptime is %s\n", uptime)
	}
	return sb.String()
}

// ParseInventory returns the ONT rows of `display ont info`, keyed by serial.
func ParseInventory(output string) map[string]types.OnuRecord {
	records := make(map[string]types.OnuRecord)
	for _, m := range inventoryRowRe.FindAllStringSubmatch(output, -1) {
		rec := types.OnuRecord{
			Frame:       atoi(m[1]),
			Board:       atoi(m[2]),
			Port:        atoi(m[3]),
			OnuID:       atoi(m[4]),
			Serial:      m[5],
			ControlFlag: m[6],
			RunState:    m[7],
			ConfigState: m[8],
			MatchState:  m[9],
			ProtectSide: m[10],
		}
		records[rec.Serial] = rec
	}
	return records
}

// ParseServicePorts returns the rows of `display service-port` in order.
func ParseServicePorts(output string) []types.ServicePort {
	ports := []types.ServicePort{}
	for _, m := range servicePortRowRe.FindAllStringSubmatch(output, -1) {
		ports = append(ports, types.ServicePort{
			ID:                     intPtr(m[1]),
			VLAN:                   intPtr(m[2]),
			VLANAttribute:          m[3],
			Frame:                  intPtr(m[4]),
			Board:                  intPtr(m[5]),
			Port:                   intPtr(m[6]),
			OnuID:                  intPtr(m[7]),
			GemPort:                intPtr(m[8]),
			UserVLAN:               intPtr(m[9]),
			InboundTrafficTableID:  intPtr(m[10]),
			OutboundTrafficTableID: intPtr(m[11]),
		})
	}
	return ports
}

// ParseOnuBySerial reads the reply of `display ont info by-sn`. It returns
// nil when the reply holds no F/S/P and ONT-ID pair.
func ParseOnuBySerial(output, serial string) *types.OnuRecord {
	m := bySerialRe.FindStringSubmatch(output)
	if m == nil {
		return nil
	}

	rec := &types.OnuRecord{
		Serial: serial,
		Frame:  atoi(m[1]),
		Board:  atoi(m[2]),
		Port:   atoi(m[3]),
		OnuID:  atoi(m[4]),
	}
	for _, f := range detailFieldRe.FindAllStringSubmatch(output, -1) {
		switch f[1] {
		case "Control flag":
			rec.ControlFlag = f[2]
		case "Run state":
			rec.RunState = f[2]
		case "Config state":
			rec.ConfigState = f[2]
		case "Match state":
			rec.MatchState = f[2]
		case "Description":
			rec.Description = f[2]
		}
	}
	return rec
}

// atoi is only fed \d+ captures.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func intPtr(s string) *int {
	n := atoi(s)
	return &n
}
