package huawei

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nanoncore/olt-console/types"
)

const versionCommand = "display version"

// inventoryCommand builds `display ont info`. The frame defaults to 0; board
// and port are only added when set.
func inventoryCommand(f types.InventoryFilter) string {
	parts := []string{"display ont info", "0"}
	if f.Frame != nil {
		parts[1] = strconv.Itoa(*f.Frame)
	}
	if f.Board != nil {
		parts = append(parts, strconv.Itoa(*f.Board))
	}
	if f.Port != nil {
		parts = append(parts, strconv.Itoa(*f.Port))
	}
	return strings.Join(append(parts, "all"), " ")
}

// addOnuCommand builds `ont add`, sent from the interface context of the
// ONT's board. The record must be validated.
func addOnuCommand(onu *types.Onu) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ont add %d sn-auth %s omci", *onu.Port, onu.Serial)
	if onu.Description != "" {
		fmt.Fprintf(&sb, " desc \"%s\"", onu.Description)
	}
	sb.WriteString(profileClause("ont-lineprofile", onu.LineProfileID, onu.LineProfileName))
	sb.WriteString(profileClause("ont-srvprofile", onu.SrvProfileID, onu.SrvProfileName))
	return sb.String()
}

func profileClause(keyword string, id *int, name *string) string {
	if id != nil {
		return fmt.Sprintf(" %s-id %d", keyword, *id)
	}
	return fmt.Sprintf(" %s-name \"%s\"", keyword, *name)
}

// addServicePortCommand builds `service-port` for a provisioned ONT. Both
// records must be validated.
func addServicePortCommand(onu *types.Onu, sp *types.ServicePort) string {
	var sb strings.Builder
	sb.WriteString("service-port")
	if sp.ID != nil {
		fmt.Fprintf(&sb, " %d", *sp.ID)
	}
	fmt.Fprintf(&sb, " vlan %d gpon %d/%d/%d ont %d gemport %d multi-service user-vlan %d",
		*sp.VLAN, *onu.Frame, *onu.Board, *onu.Port, *onu.OnuID, *sp.GemPort, sp.EffectiveUserVLAN())

	if sp.InnerVLAN != nil {
		fmt.Fprintf(&sb, " tag-transform translate-and-add inner-vlan %d", *sp.InnerVLAN)
	} else {
		sb.WriteString(" tag-transform translate")
	}

	sb.WriteString(trafficTableClause("inbound", sp.InboundTrafficTableID, sp.InboundTrafficTableName))
	sb.WriteString(trafficTableClause("outbound", sp.OutboundTrafficTableID, sp.OutboundTrafficTableName))
	return sb.String()
}

func trafficTableClause(direction string, id *int, name *string) string {
	switch {
	case id != nil:
		return fmt.Sprintf(" %s traffic-table index %d", direction, *id)
	case name != nil:
		return fmt.Sprintf(" %s traffic-table name %s", direction, *name)
	}
	return ""
}

func servicePortsCommand(onu *types.Onu) string {
	return fmt.Sprintf("display service-port %d/%d/%d ont %d", *onu.Frame, *onu.Board, *onu.Port, *onu.OnuID)
}

func bySerialCommand(serial string) string {
	return "display ont info by-sn " + serial
}
