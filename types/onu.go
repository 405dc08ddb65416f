package types

import (
	"errors"
	"fmt"
	"strings"
)

// VersionInfo maps lower-cased `display version` labels to their values.
// The "uptime" key holds the text following "Uptime is".
type VersionInfo map[string]string

// Uptime returns the uptime text, if the device printed one.
func (v VersionInfo) Uptime() (string, bool) {
	u, ok := v["uptime"]
	return u, ok
}

// OnuRecord is one ONT row of the OLT inventory.
type OnuRecord struct {
	Serial      string `json:"serial"`
	Frame       int    `json:"frame"`
	Board       int    `json:"board"`
	Port        int    `json:"port"`
	OnuID       int    `json:"onu_id"`
	ControlFlag string `json:"control_flag"`
	RunState    string `json:"run_state"`
	ConfigState string `json:"config_state"`
	MatchState  string `json:"match_state"`
	ProtectSide string `json:"protect_side"`

	// Description is only filled by the by-serial lookup.
	Description string `json:"description,omitempty"`
}

// PONPort returns the frame/board/port triple as "F/B/P".
func (r OnuRecord) PONPort() string {
	return fmt.Sprintf("%d/%d/%d", r.Frame, r.Board, r.Port)
}

// Onu is the provisioning input for an ONT. OnuID stays nil until the OLT
// assigns one.
type Onu struct {
	Serial string `json:"serial" yaml:"serial"`
	Frame  *int   `json:"frame,omitempty" yaml:"frame"`
	Board  *int   `json:"board,omitempty" yaml:"board"`
	Port   *int   `json:"port,omitempty" yaml:"port"`
	OnuID  *int   `json:"onu_id,omitempty" yaml:"onu_id"`

	LineProfileID   *int    `json:"lineprofile_id,omitempty" yaml:"lineprofile_id"`
	LineProfileName *string `json:"lineprofile_name,omitempty" yaml:"lineprofile_name"`
	SrvProfileID    *int    `json:"srvprofile_id,omitempty" yaml:"srvprofile_id"`
	SrvProfileName  *string `json:"srvprofile_name,omitempty" yaml:"srvprofile_name"`

	Description string `json:"description,omitempty" yaml:"description"`

	ServicePorts []ServicePort `json:"service_ports,omitempty" yaml:"service_ports"`
	BtvUsers     []BtvUser     `json:"btv_users,omitempty" yaml:"btv_users"`
}

// Validate checks the fields required to register the ONT.
func (o *Onu) Validate() error {
	if o == nil {
		return invalid("onu", "is required")
	}
	if err := ValidateSerial(o.Serial); err != nil {
		return err
	}
	if o.Frame == nil {
		return invalid("frame", "is required")
	}
	if o.Board == nil {
		return invalid("board", "is required")
	}
	if o.Port == nil {
		return invalid("port", "is required")
	}
	if err := exactlyOne("srvprofile", o.SrvProfileID, o.SrvProfileName); err != nil {
		return err
	}
	if err := exactlyOne("lineprofile", o.LineProfileID, o.LineProfileName); err != nil {
		return err
	}
	if strings.Contains(o.Description, "\"") {
		return invalid("description", "must not contain quotes")
	}
	for field, name := range map[string]*string{"lineprofile": o.LineProfileName, "srvprofile": o.SrvProfileName} {
		if name != nil && strings.Contains(*name, "\"") {
			return invalid(field, "name must not contain quotes")
		}
	}
	return nil
}

// ValidateServicePorts checks every entry of ServicePorts. Batch callers run
// it before `ont add`, so a bad service port does not leave a half
// provisioned ONT behind.
func (o *Onu) ValidateServicePorts() error {
	if o == nil {
		return invalid("onu", "is required")
	}
	for i := range o.ServicePorts {
		if err := o.ServicePorts[i].Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return invalid(fmt.Sprintf("service_ports[%d] %s", i, ve.Field), ve.Reason)
			}
			return err
		}
	}
	return nil
}

// ValidateSerial checks that serial can be placed on a command line.
func ValidateSerial(serial string) error {
	if serial == "" {
		return invalid("serial", "is required")
	}
	if strings.ContainsAny(serial, " \t\r\n\"") {
		return invalid("serial", "must not contain whitespace or quotes")
	}
	return nil
}

// ValidateAddress checks that the ONT is fully addressed, including the
// OLT-assigned ONT ID.
func (o *Onu) ValidateAddress() error {
	if o == nil {
		return invalid("onu", "is required")
	}
	if o.Frame == nil {
		return invalid("frame", "is required")
	}
	if o.Board == nil {
		return invalid("board", "is required")
	}
	if o.Port == nil {
		return invalid("port", "is required")
	}
	if o.OnuID == nil {
		return invalid("onu_id", "is required")
	}
	return nil
}

// Interface returns the GPON board the ONT hangs off.
func (o *Onu) Interface() InterfaceID {
	return InterfaceID{Frame: derefInt(o.Frame), Board: derefInt(o.Board)}
}

// ServicePort maps an ONT GEM port and VLAN tags onto an uplink VLAN.
// UserVLAN defaults to VLAN. Setting InnerVLAN selects translate-and-add.
type ServicePort struct {
	ID        *int `json:"id,omitempty" yaml:"id"`
	VLAN      *int `json:"vlan,omitempty" yaml:"vlan"`
	UserVLAN  *int `json:"user_vlan,omitempty" yaml:"user_vlan"`
	InnerVLAN *int `json:"inner_vlan,omitempty" yaml:"inner_vlan"`
	GemPort   *int `json:"gemport,omitempty" yaml:"gemport"`

	InboundTrafficTableID    *int    `json:"inbound_traffic_table_id,omitempty" yaml:"inbound_traffic_table_id"`
	InboundTrafficTableName  *string `json:"inbound_traffic_table_name,omitempty" yaml:"inbound_traffic_table_name"`
	OutboundTrafficTableID   *int    `json:"outbound_traffic_table_id,omitempty" yaml:"outbound_traffic_table_id"`
	OutboundTrafficTableName *string `json:"outbound_traffic_table_name,omitempty" yaml:"outbound_traffic_table_name"`

	// Set when read back from the device.
	VLANAttribute string `json:"vlan_attribute,omitempty" yaml:"-"`
	Frame         *int   `json:"frame,omitempty" yaml:"-"`
	Board         *int   `json:"board,omitempty" yaml:"-"`
	Port          *int   `json:"port,omitempty" yaml:"-"`
	OnuID         *int   `json:"onu_id,omitempty" yaml:"-"`
}

// Validate checks the service port fields.
func (sp *ServicePort) Validate() error {
	if sp == nil {
		return invalid("service_port", "is required")
	}
	if sp.VLAN == nil {
		return invalid("vlan", "is required")
	}
	if sp.GemPort == nil {
		return invalid("gemport", "is required")
	}
	if sp.InboundTrafficTableID != nil && sp.InboundTrafficTableName != nil {
		return invalid("inbound traffic-table", "accepts an id or a name, not both")
	}
	if sp.OutboundTrafficTableID != nil && sp.OutboundTrafficTableName != nil {
		return invalid("outbound traffic-table", "accepts an id or a name, not both")
	}
	for field, name := range map[string]*string{"inbound traffic-table": sp.InboundTrafficTableName, "outbound traffic-table": sp.OutboundTrafficTableName} {
		if name != nil && (*name == "" || strings.ContainsAny(*name, " \t\"")) {
			return invalid(field, "name must be a single word")
		}
	}
	for _, v := range []struct {
		field string
		value *int
	}{{"vlan", sp.VLAN}, {"user_vlan", sp.UserVLAN}, {"inner_vlan", sp.InnerVLAN}} {
		if v.value != nil && (*v.value < 1 || *v.value > 4094) {
			return invalid(v.field, "must be between 1 and 4094")
		}
	}
	return nil
}

// EffectiveUserVLAN returns UserVLAN, or VLAN when no user VLAN is set.
func (sp *ServicePort) EffectiveUserVLAN() int {
	if sp.UserVLAN != nil {
		return *sp.UserVLAN
	}
	return derefInt(sp.VLAN)
}

// BtvUser is a multicast (BTV) membership entry. Not provisioned yet.
type BtvUser struct {
	ServicePort *int   `json:"service_port,omitempty" yaml:"service_port"`
	VLAN        *int   `json:"vlan,omitempty" yaml:"vlan"`
	Attribute   string `json:"attribute,omitempty" yaml:"attribute"`
}

// InventoryFilter narrows an inventory dump. Board requires Frame and Port
// requires Frame and Board.
type InventoryFilter struct {
	Frame *int
	Board *int
	Port  *int
}

// Validate rejects filters the device cannot express.
func (f InventoryFilter) Validate() error {
	if f.Port != nil && (f.Frame == nil || f.Board == nil) {
		return invalid("port", "requires frame and board")
	}
	if f.Board != nil && f.Frame == nil {
		return invalid("board", "requires frame")
	}
	return nil
}

func exactlyOne(field string, id *int, name *string) error {
	switch {
	case id == nil && name == nil:
		return invalid(field, "requires an id or a name")
	case id != nil && name != nil:
		return invalid(field, "accepts an id or a name, not both")
	}
	return nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string {
	return &v
}
