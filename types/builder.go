package types

// OnuBuilder assembles an Onu and validates it on Build, so a record that
// reaches a driver is already complete.
type OnuBuilder struct {
	onu Onu
}

// NewOnu starts an Onu for the given serial number.
func NewOnu(serial string) *OnuBuilder {
	return &OnuBuilder{onu: Onu{Serial: serial}}
}

// At sets the frame/board/port the ONT is attached to.
func (b *OnuBuilder) At(frame, board, port int) *OnuBuilder {
	b.onu.Frame, b.onu.Board, b.onu.Port = IntPtr(frame), IntPtr(board), IntPtr(port)
	return b
}

func (b *OnuBuilder) LineProfileID(id int) *OnuBuilder {
	b.onu.LineProfileID = IntPtr(id)
	return b
}

func (b *OnuBuilder) LineProfileName(name string) *OnuBuilder {
	b.onu.LineProfileName = StringPtr(name)
	return b
}

func (b *OnuBuilder) SrvProfileID(id int) *OnuBuilder {
	b.onu.SrvProfileID = IntPtr(id)
	return b
}

func (b *OnuBuilder) SrvProfileName(name string) *OnuBuilder {
	b.onu.SrvProfileName = StringPtr(name)
	return b
}

func (b *OnuBuilder) Description(desc string) *OnuBuilder {
	b.onu.Description = desc
	return b
}

// OnuID records an already assigned ONT ID, for ONTs that exist on the OLT.
func (b *OnuBuilder) OnuID(id int) *OnuBuilder {
	b.onu.OnuID = IntPtr(id)
	return b
}

// Build validates and returns the Onu.
func (b *OnuBuilder) Build() (*Onu, error) {
	onu := b.onu
	if err := onu.Validate(); err != nil {
		return nil, err
	}
	return &onu, nil
}

// ServicePortBuilder assembles a ServicePort and validates it on Build.
type ServicePortBuilder struct {
	sp ServicePort
}

// NewServicePort starts a service port on the given uplink VLAN and GEM port.
func NewServicePort(vlan, gemport int) *ServicePortBuilder {
	return &ServicePortBuilder{sp: ServicePort{VLAN: IntPtr(vlan), GemPort: IntPtr(gemport)}}
}

func (b *ServicePortBuilder) ID(id int) *ServicePortBuilder {
	b.sp.ID = IntPtr(id)
	return b
}

func (b *ServicePortBuilder) UserVLAN(vlan int) *ServicePortBuilder {
	b.sp.UserVLAN = IntPtr(vlan)
	return b
}

// InnerVLAN switches the tag transform to translate-and-add.
func (b *ServicePortBuilder) InnerVLAN(vlan int) *ServicePortBuilder {
	b.sp.InnerVLAN = IntPtr(vlan)
	return b
}

func (b *ServicePortBuilder) InboundTrafficTableID(id int) *ServicePortBuilder {
	b.sp.InboundTrafficTableID = IntPtr(id)
	return b
}

func (b *ServicePortBuilder) InboundTrafficTableName(name string) *ServicePortBuilder {
	b.sp.InboundTrafficTableName = StringPtr(name)
	return b
}

func (b *ServicePortBuilder) OutboundTrafficTableID(id int) *ServicePortBuilder {
	b.sp.OutboundTrafficTableID = IntPtr(id)
	return b
}

func (b *ServicePortBuilder) OutboundTrafficTableName(name string) *ServicePortBuilder {
	b.sp.OutboundTrafficTableName = StringPtr(name)
	return b
}

// Build validates and returns the ServicePort with UserVLAN resolved.
func (b *ServicePortBuilder) Build() (*ServicePort, error) {
	sp := b.sp
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	if sp.UserVLAN == nil {
		sp.UserVLAN = IntPtr(*sp.VLAN)
	}
	return &sp, nil
}
