package huawei

import (
	"reflect"
	"testing"

	"github.com/nanoncore/olt-console/types"
)

const versionOutput = `
  VERSION : MA5600V800R018C10
  PATCH   : SPC100
  PRODUCT : MA5600T
  Active Mainboard Running Area Information:
  --------------------------------------------------
  Current Program Area : Area A
  Current Data Area : Area A

  Program Area A Version : MA5600V800R018C10
  Program Area B Version : MA5600V800R018C10
  --------------------------------------------------

  Uptime is 12 day(s), 4 hour(s), 31 minute(s), 7 second(s)
`

func TestParseVersion(t *testing.T) {
	info := ParseVersion(versionOutput)

	expected := map[string]string{
		"version":                "MA5600V800R018C10",
		"patch":                  "SPC100",
		"product":                "MA5600T",
		"current program area":   "Area A",
		"current data area":      "Area A",
		"program area a version": "MA5600V800R018C10",
		"program area b version": "MA5600V800R018C10",
		"uptime":                 "12 day(s), 4 hour(s), 31 minute(s), 7 second(s)",
	}
	for k, v := range expected {
		if info[k] != v {
			t.Errorf("Expected %q = %q, got %q", k, v, info[k])
		}
	}
	if len(info) != len(expected) {
		t.Errorf("Expected %d keys, got %d: %v", len(expected), len(info), info)
	}
	if up, ok := info.Uptime(); !ok || up == "" {
		t.Error("Expected uptime")
	}
}

func TestParseVersionLastWins(t *testing.T) {
	info := ParseVersion("  PATCH : SPC100\n  PATCH : SPC200\n")
	if info["patch"] != "SPC200" {
		t.Errorf("Expected last value to win, got %q", info["patch"])
	}
}

func TestParseVersionEmpty(t *testing.T) {
	info := ParseVersion("  % Unknown command, the error locates at '^'")
	if len(info) != 0 {
		t.Errorf("Expected empty mapping, got %v", info)
	}
	if _, ok := info.Uptime(); ok {
		t.Error("Expected no uptime")
	}
}

func TestParseVersionIdempotent(t *testing.T) {
	first := ParseVersion(versionOutput)
	second := ParseVersion(FormatVersion(first))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Re-parsing changed the mapping:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestParseInventory(t *testing.T) {
	output := "0/ 1/2  5  48575443A1B2C3D4 active up active match unlocked"
	records := ParseInventory(output)

	rec, ok := records["48575443A1B2C3D4"]
	if !ok {
		t.Fatalf("Expected serial 48575443A1B2C3D4, got %v", records)
	}
	want := types.OnuRecord{
		Serial:      "48575443A1B2C3D4",
		Frame:       0,
		Board:       1,
		Port:        2,
		OnuID:       5,
		ControlFlag: "active",
		RunState:    "up",
		ConfigState: "active",
		MatchState:  "match",
		ProtectSide: "unlocked",
	}
	if rec != want {
		t.Errorf("ParseInventory() = %+v, want %+v", rec, want)
	}
}

func TestParseInventoryTable(t *testing.T) {
	output := `
  -----------------------------------------------------------------------------
  F/S/P   ONT         SN         Control     Run      Config   Match    Protect
          ID                     flag        state    state    state    side
  -----------------------------------------------------------------------------
  0/ 1/0    0  485754430A2C4F13  active      online   normal   match    no
  0/ 1/0    1  5053534E00000001  active      offline  initial  initial  no
  0/ 1/3    0  48575443A1B2C3D4  deactivated offline  normal   match    no
  -----------------------------------------------------------------------------
  In port 0/ 1/0 , the total of ONTs are: 2, online: 1
`
	records := ParseInventory(output)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if r := records["5053534E00000001"]; r.OnuID != 1 || r.RunState != "offline" || r.ConfigState != "initial" {
		t.Errorf("Unexpected record %+v", r)
	}
	if r := records["48575443A1B2C3D4"]; r.Port != 3 || r.ControlFlag != "deactivated" {
		t.Errorf("Unexpected record %+v", r)
	}
}

func TestParseInventoryWithDescriptionTable(t *testing.T) {
	output := "  -----------------------------------------------------------------------------\r\n" +
		"  F/S/P   ONT         SN         Control     Run      Config   Match    Protect\r\n" +
		"          ID                     flag        state    state    state    side\r\n" +
		"  -----------------------------------------------------------------------------\r\n" +
		"  0/ 1/2    5  48575443A1B2C3D4  active      online   normal   match    no\r\n" +
		"  0/ 1/2    6  48575443A1B2C3D5  active      offline  normal   match    no\r\n" +
		"  -----------------------------------------------------------------------------\r\n" +
		"  F/S/P   ONT-ID   Description\r\n" +
		"  -----------------------------------------------------------------------------\r\n" +
		"  0/ 1/2    5      48575443A1B2C3D4\r\n" +
		"  0/ 1/2    6      48575443A1B2C3D5\r\n" +
		"  -----------------------------------------------------------------------------\r\n" +
		"  In port 0/ 1/2 , the total of ONTs are: 2, online: 1\r\n"

	records := ParseInventory(output)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d: %v", len(records), records)
	}
	want := types.OnuRecord{
		Serial:      "48575443A1B2C3D4",
		Frame:       0,
		Board:       1,
		Port:        2,
		OnuID:       5,
		ControlFlag: "active",
		RunState:    "online",
		ConfigState: "normal",
		MatchState:  "match",
		ProtectSide: "no",
	}
	if got := records["48575443A1B2C3D4"]; got != want {
		t.Errorf("Record = %+v, want %+v", got, want)
	}
	if got := records["48575443A1B2C3D5"]; got.OnuID != 6 || got.RunState != "offline" || got.ProtectSide != "no" {
		t.Errorf("Unexpected record %+v", got)
	}
}

func TestParseInventoryEmpty(t *testing.T) {
	records := ParseInventory("  Failure: There is no ONT available")
	if len(records) != 0 {
		t.Errorf("Expected no records, got %v", records)
	}
}

func TestParseServicePorts(t *testing.T) {
	output := `
  Switch-Oriented Flow List
  -----------------------------------------------------------------------------
   INDEX VLAN VLAN     PORT F/ S/ P VPI  VCI   FLOW  FLOW       RX   TX   STATE
         ID   ATTR     TYPE                    TYPE  PARA
  -----------------------------------------------------------------------------
     12  100 common   gpon 0/1 /2  5    1     vlan  100        10   10   up
     13  200 stacking gpon 0/1 /2  5    2     vlan  20         6    7    down
  -----------------------------------------------------------------------------
   Total : 2  (Up/Down :    1/1)
`
	ports := ParseServicePorts(output)
	if len(ports) != 2 {
		t.Fatalf("Expected 2 service ports, got %d", len(ports))
	}

	first := ports[0]
	checks := []struct {
		name string
		got  *int
		want int
	}{
		{"id", first.ID, 12},
		{"vlan", first.VLAN, 100},
		{"frame", first.Frame, 0},
		{"board", first.Board, 1},
		{"port", first.Port, 2},
		{"onu_id", first.OnuID, 5},
		{"gemport", first.GemPort, 1},
		{"user_vlan", first.UserVLAN, 100},
		{"inbound", first.InboundTrafficTableID, 10},
		{"outbound", first.OutboundTrafficTableID, 10},
	}
	for _, c := range checks {
		if c.got == nil || *c.got != c.want {
			t.Errorf("%s = %v, want %d", c.name, c.got, c.want)
		}
	}
	if first.VLANAttribute != "common" {
		t.Errorf("Expected attribute common, got %q", first.VLANAttribute)
	}

	if *ports[1].ID != 13 || *ports[1].UserVLAN != 20 || ports[1].VLANAttribute != "stacking" {
		t.Errorf("Unexpected second row %+v", ports[1])
	}
}

func TestParseServicePortsEmpty(t *testing.T) {
	ports := ParseServicePorts("  Failure: No service virtual port can be operated")
	if ports == nil || len(ports) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", ports)
	}
}

func TestParseOnuBySerial(t *testing.T) {
	output := `
  -----------------------------------------------------------------------------
  F/S/P                   : 0/1/2
  ONT-ID                  : 5
  Control flag            : active
  Run state               : online
  Config state            : normal
  Match state             : match
  DBA type                : SR
  ONT distance(m)         : 1532
  Description             : rua das flores 12
  -----------------------------------------------------------------------------
`
	rec := ParseOnuBySerial(output, "48575443A1B2C3D4")
	if rec == nil {
		t.Fatal("Expected a record")
	}
	if rec.Frame != 0 || rec.Board != 1 || rec.Port != 2 || rec.OnuID != 5 {
		t.Errorf("Unexpected address %+v", rec)
	}
	if rec.Serial != "48575443A1B2C3D4" {
		t.Errorf("Expected serial to be kept, got %q", rec.Serial)
	}
	if rec.RunState != "online" || rec.ControlFlag != "active" || rec.ConfigState != "normal" || rec.MatchState != "match" {
		t.Errorf("Unexpected states %+v", rec)
	}
	if rec.Description != "rua das flores 12" {
		t.Errorf("Unexpected description %q", rec.Description)
	}
}

func TestParseOnuBySerialNotFound(t *testing.T) {
	output := "  Failure: The ONT does not exist"
	if rec := ParseOnuBySerial(output, "48575443A1B2C3D4"); rec != nil {
		t.Errorf("Expected nil, got %+v", rec)
	}
}

func TestContract(t *testing.T) {
	c := DefaultContract

	ok := "  Number of ONTs that can be added: 1, success: 1\n  PortID :2, ONTID :7"
	if !c.OnuAdded(ok) {
		t.Error("Expected success phrase to be recognized")
	}
	if id, found := c.AssignedOnuID(ok); !found || id != 7 {
		t.Errorf("Expected ONT ID 7, got %d %v", id, found)
	}

	if c.OnuAdded("  Failure: SN already exists") {
		t.Error("Failure reply must not count as added")
	}
	if c.OnuAdded("") {
		t.Error("Empty reply must not count as added")
	}
	if _, found := c.AssignedOnuID("no id here"); found {
		t.Error("Expected no ONT ID")
	}

	if !c.ServicePortRejected("  Failure: The service virtual port has existed already") {
		t.Error("Expected rejection")
	}
	if c.ServicePortRejected("") {
		t.Error("Empty reply is not a rejection")
	}
}
