package types

import "fmt"

// Mode is the CLI privilege/context level of a console session.
type Mode int

const (
	ModeUser Mode = iota
	ModeEnable
	ModeConfig
	ModeInterface
	ModeBTV
)

var modeNames = [...]string{
	ModeUser:      "user",
	ModeEnable:    "enable",
	ModeConfig:    "config",
	ModeInterface: "interface",
	ModeBTV:       "btv",
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is one of the five known modes.
func (m Mode) Valid() bool {
	return m >= ModeUser && m <= ModeBTV
}

// InterfaceID identifies a GPON board, the context of INTERFACE mode.
type InterfaceID struct {
	Frame int `json:"frame" yaml:"frame"`
	Board int `json:"board" yaml:"board"`
}

func (i InterfaceID) String() string {
	return fmt.Sprintf("%d/%d", i.Frame, i.Board)
}
