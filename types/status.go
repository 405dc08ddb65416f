package types

import "time"

// SystemStatus is the out-of-band health snapshot read over SNMP.
type SystemStatus struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Uptime      time.Duration `json:"uptime"`

	// CPU and memory utilization of the control board, in percent.
	// Negative when the agent did not answer.
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}
