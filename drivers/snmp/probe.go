// Package snmp reads device health over SNMP, alongside the console session.
package snmp

import (
	"context"
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/nanoncore/olt-console/types"
	"github.com/nanoncore/olt-console/vendors/huawei"
)

// Probe queries the SNMP agent of an OLT. It is read-only; provisioning
// always goes through the console.
type Probe struct {
	config *types.EquipmentConfig
	snmp   *gosnmp.GoSNMP
}

// NewProbe creates a probe for config. SNMPCommunity must be set.
func NewProbe(config *types.EquipmentConfig) (*Probe, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if config.SNMPCommunity == "" {
		return nil, fmt.Errorf("snmp community is required")
	}

	port := config.SNMPPort
	if port <= 0 || port > 65535 {
		port = 161
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	version := gosnmp.Version2c
	if config.Metadata["snmp_version"] == "1" {
		version = gosnmp.Version1
	}

	return &Probe{
		config: config,
		snmp: &gosnmp.GoSNMP{
			Target:    config.Address,
			Port:      uint16(port), //nolint:gosec // validated above
			Community: config.SNMPCommunity,
			Version:   version,
			Timeout:   timeout,
			Retries:   2,
			MaxOids:   gosnmp.MaxOids,
		},
	}, nil
}

// Get fetches oids in one request. Values are normalized by pduValue.
func (p *Probe) Get(ctx context.Context, oids []string) (map[string]interface{}, error) {
	p.snmp.Context = ctx
	if p.snmp.Conn == nil {
		if err := p.snmp.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect SNMP: %w", err)
		}
	}

	result, err := p.snmp.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("SNMP GET failed: %w", err)
	}

	results := make(map[string]interface{}, len(result.Variables))
	for _, variable := range result.Variables {
		if v, ok := pduValue(variable); ok {
			results[variable.Name] = v
		}
	}
	return results, nil
}

// Status reads the system group and control board load.
func (p *Probe) Status(ctx context.Context) (*types.SystemStatus, error) {
	results, err := p.Get(ctx, huawei.StatusOIDs)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("status of %s: %w", p.config.Address, types.ErrNoData)
	}
	status := huawei.ParseSystemStatus(results)
	return &status, nil
}

// Close releases the UDP socket. It is safe to call on an unused probe.
func (p *Probe) Close() error {
	if p.snmp.Conn == nil {
		return nil
	}
	err := p.snmp.Conn.Close()
	p.snmp.Conn = nil
	return err
}

// pduValue converts a variable to the Go type the common SNMP helpers
// accept. Missing objects are dropped.
func pduValue(pdu gosnmp.SnmpPDU) (interface{}, bool) {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return nil, false
	case gosnmp.OctetString:
		b, ok := pdu.Value.([]byte)
		return b, ok
	case gosnmp.Integer:
		v, ok := pdu.Value.(int)
		return int64(v), ok
	case gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks:
		v, ok := pdu.Value.(uint32)
		if !ok {
			u, uok := pdu.Value.(uint)
			return uint64(u), uok
		}
		return uint64(v), true
	case gosnmp.Counter64:
		v, ok := pdu.Value.(uint64)
		return v, ok
	}
	return pdu.Value, pdu.Value != nil
}
