package common

import "strings"

// SNMPInvalidValue is what SmartAX agents return for a reading they do not
// have, such as an absent board.
const SNMPInvalidValue int64 = 2147483647

// GetSNMPResult looks up oid in a GET result. gosnmp reports names with a
// leading dot while OID constants are written without one, so both forms
// are tried.
func GetSNMPResult(results map[string]interface{}, oid string) (interface{}, bool) {
	if results == nil {
		return nil, false
	}
	if val, ok := results[oid]; ok {
		return val, true
	}
	if strings.HasPrefix(oid, ".") {
		val, ok := results[strings.TrimPrefix(oid, ".")]
		return val, ok
	}
	val, ok := results["."+oid]
	return val, ok
}

// ParseIntSNMPValue extracts an int64 from the numeric types gosnmp decodes
// integers, counters, gauges and time ticks into.
func ParseIntSNMPValue(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// ParseStringSNMPValue extracts an OCTET STRING, which gosnmp returns as []byte.
func ParseStringSNMPValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}
