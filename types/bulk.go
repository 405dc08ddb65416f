package types

// BulkResult contains the results of a bulk provisioning operation.
type BulkResult struct {
	// Succeeded is the count of successful operations
	Succeeded int `json:"succeeded"`

	// Failed is the count of failed operations
	Failed int `json:"failed"`

	// Results contains the result for each operation
	Results []BulkOpResult `json:"results"`
}

// BulkOpResult contains the result of a single bulk operation.
type BulkOpResult struct {
	// Serial is the ONU serial number
	Serial string `json:"serial"`

	// Success indicates if the operation succeeded
	Success bool `json:"success"`

	// Error contains the error message if failed
	Error string `json:"error,omitempty"`

	// ErrorCode is the normalized error code
	ErrorCode string `json:"error_code,omitempty"`

	// ONUID is the assigned ONU ID (if successful)
	ONUID int `json:"onu_id,omitempty"`

	// PONPort is the PON port used
	PONPort string `json:"pon_port,omitempty"`

	// ServicePorts is the number of service ports added
	ServicePorts int `json:"service_ports,omitempty"`
}

// Bulk error codes
const (
	ErrCodeValidation = "VALIDATION"
	ErrCodeTimeout    = "TIMEOUT"
	ErrCodeRejected   = "REJECTED"
	ErrCodeMode       = "MODE"
	ErrCodeUnknown    = "UNKNOWN"
)
