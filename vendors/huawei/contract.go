package huawei

import (
	"regexp"
	"strconv"
	"strings"
)

// Contract holds the reply markers that tell success from failure for the
// provisioning commands. They differ between firmware releases, so they are
// data rather than code.
type Contract struct {
	// OnuAddedPhrase must appear in the reply of `ont add`.
	OnuAddedPhrase string

	// OnuIDPattern captures the ONT ID assigned by `ont add`.
	OnuIDPattern *regexp.Regexp

	// FailureMarker in a `service-port` reply means the device rejected it.
	FailureMarker string
}

// DefaultContract matches MA5600T/MA5800 firmware.
var DefaultContract = Contract{
	OnuAddedPhrase: "Number of ONTs that can be added: 1, success: 1",
	OnuIDPattern:   regexp.MustCompile(`ONTID\s*:\s*(\d+)`),
	FailureMarker:  "Failure",
}

// OnuAdded reports whether an `ont add` reply shows the ONT was registered.
// A reply without the phrase is a failure, even if it has no error text.
func (c Contract) OnuAdded(output string) bool {
	return strings.Contains(output, c.OnuAddedPhrase)
}

// AssignedOnuID extracts the ONT ID from an `ont add` reply.
func (c Contract) AssignedOnuID(output string) (int, bool) {
	m := c.OnuIDPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ServicePortRejected reports whether a `service-port` reply carries the
// failure marker.
func (c Contract) ServicePortRejected(output string) bool {
	return strings.Contains(output, c.FailureMarker)
}
