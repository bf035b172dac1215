package types

import "github.com/m-mizutani/goerr/v2"

// LinkStatus is the outcome tag of a chat linking attempt
type LinkStatus string

const (
	LinkStatusSuccess LinkStatus = "success"
	LinkStatusError   LinkStatus = "error"
)

// IsValid checks if the link status is valid
func (s LinkStatus) IsValid() bool {
	switch s {
	case LinkStatusSuccess, LinkStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of the link status
func (s LinkStatus) String() string {
	return string(s)
}

// ParseLinkStatus parses a string into a LinkStatus
func ParseLinkStatus(s string) (LinkStatus, error) {
	status := LinkStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid link status", goerr.V("status", s))
	}
	return status, nil
}
