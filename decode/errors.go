package decode

import "fmt"

// MissingConfigurationError is returned when a device record carries no
// decoding profile integration.
type MissingConfigurationError struct {
	DeviceID string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("device %s has no decoding profile configured", e.DeviceID)
}

// UnsupportedProfileError is returned when the named profile is not
// registered.
type UnsupportedProfileError struct {
	Name string
}

func (e *UnsupportedProfileError) Error() string {
	return fmt.Sprintf("unsupported decoding profile %q", e.Name)
}

// LengthMismatchError is returned when the payload length does not equal the
// total declared by the profile's segments. Decoding never truncates or pads.
type LengthMismatchError struct {
	Expected int
	Got      int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("payload length mismatch: expected %d bytes, got %d", e.Expected, e.Got)
}
