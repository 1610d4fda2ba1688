package device

import "errors"

// ErrNotFound is returned when no device exists for the requested id.
var ErrNotFound = errors.New("device not found")

// Repository gives access to the provisioned devices.
type Repository interface {
	Get(id string) (*Device, error)
	Put(d *Device) error
	Keys() ([]string, error)
}
