// Package sink forwards decoded measurements to external time series
// backends, in addition to the primary store.
package sink

import "github.com/akhenakh/sensortel/decode"

// Sink receives every successfully decoded measurement batch.
type Sink interface {
	Write(deviceID string, ms []decode.Measurement) error
	Close()
}
