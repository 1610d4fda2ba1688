// Package profile holds the named decoding profiles mapping raw device
// payloads to measurement segments. Profiles register themselves at init
// time, devices select one by name through their lora integration.
package profile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
)

// Factory builds the segment list for one device record. Factories are pure,
// the same device record always yields the same transformer.
type Factory func(dev *device.Device, settings map[string]string) (decode.Transformer, error)

var (
	regMu    sync.RWMutex
	registry = make(map[string]Factory)
)

// Register stores a named profile factory, it panics on duplicate names.
func Register(name string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("profile %q already registered", name))
	}
	registry[name] = f
}

// Build resolves name and builds the transformer for dev. Unknown names fail
// with decode.UnsupportedProfileError.
func Build(name string, dev *device.Device) (decode.Transformer, error) {
	regMu.RLock()
	f, ok := registry[name]
	regMu.RUnlock()
	if !ok {
		return nil, &decode.UnsupportedProfileError{Name: name}
	}

	var settings map[string]string
	if integ := dev.LoraIntegration(); integ != nil {
		settings = integ.Settings
	}

	return f(dev, settings)
}

// Names returns the registered profile names, sorted.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()

	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// discardUnassigned drops measurements decoded from segments whose role could
// not be matched to a sensor on the device.
func discardUnassigned(ms []decode.Measurement) []decode.Measurement {
	out := ms[:0]
	for _, m := range ms {
		if m.SensorID != "" {
			out = append(out, m)
		}
	}
	return out
}
