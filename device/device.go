package device

// Sensor describes one logical sensor registered on a device.
// The descriptive attributes are free-form strings coming from the
// provisioning UI, profiles match on them case-insensitively.
type Sensor struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// Attr returns the descriptive attribute named name, "" for unknown names.
func (s Sensor) Attr(name string) string {
	switch name {
	case "title":
		return s.Title
	case "type":
		return s.Type
	case "unit":
		return s.Unit
	}
	return ""
}

// Integration holds the per-channel decoding configuration of a device.
type Integration struct {
	Profile  string            `json:"profile"`
	Settings map[string]string `json:"settings,omitempty"`
}

// LoraChannel is the integration channel carrying the payload decoding profile.
const LoraChannel = "lora"

// Device is the provisioning record for a field device.
// The decoding engine only reads it.
type Device struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name,omitempty"`
	Sensors      []Sensor               `json:"sensors"`
	Integrations map[string]Integration `json:"integrations,omitempty"`
}

// LoraIntegration returns the lora decoding integration, nil when the device
// has none configured.
func (d *Device) LoraIntegration() *Integration {
	if d.Integrations == nil {
		return nil
	}
	i, ok := d.Integrations[LoraChannel]
	if !ok {
		return nil
	}
	return &i
}
