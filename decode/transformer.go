package decode

// Hook post-processes the full in-progress measurement sequence once per
// decode, after every segment has been decoded. It may remove and annotate
// entries but never reorders them.
type Hook func(ms []Measurement) []Measurement

// Segment describes one fixed length byte range of a payload: how many bytes
// it consumes, which sensor the decoded value is attributed to and how the
// raw bytes become a value.
type Segment struct {
	// Len is the number of bytes the segment consumes.
	Len int

	// SensorID receives the decoded value.
	SensorID string

	// Decode turns the sliced bytes into a value. Defaults to BytesToInt
	// when nil.
	Decode func(b []byte) interface{}

	// OnResult is invoked once per decode with the full measurement
	// sequence, in segment order.
	OnResult Hook
}

// Transformer is the ordered segment list a profile declares for a device.
// The byte lengths are static per profile, their sum must equal the payload
// length exactly.
type Transformer []Segment

// Size returns the total number of bytes the transformer consumes.
func (t Transformer) Size() int {
	var n int
	for _, s := range t {
		n += s.Len
	}
	return n
}
