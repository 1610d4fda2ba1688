package ingest

import "time"

// UpstreamJSON is the JSON body of a Semtech PUSH_DATA packet.
type UpstreamJSON struct {
	Rxpk []RXPacket
}

// RXPacket is one received radio packet reported by the gateway, trimmed to
// the fields the ingest path consumes. The forwarder sends more (CRC status,
// SNR, concentrator channels), unknown fields are simply skipped.
type RXPacket struct {
	Time time.Time `json:"time"` // UTC time of pkt RX, us precision, ISO 8601 'compact' format
	Freq float64   // RX central frequency in MHz (unsigned float, Hz precision)
	Modu string    // Modulation identifier "LORA" or "FSK"
	Rssi int       // RSSI in dBm (signed integer, 1 dB precision)
	Size int       // RF packet payload size in bytes (unsigned integer)
	Data []byte    // Base64 encoded RF packet payload, padded

	Token []byte
	GwID  []byte
}
