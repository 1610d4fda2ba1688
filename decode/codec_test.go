package decode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesToInt(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want int64
	}{
		{"single byte", []byte{0x01}, 1},
		{"low byte first", []byte{0xFF, 0x00}, 255},
		{"high byte second", []byte{0x00, 0x01}, 256},
		{"zero", []byte{0x00}, 0},
		{"max uint16", []byte{0xFF, 0xFF}, 65535},
		{"three bytes", []byte{0x00, 0x00, 0x01}, 65536},
		{"four bytes", []byte{0x78, 0x56, 0x34, 0x12}, 0x12345678},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BytesToInt(tt.in))
		})
	}
}
