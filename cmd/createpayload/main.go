package main

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"time"
)

var (
	profile = flag.String("profile", "thermohygro", "profile to build a payload for")
	temp    = flag.Float64("temp", 21.5, "temperature in °C")
	hum     = flag.Float64("hum", 55.0, "relative humidity in %")
	bat     = flag.Int("bat", 3000, "battery level in mV")
	count   = flag.Uint("count", 123456, "pulse count")
	rate    = flag.Uint("rate", 42, "pulse rate")
	status  = flag.Uint("status", 0, "status flag byte")
)

func main() {
	flag.Parse()

	var b []byte
	switch *profile {
	case "thermohygro":
		b = make([]byte, 5)
		binary.LittleEndian.PutUint16(b, uint16(int16(*temp*100)))
		binary.LittleEndian.PutUint16(b[2:], uint16(*hum*100))
		b[4] = byte(*bat / 25)
	case "pulsecnt":
		b = make([]byte, 7)
		b[0] = byte(*status)
		binary.LittleEndian.PutUint32(b[1:], uint32(*count))
		binary.LittleEndian.PutUint16(b[5:], uint16(*rate))
	case "datalogger":
		// clock header followed by two readings
		b = make([]byte, 8)
		binary.LittleEndian.PutUint32(b, uint32(time.Now().Unix()))
		binary.LittleEndian.PutUint16(b[4:], uint16(int16(*temp*100)))
		binary.LittleEndian.PutUint16(b[6:], uint16(*hum*100))
	default:
		log.Fatalf("unknown profile %q", *profile)
	}

	fmt.Println("Data", hex.EncodeToString(b))
	fmt.Println("Base64", base64.StdEncoding.EncodeToString(b))
}
