package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log"
	"net"
	"time"

	"github.com/brocaar/lorawan"
)

var (
	addr    = flag.String("addr", "localhost:1700", "Addr to sent the packet to")
	devAddr = flag.String("devAddr", "01020304", "hex device address")
	nwkSKey = flag.String("nwkSKey", "0102030405060708090a0b0c0d0e0f10", "hex network session key")
	appSKey = flag.String("appSKey", "100f0e0d0c0b0a090807060504030201", "hex application session key")
	payload = flag.String("payload", "66087c1578", "hex application payload")
	fcnt    = flag.Uint("fcnt", 0, "uplink frame counter")
)

func main() {
	flag.Parse()

	b, err := hex.DecodeString(*payload)
	if err != nil {
		log.Fatal(err)
	}

	frame, err := buildUplink(b)
	if err != nil {
		log.Fatal(err)
	}

	rxpk := map[string]interface{}{
		"rxpk": []map[string]interface{}{{
			"time": time.Now().UTC().Format(time.RFC3339Nano),
			"chan": 2,
			"rfch": 0,
			"freq": 866.349812,
			"stat": 1,
			"modu": "LORA",
			"codr": "4/6",
			"rssi": -35,
			"lsnr": 5.1,
			"size": len(frame),
			"data": base64.StdEncoding.EncodeToString(frame),
		}},
	}
	jsonb, err := json.Marshal(rxpk)
	if err != nil {
		log.Fatal(err)
	}

	raddr, err := net.ResolveUDPAddr("udp", *addr)
	if err != nil {
		log.Fatal(err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		log.Fatal(err)
	}

	//  Bytes  | Function
	//:------:|---------------------------------------------------------------------
	// 0      | protocol version = 2
	// 1-2    | random token
	// 3      | PUSH_DATA identifier 0x00
	// 4-11   | Gateway unique identifier (MAC address)
	// 12-end | JSON object, starting with {, ending with }, see section 4

	p := []byte{2, 'A', 'B', 0x00, 0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0xDE, 0xAD, 0xBE}

	p = append(p, jsonb...)
	_, err = conn.Write(p)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("sent", len(p), "bytes")
}

// buildUplink crafts an encrypted unconfirmed data up frame carrying b.
func buildUplink(b []byte) ([]byte, error) {
	var da lorawan.DevAddr
	db, err := hex.DecodeString(*devAddr)
	if err != nil {
		return nil, err
	}
	copy(da[:], db)

	var nk, ak lorawan.AES128Key
	nb, err := hex.DecodeString(*nwkSKey)
	if err != nil {
		return nil, err
	}
	copy(nk[:], nb)
	ab, err := hex.DecodeString(*appSKey)
	if err != nil {
		return nil, err
	}
	copy(ak[:], ab)

	fport := uint8(1)
	phy := lorawan.PHYPayload{
		MHDR: lorawan.MHDR{
			MType: lorawan.UnconfirmedDataUp,
			Major: lorawan.LoRaWANR1,
		},
		MACPayload: &lorawan.MACPayload{
			FHDR: lorawan.FHDR{
				DevAddr: da,
				FCnt:    uint32(*fcnt),
			},
			FPort:      &fport,
			FRMPayload: []lorawan.Payload{&lorawan.DataPayload{Bytes: b}},
		},
	}

	if err := phy.EncryptFRMPayload(ak); err != nil {
		return nil, err
	}
	if err := phy.SetUplinkDataMIC(lorawan.LoRaWAN1_0, 0, 0, 0, nk, lorawan.AES128Key{}); err != nil {
		return nil, err
	}

	return phy.MarshalBinary()
}
