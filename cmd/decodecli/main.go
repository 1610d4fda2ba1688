package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"

	"github.com/akhenakh/sensortel/decode"
	"github.com/akhenakh/sensortel/device"
	"github.com/akhenakh/sensortel/profile"
	"github.com/akhenakh/sensortel/validate"
)

var (
	devicePath = flag.String("device", "", "path to a device record JSON file")
	payload    = flag.String("payload", "", "hex payload to decode")
	b64        = flag.String("b64", "", "base64 payload to decode, alternative to -payload")
	stamp      = flag.Bool("stamp", true, "stamp measurements with the current time")
)

func main() {
	flag.Parse()

	if *devicePath == "" {
		log.Fatalf("missing -device, registered profiles: %s", strings.Join(profile.Names(), ", "))
	}

	db, err := ioutil.ReadFile(*devicePath)
	if err != nil {
		log.Fatal(err)
	}

	var dev device.Device
	if err := json.Unmarshal(db, &dev); err != nil {
		log.Fatal(err)
	}

	e := decode.NewEngine(kitlog.NewLogfmtLogger(os.Stderr), profile.Build, validate.Schema{})

	var ts time.Time
	if *stamp {
		ts = time.Now().UTC()
	}

	var ms []decode.Measurement
	switch {
	case *payload != "":
		buf, err := hex.DecodeString(*payload)
		if err != nil {
			log.Fatal(err)
		}
		ms, err = e.Decode(context.Background(), buf, &dev, ts)
		if err != nil {
			log.Fatal(err)
		}
	case *b64 != "":
		ms, err = e.DecodeBase64(context.Background(), *b64, &dev, ts)
		if err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatal("missing -payload or -b64")
	}

	out, err := json.MarshalIndent(ms, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
