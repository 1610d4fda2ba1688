package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ViaLabel       = "via"
	ReceivedViaGW  = "GW"
	ReceivedViaTTN = "TTN"
)

var (
	MsgReceivedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sensortel",
			Name:      "received_msg_total",
			Help:      "The total number of received msg",
		},
		[]string{ViaLabel},
	)

	DecodedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sensortel",
			Name:      "decoded_msg_total",
			Help:      "The total number of successfully decoded msg",
		},
	)

	DecodeErrorCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sensortel",
			Name:      "decode_error_total",
			Help:      "The total number of decode failures",
		},
	)

	InsertCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sensortel",
			Name:      "insert_total",
			Help:      "The total number of inserts in db",
		},
	)
)
