package main

import (
	"context"
	"encoding/hex"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ttnsdk "github.com/TheThingsNetwork/go-app-sdk"
	"github.com/brocaar/lorawan"
	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
	log "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gobuffalo/packr/v2"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/namsral/flag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/akhenakh/sensortel"
	"github.com/akhenakh/sensortel/decode"
	devicebadger "github.com/akhenakh/sensortel/device/badger"
	"github.com/akhenakh/sensortel/ingest"
	"github.com/akhenakh/sensortel/profile"
	"github.com/akhenakh/sensortel/sink"
	storagebadger "github.com/akhenakh/sensortel/storage/badger"
	"github.com/akhenakh/sensortel/validate"
	"github.com/akhenakh/sensortel/web"
)

const appName = "sensorteld"

var (
	version = "no version from LDFLAGS"

	appID        = flag.String("appID", "akhtestapp", "The things network application ID")
	appAccessKey = flag.String("appAccessKey", "", "The things network access key")

	gwListenAddr = flag.String("gwListenAddr", ":1700", "UDP addr for the packet forwarder listener")
	nwkSKey      = flag.String("nwkSKey", "", "hex network session key for the GW listener")
	appSKey      = flag.String("appSKey", "", "hex application session key for the GW listener")

	influxURL    = flag.String("influxURL", "", "InfluxDB URL, empty disables the sink")
	influxToken  = flag.String("influxToken", "", "InfluxDB token")
	influxOrg    = flag.String("influxOrg", "sensortel", "InfluxDB organisation")
	influxBucket = flag.String("influxBucket", "telemetry", "InfluxDB bucket")

	dbPath = flag.String("dbPath", "sensortel.db", "DB path")

	httpMetricsPort = flag.Int("httpMetricsPort", 8888, "http port")
	httpAPIPort     = flag.Int("httpAPIPort", 9201, "http API port")
	healthPort      = flag.Int("healthPort", 6666, "grpc health port")

	httpServer        *http.Server
	grpcHealthServer  *grpc.Server
	httpMetricsServer *http.Server
)

func main() {
	flag.Parse()

	logger := log.NewJSONLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "caller", log.DefaultCaller, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "app", appName)
	logger = level.NewFilter(logger, level.AllowAll())

	stdlog.SetOutput(log.NewStdlibAdapter(logger))

	level.Info(logger).Log("msg", "Starting app", "version", version)

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)

	// catch termination
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Badger
	opts := badger.DefaultOptions(*dbPath)
	opts.Logger = nil
	opts.TableLoadingMode = options.FileIO

	bdb, err := badger.Open(opts)
	if err != nil {
		level.Error(logger).Log("msg", "failed to open DB", "error", err, "path", *dbPath)
		os.Exit(2)
	}

	store := &storagebadger.Store{DB: bdb}
	devices := &devicebadger.Repository{DB: bdb}

	engine := decode.NewEngine(logger, profile.Build, validate.Schema{})

	var sinks []sink.Sink
	if *influxURL != "" {
		influx := sink.NewInflux(logger, *influxURL, *influxToken, *influxOrg, *influxBucket)
		defer influx.Close()
		sinks = append(sinks, influx)
	}

	// gRPC Health Server
	healthServer := health.NewServer()
	g.Go(func() error {
		grpcHealthServer = grpc.NewServer()

		healthpb.RegisterHealthServer(grpcHealthServer, healthServer)

		haddr := fmt.Sprintf(":%d", *healthPort)
		hln, err := net.Listen("tcp", haddr)
		if err != nil {
			level.Error(logger).Log("msg", "gRPC Health server: failed to listen", "error", err)
			os.Exit(2)
		}
		level.Info(logger).Log("msg", fmt.Sprintf("gRPC health server serving at %s", haddr))
		return grpcHealthServer.Serve(hln)
	})

	// web server metrics
	g.Go(func() error {
		httpMetricsServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", *httpMetricsPort),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		level.Info(logger).Log("msg", fmt.Sprintf("HTTP Metrics server serving at :%d", *httpMetricsPort))

		// Register Prometheus metrics handler.
		http.Handle("/metrics", promhttp.Handler())

		if err := httpMetricsServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	s := sensortel.NewServer(appName, logger, engine, devices, store, sinks...)
	s.Health = healthServer

	// web server
	g.Go(func() error {
		ws := web.NewServer(appName, logger, store, devices, web.Config{})

		// box html templates
		box := packr.New("Root box", "./templates")

		ws.FileHandler = http.FileServer(box)
		ws.Box = box

		r := mux.NewRouter()
		r.HandleFunc("/api/devices", ws.DevicesQuery)
		r.HandleFunc("/api/data/{key}", ws.DataQuery)
		r.HandleFunc("/api/device/{key}", ws.DeviceQuery)
		r.PathPrefix("/").Handler(
			handlers.CORS(
				handlers.AllowedOrigins([]string{"*"}))(ws))

		httpServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", *httpAPIPort),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			Handler:      handlers.CompressHandler(r),
		}
		level.Info(logger).Log("msg", fmt.Sprintf("HTTP API server serving at :%d", *httpAPIPort))

		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	// packet forwarder UDP listener
	var gwServer *ingest.Server
	if *gwListenAddr != "" {
		var cfg ingest.Config
		if err := decodeKey(&cfg.NwkSKey, *nwkSKey); err != nil {
			level.Error(logger).Log("msg", "invalid nwkSKey", "error", err)
			os.Exit(2)
		}
		if err := decodeKey(&cfg.AppSKey, *appSKey); err != nil {
			level.Error(logger).Log("msg", "invalid appSKey", "error", err)
			os.Exit(2)
		}

		gwServer = ingest.NewServer(appName, logger, cfg, engine, devices, store, sinks...)
		gwServer.Health = healthServer

		if err := gwServer.StartListener(ctx, *gwListenAddr); err != nil {
			level.Error(logger).Log("msg", "failed to start GW listener", "error", err)
			os.Exit(2)
		}
	}

	// TTN client subscriptions
	g.Go(func() error {
		logger := log.With(logger, "component", "ttnclient")
		config := ttnsdk.NewCommunityConfig(appName)
		config.ClientVersion = version

		// Create a new SDK client for the application
		client := config.NewClient(*appID, *appAccessKey)

		// Make sure the client is closed before the function returns
		// In your application, you should call this before the application shuts down
		defer client.Close()

		// Start Publish/Subscribe client (MQTT)
		pubsub, err := client.PubSub()
		if err != nil {
			level.Error(logger).Log("msg", "can't get pub/sub", "error", err)
			return err
		}

		// Make sure the pubsub client is closed before the function returns
		// In your application, you should call this before the application shuts down
		defer pubsub.Close()

		// Get a publish/subscribe client for all devices
		allDevicesPubSub := pubsub.AllDevices()

		// Make sure the pubsub client is closed before the function returns
		// In your application, you will probably call this before the application shuts down
		// This also stops existing subscriptions, in case you forgot to unsubscribe
		defer allDevicesPubSub.Close()

		// Subscribe to msgs
		msgs, err := allDevicesPubSub.SubscribeUplink()
		if err != nil {
			level.Error(logger).Log("msg", "can't subscribe to events", "error", err)
			return err
		}
		level.Info(logger).Log("msg", "subscribed to uplink messages")

		healthServer.SetServingStatus(fmt.Sprintf("grpc.health.v1.%s", appName), healthpb.HealthCheckResponse_SERVING)

		for {
			select {
			case <-ctx.Done():
				// Unsubscribe from events
				level.Info(logger).Log("msg", "unsubscribing to uplink messages")

				if err = allDevicesPubSub.UnsubscribeEvents(); err != nil {
					level.Error(logger).Log("msg", "can't unsubscribe from events", "error", err)
					return err
				}
				return nil
			case msg := <-msgs:
				if msg == nil {
					break
				}
				s.HandleMessage(ctx, msg)
			}

		}
	})

	select {
	case <-interrupt:
		cancel()
		break
	case <-ctx.Done():
		break
	}

	level.Warn(logger).Log("msg", "received shutdown signal")

	healthServer.SetServingStatus(fmt.Sprintf("grpc.health.v1.%s", appName), healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpMetricsServer != nil {
		_ = httpMetricsServer.Shutdown(shutdownCtx)
	}

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if gwServer != nil {
		gwServer.Close()
	}

	if grpcHealthServer != nil {
		grpcHealthServer.GracefulStop()
	}

	err = g.Wait()
	if err != nil {
		level.Error(logger).Log("msg", "server returning an error", "error", err)
		os.Exit(2)
	}

}

// decodeKey fills key from an hex string, an empty string leaves the key zeroed.
func decodeKey(key *lorawan.AES128Key, s string) error {
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != 16 {
		return fmt.Errorf("expected a 16 bytes key, got %d", len(b))
	}
	copy(key[:], b)
	return nil
}
