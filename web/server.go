package web

import (
	"encoding/json"
	"html/template"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gobuffalo/packr/v2"
	"github.com/gorilla/mux"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/akhenakh/sensortel/device"
	"github.com/akhenakh/sensortel/storage"
)

var (
	pathTpl = []string{"index.html"}
)

type Server struct {
	appName     string
	logger      log.Logger
	store       storage.Store
	devices     device.Repository
	config      Config
	FileHandler http.Handler
	Box         *packr.Box
}

type Config struct {
	// MaxResults caps the number of measurements returned per data query
	MaxResults int
}

func NewServer(appName string, logger log.Logger, store storage.Store, devices device.Repository, cfg Config) *Server {
	logger = log.With(logger, "component", "web")
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	return &Server{
		appName: appName,
		logger:  logger,
		store:   store,
		devices: devices,
		config:  cfg,
	}
}

// startSpan extracts an eventual wire context from the request and starts a
// server span for the operation.
func (s *Server) startSpan(operationName string, r *http.Request) opentracing.Span {
	wireContext, err := opentracing.GlobalTracer().Extract(
		opentracing.HTTPHeaders,
		opentracing.HTTPHeadersCarrier(r.Header))
	if err != nil {
		level.Debug(s.logger).Log("msg", "can't find a span", "error", err)
	}

	return opentracing.StartSpan(operationName, ext.RPCServerOption(wireContext))
}

// DataQuery returns the most recent measurements for a device.
func (s *Server) DataQuery(w http.ResponseWriter, r *http.Request) {
	serverSpan := s.startSpan("/api/data", r)
	defer serverSpan.Finish()

	vars := mux.Vars(r)

	w.Header().Set("Content-Type", "application/json")

	recs, err := s.store.GetAll(vars["key"], s.config.MaxResults)
	if err != nil {
		level.Error(s.logger).Log("msg", "can't query GetAll", "key", vars["key"], "error", err)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}

	res := make([]map[string]interface{}, len(recs))
	for i, rec := range recs {
		jsresp := make(map[string]interface{}, len(rec.Fields)+2)
		for k, v := range rec.Fields {
			jsresp[k] = v
		}
		jsresp["device_id"] = rec.DeviceID
		jsresp["time"] = rec.Time

		res[i] = jsresp
	}

	b, err := json.Marshal(res)
	if err != nil {
		level.Error(s.logger).Log("msg", "can't marshal json", "key", vars["key"], "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	w.Write(b)
}

// DevicesQuery lists the devices seen by the store.
func (s *Server) DevicesQuery(w http.ResponseWriter, r *http.Request) {
	serverSpan := s.startSpan("/api/devices", r)
	defer serverSpan.Finish()

	w.Header().Set("Content-Type", "application/json")

	keys, err := s.store.Keys()
	if err != nil {
		level.Error(s.logger).Log("msg", "can't query Keys", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}

	b, err := json.Marshal(keys)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	w.Write(b)
}

// DeviceQuery returns the provisioning record of a device.
func (s *Server) DeviceQuery(w http.ResponseWriter, r *http.Request) {
	serverSpan := s.startSpan("/api/device", r)
	defer serverSpan.Finish()

	vars := mux.Vars(r)

	w.Header().Set("Content-Type", "application/json")

	dev, err := s.devices.Get(vars["key"])
	if err == device.ErrNotFound {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		level.Error(s.logger).Log("msg", "can't query device", "key", vars["key"], "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}

	b, err := json.Marshal(dev)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	w.Write(b)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	if path == "" {
		path = "index.html"
	}

	p := map[string]interface{}{
		"AppName": s.appName,
	}

	// serve file normally
	if !isTpl(path) {
		s.FileHandler.ServeHTTP(w, r)
		return
	}

	tmplt := template.New(path)

	sf, err := s.Box.FindString(path)
	if err != nil {
		level.Error(s.logger).Log("msg", "can't open template", "error", err)
		http.Error(w, err.Error(), 500)
		return
	}

	tmplt, err = tmplt.Parse(sf)
	if err != nil {
		http.Error(w, err.Error(), 500)
		level.Error(s.logger).Log("msg", "can't parse template", "error", err)
		return
	}

	ctype := mime.TypeByExtension(filepath.Ext(path))
	w.Header().Set("Content-Type", ctype)

	tmplt.Execute(w, p)
}

func isTpl(path string) bool {
	for _, p := range pathTpl {
		if p == path {
			return true
		}
	}
	return false
}
