package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof" // register handlers
	"regexp"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (b *Bot) api(ctx context.Context, listen string, mux *http.ServeMux, metrics []prometheus.Collector) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(
		collectors.WithGoCollectorMemStatsMetricsDisabled(),
		collectors.WithGoCollectorRuntimeMetrics(
			collectors.GoRuntimeMetricsRule{
				Matcher: regexp.MustCompile(`^(/gc/gogc:percent|/gc/gomemlimit:bytes|/gc/heap/allocs:bytes|/gc/heap/allocs:objects|/gc/heap/goal:bytes|/memory/classes/heap/released:bytes|/memory/classes/heap/stacks:bytes|/memory/classes/total:bytes|/sched/gomaxprocs:threads|/sched/goroutines:goroutines|/sched/latencies:seconds)$`),
			},
		),
	))
	reg.MustRegister(metrics...)
	opts := promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, opts))
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("GET /healthz", b.apiHealth)
	mux.HandleFunc("GET /api/active", b.apiActive)
	mux.HandleFunc("POST /api/bg", b.apiBgAdd)
	l, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("couldn't start API server: %w", err)
	}
	srv := http.Server{
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	go func() {
		slog.InfoContext(ctx, "HTTP API server", slog.Any("addr", l.Addr()))
		err := srv.Serve(l)
		if err == http.ErrServerClosed {
			return
		}
		slog.ErrorContext(ctx, "HTTP API server closed", slog.Any("err", err))
	}()
	<-ctx.Done()
	// The context is now done, so it is obviously the wrong choice for
	// managing the shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func jsonerror(w http.ResponseWriter, status int, msg string) {
	v := struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{
		Error:  msg,
		Status: status,
	}
	b, err := json.Marshal(&v)
	if err != nil {
		panic(err)
	}
	w.WriteHeader(status)
	w.Write(b)
}

func (b *Bot) apiHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !b.ready() {
		jsonerror(w, http.StatusServiceUnavailable, "not connected to Discord")
		return
	}
	w.Write([]byte(`{"status":200}`))
}

func (b *Bot) apiActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slog.With(slog.String("api", "active"), slog.Any("trace", uuid.New()))
	log.InfoContext(ctx, "handle", slog.String("route", r.Pattern), slog.String("remote", r.RemoteAddr))
	w.Header().Set("Content-Type", "application/json")
	u := struct {
		Total  int            `json:"total"`
		Kinds  map[string]int `json:"kinds"`
		Status int            `json:"status"`
	}{
		Total:  b.robo.Active.Len(),
		Kinds:  b.robo.Active.Kinds(),
		Status: http.StatusOK,
	}
	if err := json.MarshalWrite(w, &u, json.Deterministic(true)); err != nil {
		log.ErrorContext(ctx, "write response failed", slog.Any("err", err))
	}
}

// apiBgAdd adds a stream of JSON mapset IDs to the background game pool.
func (b *Bot) apiBgAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slog.With(slog.String("api", "bgadd"), slog.Any("trace", uuid.New()))
	log.InfoContext(ctx, "handle", slog.String("route", r.Pattern), slog.String("remote", r.RemoteAddr))
	defer log.InfoContext(ctx, "done")
	w.Header().Set("Content-Type", "application/json")
	d := jsontext.NewDecoder(r.Body)
	var ids []int64
	for {
		var id int64
		err := json.UnmarshalDecode(d, &id)
		if err == io.EOF {
			break
		}
		if err != nil || id <= 0 {
			log.WarnContext(ctx, "bad mapset id", slog.Int64("id", id), slog.Any("err", err))
			jsonerror(w, http.StatusBadRequest, "mapset IDs must be positive integers")
			return
		}
		ids = append(ids, id)
	}
	n, err := b.robo.Store.AddBgMapsets(ctx, ids)
	if err != nil {
		log.ErrorContext(ctx, "couldn't add mapsets", slog.Any("err", err))
		jsonerror(w, http.StatusInternalServerError, "couldn't add mapsets")
		return
	}
	log.InfoContext(ctx, "added mapsets", slog.Int("given", len(ids)), slog.Int("added", n))
	u := struct {
		Added  int `json:"added"`
		Status int `json:"status"`
	}{
		Added:  n,
		Status: http.StatusOK,
	}
	if err := json.MarshalWrite(w, &u); err != nil {
		log.ErrorContext(ctx, "write response failed", slog.Any("err", err))
	}
}
