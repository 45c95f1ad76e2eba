package host

import (
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zap-engine/internal/config"
	"zap-engine/internal/engine"
)

// Metrics with bounded cardinality: per-section gauges, never per-entity
// labels.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_tick_duration_seconds",
		Help:    "Time spent in one fixed step",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.016, 0.033},
	})

	entityCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_entity_count",
		Help: "Live entities in the scene",
	})

	particleCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_particle_count",
		Help: "Live particles",
	})

	sectionCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_wire_section_count",
		Help: "Per-frame wire section counts",
	}, []string{"section"}) // bounded: instances, effects, sdf, vectors, batches, lights, sounds, events

	framesTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_frames_truncated_total",
		Help: "Frames where at least one section clamped at capacity",
	})

	inputsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "host_inputs_rejected_total",
		Help: "Host input events dropped by the rate limiter",
	})

	presenterClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "host_presenter_clients",
		Help: "Connected presenter websocket clients",
	})

	framesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "host_frames_sent_total",
		Help: "Frames broadcast to presenter clients",
	})
)

// ObserveTick records one tick's stats into the metrics.
func ObserveTick(s engine.TickStats) {
	tickDuration.Observe(s.Duration.Seconds())
	entityCount.Set(float64(s.Entities))
	particleCount.Set(float64(s.Particles))
	sectionCount.WithLabelValues("instances").Set(float64(s.Instances))
	sectionCount.WithLabelValues("effects").Set(float64(s.EffectsVerts))
	sectionCount.WithLabelValues("sdf").Set(float64(s.SDFInstances))
	sectionCount.WithLabelValues("vectors").Set(float64(s.VectorVerts))
	sectionCount.WithLabelValues("batches").Set(float64(s.LayerBatches))
	sectionCount.WithLabelValues("lights").Set(float64(s.Lights))
	sectionCount.WithLabelValues("sounds").Set(float64(s.Sounds))
	sectionCount.WithLabelValues("events").Set(float64(s.Events))
	if s.Truncated {
		framesTruncated.Inc()
	}
}

// StartDebugServer starts the internal observability server with pprof and
// the prometheus endpoint. It MUST stay on localhost.
func StartDebugServer(cfg config.ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()
	log.Printf("📊 Debug server on http://%s (pprof + metrics)", cfg.ListenAddr)
	return nil
}
