// Package metrics provides Prometheus metrics for session event recording.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the event recorder.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Event log writer
	recordsAppended *prometheus.CounterVec
	bytesAppended   prometheus.Counter
	appendLatency   prometheus.Histogram
	appendErrors    prometheus.Counter
	logsOpened      prometheus.Counter

	// Event log reader
	recordsDecoded *prometheus.CounterVec
	decodeErrors   *prometheus.CounterVec

	// Recorder
	eventsEmitted    *prometheus.CounterVec
	eventsSuppressed prometheus.Counter

	// Recorder queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Writer worker
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Consumers
	strokesCompleted  prometheus.Counter
	metadataExtracted prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "syncevents",
		subsystem:        "recorder",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recordsAppended = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("records_appended_total"),
		Help:        "Total number of records appended to the event log, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.bytesAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("bytes_appended_total"),
		Help:        "Total number of bytes appended to the event log",
		ConstLabels: labels,
	})

	m.appendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("append_latency_milliseconds"),
		Help:        "Latency of a durable append (write, flush and sync) in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.appendErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("append_errors_total"),
		Help:        "Total number of failed appends",
		ConstLabels: labels,
	})

	m.logsOpened = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("logs_opened_total"),
		Help:        "Total number of event logs opened for appending",
		ConstLabels: labels,
	})

	m.recordsDecoded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("records_decoded_total"),
		Help:        "Total number of records decoded from event logs, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.decodeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("decode_errors_total"),
		Help:        "Total number of lines that failed to decode, by error class",
		ConstLabels: labels,
	}, []string{"class"})

	m.eventsEmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("events_emitted_total"),
		Help:        "Total number of events accepted by the recorder, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.eventsSuppressed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("events_suppressed_total"),
		Help:        "Total number of repeated media changes dropped by the recorder",
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Current number of events waiting to be appended",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_capacity"),
		Help:        "Maximum queue capacity",
		ConstLabels: labels,
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueue_total"),
		Help:        "Total number of events enqueued",
		ConstLabels: labels,
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_dequeue_total"),
		Help:        "Total number of events dequeued",
		ConstLabels: labels,
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueue_errors_total"),
		Help:        "Total number of events rejected by a full or stopped queue",
		ConstLabels: labels,
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_processing_latency_milliseconds"),
		Help:        "Time from dequeue to durable append in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_errors_total"),
		Help:        "Total number of events the writer worker failed to append",
		ConstLabels: labels,
	})

	m.strokesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("strokes_completed_total"),
		Help:        "Total number of annotation strokes closed by a PaintEnd",
		ConstLabels: labels,
	})

	m.metadataExtracted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("metadata_extracted_total"),
		Help:        "Total number of media changes turned into path metadata",
		ConstLabels: labels,
	})
}

// RecordAppend records one successful append of size bytes.
func RecordAppend(kind string, size int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.recordsAppended.WithLabelValues(kind).Inc()
	globalManager.bytesAppended.Add(float64(size))
	globalManager.appendLatency.Observe(latencyMs)
}

// RecordAppendError increments the failed append counter.
func RecordAppendError() {
	globalManager.appendErrors.Inc()
}

// RecordLogOpened increments the opened log counter.
func RecordLogOpened() {
	globalManager.logsOpened.Inc()
}

// RecordDecoded increments the decoded records counter for kind.
func RecordDecoded(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.recordsDecoded.WithLabelValues(kind).Inc()
}

// RecordDecodeError increments the decode error counter for class.
func RecordDecodeError(class string) {
	globalManager.decodeErrors.WithLabelValues(class).Inc()
}

// RecordEventEmitted increments the accepted events counter for kind.
func RecordEventEmitted(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.eventsEmitted.WithLabelValues(kind).Inc()
}

// RecordEventSuppressed increments the dropped repeat counter.
func RecordEventSuppressed() {
	globalManager.eventsSuppressed.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordStrokeCompleted increments the completed stroke counter.
func RecordStrokeCompleted() {
	globalManager.strokesCompleted.Inc()
}

// RecordMetadataExtracted increments the extracted metadata counter.
func RecordMetadataExtracted() {
	globalManager.metadataExtracted.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteText renders every metric of the custom registry in the Prometheus
// text exposition format.
func WriteText(w io.Writer) error {
	families, err := customRegistry.Gather()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("%w: %w", ErrGatherFailed, err)
		}
	}
	return nil
}
