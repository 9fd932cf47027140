package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

type requestLabel struct {
	method string
	path   string
	status string
}

// Recorder aggregates in-memory counters for HTTP requests, outbound platform
// calls, and resolution outcomes. It coordinates concurrent writers via a
// RWMutex and renders Prometheus text exposition on demand.
type Recorder struct {
	mu                 sync.RWMutex
	requestCount       map[requestLabel]uint64
	requestDuration    map[requestLabel]time.Duration
	platformAttempts   map[string]uint64
	platformFailures   map[string]uint64
	resolutionOutcomes map[string]uint64
	playbackCreated    uint64
	deletions          map[string]uint64
}

var defaultRecorder = New()

// New constructs an empty Recorder with initialized backing maps so callers
// can immediately record metrics without additional setup.
func New() *Recorder {
	return &Recorder{
		requestCount:       make(map[requestLabel]uint64),
		requestDuration:    make(map[requestLabel]time.Duration),
		platformAttempts:   make(map[string]uint64),
		platformFailures:   make(map[string]uint64),
		resolutionOutcomes: make(map[string]uint64),
		deletions:          make(map[string]uint64),
	}
}

// Default returns the singleton Recorder shared by packages that do not
// require a custom instrumentation pipeline.
func Default() *Recorder {
	return defaultRecorder
}

// ObserveRequest normalizes the request label set and accumulates totals for
// request count and cumulative duration by HTTP method, normalized path, and
// status code.
func (r *Recorder) ObserveRequest(method, path string, status int, duration time.Duration) {
	label := requestLabel{
		method: strings.ToUpper(method),
		path:   normalizePath(path),
		status: fmt.Sprintf("%d", status),
	}
	r.mu.Lock()
	r.requestCount[label]++
	r.requestDuration[label] += duration
	r.mu.Unlock()
}

// ObservePlatformAttempt records an outbound platform operation keyed by name
// (e.g. "get_asset", "create_playback_id", "delete_asset").
func (r *Recorder) ObservePlatformAttempt(operation string) {
	op := normalizeName(operation)
	r.mu.Lock()
	r.platformAttempts[op]++
	r.mu.Unlock()
}

// ObservePlatformFailure records a failed platform operation. 404s absorbed
// during identifier disambiguation are not failures and are not recorded here.
func (r *Recorder) ObservePlatformFailure(operation string) {
	op := normalizeName(operation)
	r.mu.Lock()
	r.platformFailures[op]++
	r.mu.Unlock()
}

// ObserveResolution records the terminal outcome of one identifier resolution.
func (r *Recorder) ObserveResolution(outcome string) {
	normalized := normalizeName(outcome)
	r.mu.Lock()
	r.resolutionOutcomes[normalized]++
	r.mu.Unlock()
}

// PlaybackIDCreated counts playback IDs materialized on demand.
func (r *Recorder) PlaybackIDCreated() {
	r.mu.Lock()
	r.playbackCreated++
	r.mu.Unlock()
}

// ObserveDeletion records one asset deletion by outcome ("deleted" or
// "already_deleted").
func (r *Recorder) ObserveDeletion(outcome string) {
	normalized := normalizeName(outcome)
	r.mu.Lock()
	r.deletions[normalized]++
	r.mu.Unlock()
}

// PlatformCounts returns copies of platform attempt and failure counters for
// testing and reporting purposes.
func (r *Recorder) PlatformCounts() (attempts map[string]uint64, failures map[string]uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attempts = make(map[string]uint64, len(r.platformAttempts))
	for k, v := range r.platformAttempts {
		attempts[k] = v
	}
	failures = make(map[string]uint64, len(r.platformFailures))
	for k, v := range r.platformFailures {
		failures[k] = v
	}
	return attempts, failures
}

// ResolutionCounts returns a copy of the resolution outcome counters.
func (r *Recorder) ResolutionCounts() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	outcomes := make(map[string]uint64, len(r.resolutionOutcomes))
	for k, v := range r.resolutionOutcomes {
		outcomes[k] = v
	}
	return outcomes
}

// Reset clears all counters on the recorder. It is intended for test setups.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestCount = make(map[requestLabel]uint64)
	r.requestDuration = make(map[requestLabel]time.Duration)
	r.platformAttempts = make(map[string]uint64)
	r.platformFailures = make(map[string]uint64)
	r.resolutionOutcomes = make(map[string]uint64)
	r.playbackCreated = 0
	r.deletions = make(map[string]uint64)
}

// Handler exposes the Recorder as an http.Handler that writes Prometheus text
// exposition data with the appropriate content type.
func (r *Recorder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.Write(w)
	})
}

// Write renders the Recorder's metrics in Prometheus text format, sorting
// label sets to provide stable output for scrapes and tests.
func (r *Recorder) Write(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requestLabels := r.sortedRequestLabels()
	platformOps := r.sortedPlatformOperations()
	outcomes := sortedKeys(r.resolutionOutcomes)
	deletionOutcomes := sortedKeys(r.deletions)

	fmt.Fprintln(w, "# HELP vidgate_http_requests_total Total number of HTTP requests processed by the gateway")
	fmt.Fprintln(w, "# TYPE vidgate_http_requests_total counter")
	for _, label := range requestLabels {
		count := r.requestCount[label]
		fmt.Fprintf(w, "vidgate_http_requests_total{method=\"%s\",path=\"%s\",status=\"%s\"} %d\n", label.method, label.path, label.status, count)
	}

	fmt.Fprintln(w, "# HELP vidgate_http_request_duration_seconds_sum Cumulative duration of HTTP requests in seconds")
	fmt.Fprintln(w, "# TYPE vidgate_http_request_duration_seconds_sum counter")
	for _, label := range requestLabels {
		duration := r.requestDuration[label].Seconds()
		fmt.Fprintf(w, "vidgate_http_request_duration_seconds_sum{method=\"%s\",path=\"%s\",status=\"%s\"} %f\n", label.method, label.path, label.status, duration)
	}

	fmt.Fprintln(w, "# HELP vidgate_http_request_duration_seconds_count Total number of observations for request durations")
	fmt.Fprintln(w, "# TYPE vidgate_http_request_duration_seconds_count counter")
	for _, label := range requestLabels {
		count := r.requestCount[label]
		fmt.Fprintf(w, "vidgate_http_request_duration_seconds_count{method=\"%s\",path=\"%s\",status=\"%s\"} %d\n", label.method, label.path, label.status, count)
	}

	fmt.Fprintln(w, "# HELP vidgate_platform_attempts_total Total Mux API operations attempted by name")
	fmt.Fprintln(w, "# TYPE vidgate_platform_attempts_total counter")
	for _, op := range platformOps {
		fmt.Fprintf(w, "vidgate_platform_attempts_total{operation=\"%s\"} %d\n", op, r.platformAttempts[op])
	}

	fmt.Fprintln(w, "# HELP vidgate_platform_failures_total Total Mux API operation failures by name")
	fmt.Fprintln(w, "# TYPE vidgate_platform_failures_total counter")
	for _, op := range platformOps {
		fmt.Fprintf(w, "vidgate_platform_failures_total{operation=\"%s\"} %d\n", op, r.platformFailures[op])
	}

	fmt.Fprintln(w, "# HELP vidgate_resolutions_total Identifier resolutions by terminal outcome")
	fmt.Fprintln(w, "# TYPE vidgate_resolutions_total counter")
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "vidgate_resolutions_total{outcome=\"%s\"} %d\n", outcome, r.resolutionOutcomes[outcome])
	}

	fmt.Fprintln(w, "# HELP vidgate_playback_ids_created_total Playback IDs materialized on demand")
	fmt.Fprintln(w, "# TYPE vidgate_playback_ids_created_total counter")
	fmt.Fprintf(w, "vidgate_playback_ids_created_total %d\n", r.playbackCreated)

	fmt.Fprintln(w, "# HELP vidgate_asset_deletions_total Asset deletions by outcome")
	fmt.Fprintln(w, "# TYPE vidgate_asset_deletions_total counter")
	for _, outcome := range deletionOutcomes {
		fmt.Fprintf(w, "vidgate_asset_deletions_total{outcome=\"%s\"} %d\n", outcome, r.deletions[outcome])
	}
}

func (r *Recorder) sortedRequestLabels() []requestLabel {
	labels := make([]requestLabel, 0, len(r.requestCount))
	for label := range r.requestCount {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].method != labels[j].method {
			return labels[i].method < labels[j].method
		}
		if labels[i].path != labels[j].path {
			return labels[i].path < labels[j].path
		}
		return labels[i].status < labels[j].status
	})
	return labels
}

func (r *Recorder) sortedPlatformOperations() []string {
	seen := make(map[string]struct{}, len(r.platformAttempts)+len(r.platformFailures))
	for op := range r.platformAttempts {
		seen[op] = struct{}{}
	}
	for op := range r.platformFailures {
		seen[op] = struct{}{}
	}
	ops := make([]string, 0, len(seen))
	for op := range seen {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if looksLikeIdentifier(part) {
			parts[i] = ":id"
		}
	}
	normalized := strings.Join(parts, "/")
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasSuffix(normalized, "/") && len(normalized) > 1 {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}

func looksLikeIdentifier(segment string) bool {
	if segment == "api" || segment == "delete" || strings.HasPrefix(segment, "mux-") {
		return false
	}
	if len(segment) >= 16 {
		return true
	}
	digitCount := 0
	for _, r := range segment {
		if r >= '0' && r <= '9' {
			digitCount++
		}
	}
	return digitCount >= 4
}

func normalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}

// ObserveRequest is a helper on the default recorder.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	defaultRecorder.ObserveRequest(method, path, status, duration)
}
