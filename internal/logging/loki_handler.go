// Package logging ships slog records to Grafana Loki / Envoie les logs slog vers Grafana Loki
package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

const (
	pushPath             = "/loki/api/v1/push"
	defaultFlushInterval = 5 * time.Second
	defaultPushTimeout   = 5 * time.Second
)

// LokiOptions configures a LokiHandler / Configure un LokiHandler
type LokiOptions struct {
	URL    string            // Base URL, e.g. http://localhost:3100
	Labels map[string]string // Static stream labels, e.g. {"app": "familyhub"}
	// BatchSize is the number of lines buffered before a push, 0 pushes every record
	BatchSize     int
	FlushInterval time.Duration
	Level         slog.Leveler
	Client        *http.Client
}

// LokiHandler is a slog.Handler that batches JSON lines into Loki pushes.
// Push failures never reach the caller; they are counted in Dropped.
type LokiHandler struct {
	sink   *lokiSink
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// lokiSink is shared by a handler and everything derived from it with WithAttrs/WithGroup
type lokiSink struct {
	url       string
	labels    map[string]string
	client    *http.Client
	batchSize int

	mu      sync.Mutex
	pending [][]string

	dropped atomic.Int64
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewLokiHandler starts the periodic flusher when batching is on / Démarre le vidage périodique si le batch est actif
func NewLokiHandler(opts LokiOptions) *LokiHandler {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultPushTimeout}
	}
	labels := make(map[string]string, len(opts.Labels))
	for k, v := range opts.Labels {
		labels[k] = v
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	sink := &lokiSink{
		url:       opts.URL + pushPath,
		labels:    labels,
		client:    client,
		batchSize: opts.BatchSize,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	if opts.BatchSize > 0 {
		interval := opts.FlushInterval
		if interval <= 0 {
			interval = defaultFlushInterval
		}
		go sink.run(interval)
	} else {
		close(sink.done)
	}

	return &LokiHandler{sink: sink, level: level}
}

func (h *LokiHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle encodes the record as one JSON line / Encode l'enregistrement en une ligne JSON
func (h *LokiHandler) Handle(_ context.Context, r slog.Record) error {
	fields := map[string]any{
		"time":  r.Time.Format(time.RFC3339Nano),
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, a := range h.attrs {
		putAttr(fields, a)
	}

	own := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)
		return true
	})
	if len(h.groups) > 0 && len(own) > 0 {
		own = []slog.Attr{nestAttrs(h.groups, own)}
	}
	for _, a := range own {
		putAttr(fields, a)
	}

	line, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode log line: %w", err)
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	h.sink.add(strconv.FormatInt(ts.UnixNano(), 10), string(line))
	return nil
}

// putAttr writes a resolved attribute, merging groups that share a key
func putAttr(into map[string]any, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		if err, ok := a.Value.Any().(error); ok {
			into[a.Key] = err.Error()
			return
		}
		into[a.Key] = a.Value.Any()
		return
	}

	attrs := a.Value.Group()
	if len(attrs) == 0 {
		return
	}
	group := into
	if a.Key != "" {
		existing, ok := into[a.Key].(map[string]any)
		if !ok {
			existing = make(map[string]any, len(attrs))
			into[a.Key] = existing
		}
		group = existing
	}
	for _, ga := range attrs {
		putAttr(group, ga)
	}
}

// nestAttrs wraps attrs in the given groups, outermost first
func nestAttrs(groups []string, attrs []slog.Attr) slog.Attr {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	nested := slog.Group(groups[len(groups)-1], args...)
	for i := len(groups) - 2; i >= 0; i-- {
		nested = slog.Group(groups[i], nested)
	}
	return nested
}

func (h *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = slices.Clip(h.attrs)
	if len(h.groups) > 0 {
		clone.attrs = append(clone.attrs, nestAttrs(h.groups, attrs))
	} else {
		clone.attrs = append(clone.attrs, attrs...)
	}
	return &clone
}

func (h *LokiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

// Dropped returns how many lines failed to reach Loki / Nombre de lignes non livrées
func (h *LokiHandler) Dropped() int64 {
	return h.sink.dropped.Load()
}

// Close stops the flusher and pushes what is left / Arrête le vidage et envoie le reste
func (h *LokiHandler) Close() error {
	h.sink.once.Do(func() {
		if h.sink.batchSize > 0 {
			close(h.sink.stop)
			<-h.sink.done
		}
	})
	return h.sink.flush()
}

func (s *lokiSink) add(ts, line string) {
	s.mu.Lock()
	s.pending = append(s.pending, []string{ts, line})
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		_ = s.flush()
	}
}

func (s *lokiSink) run(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.flush()
		case <-s.stop:
			return
		}
	}
}

type pushRequest struct {
	Streams []pushStream `json:"streams"`
}

type pushStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// flush pushes the pending lines; a failed push drops them
func (s *lokiSink) flush() error {
	s.mu.Lock()
	values := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(values) == 0 {
		return nil
	}

	body, err := json.Marshal(pushRequest{Streams: []pushStream{{Stream: s.labels, Values: values}}})
	if err != nil {
		s.dropped.Add(int64(len(values)))
		return fmt.Errorf("encode loki push: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultPushTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.dropped.Add(int64(len(values)))
		return fmt.Errorf("build loki push: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.dropped.Add(int64(len(values)))
		return fmt.Errorf("loki push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		s.dropped.Add(int64(len(values)))
		return fmt.Errorf("loki push: status %d", resp.StatusCode)
	}
	return nil
}
