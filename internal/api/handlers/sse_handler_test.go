package handlers

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	data string
}

// sseReader parses server-sent events from a response body.
type sseReader struct {
	scanner *bufio.Scanner
}

func newSSEReader(resp *http.Response) *sseReader {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &sseReader{scanner: scanner}
}

// next returns the following event; ok is false when the stream ended.
func (r *sseReader) next() (sseEvent, bool) {
	var current sseEvent
	for r.scanner.Scan() {
		line := r.scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "" && current.name != "":
			return current, true
		}
	}
	return sseEvent{}, false
}

// until skips events until one named name arrives.
func (r *sseReader) until(t *testing.T, name string) sseEvent {
	t.Helper()
	for {
		event, ok := r.next()
		require.True(t, ok, "stream ended before %s", name)
		if event.name == name {
			return event
		}
	}
}

func TestStreamSession_SnapshotThenRenderCommands(t *testing.T) {
	s := newTestServer(t)
	id := s.createSession(t)

	server := httptest.NewServer(s.mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/stream/sessions/"+id, nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	stream := newSSEReader(resp)
	first, ok := stream.next()
	require.True(t, ok)
	assert.Equal(t, "connected", first.name)
	assert.Contains(t, first.data, `"id":"`+id+`"`)
	assert.Eventually(t, func() bool { return s.sse.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	rr := s.do(t, http.MethodPost, "/api/sessions/"+id+"/map/loaded", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	ready := stream.until(t, "map.ready")
	assert.Contains(t, ready.data, `"container":"map"`)

	rr = s.do(t, http.MethodPost, "/api/sessions/"+id+"/search", map[string]string{"keyword": "카페"})
	require.Equal(t, http.StatusOK, rr.Code)
	page := stream.until(t, "list.page")
	assert.Contains(t, page.data, `"needs_pagination":true`)
	stream.until(t, "map.fit_bounds")

	rr = s.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	stream.until(t, "map.destroyed")

	_, ok = stream.next()
	assert.False(t, ok, "stream closes after the map is destroyed")
	assert.Eventually(t, func() bool { return s.sse.GetClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStreamSession_UnknownSession(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodGet, "/api/stream/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	h := NewHealthHandler(func() int { return 3 }, func() int { return 2 }, map[string]Pinger{"redis": stubPinger{}})
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `"status":"ok"`)
	assert.Contains(t, body, `"sessions":3`)
	assert.Contains(t, body, `"streams":2`)
	assert.Contains(t, body, `"redis":"ok"`)
}

func TestHealth_DegradedDependency(t *testing.T) {
	h := NewHealthHandler(nil, nil, map[string]Pinger{"redis": stubPinger{err: errors.New("connection refused")}})
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rr.Body.String(), "connection refused")
}
