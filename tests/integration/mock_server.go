package integration

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
)

// MockSheetServer simulates the Google Sheets CSV export endpoint with
// configurable content and failure behavior.
type MockSheetServer struct {
	server       *httptest.Server
	mu           sync.RWMutex
	sheets       map[string]string // sheet name -> CSV body
	status       int
	failuresLeft int32
	requestCount int32
}

// NewMockSheetServer creates a mock export server with no sheets configured
func NewMockSheetServer() *MockSheetServer {
	m := &MockSheetServer{
		sheets: make(map[string]string),
		status: http.StatusOK,
	}

	mux := http.NewServeMux()

	// The gviz CSV export endpoint the client fetches
	mux.HandleFunc("/spreadsheets/d/", m.handleExport)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the base URL of the mock server
func (m *MockSheetServer) URL() string {
	return m.server.URL
}

// Close shuts the server down
func (m *MockSheetServer) Close() {
	m.server.Close()
}

// SetSheet sets the CSV body served for the named sheet
func (m *MockSheetServer) SetSheet(name, csv string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[name] = csv
}

// SetStatus makes every subsequent request answer with the given status
// code instead of serving content
func (m *MockSheetServer) SetStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = code
}

// FailNext makes the next n requests answer 500 before normal behavior
// resumes, for exercising the retry path
func (m *MockSheetServer) FailNext(n int) {
	atomic.StoreInt32(&m.failuresLeft, int32(n))
}

// RequestCount returns how many export requests the server has seen
func (m *MockSheetServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

func (m *MockSheetServer) handleExport(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	// Injected transient failures take precedence
	if atomic.AddInt32(&m.failuresLeft, -1) >= 0 {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend error"))
		return
	}

	// Only the gviz export path exists here; anything else means the
	// client built a wrong URL
	if !strings.Contains(r.URL.Path, "/gviz/tq") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("tqx") != "out:csv" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.RLock()
	status := m.status
	body, ok := m.sheets[r.URL.Query().Get("sheet")]
	m.mu.RUnlock()

	if status != http.StatusOK {
		if status == http.StatusForbidden || status == http.StatusUnauthorized {
			// A private sheet answers with the login page
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
			w.Write([]byte("<html><body>Sign in</body></html>"))
			return
		}
		w.WriteHeader(status)
		return
	}

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Write([]byte(body))
}
