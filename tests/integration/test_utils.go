package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MPAN-cpu/Automation-Test/pkg/config"
	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
	"github.com/MPAN-cpu/Automation-Test/pkg/monitor"
	"github.com/MPAN-cpu/Automation-Test/pkg/sheets"
	"github.com/MPAN-cpu/Automation-Test/pkg/state"
)

// rewriteTransport sends every request to the mock server regardless of the
// host the client put in the URL, so the real URL construction stays in the
// tested path.
type rewriteTransport struct {
	target *url.URL
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

// TestHelper wires a monitor to a mock sheet server inside a temp directory
type TestHelper struct {
	t      *testing.T
	Server *MockSheetServer
	Config *config.Config
	Log    *logger.TestLogger

	prevLogger logger.Logger
}

// NewTestHelper creates a helper with a running mock server, a config
// pointing at temp state/output files, and a captured logger
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Sheet.SpreadsheetID = "1IntegrationSheet"
	cfg.Sheet.SheetName = "Sheet1"
	cfg.State.File = filepath.Join(dir, "sheets_state.json")
	cfg.Output.GithubOutput = filepath.Join(dir, "github_output")
	// Retries stay on, but without real delays
	cfg.Retry.InitialBackoffSeconds = 0
	cfg.Retry.MaxBackoffSeconds = 0

	h := &TestHelper{
		t:          t,
		Server:     NewMockSheetServer(),
		Config:     cfg,
		Log:        logger.NewTestLogger(),
		prevLogger: logger.GetLogger(),
	}
	logger.SetLogger(h.Log)
	return h
}

// Cleanup stops the mock server and restores the global logger
func (h *TestHelper) Cleanup() {
	h.Server.Close()
	logger.SetLogger(h.prevLogger)
}

// NewMonitor builds a monitor whose fetches land on the mock server
func (h *TestHelper) NewMonitor() *monitor.Monitor {
	h.t.Helper()

	m, err := monitor.New(h.Config)
	require.NoError(h.t, err)
	m.SetFetcher(h.NewClient())
	return m
}

// NewClient builds a sheets client whose requests land on the mock server
func (h *TestHelper) NewClient() *sheets.Client {
	h.t.Helper()

	target, err := url.Parse(h.Server.URL())
	require.NoError(h.t, err)

	client := sheets.NewClientWithConfig(h.Config, h.Log)
	client.SetHTTPClient(&http.Client{
		Transport: &rewriteTransport{target: target},
		Timeout:   h.Config.HTTP.Timeout(),
	})
	return client
}

// ReadOutputs parses the emitted output file into a key -> value map.
// A missing file yields an empty map.
func (h *TestHelper) ReadOutputs() map[string]string {
	h.t.Helper()

	outputs := make(map[string]string)
	data, err := os.ReadFile(h.Config.Output.GithubOutput)
	if os.IsNotExist(err) {
		return outputs
	}
	require.NoError(h.t, err)

	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		require.True(h.t, found, "malformed output line: %q", line)
		outputs[key] = value
	}
	return outputs
}

// ClearOutputs removes the output file between runs
func (h *TestHelper) ClearOutputs() {
	h.t.Helper()
	err := os.Remove(h.Config.Output.GithubOutput)
	if err != nil && !os.IsNotExist(err) {
		require.NoError(h.t, err)
	}
}

// LoadState reads the persisted state file
func (h *TestHelper) LoadState() *state.State {
	return state.NewManager(h.Config.State.File).Load()
}

// StateFileExists checks whether a state file was written
func (h *TestHelper) StateFileExists() bool {
	return state.NewManager(h.Config.State.File).Exists()
}

// SheetCSV renders a quoted CSV export with an instance_id column and n
// data rows, the way the gviz endpoint quotes its output
func SheetCSV(n int) string {
	var sb strings.Builder
	sb.WriteString("\"instance_id\",\"region\",\"status\"\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "\"i-%03d\",\"us-east-1\",\"running\"\n", i)
	}
	return sb.String()
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
