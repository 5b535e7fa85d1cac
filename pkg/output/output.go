package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
)

// Emitter publishes check results as key=value pairs for the automation
// pipeline. Pairs are appended to the GitHub Actions output file when one is
// configured, and always echoed to stdout so the values stay visible in the
// job log and usable outside Actions.
type Emitter struct {
	path   string
	stdout io.Writer
	logger logger.Logger
}

// pair is one ordered output entry.
type pair struct {
	name  string
	value string
}

// NewEmitter creates an emitter. path is the output file to append to,
// normally taken from the GITHUB_OUTPUT environment variable; an empty path
// disables the file sink.
func NewEmitter(path string) *Emitter {
	return &Emitter{
		path:   path,
		stdout: os.Stdout,
		logger: logger.GetLogger(),
	}
}

// WithStdout redirects the stdout echo, primarily for tests.
func (e *Emitter) WithStdout(w io.Writer) *Emitter {
	e.stdout = w
	return e
}

// EmitUpdate publishes a detected change: has_updates=true plus the number
// of new records and the check timestamp. latestInstanceID is included only
// when non-empty, since the identifier is not always recoverable.
func (e *Emitter) EmitUpdate(newRecords int, lastCheck time.Time, latestInstanceID string) error {
	pairs := []pair{
		{"has_updates", "true"},
		{"new_records_count", strconv.Itoa(newRecords)},
		{"last_check", lastCheck.Format(time.RFC3339)},
	}
	if latestInstanceID != "" {
		pairs = append(pairs, pair{"latest_instance_id", latestInstanceID})
	}
	return e.emit(pairs)
}

// EmitNoChange publishes has_updates=false and nothing else.
func (e *Emitter) EmitNoChange() error {
	return e.emit([]pair{{"has_updates", "false"}})
}

// Set publishes a single arbitrary pair.
func (e *Emitter) Set(name, value string) error {
	return e.emit([]pair{{name, value}})
}

// emit writes all pairs to stdout and appends them to the output file in a
// single write.
func (e *Emitter) emit(pairs []pair) error {
	for _, p := range pairs {
		fmt.Fprintf(e.stdout, "%s=%s\n", p.name, p.value)
	}

	if e.path == "" {
		e.logger.Debug("No output file configured, wrote to stdout only")
		return nil
	}

	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(formatPair(p.name, p.value))
	}

	file, err := os.OpenFile(e.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	e.logger.DebugWithFields("Outputs written", map[string]interface{}{
		"path":  e.path,
		"pairs": len(pairs),
	})
	return nil
}

// formatPair renders one pair in the GitHub Actions output file syntax.
// Values containing newlines use the heredoc form with a random delimiter
// so a crafted cell value cannot inject extra pairs.
func formatPair(name, value string) string {
	if strings.ContainsAny(value, "\r\n") {
		delimiter := "ghadelimiter_" + uuid.New().String()
		return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	}
	return fmt.Sprintf("%s=%s\n", name, value)
}
