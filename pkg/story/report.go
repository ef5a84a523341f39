package story

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

const maxReportSize = 10 << 20

// ReadReport reads the full text of a test report file. The content is only
// observed for now; it is not part of the submitted story.
func (w *Workflow) ReadReport(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("story: open report: %w", err)
	}
	defer f.Close()
	return w.ReadReportFrom(path, f)
}

// ReadReportFrom reads report text from r. name is used for logging only.
func (w *Workflow) ReadReportFrom(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxReportSize+1))
	if err != nil {
		return "", fmt.Errorf("story: read report: %w", err)
	}
	if len(data) > maxReportSize {
		return "", fmt.Errorf("story: report %s exceeds %d bytes", name, maxReportSize)
	}
	w.logger.Debug("test report read",
		zap.String("name", name),
		zap.Int("bytes", len(data)),
	)
	return string(data), nil
}
