package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// reportTimestampLayout matches the file names earlier releases wrote,
// e.g. "Aug-25-26_10-41-PM".
const reportTimestampLayout = "Jan-02-06_03-04-PM"

// ReportWriter writes scan output files. Reports land in ReportsDir;
// when BackupsDir is set, an identical backup copy is written there so
// reports survive the user cleaning their desktop. Profile, when set,
// is appended to stem names so reports from different host profiles do
// not overwrite each other.
type ReportWriter struct {
	ReportsDir string
	BackupsDir string
	Profile    string
	Now        func() time.Time
}

func (w ReportWriter) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// fileName builds "<stem>_<profile>.txt", or "<stem>.txt" without a
// profile.
func (w ReportWriter) fileName(stem string) string {
	if p := strings.TrimSpace(w.Profile); p != "" {
		return stem + "_" + p + ".txt"
	}
	return stem + ".txt"
}

// WriteLines writes one value per line under the stem name and returns
// the report path. A backup copy is written when BackupsDir is set;
// backup failures are folded into the returned error because a scan
// whose backup silently vanished is worse than a loud one.
func (w ReportWriter) WriteLines(stem string, lines []string) (string, error) {
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	return w.writeText(w.fileName(stem), content)
}

// WriteText writes raw pre-formatted text under the stem name.
func (w ReportWriter) WriteText(stem, text string) (string, error) {
	return w.writeText(w.fileName(stem), text)
}

// WriteTimestamped writes raw text under "<stem>_<timestamp>.txt" so
// repeated runs keep their own files.
func (w ReportWriter) WriteTimestamped(stem, text string) (string, error) {
	name := fmt.Sprintf("%s_%s.txt", stem, w.now().Format(reportTimestampLayout))
	return w.writeText(name, text)
}

func (w ReportWriter) writeText(name, text string) (string, error) {
	if strings.TrimSpace(w.ReportsDir) == "" {
		return "", fmt.Errorf("maintenance: no reports directory configured")
	}
	path := filepath.Join(w.ReportsDir, name)
	if err := writeFileMkdir(path, []byte(text)); err != nil {
		return "", fmt.Errorf("maintenance: write report %q: %w", path, err)
	}
	if strings.TrimSpace(w.BackupsDir) != "" {
		backup := filepath.Join(w.BackupsDir, name)
		if err := writeFileMkdir(backup, []byte(text)); err != nil {
			return "", fmt.Errorf("maintenance: write report backup %q: %w", backup, err)
		}
	}
	return path, nil
}

func writeFileMkdir(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
