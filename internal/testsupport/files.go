package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// exportHeader mirrors the column layout of a gamer stats CSV export.
const exportHeader = `"Game name","Platform","GamerScore Won (incl. DLC)","TrueAchievement Won (incl. DLC)","Achievements Won (incl. DLC)","Max Achievements (incl. DLC)","Hours Played","My Completion Percentage","My Ratio","Game URL","Walkthrough"`

// ExportCSV builds a syntactically valid export body from the provided
// data rows, padded with filler rows until it clears the size threshold
// the download validity check applies.
func ExportCSV(t testing.TB, rows ...string) []byte {
	t.Helper()

	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	for i := 0; b.Len() <= 1000; i++ {
		fmt.Fprintf(&b, `"Filler Game %d","Xbox","10","15","1","10","1","10","1.00","",""`+"\n", i)
	}
	return []byte(b.String())
}

// WriteExport writes an export body to path and optionally back-dates
// its modification time so freshness-window behavior can be exercised.
func WriteExport(t testing.TB, path string, body []byte, age time.Duration) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if age > 0 {
		old := time.Now().Add(-age)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("age %s: %v", path, err)
		}
	}
}
