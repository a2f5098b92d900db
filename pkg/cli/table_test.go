package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "HOST", "STATUS")
	tbl.Row("l1", "SUCCESS")
	tbl.Row("s1", "FAILED")
	tbl.Flush()

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("table has %d lines, want header+divider+2 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "HOST") || !strings.Contains(lines[0], "STATUS") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "----") {
		t.Errorf("divider line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "l1") || !strings.Contains(lines[2], "SUCCESS") {
		t.Errorf("row line = %q", lines[2])
	}
}

func TestTable_EmptyProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "HOST", "STATUS")
	tbl.Flush()

	if buf.Len() != 0 {
		t.Errorf("empty table produced output: %q", buf.String())
	}
}
