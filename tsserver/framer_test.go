package tsserver

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collectLines(f *Framer) []string {
	var lines []string
	for {
		line, ok := f.Next()
		if !ok {
			return lines
		}
		lines = append(lines, string(line))
	}
}

func TestFramer_SplitsAndFilters(t *testing.T) {
	input := "Content-Length: 76\r\n" +
		"\r\n" +
		`{"seq":0,"type":"event","event":"typingsInstallerPid"}` + "\r\n" +
		"   \n" +
		"Version 5.4.5\n" +
		`  {"request_seq":0}` + "\n" +
		"[1]\n" +
		`{"tail":true}` // no terminator at EOF

	f := NewFramer(strings.NewReader(input), 0)
	got := collectLines(f)
	want := []string{
		`{"seq":0,"type":"event","event":"typingsInstallerPid"}`,
		`  {"request_seq":0}`,
		`{"tail":true}`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if err := f.Err(); err != nil {
		t.Errorf("Err = %v", err)
	}
	if f.Skipped() != 5 {
		t.Errorf("Skipped = %d, want 5", f.Skipped())
	}
}

func TestFramer_TooLongLineIsDroppedAndReadingContinues(t *testing.T) {
	input := "{" + strings.Repeat("a", 100) + "}\n" +
		`{"next":1}` + "\n" +
		"{" + strings.Repeat("b", 100) + "}" // over-long and unterminated

	var sizes []int
	f := NewFramer(strings.NewReader(input), 32)
	f.onOversized = func(n int) { sizes = append(sizes, n) }

	got := collectLines(f)
	if diff := cmp.Diff([]string{`{"next":1}`}, got); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if err := f.Err(); err != nil {
		t.Errorf("Err = %v, want nil", err)
	}
	if f.Oversized() != 2 {
		t.Errorf("Oversized = %d, want 2", f.Oversized())
	}
	if diff := cmp.Diff([]int{103, 102}, sizes); diff != "" {
		t.Errorf("oversized sizes (-want +got):\n%s", diff)
	}
}

func TestFramer_LineAtLimitSpanningBuffers(t *testing.T) {
	// 40 bytes of content with a 40-byte limit: the reader buffer is
	// smaller than the line, and the terminator does not count.
	line := `{"k":"` + strings.Repeat("x", 32) + `"}`
	f := NewFramer(strings.NewReader(line+"\r\n"+line+"\n"), len(line))

	got := collectLines(f)
	if diff := cmp.Diff([]string{line, line}, got); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if f.Oversized() != 0 {
		t.Errorf("Oversized = %d, want 0", f.Oversized())
	}
}

type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestFramer_ReadError(t *testing.T) {
	boom := errors.New("boom")
	f := NewFramer(&failingReader{data: `{"a":1}` + "\n", err: boom}, 0)

	got := collectLines(f)
	if diff := cmp.Diff([]string{`{"a":1}`}, got); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if !errors.Is(f.Err(), boom) {
		t.Errorf("Err = %v, want boom", f.Err())
	}
	if _, ok := f.Next(); ok {
		t.Error("Next after error returned a line")
	}
}

func TestLooksLikeObject(t *testing.T) {
	for line, want := range map[string]bool{
		`{}`:                true,
		"\t{":               true,
		"\uFEFF{}":          true,
		"\uFEFF[]":          false,
		"":                  false,
		"   ":               false,
		"Content-Length: 1": false,
		`"{"`:               false,
	} {
		if got := looksLikeObject([]byte(line)); got != want {
			t.Errorf("looksLikeObject(%q) = %v, want %v", line, got, want)
		}
	}
}
