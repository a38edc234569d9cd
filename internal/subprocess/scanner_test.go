package subprocess

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/codex-agent-sdk-go/internal/errors"
)

// mockChunkReader delivers data in controlled chunks to simulate various buffering scenarios.
type mockChunkReader struct {
	chunks [][]byte
	index  int
}

func newMockChunkReader(chunks ...string) *mockChunkReader {
	byteChunks := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		byteChunks[i] = []byte(chunk)
	}

	return &mockChunkReader{chunks: byteChunks}
}

func (r *mockChunkReader) Read(p []byte) (int, error) {
	if r.index >= len(r.chunks) {
		return 0, io.EOF
	}

	chunk := r.chunks[r.index]

	n := copy(p, chunk)
	if n < len(chunk) {
		r.chunks[r.index] = chunk[n:]
	} else {
		r.index++
	}

	return n, nil
}

// readAllLines drains the scanner, collecting lines and per-line errors.
func readAllLines(t *testing.T, scanner *lineScanner) (lines []string, lineErrs []error) {
	t.Helper()

	for {
		line, err := scanner.ReadLine()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				return lines, lineErrs
			}

			lineErrs = append(lineErrs, err)

			continue
		}

		lines = append(lines, string(line))
	}
}

// TestLineScanner_MultipleLinesInOneRead tests splitting when several lines
// arrive in a single read.
func TestLineScanner_MultipleLinesInOneRead(t *testing.T) {
	reader := newMockChunkReader("{\"id\":1}\n{\"id\":2}\n")
	scanner := newLineScanner(reader, 1024)

	lines, lineErrs := readAllLines(t, scanner)

	require.Empty(t, lineErrs)
	require.Equal(t, []string{`{"id":1}`, `{"id":2}`}, lines)
}

// TestLineScanner_SplitAcrossReads tests reassembly of a line split across reads.
func TestLineScanner_SplitAcrossReads(t *testing.T) {
	payload := `{"method":"item/agentMessage/delta","params":{"delta":"` + strings.Repeat("x", 1000) + `"}}`

	reader := newMockChunkReader(payload[:100], payload[100:250], payload[250:]+"\n")
	scanner := newLineScanner(reader, 1<<20)

	lines, lineErrs := readAllLines(t, scanner)

	require.Empty(t, lineErrs)
	require.Equal(t, []string{payload}, lines)
}

// TestLineScanner_EmbeddedEscapedNewlines tests that escaped newlines inside
// JSON strings do not split the line.
func TestLineScanner_EmbeddedEscapedNewlines(t *testing.T) {
	payload := `{"delta":"Line 1\nLine 2\nLine 3"}`

	reader := newMockChunkReader(payload + "\n")
	scanner := newLineScanner(reader, 1024)

	lines, lineErrs := readAllLines(t, scanner)

	require.Empty(t, lineErrs)
	require.Equal(t, []string{payload}, lines)
}

// TestLineScanner_BlankLines tests that blank lines are yielded as empty slices.
func TestLineScanner_BlankLines(t *testing.T) {
	reader := newMockChunkReader("{\"id\":1}\n\n\n{\"id\":2}\n")
	scanner := newLineScanner(reader, 1024)

	lines, lineErrs := readAllLines(t, scanner)

	require.Empty(t, lineErrs)
	require.Equal(t, []string{`{"id":1}`, "", "", `{"id":2}`}, lines)
}

// TestLineScanner_CRLF tests that carriage returns are stripped from line ends.
func TestLineScanner_CRLF(t *testing.T) {
	reader := newMockChunkReader("{\"id\":1}\r\n{\"id\":2}\r\n")
	scanner := newLineScanner(reader, 1024)

	lines, lineErrs := readAllLines(t, scanner)

	require.Empty(t, lineErrs)
	require.Equal(t, []string{`{"id":1}`, `{"id":2}`}, lines)
}

// TestLineScanner_FinalLineWithoutNewline tests that an unterminated final
// line is still returned before EOF.
func TestLineScanner_FinalLineWithoutNewline(t *testing.T) {
	reader := newMockChunkReader("{\"id\":1}\n{\"id\":2}")
	scanner := newLineScanner(reader, 1024)

	lines, lineErrs := readAllLines(t, scanner)

	require.Empty(t, lineErrs)
	require.Equal(t, []string{`{"id":1}`, `{"id":2}`}, lines)
}

// TestLineScanner_OversizedLineThenNext tests that an oversized line is
// rejected without corrupting the following line.
func TestLineScanner_OversizedLineThenNext(t *testing.T) {
	huge := `{"data":"` + strings.Repeat("x", 5000) + `"}`

	reader := newMockChunkReader(huge + "\n" + `{"id":7}` + "\n")
	scanner := newLineScanner(reader, 1024)

	_, err := scanner.ReadLine()
	require.Error(t, err)

	var tooLong *errors.LineTooLongError

	require.ErrorAs(t, err, &tooLong)
	require.Equal(t, 1024, tooLong.Limit)
	require.True(t, strings.HasPrefix(huge, tooLong.Truncated))
	require.Len(t, tooLong.Truncated, truncatedPreview)

	// The next line must parse cleanly
	line, err := scanner.ReadLine()
	require.NoError(t, err)
	require.Equal(t, `{"id":7}`, string(line))

	_, err = scanner.ReadLine()
	require.ErrorIs(t, err, io.EOF)
}

// TestLineScanner_CapBoundary tests the exact limit boundary.
func TestLineScanner_CapBoundary(t *testing.T) {
	max := 64
	exact := strings.Repeat("a", max)
	over := strings.Repeat("b", max+1)

	t.Run("content at cap passes", func(t *testing.T) {
		scanner := newLineScanner(strings.NewReader(exact+"\n"), max)

		line, err := scanner.ReadLine()
		require.NoError(t, err)
		require.Equal(t, exact, string(line))
	})

	t.Run("content at cap with CRLF passes", func(t *testing.T) {
		scanner := newLineScanner(strings.NewReader(exact+"\r\n"), max)

		line, err := scanner.ReadLine()
		require.NoError(t, err)
		require.Equal(t, exact, string(line))
	})

	t.Run("one byte over cap fails", func(t *testing.T) {
		scanner := newLineScanner(strings.NewReader(over+"\n"), max)

		_, err := scanner.ReadLine()

		var tooLong *errors.LineTooLongError

		require.ErrorAs(t, err, &tooLong)
		require.Equal(t, max, tooLong.Limit)
	})
}

// TestLineScanner_OversizedUnterminatedAtEOF tests an oversized line with no
// trailing newline before EOF.
func TestLineScanner_OversizedUnterminatedAtEOF(t *testing.T) {
	scanner := newLineScanner(strings.NewReader(strings.Repeat("x", 200)), 64)

	_, err := scanner.ReadLine()

	var tooLong *errors.LineTooLongError

	require.ErrorAs(t, err, &tooLong)

	_, err = scanner.ReadLine()
	require.ErrorIs(t, err, io.EOF)
}

// TestLineScanner_LargeLineWithinCap tests a multi-chunk line well above the
// internal buffer size but under the cap.
func TestLineScanner_LargeLineWithinCap(t *testing.T) {
	payload := `{"data":"` + strings.Repeat("y", 300_000) + `"}`
	full := payload + "\n"

	chunkSize := 64 * 1024

	var chunks []string

	for i := 0; i < len(full); i += chunkSize {
		end := min(i+chunkSize, len(full))
		chunks = append(chunks, full[i:end])
	}

	scanner := newLineScanner(newMockChunkReader(chunks...), 10*1024*1024)

	line, err := scanner.ReadLine()
	require.NoError(t, err)
	require.Equal(t, payload, string(line))
}
