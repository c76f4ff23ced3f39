// Package diff implements the textual diff encoding used to store file
// version deltas. Encoding uses github.com/pmezard/go-difflib's sequence
// matcher to find line-level changes and emits classic unified-style hunks;
// applying a diff replays those hunks against the old text with an explicit
// line-by-line grammar, so corrupt input surfaces as MalformedError instead
// of silently mis-parsing.
//
// The format is a storage format: every diff ever written must stay
// decodable, so changes here have to remain backward compatible.
package diff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines included around each hunk.
const contextLines = 3

// noNewlineMarker follows a diff line whose content does not end with a
// newline. The standard unified-diff convention.
const noNewlineMarker = `\ No newline at end of file`

// MalformedError reports a diff that cannot be parsed or does not apply to
// the text it was decoded against.
type MalformedError struct {
	Line int    // 1-based line number within the diff text
	Text string // offending diff line
	Msg  string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed diff at line %d (%q): %s", e.Line, strings.TrimRight(e.Text, "\n"), e.Msg)
}

// Codec encodes and applies line-oriented text diffs.
// The zero value is ready to use.
type Codec struct{}

func NewCodec() *Codec { return &Codec{} }

// Encode produces a textual diff transforming old into new.
// Identical inputs yield an empty diff, which Apply treats as "no change".
func (*Codec) Encode(old, new string) string {
	oldLines := splitLines(old)
	newLines := splitLines(new)

	matcher := difflib.NewMatcher(oldLines, newLines)
	groups := matcher.GetGroupedOpCodes(contextLines)
	if len(groups) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("--- old\n+++ new\n")

	for _, group := range groups {
		first, last := group[0], group[len(group)-1]
		fmt.Fprintf(&b, "@@ -%s +%s @@\n",
			formatRange(first.I1, last.I2),
			formatRange(first.J1, last.J2))

		for _, op := range group {
			switch op.Tag {
			case 'e':
				for _, line := range oldLines[op.I1:op.I2] {
					writeLine(&b, ' ', line)
				}
			case 'r', 'd', 'i':
				if op.Tag != 'i' {
					for _, line := range oldLines[op.I1:op.I2] {
						writeLine(&b, '-', line)
					}
				}
				if op.Tag != 'd' {
					for _, line := range newLines[op.J1:op.J2] {
						writeLine(&b, '+', line)
					}
				}
			}
		}
	}

	return b.String()
}

// Apply replays a diff produced by Encode against old and returns the new
// text. An empty or all-whitespace diff returns old unchanged. Old-text
// lines after the last hunk are copied through.
func (*Codec) Apply(old, diffText string) (string, error) {
	if strings.TrimSpace(diffText) == "" {
		return old, nil
	}

	oldLines := splitLines(old)
	var out []string
	cursor := 0  // next unconsumed line of old
	lineno := 0  // current line within the diff, for errors
	inHunk := false
	lastEmitted := false // whether the previous diff line emitted output

	rest := diffText
	for len(rest) > 0 {
		line, remainder := nextLine(rest)
		rest = remainder
		lineno++

		switch {
		case strings.HasPrefix(line, "@@"):
			start, count, err := parseHunkHeader(line)
			if err != nil {
				return "", &MalformedError{Line: lineno, Text: line, Msg: err.Error()}
			}
			// A zero-count range names the line the hunk inserts after;
			// otherwise start is the 1-based first line of the hunk.
			target := start - 1
			if count == 0 {
				target = start
			}
			if target < cursor || target > len(oldLines) {
				return "", &MalformedError{Line: lineno, Text: line, Msg: "hunk offset out of range"}
			}
			out = append(out, oldLines[cursor:target]...)
			cursor = target
			inHunk = true
			lastEmitted = false

		case !inHunk && (strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ")):
			// File header, carries no content.

		case strings.HasPrefix(line, noNewlineMarker):
			if lastEmitted && len(out) > 0 {
				out[len(out)-1] = strings.TrimSuffix(out[len(out)-1], "\n")
			}

		case strings.HasPrefix(line, " ") || line == "\n":
			if !inHunk || cursor >= len(oldLines) {
				return "", &MalformedError{Line: lineno, Text: line, Msg: "context line outside hunk bounds"}
			}
			out = append(out, oldLines[cursor])
			cursor++
			lastEmitted = true

		case strings.HasPrefix(line, "-"):
			if !inHunk || cursor >= len(oldLines) {
				return "", &MalformedError{Line: lineno, Text: line, Msg: "deletion outside hunk bounds"}
			}
			cursor++
			lastEmitted = false

		case strings.HasPrefix(line, "+"):
			if !inHunk {
				return "", &MalformedError{Line: lineno, Text: line, Msg: "insertion before any hunk header"}
			}
			out = append(out, line[1:])
			lastEmitted = true

		default:
			return "", &MalformedError{Line: lineno, Text: line, Msg: "unknown line marker"}
		}
	}

	out = append(out, oldLines[cursor:]...)
	return strings.Join(out, ""), nil
}

// writeLine emits one prefixed diff line. Lines keep their own terminator;
// a line with no trailing newline gets one added plus the standard marker so
// the diff itself stays line-structured.
func writeLine(b *strings.Builder, prefix byte, line string) {
	b.WriteByte(prefix)
	b.WriteString(line)
	if !strings.HasSuffix(line, "\n") {
		b.WriteString("\n")
		b.WriteString(noNewlineMarker)
		b.WriteString("\n")
	}
}

// formatRange renders a half-open 0-based line range in unified-diff
// notation: 1-based start, length omitted when 1, "start,0" for empty.
func formatRange(start, stop int) string {
	length := stop - start
	if length == 1 {
		return strconv.Itoa(start + 1)
	}
	if length == 0 {
		return fmt.Sprintf("%d,0", start)
	}
	return fmt.Sprintf("%d,%d", start+1, length)
}

// parseHunkHeader extracts the old-text range from "@@ -start[,count] +... @@".
func parseHunkHeader(line string) (start, count int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || !strings.HasPrefix(fields[1], "-") {
		return 0, 0, fmt.Errorf("expected @@ -start[,count] +start[,count] @@")
	}

	oldRange := fields[1][1:]
	count = 1
	if before, after, found := strings.Cut(oldRange, ","); found {
		if count, err = strconv.Atoi(after); err != nil {
			return 0, 0, fmt.Errorf("bad hunk count %q", after)
		}
		oldRange = before
	}
	if start, err = strconv.Atoi(oldRange); err != nil {
		return 0, 0, fmt.Errorf("bad hunk start %q", oldRange)
	}
	if start < 0 || count < 0 {
		return 0, 0, fmt.Errorf("negative hunk range")
	}
	return start, count, nil
}

// splitLines splits text into lines that keep their trailing newline.
// The final line may lack one; empty text yields no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// nextLine returns the first line of text (including its newline, if any)
// and the remainder.
func nextLine(text string) (line, rest string) {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i+1], text[i+1:]
	}
	return text, ""
}
