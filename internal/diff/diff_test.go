package diff

import (
	"errors"
	"strings"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
	}{
		{"append line", "hello\n", "hello\nworld\n"},
		{"delete line", "hello\nworld\n", "hello\n"},
		{"replace line", "hello\n", "bye\n"},
		{"empty to content", "", "first\nsecond\n"},
		{"content to empty", "first\nsecond\n", ""},
		{"both empty", "", ""},
		{"no trailing newline old", "solo", "solo\nmore\n"},
		{"no trailing newline new", "hello\n", "bye"},
		{"no trailing newline both", "a\nz", "b\nz"},
		{"single line no newline", "x", "y"},
		{"trailing blank lines added", "x\n", "x\n\n\n"},
		{"trailing blank lines removed", "x\n\n\n", "x\n"},
		{"change in the middle", "a\nb\nc\nd\ne\nf\ng\nh\n", "a\nb\nc\nD\ne\nf\ng\nh\n"},
		{"disjoint hunks", strings.Repeat("keep\n", 20) + "end\n", "start\n" + strings.Repeat("keep\n", 20) + "end2\n"},
		{"blank line edit", "a\n\nb\n", "a\nb\n"},
	}

	codec := NewCodec()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := codec.Encode(tc.old, tc.new)
			got, err := codec.Apply(tc.old, d)
			if err != nil {
				t.Fatalf("Apply() error = %v\ndiff:\n%s", err, d)
			}
			if got != tc.new {
				t.Errorf("round trip = %q, want %q\ndiff:\n%s", got, tc.new, d)
			}
		})
	}
}

func TestCodec_EncodeIdenticalIsEmpty(t *testing.T) {
	codec := NewCodec()
	if d := codec.Encode("same\ncontent\n", "same\ncontent\n"); d != "" {
		t.Errorf("Encode() on identical inputs = %q, want empty", d)
	}
}

func TestCodec_EncodeHunkShape(t *testing.T) {
	codec := NewCodec()
	d := codec.Encode("hello\n", "hello\nworld\n")

	if !strings.Contains(d, "+world\n") {
		t.Errorf("diff missing inserted line, got:\n%s", d)
	}
	if !strings.Contains(d, " hello\n") {
		t.Errorf("diff missing context line, got:\n%s", d)
	}
	if !strings.Contains(d, "@@ -1 +1,2 @@") {
		t.Errorf("unexpected hunk header, got:\n%s", d)
	}
}

func TestCodec_ApplyEmptyDiffIsNoChange(t *testing.T) {
	codec := NewCodec()
	for _, d := range []string{"", "   ", "\n"} {
		got, err := codec.Apply("unchanged\n", d)
		if err != nil {
			t.Fatalf("Apply(%q) error = %v", d, err)
		}
		if got != "unchanged\n" {
			t.Errorf("Apply(%q) = %q, want original", d, got)
		}
	}
}

func TestCodec_ApplyTailCopiedThrough(t *testing.T) {
	// Lines after the last hunk must be copied through unchanged.
	codec := NewCodec()
	old := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\n"
	new := "A\nb\nc\nd\ne\nf\ng\nh\ni\nj\n"
	d := codec.Encode(old, new)

	got, err := codec.Apply(old, d)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got != new {
		t.Errorf("Apply() = %q, want %q", got, new)
	}
}

func TestCodec_ApplyMalformed(t *testing.T) {
	cases := []struct {
		name string
		diff string
	}{
		{"garbage header", "@@ -x,y +1 @@\n fine\n"},
		{"missing ranges", "@@ nope\n"},
		{"negative start", "@@ --2,1 +1 @@\n"},
		{"offset past end", "@@ -99,1 +99,1 @@\n gone\n"},
		{"unknown marker", "--- old\n+++ new\n@@ -1 +1 @@\n?what\n"},
		{"context past end", "@@ -1,5 +1,5 @@\n a\n b\n c\n"},
		{"insert before hunk", "+orphan\n"},
	}

	codec := NewCodec()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Apply("a\nb\n", tc.diff)
			var malformed *MalformedError
			if !errors.As(err, &malformed) {
				t.Fatalf("Apply() error = %v, want MalformedError", err)
			}
			if malformed.Line == 0 {
				t.Errorf("MalformedError.Line not set: %v", malformed)
			}
		})
	}
}

func TestCodec_NoNewlineMarker(t *testing.T) {
	codec := NewCodec()
	d := codec.Encode("hello\n", "bye")

	if !strings.Contains(d, noNewlineMarker) {
		t.Fatalf("expected no-newline marker in diff:\n%s", d)
	}
	got, err := codec.Apply("hello\n", d)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got != "bye" {
		t.Errorf("Apply() = %q, want %q (no trailing newline)", got, "bye")
	}
}

func TestFormatRange(t *testing.T) {
	cases := []struct {
		start, stop int
		want        string
	}{
		{0, 1, "1"},
		{0, 3, "1,3"},
		{4, 4, "4,0"},
		{0, 0, "0,0"},
	}
	for _, tc := range cases {
		if got := formatRange(tc.start, tc.stop); got != tc.want {
			t.Errorf("formatRange(%d, %d) = %q, want %q", tc.start, tc.stop, got, tc.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\n\n", 2},
	}
	for _, tc := range cases {
		if got := splitLines(tc.in); len(got) != tc.want {
			t.Errorf("splitLines(%q) = %d lines, want %d", tc.in, len(got), tc.want)
		}
	}
}
