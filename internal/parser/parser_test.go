package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/lagu/internal/apperr"
)

func TestParse_NoFrontmatter(t *testing.T) {
	input := "# Hello\nSome text."
	meta, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != input {
		t.Errorf("body = %q, want whole content", body)
	}
	if meta.Title == nil || *meta.Title != "Hello" {
		t.Errorf("title = %v, want Hello", meta.Title)
	}
	if meta.CustomID != nil || meta.ReadingTime != nil || meta.Tags != nil {
		t.Errorf("expected only title populated, got %+v", meta)
	}
}

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := "---\nid: beta\ntitle: Beta\ntags:\n  - x\n  - y\n---\nBody text here."
	meta, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.CustomID == nil || *meta.CustomID != "beta" {
		t.Errorf("custom id = %v, want beta", meta.CustomID)
	}
	if meta.Title == nil || *meta.Title != "Beta" {
		t.Errorf("title = %v, want Beta", meta.Title)
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "x" || meta.Tags[1] != "y" {
		t.Errorf("tags = %v, want [x y]", meta.Tags)
	}
	if body != "\nBody text here." {
		t.Errorf("body = %q", body)
	}
	// Reading time is always recomputed over the body.
	if meta.ReadingTime == nil || *meta.ReadingTime != 0 {
		t.Errorf("reading time = %v, want 0 for a short body", meta.ReadingTime)
	}
}

func TestParse_ReadingTimeOverridesFrontmatter(t *testing.T) {
	input := "---\nreading_time: 99\n---\nshort body"
	meta, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ReadingTime == nil || *meta.ReadingTime != 0 {
		t.Errorf("reading time = %v, want recomputed 0", meta.ReadingTime)
	}
}

func TestParse_TitleBackfilledFromBody(t *testing.T) {
	input := "---\nid: x\n---\nintro line\n# Real Title\nmore"
	meta, _, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Title == nil || *meta.Title != "Real Title" {
		t.Errorf("title = %v, want Real Title", meta.Title)
	}
}

func TestParse_NoClosingFence(t *testing.T) {
	input := "---\nid: x\n# Title\nbody"
	meta, body, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Without a closing fence nothing is deserialised: only the
	// heading fallback survives, and the opening fence is stripped.
	if meta.CustomID != nil {
		t.Errorf("custom id = %v, want nil", meta.CustomID)
	}
	if meta.Title == nil || *meta.Title != "Title" {
		t.Errorf("title = %v, want Title", meta.Title)
	}
	if body != "\nid: x\n# Title\nbody" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_EmptyFrontmatterBlock(t *testing.T) {
	meta, body, err := Parse("------\nbody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.CustomID != nil || meta.ReadingTime != nil {
		t.Errorf("expected default metadata, got %+v", meta)
	}
	if body != "\nbody" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_MalformedFrontmatter(t *testing.T) {
	_, _, err := Parse("---\n: bad: yaml: {{{\n---\nbody")
	if err == nil {
		t.Fatal("expected error for malformed front-matter")
	}
	if !errors.Is(err, apperr.ErrFrontmatter) {
		t.Errorf("error = %v, want ErrFrontmatter", err)
	}
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	meta, _, err := Parse("---\nid: x\nauthor: someone\n---\nbody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.CustomID == nil || *meta.CustomID != "x" {
		t.Errorf("custom id = %v, want x", meta.CustomID)
	}
}

func TestTitleFromH1_AnyHashQualifies(t *testing.T) {
	title := TitleFromH1("plain line\nnot # a heading\n# real")
	if title == nil || *title != "a heading" {
		t.Errorf("title = %v, want %q", title, "a heading")
	}
}

func TestTitleFromH1_None(t *testing.T) {
	if title := TitleFromH1("no headings at all"); title != nil {
		t.Errorf("title = %q, want nil", *title)
	}
}

func TestReadingTime(t *testing.T) {
	cases := []struct {
		tokens int
		want   int32
	}{
		{1, 0},
		{199, 0},
		{200, 0},   // 200/200 = 1; 1 * 0.6 truncates to 0
		{400, 1},   // 2 * 0.6 = 1.2
		{1000, 3},  // 5 * 0.6 = 3.0
		{2000, 6},  // 10 * 0.6 = 6.0
		{10000, 30},
	}
	for _, tc := range cases {
		body := strings.Repeat("w ", tc.tokens-1) + "w"
		if got := ReadingTime(body); got != tc.want {
			t.Errorf("ReadingTime(%d tokens) = %d, want %d", tc.tokens, got, tc.want)
		}
	}
}
