package textutil

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatReferencesDeterministic(t *testing.T) {
	cits := []Citation{
		{Title: "Báo A", Ref: "https://a.vn/bai-1"},
		{Title: "Báo B", Ref: "https://b.vn/bai-2"},
	}
	first := FormatReferences(cits)
	second := FormatReferences(cits)
	if first != second {
		t.Fatalf("non-deterministic output:\n%q\n%q", first, second)
	}
	want := ReferenceHeader + "\n1) Báo A - https://a.vn/bai-1\n2) Báo B - https://b.vn/bai-2"
	if first != want {
		t.Fatalf("FormatReferences = %q, want %q", first, want)
	}
}

func TestFormatReferencesEmpty(t *testing.T) {
	got := FormatReferences(nil)
	if got == "" {
		t.Fatal("empty citation list must not produce an empty string")
	}
	if !strings.Contains(got, NoSourcesLine) {
		t.Fatalf("missing no-sources placeholder: %q", got)
	}
	if !strings.HasPrefix(got, ReferenceHeader) {
		t.Fatalf("missing header: %q", got)
	}
}

func TestFormatReferencesCap(t *testing.T) {
	var cits []Citation
	for i := 1; i <= 9; i++ {
		cits = append(cits, Citation{Title: fmt.Sprintf("Nguồn %d", i), Ref: fmt.Sprintf("https://vd.vn/%d", i)})
	}
	got := FormatReferences(cits)
	lines := strings.Split(got, "\n")
	if len(lines) != MaxDisplaySources+1 {
		t.Fatalf("expected %d lines (header + %d entries), got %d:\n%s", MaxDisplaySources+1, MaxDisplaySources, len(lines), got)
	}
	if !strings.HasPrefix(lines[5], "5) ") {
		t.Fatalf("last entry should be numbered 5: %q", lines[5])
	}
	if strings.Contains(got, "https://vd.vn/6") {
		t.Fatalf("sixth citation leaked past the cap: %q", got)
	}
}

func TestFormatReferencesKeepsOrder(t *testing.T) {
	cits := []Citation{
		{Title: "Thứ nhất", Ref: "https://vd.vn/1"},
		{Title: "Thứ hai", Ref: "https://vd.vn/2"},
		{Title: "Thứ ba", Ref: "https://vd.vn/3"},
	}
	lines := strings.Split(FormatReferences(cits), "\n")
	for i, c := range cits {
		want := fmt.Sprintf("%d) %s - %s", i+1, c.Title, c.Ref)
		if lines[i+1] != want {
			t.Fatalf("line %d = %q, want %q", i+1, lines[i+1], want)
		}
	}
}

func TestFormatReferencesHandleWithoutRef(t *testing.T) {
	got := FormatReferences([]Citation{{Title: "bao-cao.pdf"}})
	want := ReferenceHeader + "\n1) bao-cao.pdf"
	if got != want {
		t.Fatalf("FormatReferences = %q, want %q", got, want)
	}
}
