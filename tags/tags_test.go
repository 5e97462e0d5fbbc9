package tags_test

import (
	"testing"

	"github.com/kashstash/stash/tags"
)

func TestMerge(t *testing.T) {
	cases := []struct {
		name     string
		userTags string
		device   string
		want     string
	}{
		{"appends device", "work,notes", "laptop", "work,notes,laptop"},
		{"empty device", "work,notes", "", "work,notes"},
		{"empty user tags", "", "laptop", "laptop"},
		{"both empty", "", "", ""},
		{"trims and drops empties", " work , ,notes, ", "laptop", "work,notes,laptop"},
		{"device already present", "work,laptop", "laptop", "work,laptop"},
		{"device present case-insensitive", "work,Laptop", "laptop", "work,Laptop"},
		{"dedupes user tags", "work,work,notes", "laptop", "work,notes,laptop"},
		{"trims device", "work", " laptop ", "work,laptop"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tags.Merge(tc.userTags, tc.device)
			if got != tc.want {
				t.Fatalf("Merge(%q, %q) = %q, want %q", tc.userTags, tc.device, got, tc.want)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	once := tags.Merge("work, notes ,work", "laptop")
	twice := tags.Merge(once, "laptop")
	if once != twice {
		t.Fatalf("merge not idempotent: %q vs %q", once, twice)
	}
}

func TestForFilename(t *testing.T) {
	got := tags.ForFilename("note_1700000000.txt")
	want := []string{"note_1700000000", "note"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if got := tags.ForFilename(""); got != nil {
		t.Fatalf("expected nil for empty filename, got %v", got)
	}

	got = tags.ForFilename("screenshot_1700000000.png")
	if got[0] != "screenshot_1700000000" || got[1] != "screenshot" {
		t.Fatalf("got %v", got)
	}
}

func TestMergeAll(t *testing.T) {
	got := tags.MergeAll("work,laptop", []string{"note_123", "note", "Laptop"})
	if got != "work,laptop,note_123,note" {
		t.Fatalf("got %q", got)
	}
}

func TestHas(t *testing.T) {
	if !tags.Has("work,Laptop,notes", "laptop") {
		t.Fatal("expected case-insensitive match")
	}
	if tags.Has("work,notes", "laptop") {
		t.Fatal("unexpected match")
	}
	if tags.Has("", "laptop") {
		t.Fatal("unexpected match on empty string")
	}
}
