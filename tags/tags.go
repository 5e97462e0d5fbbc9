// Package tags merges user-entered tags with automatically derived ones.
//
// Tags travel on the wire as a single comma-separated string. Merging
// de-duplicates case-insensitively so that an upload is attributable to its
// originating device without the user having to remember to tag it, and
// without visible duplicate tags.
package tags

import (
	"path/filepath"
	"strings"
)

// Merge combines user-entered tags with a device tag.
//
// userTags is split on commas, each piece trimmed, empties dropped. The
// trimmed device tag is appended unless already present (case-insensitive).
// Merge is idempotent: merging its own output with the same device tag
// yields the same set.
func Merge(userTags, deviceTag string) string {
	out := split(userTags)

	deviceTag = strings.TrimSpace(deviceTag)
	if deviceTag != "" && !contains(out, deviceTag) {
		out = append(out, deviceTag)
	}

	return strings.Join(out, ",")
}

// ForFilename derives tags from a synthesized upload filename: the filename
// stem, plus a kind tag when the name carries one ("note", "screenshot").
func ForFilename(filename string) []string {
	if filename == "" {
		return nil
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	derived := []string{stem}
	for _, kind := range []string{"note", "screenshot"} {
		if strings.Contains(filename, kind) {
			derived = append(derived, kind)
		}
	}
	return derived
}

// MergeAll folds extra tags into a merged tag string with the same
// case-insensitive de-duplication as Merge.
func MergeAll(merged string, extra []string) string {
	out := split(merged)
	for _, tag := range extra {
		tag = strings.TrimSpace(tag)
		if tag != "" && !contains(out, tag) {
			out = append(out, tag)
		}
	}
	return strings.Join(out, ",")
}

// Has reports whether tagString contains tag, case-insensitively.
func Has(tagString, tag string) bool {
	return contains(split(tagString), tag)
}

func split(s string) []string {
	var out []string
	for _, piece := range strings.Split(s, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if !contains(out, piece) {
			out = append(out, piece)
		}
	}
	return out
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
