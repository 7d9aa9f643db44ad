package history

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines bounds the unchanged lines shown on each side of a change
const contextLines = 3

// CompareTexts returns a line diff of oldText and newText
func CompareTexts(oldText, newText string) *DiffResult {
	oldText = normalizeLineEndings(oldText)
	newText = normalizeLineEndings(newText)

	if oldText == newText {
		return &DiffResult{}
	}

	// Diff whole lines: each line is mapped to one rune, diffed, then expanded back
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	return &DiffResult{
		DiffText:   formatLineDiff(diffs),
		HasChanges: true,
	}
}

// normalizeLineEndings converts all line endings to \n
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// formatLineDiff renders diffs with "- ", "+ " and "  " prefixes. Long
// unchanged stretches are cut to their first and last lines around "  ...".
func formatLineDiff(diffs []diffmatchpatch.Diff) string {
	var result strings.Builder

	write := func(prefix, line string) {
		result.WriteString(prefix)
		result.WriteString(line)
		result.WriteString("\n")
	}

	for _, diff := range diffs {
		lines := strings.Split(strings.TrimSuffix(diff.Text, "\n"), "\n")

		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range lines {
				write("- ", line)
			}

		case diffmatchpatch.DiffInsert:
			for _, line := range lines {
				write("+ ", line)
			}

		case diffmatchpatch.DiffEqual:
			if len(lines) > contextLines*2 {
				for _, line := range lines[:contextLines] {
					write("  ", line)
				}
				result.WriteString("  ...\n")
				for _, line := range lines[len(lines)-contextLines:] {
					write("  ", line)
				}
			} else {
				for _, line := range lines {
					write("  ", line)
				}
			}
		}
	}

	return result.String()
}
