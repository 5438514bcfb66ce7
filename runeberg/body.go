package runeberg

import "strings"

const (
	chapterOpen  = "<chapter"
	chapterClose = "</chapter>"
)

type scope int

const (
	scopeBefore scope = iota
	scopeWithin
	scopeAfter
)

// ChapterBody selects and cleans the lines belonging to a chapter.
//
// Any line whose "<" and ">" counts differ loses all angle brackets. Index
// chapters keep every line. Regular chapters honour <chapter> markers: the
// first line containing "<chapter" discards what came before it, the first
// "</chapter>" after that ends the chapter, and the marker lines themselves
// are dropped. A chapter without markers keeps every line.
func ChapterBody(kind Kind, lines []string) []string {
	out := make([]string, 0, len(lines))
	state := scopeBefore

	for _, line := range lines {
		line = stripUnbalanced(line)

		if kind != KindRegular {
			out = append(out, line)
			continue
		}

		switch state {
		case scopeBefore:
			if strings.Contains(line, chapterOpen) {
				out = out[:0]
				state = scopeWithin
			}
		case scopeWithin:
			if strings.Contains(line, chapterClose) {
				state = scopeAfter
			}
		}

		if state != scopeAfter && !strings.Contains(line, chapterOpen) && !strings.Contains(line, chapterClose) {
			out = append(out, line)
		}
	}
	return out
}

// stripUnbalanced removes every "<" and ">" from line unless they occur
// equally often.
func stripUnbalanced(line string) string {
	if strings.Count(line, "<") == strings.Count(line, ">") {
		return line
	}
	return strings.NewReplacer("<", "", ">", "").Replace(line)
}
