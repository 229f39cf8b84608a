// Package chunker splits extracted document text into bounded-size chunks
// for retrieval-context use.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultBudget is the maximum chunk size in bytes. Sized so a handful of
// chunks fit comfortably inside one prompt.
const DefaultBudget = 1200

// Split cuts text into an ordered sequence of chunks, none longer than
// budget. Paragraph boundaries are preferred over line boundaries, and line
// boundaries over hard character cuts; a hard cut only happens when a single
// line exceeds the budget on its own. Split is a pure function of its input.
//
// Empty input yields nil. Input already within budget yields a single chunk
// equal to the trimmed input.
func Split(text string, budget int) []string {
	if budget <= 0 {
		budget = DefaultBudget
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= budget {
		return []string{text}
	}

	var chunks []string
	var buf []string
	bufLen := 0

	flush := func() {
		if bufLen == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(buf, "\n\n"))
		if joined != "" {
			chunks = append(chunks, joined)
		}
		buf = buf[:0]
		bufLen = 0
	}

	for _, para := range paragraphs(text) {
		if len(para) > budget {
			// Oversized paragraph: emit what we have, then split it on
			// line boundaries (hard cuts as a last resort).
			flush()
			chunks = append(chunks, splitLines(para, budget)...)
			continue
		}
		// +2 accounts for the blank-line separator restored on join.
		if bufLen > 0 && bufLen+2+len(para) > budget {
			flush()
		}
		buf = append(buf, para)
		bufLen += len(para)
		if len(buf) > 1 {
			bufLen += 2
		}
	}
	flush()

	return chunks
}

// paragraphs splits text on blank lines, dropping empty segments.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitLines splits an oversized paragraph into chunks on line boundaries.
// A single line longer than the budget is cut at the budget boundary.
func splitLines(para string, budget int) []string {
	var chunks []string
	var buf []string
	bufLen := 0

	flush := func() {
		if bufLen == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(buf, "\n"))
		if joined != "" {
			chunks = append(chunks, joined)
		}
		buf = buf[:0]
		bufLen = 0
	}

	for _, line := range strings.Split(para, "\n") {
		for len(line) > budget {
			flush()
			cut := runeBoundary(line, budget)
			chunks = append(chunks, strings.TrimSpace(line[:cut]))
			line = strings.TrimSpace(line[cut:])
		}
		if bufLen > 0 && bufLen+1+len(line) > budget {
			flush()
		}
		buf = append(buf, line)
		bufLen += len(line)
		if len(buf) > 1 {
			bufLen++
		}
	}
	flush()

	return chunks
}

// runeBoundary returns the largest cut point <= max that does not land in
// the middle of a UTF-8 sequence.
func runeBoundary(s string, max int) int {
	if max >= len(s) {
		return len(s)
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	if max == 0 {
		// Degenerate input; cut anyway rather than loop forever.
		return 1
	}
	return max
}
