package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int) []string
	Budget(text string, maxChars int) string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText splits text on blank lines and packs paragraphs into chunks of
// at most maxChunkSize runes. Oversized paragraphs are split by line, and
// oversized lines are hard-cut.
func (tc *textChunker) ChunkText(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	add := func(piece, sep string) {
		if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(piece)+len(sep) > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			add(para, "\n\n")
			continue
		}

		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			for utf8.RuneCountInString(line) > maxChunkSize {
				runes := []rune(line)
				flush()
				chunks = append(chunks, string(runes[:maxChunkSize]))
				line = string(runes[maxChunkSize:])
			}
			if line != "" {
				add(line, "\n")
			}
		}
	}

	flush()
	return chunks
}

// Budget keeps whole chunks from the start of text until maxChars runes are
// used. A non-positive budget returns text unchanged.
func (tc *textChunker) Budget(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	chunkSize := 1000
	if maxChars < chunkSize {
		chunkSize = maxChars
	}

	var kept []string
	used := 0
	for _, chunk := range tc.ChunkText(text, chunkSize) {
		size := utf8.RuneCountInString(chunk)
		if used+size > maxChars {
			break
		}
		kept = append(kept, chunk)
		used += size + 1
	}

	return strings.Join(kept, "\n")
}
