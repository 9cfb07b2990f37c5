package ingest

import "strings"

const (
	// DefaultChunkSize and DefaultOverlap are character budgets; chunks
	// are built from whole sentences so boundaries never split one.
	DefaultChunkSize = 800
	DefaultOverlap   = 100
)

// ChunkText splits text into sentence-aligned chunks of at most chunkSize
// characters, with trailing sentences of each chunk repeated at the start
// of the next up to overlap characters. Non-positive sizes fall back to
// the defaults, and the overlap is clamped below the chunk size. A single
// sentence longer than chunkSize becomes its own chunk.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	appendChunk := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Seed the next chunk with trailing sentences up to the overlap budget.
		var carried []string
		carriedLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			size := len(current[i])
			if carriedLen+size > overlap {
				break
			}
			carried = append([]string{current[i]}, carried...)
			carriedLen += size + 1
		}
		current = carried
		currentLen = carriedLen
	}

	for _, sentence := range sentences {
		if currentLen > 0 && currentLen+len(sentence) > chunkSize {
			appendChunk()
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace. Newlines are treated as spaces first so transcripts wrap
// cleanly.
func splitSentences(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(normalized); i++ {
		ch := normalized[i]
		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}
		// Consume runs of closing punctuation.
		end := i + 1
		for end < len(normalized) && (normalized[end] == '.' || normalized[end] == '!' || normalized[end] == '?' || normalized[end] == '"' || normalized[end] == '\'') {
			end++
		}
		if end < len(normalized) && normalized[end] != ' ' {
			continue
		}
		sentence := strings.TrimSpace(normalized[start:end])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end
		i = end
	}
	if tail := strings.TrimSpace(normalized[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
