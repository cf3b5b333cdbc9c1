// Package narration turns answered questions into text for speech synthesis.
package narration

import (
	"strings"

	"github.com/koscakluka/ema-jarvis/core/conversations"
)

// DefaultChunkWords is the word count after which a chunk is closed at the
// next sentence end.
const DefaultChunkWords = 1000

// Build narrates every pair as "Question: <q>. Answer: <a>." joined with
// single spaces.
func Build(pairs []conversations.QAPair) string {
	parts := make([]string, 0, 4*len(pairs))
	for _, pair := range pairs {
		parts = append(parts,
			"Question:",
			strings.TrimSpace(pair.Question)+".",
			"Answer:",
			strings.TrimSpace(pair.Answer)+".",
		)
	}
	return strings.Join(parts, " ")
}

// Chunk splits text into chunks of whole words. A chunk is closed after a word
// ending in '.', '!' or '?' once it holds at least threshold words; whatever
// is left becomes the last chunk. Non-positive thresholds use
// DefaultChunkWords.
func Chunk(text string, threshold int) []string {
	if threshold <= 0 {
		threshold = DefaultChunkWords
	}

	var (
		chunks  []string
		current []string
	)
	for _, word := range strings.Fields(text) {
		current = append(current, word)
		if len(current) >= threshold && endsSentence(word) {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}
