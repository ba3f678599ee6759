package manual

import "strings"

const (
	minChunkChars = 50
	maxChunkWords = 500
)

// Chunk splits text into indexable blocks: blank-line sections shorter than
// 50 characters are dropped and sections longer than 500 words are cut into
// 500-word pieces.
func Chunk(text string) []string {
	var chunks []string
	for _, section := range sectionBreak.Split(text, -1) {
		section = strings.TrimSpace(section)
		if len([]rune(section)) < minChunkChars {
			continue
		}
		words := strings.Fields(section)
		if len(words) <= maxChunkWords {
			chunks = append(chunks, section)
			continue
		}
		for start := 0; start < len(words); start += maxChunkWords {
			end := min(start+maxChunkWords, len(words))
			chunks = append(chunks, strings.Join(words[start:end], " "))
		}
	}
	return chunks
}
