package utils

import "strings"

// SplitText splits text into chunks of at most chunkSize runes, overlapping by
// overlap runes. A chunk is cut back to its last paragraph break, or failing
// that its last sentence end, when that break lies past half the chunk size.
// Chunks are trimmed and blank chunks dropped.
func SplitText(text string, chunkSize int, overlap int) []string {
	if text == "" || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	total := len(runes)
	half := chunkSize / 2

	var chunks []string
	start := 0
	for start < total {
		end := min(start+chunkSize, total)
		chunk := runes[start:end]

		if end < total {
			if cut := lastIndex(chunk, "\n\n"); cut > half {
				chunk = chunk[:cut]
				end = start + cut
			} else if cut := max(lastIndex(chunk, ". "), lastIndex(chunk, ".\n")); cut > half {
				chunk = chunk[:cut+1]
				end = start + cut + 1
			}
		}

		if s := strings.TrimSpace(string(chunk)); s != "" {
			chunks = append(chunks, s)
		}

		if end >= total {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastIndex is strings.LastIndex over runes, returning a rune offset.
func lastIndex(runes []rune, sep string) int {
	pattern := []rune(sep)
	for i := len(runes) - len(pattern); i >= 0; i-- {
		match := true
		for j, r := range pattern {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
