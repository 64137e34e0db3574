package service

import (
	"strings"
)

// Chunker splits extracted text into overlapping chunks on sentence
// boundaries so that clause-level context survives the split.
type Chunker struct {
	maxChunkSize int
	overlapSize  int
}

func NewChunker(maxChunkSize, overlapSize int) *Chunker {
	if overlapSize >= maxChunkSize {
		overlapSize = maxChunkSize / 4
	}
	return &Chunker{
		maxChunkSize: maxChunkSize,
		overlapSize:  overlapSize,
	}
}

// Split breaks text into chunks of at most maxChunkSize bytes, preferring
// sentence ends, then word boundaries. Consecutive chunks overlap by up to
// overlapSize bytes.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	textLen := len(text)
	// Return early if text fits in one chunk
	if textLen <= c.maxChunkSize {
		return []string{text}
	}

	var chunks []string
	currentPos := 0
	for currentPos < textLen {
		chunkEnd := currentPos + c.maxChunkSize
		if chunkEnd >= textLen {
			// Handle last chunk
			chunk := strings.TrimSpace(text[currentPos:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Find nearest sentence end
		sentenceEnd := chunkEnd
		for i := chunkEnd; i > currentPos; i-- {
			if text[i] == '.' || text[i] == '?' || text[i] == '!' {
				sentenceEnd = i + 1
				break
			}
		}

		// If no sentence end found, use word boundary
		if sentenceEnd == chunkEnd {
			for i := chunkEnd; i > currentPos; i-- {
				if text[i] == ' ' {
					sentenceEnd = i
					break
				}
			}
		}

		chunk := strings.TrimSpace(text[currentPos:sentenceEnd])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Step back by the overlap, but always past the previous start
		nextPos := sentenceEnd - c.overlapSize
		if nextPos <= currentPos {
			nextPos = sentenceEnd
		}
		currentPos = nextPos
	}

	return chunks
}
