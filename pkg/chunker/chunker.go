package chunker

import "strings"

const (
	// DefaultChunkSize is the soft upper bound on the content length of a chunk
	DefaultChunkSize = 12000
)

// SectionMarker separates files in a repository code dump
var SectionMarker = strings.Repeat("=", 48)

// Chunk is a contiguous run of lines from the input text
type Chunk struct {
	// Index is the zero-based position of the chunk in document order
	Index int

	Text string
}

// Chunker splits repository dumps into bounded chunks aligned on line
// boundaries. A chunk only exceeds the size limit when a single line is longer
// than the limit.
type Chunker struct {
	size int
}

// New creates a Chunker. A non-positive size falls back to DefaultChunkSize.
func New(size int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Chunker{size: size}
}

// Size returns the configured chunk size
func (c *Chunker) Size() int {
	return c.size
}

// Split splits text into chunks. Joining the chunk texts with "\n" yields the
// original text.
func (c *Chunker) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	var chunks []Chunk
	var current []string
	currentSize := 0

	flush := func() {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(current, "\n"),
		})
		current = nil
		currentSize = 0
	}

	for _, line := range strings.Split(text, "\n") {
		if currentSize+len(line) > c.size && len(current) > 0 {
			flush()
		}

		current = append(current, line)
		currentSize += len(line)

		// a file header past the halfway mark is a good place to cut
		if strings.HasPrefix(line, SectionMarker) && currentSize*2 > c.size {
			flush()
		}
	}

	if len(current) > 0 {
		flush()
	}

	return chunks
}
