package chunker

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// countedSize mirrors the running counter of the chunker: line bytes without newlines
func countedSize(text string) int {
	return len(text) - strings.Count(text, "\n")
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, New(100).Split(""))
}

func TestSplit_SmallInputSingleChunk(t *testing.T) {
	chunks := New(100).Split("package main\n\nfunc main() {}")
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "package main\n\nfunc main() {}", chunks[0].Text)
}

func TestSplit_ClosesBeforeExceedingLimit(t *testing.T) {
	line := strings.Repeat("a", 40)
	text := strings.Join([]string{line, line, line}, "\n")

	chunks := New(100).Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, line+"\n"+line, chunks[0].Text)
	assert.Equal(t, line, chunks[1].Text)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestSplit_LongLineIsOwnChunk(t *testing.T) {
	long := strings.Repeat("x", 250)
	text := "short\n" + long + "\ntail"

	chunks := New(100).Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "short", chunks[0].Text)
	assert.Equal(t, long, chunks[1].Text)
	assert.Equal(t, "tail", chunks[2].Text)
}

func TestSplit_EarlyCutAtSectionMarker(t *testing.T) {
	body := strings.Repeat("b", 30)
	text := strings.Join([]string{body, SectionMarker, "FILE: next.go", SectionMarker, "x"}, "\n")

	chunks := New(100).Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, body+"\n"+SectionMarker, chunks[0].Text)
	assert.Equal(t, "FILE: next.go\n"+SectionMarker, chunks[1].Text)
	assert.Equal(t, "x", chunks[2].Text)
}

func TestSplit_NoEarlyCutBelowHalf(t *testing.T) {
	text := strings.Join([]string{"tiny", SectionMarker, "more"}, "\n")

	chunks := New(1000).Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplit_NonPositiveSizeUsesDefault(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, New(0).Size())
	assert.Equal(t, DefaultChunkSize, New(-5).Size())
}

func TestSplit_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	inputs := []string{
		"\n",
		"\n\n\n",
		"trailing newline\n",
		SectionMarker,
		SectionMarker + "\n" + SectionMarker + "\n",
	}
	for i := 0; i < 200; i++ {
		var b strings.Builder
		lines := rng.Intn(60)
		for j := 0; j < lines; j++ {
			if j > 0 {
				b.WriteByte('\n')
			}
			switch rng.Intn(6) {
			case 0:
				b.WriteString(SectionMarker)
			case 1:
				b.WriteString(strings.Repeat("L", rng.Intn(300)))
			default:
				b.WriteString(strings.Repeat("c", rng.Intn(40)))
			}
		}
		inputs = append(inputs, b.String())
	}

	for _, size := range []int{1, 10, 64, 200, 1000} {
		c := New(size)
		for _, in := range inputs {
			chunks := c.Split(in)

			if in == "" {
				assert.Empty(t, chunks)
				continue
			}

			// lossless
			require.Equal(t, in, strings.Join(texts(chunks), "\n"))

			for i, ch := range chunks {
				assert.Equal(t, i, ch.Index)
				// bounded overflow: only single-line chunks may exceed the limit
				if countedSize(ch.Text) > size {
					assert.NotContains(t, ch.Text, "\n", "multi-line chunk over limit (size=%d)", size)
				}
			}
		}
	}
}
