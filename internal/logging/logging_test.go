package logging

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New("warn", "json", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	logger, err := New("error", "console", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", "json", false)
	assert.Error(t, err)

	_, err = New("info", "xml", false)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...(truncated)", Truncate("abcdef", 2))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	// "é" is two bytes; cutting at 2 would split it
	got := Truncate("aé-bc", 2)
	assert.Equal(t, "a...(truncated)", got)
	assert.True(t, utf8.ValidString(got))

	got = Truncate("日本語のテキスト", 4)
	assert.Equal(t, "日...(truncated)", got)
	assert.True(t, utf8.ValidString(got))

	assert.Equal(t, "aé...(truncated)", Truncate("aé-bc", 3))
}
