package embedded

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeftor/captionctl/internal/caption"
)

func TestSamplesCompile(t *testing.T) {
	names, err := ListSamples()
	require.NoError(t, err)
	assert.Equal(t, []string{"basics", "phrases", "rhythm", "timed"}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			text, err := GetSample(name)
			require.NoError(t, err)
			_, err = caption.Compile(text, caption.NewPhraseStore())
			assert.NoError(t, err)
		})
	}
}

func TestGetSampleUnknown(t *testing.T) {
	_, err := GetSample("missing")
	assert.Error(t, err)

	text, err := GetSample("timed.cap")
	require.NoError(t, err)
	assert.Contains(t, text, "Chapter One")
}

func TestExtractSamples(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	written, err := ExtractSamples(dir, false)
	require.NoError(t, err)
	assert.Len(t, written, 4)

	content, err := os.ReadFile(filepath.Join(dir, "basics.cap"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "GET READY")

	_, err = ExtractSamples(dir, false)
	assert.Error(t, err)

	_, err = ExtractSamples(dir, true)
	assert.NoError(t, err)
}
