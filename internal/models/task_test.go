package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModeDefaultsToFull(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, mode)
}

func TestParseModeRejectsUnknown(t *testing.T) {
	_, err := ParseMode("verbose")
	assert.Error(t, err)
}

func TestParseSizeDefaultsTo16x9(t *testing.T) {
	size, err := ParseSize("")
	require.NoError(t, err)
	assert.Equal(t, Size16x9, size)
}

func TestParseSizeAcceptsAllKnownSizes(t *testing.T) {
	for _, s := range []string{"16:9", "a4-landscape", "a4-portrait", "750", "1080"} {
		size, err := ParseSize(s)
		require.NoError(t, err, "size %q", s)
		assert.Equal(t, Size(s), size)
	}
}

func TestParseSizeRejectsUnknown(t *testing.T) {
	_, err := ParseSize("a3")
	assert.Error(t, err)
}

func TestTaskFingerprintIsStable(t *testing.T) {
	a := TaskFingerprint("hello", ModeSummary, SizeMobile)
	b := TaskFingerprint("hello", ModeSummary, SizeMobile)
	assert.Equal(t, a, b)
}

func TestTaskFingerprintVariesWithInput(t *testing.T) {
	base := TaskFingerprint("hello", ModeFull, Size16x9)
	assert.NotEqual(t, base, TaskFingerprint("hello!", ModeFull, Size16x9))
	assert.NotEqual(t, base, TaskFingerprint("hello", ModeSummary, Size16x9))
	assert.NotEqual(t, base, TaskFingerprint("hello", ModeFull, SizeA4Portrait))
}

func TestTerminal(t *testing.T) {
	assert.False(t, (&GenerationTask{Status: TaskStatusPending}).Terminal())
	assert.False(t, (&GenerationTask{Status: TaskStatusProcessing}).Terminal())
	assert.True(t, (&GenerationTask{Status: TaskStatusCompleted}).Terminal())
	assert.True(t, (&GenerationTask{Status: TaskStatusFailed}).Terminal())
}
