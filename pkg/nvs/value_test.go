package nvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueRendering(t *testing.T) {
	testCases := []struct {
		name  string
		value Value
		want  string
	}{
		{"unsigned scalar", UintValue(42), "42"},
		{"signed scalar", IntValue(-7), "-7"},
		{"string", StringValue("home"), "home"},
		{"bytes", BytesValue{0xde, 0xad, 0xbe, 0xef}, "b'deadbeef'"},
		{"empty bytes", BytesValue{}, "b''"},
		{"blob index", BlobIndexValue{Size: 4096, Chunks: 2}, "2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.value.String())
		})
	}
}

func TestPrintable(t *testing.T) {
	assert.True(t, printable("plain ascii"))
	assert.True(t, printable("émoji 🎯"))
	assert.False(t, printable("tab\tseparated"))
	assert.False(t, printable(string([]byte{0xff, 0xfe})))
	assert.False(t, printable("null\x00inside"))
}
