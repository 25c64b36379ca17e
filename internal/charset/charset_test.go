package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"cp1252":       "cp1252",
		"Windows-1252": "cp1252",
		"UTF8":         "utf-8",
		"iso_8859_1":   "iso-8859-1",
		"Latin-1":      "latin1",
		" cp850 ":      "cp850",
		"koi8-r":       "koi8-r",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestRoundTrip_KeepsLatinText(t *testing.T) {
	for _, name := range EstimatorCandidates {
		c := MustLookup(name)
		assert.Equal(t, "Müller Straße", c.RoundTrip("Müller Straße"), name)
	}
}

func TestRoundTrip_DropsUnencodableRunes(t *testing.T) {
	c := MustLookup("cp850")
	// The euro sign has no cp850 code point.
	assert.Equal(t, "Preis 5", c.RoundTrip("Preis 5€"))

	c = MustLookup("cp1252")
	assert.Equal(t, "Preis 5€", c.RoundTrip("Preis 5€"))
	assert.Equal(t, "abc", c.RoundTrip("a�bc"))
}

func TestDecode(t *testing.T) {
	c := MustLookup("cp850")
	text, err := c.Decode([]byte{'M', 0x81, 'l', 'l', 'e', 'r'})
	require.NoError(t, err)
	assert.Equal(t, "Müller", text)

	c = MustLookup("cp1252")
	text, err = c.Decode([]byte{'M', 0xFC, 'l', 'l', 'e', 'r'})
	require.NoError(t, err)
	assert.Equal(t, "Müller", text)

	c = MustLookup("utf-8")
	_, err = c.Decode([]byte{'M', 0xFC, 'l'})
	assert.Error(t, err)
	text, err = c.Decode([]byte("Müller"))
	require.NoError(t, err)
	assert.Equal(t, "Müller", text)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("ebcdic")
	assert.False(t, ok)
	assert.Panics(t, func() { MustLookup("ebcdic") })
}

func TestEncode(t *testing.T) {
	b, err := MustLookup("cp850").Encode("Müller")
	require.NoError(t, err)
	assert.Equal(t, []byte{'M', 0x81, 'l', 'l', 'e', 'r'}, b)

	_, err = MustLookup("cp850").Encode("5 €")
	assert.Error(t, err)

	b, err = MustLookup("utf-8").Encode("€")
	require.NoError(t, err)
	assert.Equal(t, []byte("€"), b)
}
