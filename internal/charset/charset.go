package charset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Candidate is one character encoding the tool knows how to apply
type Candidate struct {
	Name    string
	Aliases []string
	cm      *charmap.Charmap
	enc     encoding.Encoding
}

// registry lists every supported encoding. Order matters for ties in rankings.
var registry = []Candidate{
	{Name: "cp1252", Aliases: []string{"windows-1252", "1252"}, cm: charmap.Windows1252},
	{Name: "iso-8859-1", Aliases: []string{"iso8859-1"}, cm: charmap.ISO8859_1},
	{Name: "cp850", Aliases: []string{"ibm850", "850"}, cm: charmap.CodePage850},
	{Name: "cp437", Aliases: []string{"ibm437", "437"}, cm: charmap.CodePage437},
	{Name: "iso-8859-15", Aliases: []string{"iso8859-15", "latin9", "latin-9"}, cm: charmap.ISO8859_15},
	{Name: "utf-8", Aliases: []string{"utf8"}, enc: unicode.UTF8},
	{Name: "latin1", Aliases: []string{"latin-1", "l1"}, cm: charmap.ISO8859_1},
}

// EstimatorCandidates are the encodings scored by the encoding confidence estimator
var EstimatorCandidates = []string{"cp1252", "iso-8859-1", "cp850", "utf-8", "latin1"}

// FallbackChain is the order in which readers try encodings when none is given
var FallbackChain = []string{"cp1252", "iso-8859-1", "cp850", "cp437", "utf-8"}

// Normalize lower-cases a label and resolves aliases to the canonical candidate name.
// Unknown labels are returned lower-cased.
func Normalize(label string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), "_", "-")
	for _, c := range registry {
		if c.Name == key {
			return c.Name
		}
		for _, alias := range c.Aliases {
			if alias == key {
				return c.Name
			}
		}
	}
	return key
}

// Lookup finds a candidate by name or alias
func Lookup(label string) (Candidate, bool) {
	name := Normalize(label)
	for _, c := range registry {
		if c.Name == name {
			return c, true
		}
	}
	return Candidate{}, false
}

// MustLookup is Lookup for names taken from the static lists in this package
func MustLookup(label string) Candidate {
	c, ok := Lookup(label)
	if !ok {
		panic(fmt.Sprintf("charset: unknown encoding %q", label))
	}
	return c
}

// All returns every registered candidate
func All() []Candidate {
	out := make([]Candidate, len(registry))
	copy(out, registry)
	return out
}

// RoundTrip encodes text with the candidate and decodes it again.
// Runes the candidate cannot represent are dropped.
func (c Candidate) RoundTrip(text string) string {
	if c.cm != nil {
		var b strings.Builder
		b.Grow(len(text))
		for _, r := range text {
			if encoded, ok := c.cm.EncodeRune(r); ok {
				b.WriteRune(c.cm.DecodeByte(encoded))
			}
		}
		return b.String()
	}

	encoded, err := c.enc.NewEncoder().String(text)
	if err != nil {
		return ""
	}
	decoded, err := c.enc.NewDecoder().String(encoded)
	if err != nil {
		return ""
	}
	return decoded
}

// Encode converts text to bytes, failing on the first rune the candidate cannot represent
func (c Candidate) Encode(text string) ([]byte, error) {
	if c.cm == nil {
		if !utf8.ValidString(text) {
			return nil, fmt.Errorf("%s: invalid text", c.Name)
		}
		return []byte(text), nil
	}

	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := c.cm.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("%s: cannot encode %q", c.Name, r)
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode converts raw bytes to text. It fails when the bytes are not valid in
// the candidate encoding.
func (c Candidate) Decode(raw []byte) (string, error) {
	if c.cm == nil {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("%s: invalid byte sequence", c.Name)
		}
		return string(raw), nil
	}

	decoded, err := c.cm.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Name, err)
	}
	if strings.ContainsRune(string(decoded), utf8.RuneError) {
		return "", fmt.Errorf("%s: undefined byte in input", c.Name)
	}
	return string(decoded), nil
}
