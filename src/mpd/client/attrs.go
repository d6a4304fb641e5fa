package client

import (
	"bytes"
	"fmt"
)

// Scanner drives decoding of the "key: value\n" response grammar MPD uses
// for status reports, song attributes and database listings.
//
// Unlike the original implementation, which deserialized responses through
// a generic visitor (serde's Deserializer/Visitor/MapAccess traits), Go has
// no equivalent generic decoding framework. Scanner instead exposes the
// grammar as a small, explicit stepper that hand-written per-type decode
// functions drive directly: Peek to look at the next field name before
// deciding whether it belongs to the record being built, Next to consume
// it, NextBinary to pull a blob once a "binary: N" field has announced its
// length.
type Scanner struct {
	input []byte
}

// NewScanner wraps the body of an Ok frame for decoding.
func NewScanner(input []byte) *Scanner {
	return &Scanner{input: input}
}

// Done reports whether the scanner has consumed the entire input.
func (s *Scanner) Done() bool {
	return len(s.input) == 0
}

// Peek returns the key of the next field without consuming it. ok is false
// once the input is exhausted.
func (s *Scanner) Peek() (key string, ok bool, err error) {
	if len(s.input) == 0 {
		return "", false, nil
	}
	idx := bytes.Index(s.input, []byte(": "))
	if idx < 0 {
		return "", false, fmt.Errorf("attrs: can't find key-value separator in %q", s.input)
	}
	return string(s.input[:idx]), true, nil
}

// Next consumes and returns the next key/value pair.
func (s *Scanner) Next() (key, value string, err error) {
	kidx := bytes.Index(s.input, []byte(": "))
	if kidx < 0 {
		return "", "", fmt.Errorf("attrs: can't find key-value separator in %q", s.input)
	}
	key = string(s.input[:kidx])
	rest := s.input[kidx+2:]

	vidx := bytes.IndexByte(rest, '\n')
	if vidx < 0 {
		return "", "", fmt.Errorf("attrs: can't find line separator for key %q", key)
	}
	value = string(rest[:vidx])
	s.input = rest[vidx+1:]
	return key, value, nil
}

// NextBinary consumes a blob of exactly n bytes plus its trailing newline,
// as announced by a preceding "binary: n" field read via Next.
func (s *Scanner) NextBinary(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("attrs: negative binary length %d", n)
	}
	if len(s.input) < n+1 {
		return nil, fmt.Errorf("attrs: truncated binary blob, want %d bytes, have %d", n, len(s.input))
	}
	blob := s.input[:n]
	s.input = s.input[n+1:]
	return blob, nil
}

// SkipValue consumes and discards the next field, for keys a decode
// function doesn't recognize.
func (s *Scanner) SkipValue() error {
	_, _, err := s.Next()
	return err
}

// TakeSeq consumes consecutive fields whose key equals the given key,
// collecting their values, stopping as soon as a different key is peeked
// or the input runs out. This is how repeatable tags (e.g. multiple
// "Artist" lines on one song) are grouped, in place of the original
// implementation's seq_level/is_inner_seq bookkeeping.
func (s *Scanner) TakeSeq(key string) ([]string, error) {
	var values []string
	for {
		nextKey, ok, err := s.Peek()
		if err != nil {
			return nil, err
		}
		if !ok || nextKey != key {
			return values, nil
		}
		_, v, err := s.Next()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}
