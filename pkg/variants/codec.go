package variants

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"errors"
	"fmt"
)

// ErrUnsupportedEncoding is returned by DecodePairs for blobs written by an
// unknown encoder version.
var ErrUnsupportedEncoding = errors.New("unsupported replacement encoding")

const encodingVersion = 1

type envelope struct {
	Version int
	Pairs   []Pair
}

// EncodePairs serializes pairs into a text blob suitable for a property
// value. DecodePairs reverses it.
func EncodePairs(pairs []Pair) (string, error) {
	return encodeVersion(encodingVersion, pairs)
}

func encodeVersion(version int, pairs []Pair) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(envelope{Version: version, Pairs: pairs}); err != nil {
		return "", fmt.Errorf("encode replacements: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodePairs parses a blob produced by EncodePairs.
func DecodePairs(blob string) ([]Pair, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("decode replacements: %w", err)
	}
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode replacements: %w", err)
	}
	if env.Version != encodingVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedEncoding, env.Version)
	}
	return env.Pairs, nil
}
