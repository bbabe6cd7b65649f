package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode reads a single JSON value from r. Objects decode to *Object and
// numbers to json.Number so their text survives re-encoding.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := DecodeNext(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte) (any, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeNext reads the next value from a token stream. It returns io.EOF
// when the stream is exhausted.
func DecodeNext(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (any, error) {
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		return decodeObject(dec)
	case '[':
		return decodeArray(dec)
	}
	return nil, fmt.Errorf("%w: unexpected delimiter %q", ErrMalformed, d)
}

func decodeObject(dec *json.Decoder) (any, error) {
	obj := NewObject(0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, truncated(err)
		}

		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}

		key, ok := tok.(string)
		if !ok {
			return nil, ErrMalformed
		}

		valueToken, err := dec.Token()
		if err != nil {
			return nil, truncated(err)
		}
		value, err := decodeToken(dec, valueToken)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
}

func decodeArray(dec *json.Decoder) (any, error) {
	arr := make([]any, 0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, truncated(err)
		}

		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}
		value, err := decodeToken(dec, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}

// truncated wraps an error met inside a container. EOF there means the
// document was cut short, not that the stream ended.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", ErrMalformed, err)
}

// Encode renders v as compact JSON.
func Encode(v any) ([]byte, error) {
	if IsNothing(v) {
		return nil, fmt.Errorf("%w: Nothing has no JSON encoding", ErrMalformed)
	}
	return json.Marshal(v)
}
