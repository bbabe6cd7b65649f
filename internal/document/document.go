// Package document decodes query inputs into the jsonvalue model. JSON,
// JSON with comments, YAML and newline delimited JSON are supported; every
// format yields a sequence of documents.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/jacoelho/jpq/internal/jsonvalue"
)

// Format identifies an input encoding.
type Format int

const (
	JSON Format = iota
	HuJSON
	YAML
	NDJSON
)

var formatNames = map[string]Format{
	"json":   JSON,
	"hujson": HuJSON,
	"jsonc":  HuJSON,
	"yaml":   YAML,
	"yml":    YAML,
	"ndjson": NDJSON,
	"jsonl":  NDJSON,
}

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case HuJSON:
		return "hujson"
	case YAML:
		return "yaml"
	case NDJSON:
		return "ndjson"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat resolves a format name, case insensitive.
func ParseFormat(name string) (Format, error) {
	f, ok := formatNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return f, nil
}

// FormatOf guesses the format from a file extension, defaulting to JSON.
func FormatOf(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, ok := formatNames[strings.ToLower(ext)]; ok {
		return f
	}
	return JSON
}

// Documents yields the documents in r. JSON and HuJSON inputs hold exactly
// one document. Iteration stops after the first error.
func Documents(r io.Reader, f Format) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		switch f {
		case JSON:
			v, err := jsonvalue.Decode(r)
			if err != nil {
				yield(nil, fmt.Errorf("%w: %w", ErrDecode, err))
				return
			}
			yield(v, nil)
		case HuJSON:
			v, err := decodeHuJSON(r)
			if err != nil {
				yield(nil, fmt.Errorf("%w: %w", ErrDecode, err))
				return
			}
			yield(v, nil)
		case NDJSON:
			streamJSON(r, yield)
		case YAML:
			streamYAML(r, yield)
		default:
			yield(nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f))
		}
	}
}

// Decode reads exactly one document. Multi-document inputs are rejected.
func Decode(r io.Reader, f Format) (any, error) {
	var (
		doc   any
		count int
	)
	for v, err := range Documents(r, f) {
		if err != nil {
			return nil, err
		}
		doc = v
		count++
	}
	switch count {
	case 0:
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	case 1:
		return doc, nil
	}
	return nil, fmt.Errorf("%w: expected one document, found %d", ErrDecode, count)
}

func decodeHuJSON(r io.Reader) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	ast, err := hujson.Parse(b)
	if err != nil {
		return nil, err
	}
	ast.Standardize()
	return jsonvalue.DecodeBytes(ast.Pack())
}

func streamJSON(r io.Reader, yield func(any, error) bool) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	for i := 0; ; i++ {
		v, err := jsonvalue.DecodeNext(dec)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("%w: document %d: %w", ErrDecode, i, err))
			return
		}
		if !yield(v, nil) {
			return
		}
	}
}
