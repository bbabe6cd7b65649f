package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/jpq/internal/jsonvalue"
)

func streamYAML(r io.Reader, yield func(any, error) bool) {
	dec := yaml.NewDecoder(r, yaml.UseOrderedMap())
	for i := 0; ; i++ {
		var raw any
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("%w: document %d: %v", ErrDecode, i, err))
			return
		}
		v, err := fromYAML(raw)
		if err != nil {
			yield(nil, fmt.Errorf("%w: document %d: %w", ErrDecode, i, err))
			return
		}
		if !yield(v, nil) {
			return
		}
	}
}

// fromYAML maps decoded YAML onto the JSON model: mappings become ordered
// objects with string keys and numbers become json.Number.
func fromYAML(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string:
		return v, nil
	case yaml.MapSlice:
		obj := jsonvalue.NewObject(len(v))
		for _, item := range v {
			value, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(keyString(item.Key), value)
		}
		return obj, nil
	case map[string]any:
		obj := jsonvalue.NewObject(len(v))
		for k, item := range v {
			value, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			obj.Set(k, value)
		}
		return obj, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			value, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			out[i] = value
		}
		return out, nil
	case int:
		return json.Number(strconv.Itoa(v)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %v", ErrUnrepresentable, v)
		}
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnrepresentable, v)
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// EncodeYAML renders a value of the JSON model as YAML, keeping member
// order.
func EncodeYAML(v any) ([]byte, error) {
	if jsonvalue.IsNothing(v) {
		return nil, fmt.Errorf("%w: Nothing", ErrUnrepresentable)
	}
	return yaml.Marshal(toYAML(v))
}

func toYAML(v any) any {
	switch v := v.(type) {
	case *jsonvalue.Object:
		out := make(yaml.MapSlice, 0, v.Len())
		for k, item := range v.All() {
			out = append(out, yaml.MapItem{Key: k, Value: toYAML(item)})
		}
		return out
	case map[string]any:
		obj := jsonvalue.NewObject(len(v))
		for k, item := range jsonvalue.Members(v) {
			obj.Set(k.Name, item)
		}
		return toYAML(obj)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = toYAML(item)
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	}
	return v
}
