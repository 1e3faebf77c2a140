package grammar

import (
	"encoding/json"
	"fmt"

	"github.com/FinalScave/FastCodeHighlight/errors"
)

// parseTree unmarshals raw JSON text into a generic tree of map[string]any,
// []any, string, float64, and bool, exactly as encoding/json decodes into
// interface{}. Grammars are treated as an opaque JSON document walked with
// the small accessors below rather than bound to a fixed struct shape, per
// the boundary the calc example in the original llx tree/ package does not
// need to cross but a declarative-grammar format does.
//
// sourceName identifies data for position-aware error messages (typically
// the grammar file path, or "" when the caller has none). A malformed-JSON
// failure is the one error this package can attach a real line/col to:
// encoding/json reports the byte offset it choked on, and that offset
// still lines up with data. Once the JSON parses, the tree accessors below
// walk a generic map[string]interface{} that no longer carries position
// information, so every error past this point carries none either.
func parseTree (data []byte, sourceName string) (map[string]interface{}, error) {
	var tree map[string]interface{}
	if e := json.Unmarshal(data, &tree); e != nil {
		if se, ok := e.(*json.SyntaxError); ok {
			line, col := lineColAt(data, se.Offset)
			return nil, errors.New(errors.JsonInvalid, fmt.Sprintf("invalid JSON: %s", se), sourceName, line, col)
		}
		return nil, errors.Format(errors.JsonInvalid, "invalid JSON: %s", e)
	}
	return tree, nil
}

// lineColAt converts a byte offset into data to a 1-based line and column,
// matching how encoding/json.SyntaxError.Offset counts bytes consumed.
func lineColAt (data []byte, offset int64) (int, int) {
	line, col := 1, 1
	for i := 0; int64(i) < offset && i < len(data); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// getString reads a required string property from obj.
func getString (obj map[string]interface{}, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", errors.Format(errors.PropertyExpected, "missing property %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Format(errors.PropertyInvalid, "property %q must be a string", key)
	}
	return s, nil
}

// getOptString reads an optional string property, returning def if absent.
func getOptString (obj map[string]interface{}, key, def string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Format(errors.PropertyInvalid, "property %q must be a string", key)
	}
	return s, nil
}

// getObject reads a required object property from obj.
func getObject (obj map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := obj[key]
	if !ok {
		return nil, errors.Format(errors.PropertyExpected, "missing property %q", key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Format(errors.PropertyInvalid, "property %q must be an object", key)
	}
	return m, nil
}

// getOptObject reads an optional object property, returning nil if absent.
func getOptObject (obj map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := obj[key]
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Format(errors.PropertyInvalid, "property %q must be an object", key)
	}
	return m, nil
}

// getArray reads a required array property from obj.
func getArray (obj map[string]interface{}, key string) ([]interface{}, error) {
	v, ok := obj[key]
	if !ok {
		return nil, errors.Format(errors.PropertyExpected, "missing property %q", key)
	}
	a, ok := v.([]interface{})
	if !ok {
		return nil, errors.Format(errors.PropertyInvalid, "property %q must be an array", key)
	}
	return a, nil
}

// asStringSlice converts a decoded JSON array of strings.
func asStringSlice (arr []interface{}, propName string) ([]string, error) {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Format(errors.PropertyInvalid, "every element of %q must be a string", propName)
		}
		out = append(out, s)
	}
	return out, nil
}
