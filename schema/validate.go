package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Issue is a single validation finding at a specific location in the value.
type Issue struct {
	// Path is the dotted location of the offending field ("apiKey",
	// "auth.token", "chunks.3"). Empty for issues at the root value.
	Path string

	// Message describes why the value at Path failed validation.
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Issues is the set of findings from one validation pass.
type Issues []Issue

func (is Issues) Error() string {
	if len(is) == 0 {
		return "schema: no issues"
	}
	msgs := make([]string, len(is))
	for n, i := range is {
		msgs[n] = i.String()
	}
	return "schema: " + strings.Join(msgs, "; ")
}

// Paths returns the paths of all issues, in order.
func (is Issues) Paths() []string {
	out := make([]string, len(is))
	for n, i := range is {
		out[n] = i.Path
	}
	return out
}

// Validate checks the value against the schema and returns all findings.
// An empty result means the value conforms.
func (s JSON) Validate(value any) Issues {
	v := &visit{}
	s.check(v, value)
	return v.issues
}

// Conform validates the value and returns the normalized form: for object
// schemas, properties absent from the input whose schema declares a default
// are filled in. The input is never mutated. When validation fails the
// original value is returned alongside the issues.
func (s JSON) Conform(value any) (any, Issues) {
	v := &visit{}
	out := s.conform(v, value)
	if len(v.issues) > 0 {
		return value, v.issues
	}
	return out, nil
}

// visit tracks the current path and accumulates issues during a pass.
type visit struct {
	path   []string
	issues Issues
}

func (v *visit) fail(format string, args ...any) {
	v.issues = append(v.issues, Issue{
		Path:    strings.Join(v.path, "."),
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *visit) push(seg string) { v.path = append(v.path, seg) }
func (v *visit) pop()            { v.path = v.path[:len(v.path)-1] }

func (s JSON) check(v *visit, value any) {
	if value == nil {
		if s.Type != "" {
			v.fail("expected %s, got nil", s.Type)
		}
		return
	}

	if len(s.Enum) > 0 {
		for _, allowed := range s.Enum {
			if reflect.DeepEqual(value, allowed) {
				return
			}
		}
		v.fail("value %v is not one of the allowed values %v", value, s.Enum)
		return
	}

	switch s.Type {
	case "":
		// Accepts anything.
	case "string":
		s.checkString(v, value)
	case "integer":
		s.checkInteger(v, value)
	case "number":
		s.checkNumber(v, value)
	case "boolean":
		if _, ok := value.(bool); !ok {
			v.fail("expected boolean, got %T", value)
		}
	case "array":
		s.checkArray(v, value)
	case "object":
		s.checkObject(v, value)
	default:
		v.fail("schema declares unknown type %q", s.Type)
	}
}

func (s JSON) checkString(v *visit, value any) {
	str, ok := value.(string)
	if !ok {
		v.fail("expected string, got %T", value)
		return
	}
	if s.MinLength != nil && len(str) < *s.MinLength {
		v.fail("string length %d is less than minimum %d", len(str), *s.MinLength)
	}
	if s.MaxLength != nil && len(str) > *s.MaxLength {
		v.fail("string length %d is greater than maximum %d", len(str), *s.MaxLength)
	}
	if s.Pattern != "" {
		matched, err := regexp.MatchString(s.Pattern, str)
		if err != nil {
			v.fail("invalid pattern %q: %v", s.Pattern, err)
		} else if !matched {
			v.fail("string does not match pattern %s", s.Pattern)
		}
	}
}

func (s JSON) checkInteger(v *visit, value any) {
	num, ok := asFloat(value)
	if !ok {
		v.fail("expected integer, got %T", value)
		return
	}
	if num != float64(int64(num)) {
		v.fail("expected integer, got float with decimal: %v", value)
		return
	}
	s.checkBounds(v, num)
}

func (s JSON) checkNumber(v *visit, value any) {
	num, ok := asFloat(value)
	if !ok {
		v.fail("expected number, got %T", value)
		return
	}
	s.checkBounds(v, num)
}

func (s JSON) checkBounds(v *visit, num float64) {
	if s.Minimum != nil && num < *s.Minimum {
		v.fail("value %v is less than minimum %v", num, *s.Minimum)
	}
	if s.Maximum != nil && num > *s.Maximum {
		v.fail("value %v is greater than maximum %v", num, *s.Maximum)
	}
}

func (s JSON) checkArray(v *visit, value any) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		v.fail("expected array, got %T", value)
		return
	}
	if s.Items == nil {
		return
	}
	for i := 0; i < rv.Len(); i++ {
		v.push(strconv.Itoa(i))
		s.Items.check(v, rv.Index(i).Interface())
		v.pop()
	}
}

func (s JSON) checkObject(v *visit, value any) {
	obj, ok := asMap(value)
	if !ok {
		v.fail("expected object, got %T", value)
		return
	}
	for _, req := range s.Required {
		if _, exists := obj[req]; !exists {
			v.push(req)
			v.fail("required field is missing")
			v.pop()
		}
	}
	for key, val := range obj {
		prop, declared := s.Properties[key]
		if !declared {
			continue
		}
		v.push(key)
		prop.check(v, val)
		v.pop()
	}
}

// conform mirrors check but builds the normalized value on the way down.
func (s JSON) conform(v *visit, value any) any {
	if s.Type != "object" {
		s.check(v, value)
		return value
	}

	if value == nil {
		value = map[string]any{}
	}
	obj, ok := asMap(value)
	if !ok {
		v.fail("expected object, got %T", value)
		return value
	}

	out := make(map[string]any, len(obj))
	for key, val := range obj {
		if prop, declared := s.Properties[key]; declared {
			v.push(key)
			out[key] = prop.conform(v, val)
			v.pop()
		} else {
			out[key] = val
		}
	}
	for key, prop := range s.Properties {
		if _, present := out[key]; !present && prop.Default != nil {
			out[key] = prop.Default
		}
	}
	for _, req := range s.Required {
		if _, exists := out[req]; !exists {
			v.push(req)
			v.fail("required field is missing")
			v.pop()
		}
	}
	return out
}

func asFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, false
		}
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, false
		}
		return obj, true
	}
}
