// Package wrapper provides the thin boundary around the external transcoder:
// declarative argument formatting for parameter structs and a process runner
// streaming diagnostic output line by line.
package wrapper

import (
	"fmt"
	"reflect"
	"strings"
)

// StreamSuffixer is implemented by parameter structs whose suffix-tagged
// flags carry a stream specifier like ":v" or ":a".
type StreamSuffixer interface {
	StreamSuffix() string
}

// Args renders the exported fields of a parameter struct into an ordered flat
// argument list. Fields are tagged `arg:"-flag[,option...]"` with options:
//
//   - omitempty: skip the flag when the value is the zero value
//   - default=<text>: skip the flag when the rendered value equals the text
//   - suffix: append the struct's StreamSuffix() to the flag name
//
// Booleans emit the bare flag when true. Slices repeat the flag per element.
// Fields of type func() string are deferred and called at render time.
// Untagged embedded structs are flattened in declaration order.
func Args(v any) ([]string, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("args: expected struct, got %T", v)
	}

	suffix := ""
	if s, ok := v.(StreamSuffixer); ok {
		suffix = s.StreamSuffix()
	}
	return structArgs(rv, suffix)
}

func structArgs(rv reflect.Value, suffix string) ([]string, error) {
	var args []string
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		value := rv.Field(i)

		tag := field.Tag.Get("arg")
		if tag == "" {
			if field.Anonymous && value.Kind() == reflect.Struct {
				nested, err := structArgs(value, suffix)
				if err != nil {
					return nil, err
				}
				args = append(args, nested...)
			}
			continue
		}
		if tag == "-" || !field.IsExported() {
			continue
		}

		flag, opts := parseTag(tag)
		if opts.suffix {
			flag += suffix
		}

		rendered, err := fieldArgs(flag, value, opts)
		if err != nil {
			return nil, fmt.Errorf("args: field %s: %w", field.Name, err)
		}
		args = append(args, rendered...)
	}
	return args, nil
}

type tagOptions struct {
	omitempty  bool
	suffix     bool
	defaultVal string
	hasDefault bool
}

func parseTag(tag string) (string, tagOptions) {
	parts := strings.Split(tag, ",")
	var opts tagOptions
	for _, opt := range parts[1:] {
		switch {
		case opt == "omitempty":
			opts.omitempty = true
		case opt == "suffix":
			opts.suffix = true
		case strings.HasPrefix(opt, "default="):
			opts.defaultVal = strings.TrimPrefix(opt, "default=")
			opts.hasDefault = true
		}
	}
	return parts[0], opts
}

func fieldArgs(flag string, value reflect.Value, opts tagOptions) ([]string, error) {
	switch {
	case value.Kind() == reflect.Bool:
		if value.Bool() {
			return []string{flag}, nil
		}
		return nil, nil

	case value.Kind() == reflect.Func:
		deferred, ok := value.Interface().(func() string)
		if !ok {
			return nil, fmt.Errorf("unsupported deferred type %s", value.Type())
		}
		if deferred == nil {
			return nil, nil
		}
		text := deferred()
		if text == "" && opts.omitempty {
			return nil, nil
		}
		return []string{flag, text}, nil

	case value.Kind() == reflect.Slice:
		var args []string
		for i := 0; i < value.Len(); i++ {
			args = append(args, flag, render(value.Index(i)))
		}
		return args, nil

	default:
		if opts.omitempty && value.IsZero() {
			return nil, nil
		}
		text := render(value)
		if opts.hasDefault && text == opts.defaultVal {
			return nil, nil
		}
		return []string{flag, text}, nil
	}
}

func render(value reflect.Value) string {
	if s, ok := value.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(value.Interface())
}
