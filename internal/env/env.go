// Package env fills configuration structs from environment variables.
//
// Fields opt in with an env tag. Names are relative to the loader's prefix, so
// with WithPrefix("LEDGER_") the tag env:"DB_DSN" reads LEDGER_DB_DSN. The
// unprefixed option reads a name verbatim, for standard variables such as
// OTEL_SERVICE_NAME:
//
//	type DatabaseConfig struct {
//		Driver string `env:"DB_DRIVER" default:"sqlite"`
//		DSN    string `env:"DB_DSN"`
//	}
//
//	type ObservabilityConfig struct {
//		ServiceName string `env:"OTEL_SERVICE_NAME,unprefixed" default:"ledger"`
//	}
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Validator is implemented by config sections that check their own invariants.
type Validator interface {
	Validate() error
}

// ErrInvalidValue is returned when a variable cannot be parsed into its field.
type ErrInvalidValue struct {
	Field  string // dotted path from the root struct, e.g. "Database.MaxOpenConns"
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrNotStructPointer is returned when Load is called with a non-pointer or non-struct argument.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return fmt.Sprintf("env.Load: argument must be a pointer to struct, got %s", e.Type)
}

// ErrUnsupportedType is returned when a tagged field has a kind the loader cannot set.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Kind)
}

// Option configures a Load call.
type Option func(*loader)

// WithPrefix prepends prefix to every variable name not tagged unprefixed.
func WithPrefix(prefix string) Option {
	return func(l *loader) { l.prefix = prefix }
}

// WithLookup replaces os.LookupEnv as the variable source.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(l *loader) { l.lookup = lookup }
}

type loader struct {
	prefix string
	lookup func(string) (string, bool)
}

var durationType = reflect.TypeFor[time.Duration]()
var timeType = reflect.TypeFor[time.Time]()

// Load fills the struct pointed to by v.
//
// A variable that is unset falls back to the field's default tag; a variable set
// to the empty string is applied as-is. Nested structs are loaded recursively and
// validated bottom-up through Validator once their own fields parsed cleanly.
// Every unparsable variable is reported, joined into one error, rather than only
// the first.
//
// Supported field kinds: string, bool, signed integers and time.Duration.
func Load(v any, opts ...Option) error {
	ptrVal := reflect.ValueOf(v)
	if ptrVal.Kind() != reflect.Pointer || ptrVal.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}

	l := &loader{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}

	return l.loadSection(ptrVal.Elem(), "")
}

// loadSection parses one struct and then runs its Validate hook.
func (l *loader) loadSection(val reflect.Value, path string) error {
	if err := l.parseFields(val, path); err != nil {
		return err
	}

	if validator, ok := val.Addr().Interface().(Validator); ok {
		if err := validator.Validate(); err != nil {
			if path == "" {
				return err
			}
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (l *loader) parseFields(val reflect.Value, path string) error {
	typ := val.Type()
	var errs []error

	for i := range val.NumField() {
		field := val.Field(i)
		structField := typ.Field(i)
		if !field.CanSet() {
			continue
		}

		fieldPath := structField.Name
		if path != "" {
			fieldPath = path + "." + structField.Name
		}

		if field.Kind() == reflect.Struct && field.Type() != timeType {
			if err := l.loadSection(field, fieldPath); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		name, ok := l.varName(structField.Tag)
		if !ok {
			continue
		}

		raw, exists := l.lookup(name)
		if !exists {
			raw, exists = structField.Tag.Lookup("default")
			if !exists {
				continue
			}
		}

		if err := setField(field, raw); err != nil {
			var unsupported ErrUnsupportedType
			if errors.As(err, &unsupported) {
				return err
			}
			errs = append(errs, ErrInvalidValue{Field: fieldPath, EnvVar: name, Value: raw, Err: err})
		}
	}

	return errors.Join(errs...)
}

// varName resolves the variable a field reads from its env tag.
func (l *loader) varName(tag reflect.StructTag) (string, bool) {
	spec, ok := tag.Lookup("env")
	if !ok || spec == "" {
		return "", false
	}

	name, options, _ := strings.Cut(spec, ",")
	for opt := range strings.SplitSeq(options, ",") {
		if opt == "unprefixed" {
			return name, true
		}
	}
	return l.prefix + name, true
}

func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(i)
	default:
		return ErrUnsupportedType{Kind: field.Kind().String()}
	}
	return nil
}
