// Package variable implements typed, domain-scoped persisted variables on
// top of an opaque key-value store. Each domain (a chat id, user id, or any
// other string; empty means global) maps to one JSON object holding every
// variable value set in that domain.
package variable

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tgbotkit/tgbotkit/storage"
)

// keyPrefix namespaces variable buckets in the backing store.
const keyPrefix = "variables:"

// ErrTypeMismatch is returned by SetString when the raw value cannot be
// coerced into the variable's declared type. The stored value is left
// untouched.
var ErrTypeMismatch = fmt.Errorf("value does not match variable type")

// Var is the type-erased view of a variable, used by bots that keep a
// heterogeneous variable registry (e.g. for a /var command).
type Var interface {
	Name() string
	// SetString coerces and stores a raw textual value.
	SetString(ctx context.Context, domain, raw string) error
	// Reset removes the stored value, reverting to the default.
	Reset(ctx context.Context, domain string) error
	// Describe renders "name: value" for the global domain.
	Describe(ctx context.Context) string
}

// Variable is a named value of type T persisted per domain. The zero domain
// ("") addresses the global bucket.
type Variable[T any] struct {
	name string
	def  T
	st   storage.Storage
}

// New creates a variable with the given name and default value. The name is
// the stable identifier inside every domain bucket; it must be unique among
// the variables sharing a store.
func New[T any](name string, def T, st storage.Storage) *Variable[T] {
	return &Variable[T]{name: name, def: def, st: st}
}

// Name returns the variable's identifier.
func (v *Variable[T]) Name() string { return v.name }

// BucketKey returns the storage key of a domain's bucket.
func BucketKey(domain string) string { return keyPrefix + domain }

func (v *Variable[T]) bucket(ctx context.Context, domain string) map[string]json.RawMessage {
	raw, err := v.st.Get(ctx, BucketKey(domain))
	if err != nil || raw == "" {
		return map[string]json.RawMessage{}
	}

	var b map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		// Malformed bucket reads as empty; the next write repairs it.
		return map[string]json.RawMessage{}
	}
	return b
}

func (v *Variable[T]) writeBucket(ctx context.Context, domain string, b map[string]json.RawMessage) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bucket for domain %q: %w", domain, err)
	}
	if err := v.st.Set(ctx, BucketKey(domain), string(data)); err != nil {
		return fmt.Errorf("failed to persist bucket for domain %q: %w", domain, err)
	}
	return nil
}

// Get returns the value stored in the domain, or the default when unset or
// unreadable.
func (v *Variable[T]) Get(ctx context.Context, domain string) T {
	raw, ok := v.bucket(ctx, domain)[v.name]
	if !ok {
		return v.def
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return v.def
	}
	return value
}

// Set stores value in the domain bucket. The whole bucket is re-serialized
// (read-modify-write); concurrent writers to the same domain race and the
// last writer wins.
func (v *Variable[T]) Set(ctx context.Context, domain string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for variable %q: %w", v.name, err)
	}

	b := v.bucket(ctx, domain)
	b[v.name] = json.RawMessage(data)
	return v.writeBucket(ctx, domain, b)
}

// SetString stores a textual value. When T is string the raw text is stored
// as-is; otherwise it is parsed as JSON into T, and ErrTypeMismatch is
// returned (without mutation) when parsing fails or yields the wrong shape.
func (v *Variable[T]) SetString(ctx context.Context, domain, raw string) error {
	if _, isString := any(v.def).(string); isString {
		data, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to encode value for variable %q: %w", v.name, err)
		}
		b := v.bucket(ctx, domain)
		b[v.name] = json.RawMessage(data)
		return v.writeBucket(ctx, domain, b)
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return ErrTypeMismatch
	}
	// json.Unmarshal into any succeeds for every valid JSON value, so an
	// interface-typed T needs no further check; concrete types already
	// rejected mismatches above.
	return v.Set(ctx, domain, value)
}

// Reset deletes the stored value from the domain bucket so Get falls back
// to the default. Other domains are unaffected.
func (v *Variable[T]) Reset(ctx context.Context, domain string) error {
	b := v.bucket(ctx, domain)
	if _, ok := b[v.name]; !ok {
		return nil
	}
	delete(b, v.name)
	return v.writeBucket(ctx, domain, b)
}

// Describe renders "name: value" for the global domain.
func (v *Variable[T]) Describe(ctx context.Context) string {
	return fmt.Sprintf("%s: %v", v.name, v.Get(ctx, ""))
}

// Bool is a boolean variable with a toggle operation.
type Bool struct {
	Variable[bool]
}

// NewBool creates a boolean variable.
func NewBool(name string, def bool, st storage.Storage) *Bool {
	return &Bool{Variable[bool]{name: name, def: def, st: st}}
}

// Toggle flips the current value in the domain and returns the new value.
func (b *Bool) Toggle(ctx context.Context, domain string) (bool, error) {
	next := !b.Get(ctx, domain)
	if err := b.Set(ctx, domain, next); err != nil {
		return false, err
	}
	return next, nil
}

// Object is a struct-valued variable supporting partial updates addressed
// by JSON field name, without the caller round-tripping the whole value.
type Object[T any] struct {
	Variable[T]
}

// NewObject creates an object variable. T should be a struct or map type
// that round-trips through JSON.
func NewObject[T any](name string, def T, st storage.Storage) *Object[T] {
	return &Object[T]{Variable[T]{name: name, def: def, st: st}}
}

func (o *Object[T]) asMap(ctx context.Context, domain string) map[string]json.RawMessage {
	data, err := json.Marshal(o.Get(ctx, domain))
	if err != nil {
		return map[string]json.RawMessage{}
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]json.RawMessage{}
	}
	return m
}

func (o *Object[T]) fromMap(ctx context.Context, domain string, m map[string]json.RawMessage) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode object for variable %q: %w", o.name, err)
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to decode object for variable %q: %w", o.name, err)
	}
	return o.Set(ctx, domain, value)
}

// SetPartial merges the given fields into the stored object, leaving every
// other field as-is.
func (o *Object[T]) SetPartial(ctx context.Context, domain string, partial map[string]any) error {
	m := o.asMap(ctx, domain)
	for field, value := range partial {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %q: %w", field, err)
		}
		m[field] = json.RawMessage(data)
	}
	return o.fromMap(ctx, domain, m)
}

// GetField returns a single field of the stored object by JSON name.
func (o *Object[T]) GetField(ctx context.Context, domain, field string) (any, bool) {
	raw, ok := o.asMap(ctx, domain)[field]
	if !ok {
		return nil, false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false
	}
	return value, true
}

// SetField updates a single field of the stored object by JSON name.
func (o *Object[T]) SetField(ctx context.Context, domain, field string, value any) error {
	return o.SetPartial(ctx, domain, map[string]any{field: value})
}

// ResetField restores a single field to its value in the variable default.
func (o *Object[T]) ResetField(ctx context.Context, domain, field string) error {
	data, err := json.Marshal(o.def)
	if err != nil {
		return fmt.Errorf("failed to encode default for variable %q: %w", o.name, err)
	}
	var defaults map[string]json.RawMessage
	if err := json.Unmarshal(data, &defaults); err != nil {
		return fmt.Errorf("failed to decode default for variable %q: %w", o.name, err)
	}

	m := o.asMap(ctx, domain)
	if raw, ok := defaults[field]; ok {
		m[field] = raw
	} else {
		delete(m, field)
	}
	return o.fromMap(ctx, domain, m)
}

// TypeName reports the declared type of a variable's default, used when
// listing variables to operators.
func TypeName(v Var) string {
	type defaulter interface{ defaultType() reflect.Type }
	if d, ok := v.(defaulter); ok {
		return d.defaultType().String()
	}
	return "unknown"
}

func (v *Variable[T]) defaultType() reflect.Type { return reflect.TypeOf(v.def) }
