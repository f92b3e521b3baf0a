package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Gateway runs parameterized statements against a graph store.
// Each root-level Write is its own atomic unit; Transact groups several
// statements into one.
type Gateway interface {
	Query(ctx context.Context, statement string, params map[string]any) ([]Record, error)
	Write(ctx context.Context, statement string, params map[string]any) ([]Record, error)
	Transact(ctx context.Context, fn func(ctx context.Context, gw Gateway) error) error
}

// Record is one row returned by a Gateway, keyed by column name.
type Record map[string]any

// Value returns the column as T. A missing or null column, or one holding
// another type, is reported as ErrQuery.
func Value[T any](r Record, key string) (T, error) {
	var zero T
	raw, ok := r[key]
	if !ok || raw == nil {
		return zero, fmt.Errorf("%w: column %q is missing", ErrQuery, key)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: column %q holds %T, want %T", ErrQuery, key, raw, zero)
	}
	return v, nil
}

// Decoder reads several columns of a Record and keeps every mismatch for Err.
type Decoder struct {
	rec  Record
	errs []error
}

func (r Record) Decode() *Decoder {
	return &Decoder{rec: r}
}

func decode[T any](d *Decoder, key string) T {
	v, err := Value[T](d.rec, key)
	if err != nil {
		d.errs = append(d.errs, err)
	}
	return v
}

func (d *Decoder) String(key string) string { return decode[string](d, key) }
func (d *Decoder) Int64(key string) int64   { return decode[int64](d, key) }
func (d *Decoder) Bool(key string) bool     { return decode[bool](d, key) }

func (d *Decoder) Time(key string) time.Time {
	t := decode[time.Time](d, key)
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// Map returns a nested map column, such as a node projection `p {.*}`.
func (d *Decoder) Map(key string) Record {
	switch m := d.rec[key].(type) {
	case map[string]any:
		return m
	case Record:
		return m
	}
	d.errs = append(d.errs, fmt.Errorf("%w: column %q is not a map", ErrQuery, key))
	return Record{}
}

func (d *Decoder) Err() error {
	return errors.Join(d.errs...)
}
