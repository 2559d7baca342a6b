// Package gateway is the data-access layer for the storefront's remote
// tables. Callers speak in tables, filters and rows; the backend decides
// whether that means SQL, PostgREST over HTTP or an in-process map.
//
// Every operation is a single round trip and nothing is transactional: a
// caller that reads a row and then writes based on what it saw must accept
// that another writer may have slipped in between.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Logical tables.
const (
	TableProducts         = "products"
	TableCartItems        = "cart_items"
	TableContactMessages  = "contact_messages"
	TableCustomerRequests = "customer_requests"
	TableAccounts         = "accounts"
)

var (
	// ErrTransport marks any failure to complete a call: network, timeout,
	// driver, or a non-success answer from the store.
	ErrTransport = errors.New("gateway transport failure")
	// ErrConflict marks a write rejected by a unique constraint.
	ErrConflict = errors.New("gateway unique constraint violation")
)

// Error describes a failed gateway call. It matches ErrTransport or
// ErrConflict with errors.Is.
type Error struct {
	Op    string
	Table string
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func transportErr(op, table string, err error) error {
	return &Error{Op: op, Table: table, Kind: ErrTransport, Err: err}
}

func conflictErr(op, table string, err error) error {
	return &Error{Op: op, Table: table, Kind: ErrConflict, Err: err}
}

// Row is one record keyed by column name.
type Row map[string]any

type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpIn  Op = "in"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }

// In matches any of values. An empty list matches nothing.
func In(column string, values ...string) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

type Order struct {
	Column string
	Desc   bool
}

// Query narrows a Select. Zero Limit means no limit.
type Query struct {
	Filters []Filter
	Order   *Order
	Limit   int
}

// Gateway is the remote-table contract. Implementations must be safe for
// concurrent use. A Select that matches nothing returns an empty slice and a
// nil error.
type Gateway interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table string, filters []Filter, patch Row) (int, error)
	Delete(ctx context.Context, table string, filters []Filter) (int, error)
}

// Decode converts rows into dst (a pointer to a slice of structs) through
// their JSON representation.
func Decode(rows []Row, dst any) error {
	if rows == nil {
		rows = []Row{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("gateway: encode rows: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("gateway: decode rows: %w", err)
	}
	return nil
}

// DecodeOne converts a single row into dst (a pointer to a struct).
func DecodeOne(row Row, dst any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("gateway: encode row: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("gateway: decode row: %w", err)
	}
	return nil
}

// parseRows decodes a JSON array (or a single object) keeping numbers as
// json.Number so decimals survive the round trip untouched.
func parseRows(body []byte) ([]Row, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []Row{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if body[0] == '{' {
		var row Row
		if err := dec.Decode(&row); err != nil {
			return nil, err
		}
		return []Row{row}, nil
	}
	var rows []Row
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

func parseRow(body []byte) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var row Row
	if err := dec.Decode(&row); err != nil {
		return nil, err
	}
	return row, nil
}

func inValues(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, x := range vals {
			out = append(out, fmt.Sprint(x))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}
