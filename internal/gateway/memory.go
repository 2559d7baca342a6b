package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultUniqueKeys mirrors the unique constraints of the postgres schema.
var DefaultUniqueKeys = map[string][][]string{
	TableProducts:  {{"slug"}},
	TableCartItems: {{"session_id", "product_id"}},
	TableAccounts:  {{"email"}},
}

// Memory is an in-process Gateway used for tests and local runs. It assigns
// id, created_at and updated_at on insert the way the database defaults do.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Row
	unique map[string][][]string
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]Row),
		unique: DefaultUniqueKeys,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserts rows, stopping at the first failure.
func (m *Memory) Seed(ctx context.Context, table string, rows ...Row) error {
	for _, r := range rows {
		if _, err := m.Insert(ctx, table, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportErr("select", table, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Row, 0)
	for _, r := range m.tables[table] {
		if matchAll(r, q.Filters) {
			out = append(out, cloneRow(r))
		}
	}
	if q.Order != nil {
		col, desc := q.Order.Column, q.Order.Desc
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i][col], out[j][col])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, row Row) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportErr("insert", table, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r := cloneRow(row)
	if _, ok := r["id"]; !ok {
		r["id"] = uuid.NewString()
	}
	now := m.now()
	if _, ok := r["created_at"]; !ok {
		r["created_at"] = now
	}
	if _, ok := r["updated_at"]; !ok {
		r["updated_at"] = now
	}

	for _, existing := range m.tables[table] {
		if sameValue(existing["id"], r["id"]) {
			return nil, conflictErr("insert", table, fmt.Errorf("duplicate id %v", r["id"]))
		}
		for _, cols := range m.unique[table] {
			if sameKey(existing, r, cols) {
				return nil, conflictErr("insert", table, fmt.Errorf("duplicate key (%s)", strings.Join(cols, ", ")))
			}
		}
	}

	m.tables[table] = append(m.tables[table], r)
	return cloneRow(r), nil
}

func (m *Memory) Update(ctx context.Context, table string, filters []Filter, patch Row) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, transportErr("update", table, err)
	}
	if len(filters) == 0 {
		return 0, transportErr("update", table, errors.New("refusing unfiltered update"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	rows := m.tables[table]
	for i, r := range rows {
		if !matchAll(r, filters) {
			continue
		}
		updated := cloneRow(r)
		for k, v := range patch {
			updated[k] = v
		}
		rows[i] = updated
		n++
	}
	return n, nil
}

func (m *Memory) Delete(ctx context.Context, table string, filters []Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, transportErr("delete", table, err)
	}
	if len(filters) == 0 {
		return 0, transportErr("delete", table, errors.New("refusing unfiltered delete"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tables[table][:0]
	n := 0
	for _, r := range m.tables[table] {
		if matchAll(r, filters) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	return n, nil
}

func matchAll(r Row, filters []Filter) bool {
	for _, f := range filters {
		v, present := r[f.Column]
		switch f.Op {
		case OpEq:
			if !present || !sameValue(v, f.Value) {
				return false
			}
		case OpNeq:
			if present && sameValue(v, f.Value) {
				return false
			}
		case OpIn:
			hit := false
			for _, want := range inValues(f.Value) {
				if present && sameValue(v, want) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func sameKey(a, b Row, cols []string) bool {
	for _, c := range cols {
		if !sameValue(a[c], b[c]) {
			return false
		}
	}
	return true
}

// sameValue compares the way the remote store compares a column with a
// filter literal: by textual form.
func sameValue(a, b any) bool {
	return textOf(a) == textOf(b)
}

func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func compareValues(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if na, ok := number(a); ok {
		if nb, ok := number(b); ok {
			return na.Cmp(nb)
		}
	}
	return strings.Compare(textOf(a), textOf(b))
}

func number(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		if _, err := strconv.ParseFloat(x, 64); err != nil {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(x)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

func cloneRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
