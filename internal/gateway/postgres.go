package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Postgres talks to the tables directly with database/sql. Rows come back
// through row_to_json so numeric, jsonb and timestamp columns all decode the
// same way the REST backend's do.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	tbl, err := ident(table)
	if err != nil {
		return nil, transportErr("select", table, err)
	}
	where, args, err := whereClause(q.Filters, 1)
	if err != nil {
		return nil, transportErr("select", table, err)
	}

	var sb strings.Builder
	sb.WriteString("SELECT row_to_json(t) FROM (SELECT * FROM ")
	sb.WriteString(tbl)
	sb.WriteString(where)
	if q.Order != nil {
		col, err := ident(q.Order.Column)
		if err != nil {
			return nil, transportErr("select", table, err)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(col)
		if q.Order.Desc {
			sb.WriteString(" DESC")
		}
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	sb.WriteString(") t")

	rows, err := p.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, transportErr("select", table, err)
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, transportErr("select", table, err)
		}
		row, err := parseRow(raw)
		if err != nil {
			return nil, transportErr("select", table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, transportErr("select", table, err)
	}
	return out, nil
}

func (p *Postgres) Insert(ctx context.Context, table string, row Row) (Row, error) {
	tbl, err := ident(table)
	if err != nil {
		return nil, transportErr("insert", table, err)
	}
	cols := sortedKeys(row)
	if len(cols) == 0 {
		return nil, transportErr("insert", table, errors.New("empty row"))
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		qc, err := ident(c)
		if err != nil {
			return nil, transportErr("insert", table, err)
		}
		quoted[i] = qc
		marks[i] = fmt.Sprintf("$%d", i+1)
		if args[i], err = sqlValue(row[c]); err != nil {
			return nil, transportErr("insert", table, err)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s AS t (%s) VALUES (%s) RETURNING row_to_json(t)",
		tbl, strings.Join(quoted, ", "), strings.Join(marks, ", "))

	var raw []byte
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return nil, classify("insert", table, err)
	}
	out, err := parseRow(raw)
	if err != nil {
		return nil, transportErr("insert", table, err)
	}
	return out, nil
}

func (p *Postgres) Update(ctx context.Context, table string, filters []Filter, patch Row) (int, error) {
	tbl, err := ident(table)
	if err != nil {
		return 0, transportErr("update", table, err)
	}
	if len(filters) == 0 {
		return 0, transportErr("update", table, errors.New("refusing unfiltered update"))
	}
	cols := sortedKeys(patch)
	if len(cols) == 0 {
		return 0, transportErr("update", table, errors.New("empty patch"))
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(filters))
	for i, c := range cols {
		qc, err := ident(c)
		if err != nil {
			return 0, transportErr("update", table, err)
		}
		v, err := sqlValue(patch[c])
		if err != nil {
			return 0, transportErr("update", table, err)
		}
		sets[i] = fmt.Sprintf("%s = $%d", qc, i+1)
		args = append(args, v)
	}
	where, wargs, err := whereClause(filters, len(cols)+1)
	if err != nil {
		return 0, transportErr("update", table, err)
	}
	args = append(args, wargs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s", tbl, strings.Join(sets, ", "), where)
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify("update", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, transportErr("update", table, err)
	}
	return int(n), nil
}

func (p *Postgres) Delete(ctx context.Context, table string, filters []Filter) (int, error) {
	tbl, err := ident(table)
	if err != nil {
		return 0, transportErr("delete", table, err)
	}
	if len(filters) == 0 {
		return 0, transportErr("delete", table, errors.New("refusing unfiltered delete"))
	}
	where, args, err := whereClause(filters, 1)
	if err != nil {
		return 0, transportErr("delete", table, err)
	}
	res, err := p.db.ExecContext(ctx, "DELETE FROM "+tbl+where, args...)
	if err != nil {
		return 0, classify("delete", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, transportErr("delete", table, err)
	}
	return int(n), nil
}

func whereClause(filters []Filter, start int) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	conds := make([]string, len(filters))
	args := make([]any, len(filters))
	for i, f := range filters {
		col, err := ident(f.Column)
		if err != nil {
			return "", nil, err
		}
		n := start + i
		switch f.Op {
		case OpEq:
			conds[i] = fmt.Sprintf("%s = $%d", col, n)
			args[i], err = sqlValue(f.Value)
		case OpNeq:
			conds[i] = fmt.Sprintf("%s <> $%d", col, n)
			args[i], err = sqlValue(f.Value)
		case OpIn:
			conds[i] = fmt.Sprintf("%s::text = ANY($%d)", col, n)
			args[i] = pq.Array(inValues(f.Value))
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
		if err != nil {
			return "", nil, err
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func ident(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return pq.QuoteIdentifier(name), nil
}

// sqlValue turns composite values into JSON text for jsonb columns and passes
// everything else through to the driver.
func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case map[string]string, map[string]any, []any, Row:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case decimal.Decimal:
		return x.String(), nil
	case json.Number:
		return x.String(), nil
	default:
		return v, nil
	}
}

func classify(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return conflictErr(op, table, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return conflictErr(op, table, err)
	}
	return transportErr(op, table, err)
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
