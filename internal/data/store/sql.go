package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/query"

	"github.com/google/uuid"
)

// rows is the subset of pgx.Rows / *sql.Rows the SQL store needs.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type executor interface {
	query(ctx context.Context, sql string, args ...any) (rows, error)
	exec(ctx context.Context, sql string, args ...any) (int64, error)
}

type dialect struct {
	name string
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// like is the case-insensitive LIKE operator.
	like string
	// fold, when set, is a SQL function applied to the column before LIKE.
	// The pattern is lowered in Go to match.
	fold string
	// distinct is a null-safe inequality.
	distinct string
	// mapError translates driver errors into store sentinels.
	mapError func(error) error
}

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	like:        "ILIKE",
	distinct:    "IS DISTINCT FROM",
}

var sqliteDialect = dialect{
	name:        "sqlite",
	placeholder: func(int) string { return "?" },
	like:        "LIKE",
	fold:        "unicode_lower",
	distinct:    "IS NOT",
}

// builder accumulates SQL text and bind arguments.
type builder struct {
	d      dialect
	schema *entity.Schema
	sb     strings.Builder
	args   []any
}

func newBuilder(d dialect, schema *entity.Schema) *builder {
	return &builder{d: d, schema: schema}
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

func (b *builder) String() string {
	return b.sb.String()
}

func (b *builder) columnList(fields []entity.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
	}
	return strings.Join(cols, ", ")
}

// where renders pred as a WHERE clause, or nothing for an empty predicate.
func (b *builder) where(pred query.Predicate) error {
	if pred.IsEmpty() {
		return nil
	}

	var clauses []string
	for _, fp := range pred.Fields() {
		field, ok := b.schema.Lookup(fp.Field)
		if !ok {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, fp.Field)
		}
		for _, c := range fp.Conditions {
			clause, err := b.condition(field, c)
			if err != nil {
				return err
			}
			clauses = append(clauses, clause)
		}
	}

	b.write(" WHERE ", strings.Join(clauses, " AND "))
	return nil
}

func (b *builder) condition(f entity.Field, c query.Condition) (string, error) {
	col := f.Column

	if c.Operator.IsText() {
		if f.Kind != entity.KindString {
			return "", fmt.Errorf("%w: %s is not a text field", ErrInvalidQuery, f.Name)
		}
		pattern := escapeLike(c.Value) + "%"
		if c.Operator == query.CN {
			pattern = "%" + pattern
		}
		if b.d.fold != "" {
			col = b.d.fold + "(" + col + ")"
			pattern = strings.ToLower(pattern)
		}
		return fmt.Sprintf(`%s %s %s ESCAPE '\'`, col, b.d.like, b.arg(pattern)), nil
	}

	if c.Operator.IsList() {
		raw := c.Values()
		holders := make([]string, len(raw))
		for i, r := range raw {
			v, err := f.ParseValue(r)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidQuery, err)
			}
			holders[i] = b.arg(v)
		}
		list := strings.Join(holders, ", ")
		if c.Operator == query.IN {
			return fmt.Sprintf("%s IN (%s)", col, list), nil
		}
		return fmt.Sprintf("(%s IS NULL OR %s NOT IN (%s))", col, col, list), nil
	}

	v, err := f.ParseValue(c.Value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var op string
	switch c.Operator {
	case query.EQ:
		op = "="
	case query.NE:
		op = b.d.distinct
	case query.LT:
		op = "<"
	case query.GT:
		op = ">"
	case query.LE:
		op = "<="
	case query.GE:
		op = ">="
	default:
		return "", fmt.Errorf("%w: unsupported operator %s", ErrInvalidQuery, c.Operator)
	}
	return fmt.Sprintf("%s %s %s", col, op, b.arg(v)), nil
}

func (b *builder) orderBy(s *query.Sort) error {
	if s == nil {
		return nil
	}
	f, ok := b.schema.Lookup(s.Field)
	if !ok {
		return fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, s.Field)
	}
	// unset values sort first ascending, as in MemoryStore
	dir := "ASC NULLS FIRST"
	if s.Descending() {
		dir = "DESC NULLS LAST"
	}
	b.write(" ORDER BY ", f.Column, " ", dir)
	return nil
}

func (b *builder) limit(p *query.Pagination) {
	if p == nil {
		return
	}
	b.write(" LIMIT ", b.arg(p.Limit()), " OFFSET ", b.arg(p.Skip()))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SQLStore implements Store over any SQL executor using the record Schema.
type SQLStore[T any, PT entity.RecordPtr[T]] struct {
	db      executor
	dialect dialect
	schema  *entity.Schema
}

func newSQLStore[T any, PT entity.RecordPtr[T]](db executor, d dialect) *SQLStore[T, PT] {
	return &SQLStore[T, PT]{db: db, dialect: d, schema: PT(new(T)).Schema()}
}

func (s *SQLStore[T, PT]) FindOne(ctx context.Context, pred query.Predicate, proj entity.Projection) (*T, error) {
	out, err := s.Find(ctx, pred, FindOptions{
		Pagination: &query.Pagination{Page: 1, PageSize: 1},
		Projection: proj,
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (s *SQLStore[T, PT]) Find(ctx context.Context, pred query.Predicate, opts FindOptions) ([]*T, error) {
	fields := s.schema.Visible(opts.Projection)

	b := newBuilder(s.dialect, s.schema)
	b.write("SELECT ", b.columnList(fields), " FROM ", s.schema.Table)
	if err := b.where(pred); err != nil {
		return nil, err
	}
	if err := b.orderBy(opts.Sort); err != nil {
		return nil, err
	}
	b.limit(opts.Pagination)

	return s.queryRecords(ctx, fields, b.String(), b.args...)
}

func (s *SQLStore[T, PT]) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	b := newBuilder(s.dialect, s.schema)
	b.write("SELECT COUNT(*) FROM ", s.schema.Table)
	if err := b.where(pred); err != nil {
		return 0, err
	}

	r, err := s.db.query(ctx, b.String(), b.args...)
	if err != nil {
		return 0, s.mapError(err)
	}
	defer r.Close()

	var n int64
	if r.Next() {
		if err := r.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, r.Err()
}

func (s *SQLStore[T, PT]) Create(ctx context.Context, rec *T) error {
	fields := s.schema.Fields

	b := newBuilder(s.dialect, s.schema)
	holders := make([]string, len(fields))
	for i, f := range fields {
		holders[i] = b.arg(argValue(PT(rec).FieldPtr(f.Name)))
	}
	b.write("INSERT INTO ", s.schema.Table, " (", b.columnList(fields), ") VALUES (", strings.Join(holders, ", "), ")")

	if _, err := s.db.exec(ctx, b.String(), b.args...); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *SQLStore[T, PT]) UpdateByID(ctx context.Context, id uuid.UUID, patch Patch) (*T, error) {
	b := newBuilder(s.dialect, s.schema)
	if err := s.writeUpdate(b, patch); err != nil {
		return nil, err
	}
	idField, _ := s.schema.Lookup(s.schema.IDField)
	b.write(" WHERE ", idField.Column, " = ", b.arg(id))
	b.write(" RETURNING ", b.columnList(s.schema.Fields))

	out, err := s.queryRecords(ctx, s.schema.Fields, b.String(), b.args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out[0], nil
}

func (s *SQLStore[T, PT]) UpdateIf(ctx context.Context, id uuid.UUID, guard Guard, patch Patch) (*T, error) {
	gf, ok := s.schema.Lookup(guard.Field)
	if !ok {
		return nil, fmt.Errorf("%w: unknown guard field %q", ErrInvalidQuery, guard.Field)
	}

	b := newBuilder(s.dialect, s.schema)
	if err := s.writeUpdate(b, patch); err != nil {
		return nil, err
	}
	idField, _ := s.schema.Lookup(s.schema.IDField)
	b.write(" WHERE ", idField.Column, " = ", b.arg(id))
	b.write(" AND (", gf.Column, " IS NULL OR ", gf.Column, " = ", b.arg(guard.Value), ")")
	b.write(" RETURNING ", b.columnList(s.schema.Fields))

	out, err := s.queryRecords(ctx, s.schema.Fields, b.String(), b.args...)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		return out[0], nil
	}

	// Nothing updated: tell a missing record apart from a failed guard.
	existing, err := s.FindOne(ctx, query.Where(s.schema.IDField, query.EQ, id.String()), entity.Projection{})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	return nil, ErrGuardRejected
}

func (s *SQLStore[T, PT]) RemoveByID(ctx context.Context, id uuid.UUID) (*T, error) {
	idField, _ := s.schema.Lookup(s.schema.IDField)

	b := newBuilder(s.dialect, s.schema)
	b.write("DELETE FROM ", s.schema.Table, " WHERE ", idField.Column, " = ", b.arg(id))
	b.write(" RETURNING ", b.columnList(s.schema.Fields))

	out, err := s.queryRecords(ctx, s.schema.Fields, b.String(), b.args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out[0], nil
}

// writeUpdate renders "UPDATE table SET ..." with fields in schema order.
func (s *SQLStore[T, PT]) writeUpdate(b *builder, patch Patch) error {
	if len(patch) == 0 {
		return fmt.Errorf("%w: empty update", ErrInvalidQuery)
	}

	scratch := PT(new(T))
	var sets []string
	seen := 0
	for _, f := range s.schema.Fields {
		v, ok := patch[f.Name]
		if !ok {
			continue
		}
		seen++
		if f.Name == s.schema.IDField {
			return fmt.Errorf("%w: %s is immutable", ErrInvalidQuery, f.Name)
		}
		ptr := scratch.FieldPtr(f.Name)
		if err := entity.Assign(ptr, v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		sets = append(sets, f.Column+" = "+b.arg(argValue(ptr)))
	}
	if seen != len(patch) {
		for name := range patch {
			if _, ok := s.schema.Lookup(name); !ok {
				return fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, name)
			}
		}
	}

	b.write("UPDATE ", s.schema.Table, " SET ", strings.Join(sets, ", "))
	return nil
}

func (s *SQLStore[T, PT]) queryRecords(ctx context.Context, fields []entity.Field, sql string, args ...any) ([]*T, error) {
	r, err := s.db.query(ctx, sql, args...)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer r.Close()

	out := make([]*T, 0)
	for r.Next() {
		rec := new(T)
		dest := make([]any, len(fields))
		for i, f := range fields {
			dest[i] = PT(rec).FieldPtr(f.Name)
		}
		if err := r.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", s.schema.Table, err)
		}
		normalizeTimes(PT(rec))
		out = append(out, rec)
	}
	if err := r.Err(); err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *SQLStore[T, PT]) mapError(err error) error {
	if s.dialect.mapError != nil {
		return s.dialect.mapError(err)
	}
	return err
}

// argValue turns a field pointer into a driver argument; unset nullable fields become NULL.
func argValue(ptr any) any {
	v, ok := entity.Value(ptr)
	if !ok {
		return nil
	}
	return v
}

func normalizeTimes(rec entity.Record) {
	for _, f := range rec.Schema().Fields {
		if f.Kind != entity.KindTime {
			continue
		}
		switch p := rec.FieldPtr(f.Name).(type) {
		case *time.Time:
			*p = p.UTC()
		case **time.Time:
			if *p != nil {
				t := (*p).UTC()
				*p = &t
			}
		}
	}
}
