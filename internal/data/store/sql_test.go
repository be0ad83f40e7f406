package store

import (
	"testing"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userSchema() *entity.Schema {
	return (&entity.User{}).Schema()
}

func TestBuilder_WherePostgres(t *testing.T) {
	pred, err := query.ParseAndCompile([]string{
		"username:cn:al_ice",
		"isActive:eq:true",
		"role:in:admin,user",
		"deviceId:ne:d1",
	})
	require.NoError(t, err)

	b := newBuilder(postgresDialect, userSchema())
	require.NoError(t, b.where(pred))

	assert.Equal(t,
		` WHERE username ILIKE $1 ESCAPE '\' AND is_active = $2 AND role IN ($3, $4) AND device_id IS DISTINCT FROM $5`,
		b.String())
	assert.Equal(t, []any{`%al\_ice%`, true, "admin", "user", "d1"}, b.args)
}

func TestBuilder_WhereSQLite(t *testing.T) {
	b := newBuilder(sqliteDialect, userSchema())
	require.NoError(t, b.where(query.Where(entity.UserFieldPhone, query.NI, "1,2")))
	require.NoError(t, b.orderBy(&query.Sort{Field: entity.FieldCreatedAt, Direction: query.Desc}))
	b.limit(&query.Pagination{Page: 3, PageSize: 10})

	assert.Equal(t, " WHERE (phone IS NULL OR phone NOT IN (?, ?)) ORDER BY created_at DESC NULLS LAST LIMIT ? OFFSET ?", b.String())
	assert.Equal(t, []any{"1", "2", 10, 20}, b.args)
}

func TestBuilder_SQLiteFoldsTextOperators(t *testing.T) {
	b := newBuilder(sqliteDialect, userSchema())
	require.NoError(t, b.where(query.Where(entity.UserFieldUsername, query.SW, "ÉLO")))

	assert.Equal(t, ` WHERE unicode_lower(username) LIKE ? ESCAPE '\'`, b.String())
	assert.Equal(t, []any{"élo%"}, b.args)
}

func TestBuilder_OrderByNullPlacement(t *testing.T) {
	for _, d := range []dialect{postgresDialect, sqliteDialect} {
		asc := newBuilder(d, userSchema())
		require.NoError(t, asc.orderBy(&query.Sort{Field: entity.UserFieldPhone, Direction: query.Asc}))
		assert.Equal(t, " ORDER BY phone ASC NULLS FIRST", asc.String(), d.name)

		desc := newBuilder(d, userSchema())
		require.NoError(t, desc.orderBy(&query.Sort{Field: entity.UserFieldPhone, Direction: query.Desc}))
		assert.Equal(t, " ORDER BY phone DESC NULLS LAST", desc.String(), d.name)
	}
}

func TestBuilder_EmptyPredicate(t *testing.T) {
	b := newBuilder(postgresDialect, userSchema())
	require.NoError(t, b.where(query.Predicate{}))
	assert.Empty(t, b.String())
}

func TestBuilder_Rejects(t *testing.T) {
	tests := []struct {
		name string
		pred query.Predicate
	}{
		{"unknown field", query.Where("age", query.GT, "18")},
		{"text operator on bool", query.Where(entity.UserFieldIsActive, query.CN, "tr")},
		{"bad bool", query.Where(entity.UserFieldIsActive, query.EQ, "maybe")},
		{"bad time", query.Where(entity.FieldCreatedAt, query.GT, "yesterday")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(postgresDialect, userSchema())
			assert.ErrorIs(t, b.where(tt.pred), ErrInvalidQuery)
		})
	}

	b := newBuilder(postgresDialect, userSchema())
	assert.ErrorIs(t, b.orderBy(&query.Sort{Field: "age"}), ErrInvalidQuery)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_a\\b`, escapeLike(`100%_a\b`))
}
