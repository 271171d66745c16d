package cockroach

import (
	"testing"

	"audiodb-backend/internal/entity"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conditionsSQL(t *testing.T, filter *entity.AudioSearchFilter) (string, []any) {
	t.Helper()
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("id").From("audio").
		Where(buildAudioSearchConditions(filter)).
		ToSql()
	require.NoError(t, err)
	return query, args
}

func TestBuildAudioSearchConditions_KeywordOnly(t *testing.T) {
	query, args := conditionsSQL(t, &entity.AudioSearchFilter{Keyword: "song"})

	assert.Equal(t, `SELECT id FROM audio WHERE (name ILIKE $1)`, query)
	assert.Equal(t, []any{"%song%"}, args)
}

func TestBuildAudioSearchConditions_AndFilters(t *testing.T) {
	query, args := conditionsSQL(t, &entity.AudioSearchFilter{
		FilterType: "and",
		Filters: []entity.AudioFieldFilter{
			{Field: "category", Value: "Music"},
			{Field: "whitelister_name", Value: "mod"},
		},
	})

	assert.Equal(t, `SELECT id FROM audio WHERE ((category ILIKE $1 AND whitelister_name ILIKE $2))`, query)
	assert.Equal(t, []any{"%Music%", "%mod%"}, args)
}

func TestBuildAudioSearchConditions_OrFilters(t *testing.T) {
	query, args := conditionsSQL(t, &entity.AudioSearchFilter{
		Keyword:    "song",
		FilterType: "or",
		Filters: []entity.AudioFieldFilter{
			{Field: "category", Value: "Music"},
			{Field: "name", Value: "Cool"},
		},
	})

	assert.Equal(t, `SELECT id FROM audio WHERE (name ILIKE $1 AND (category ILIKE $2 OR name ILIKE $3))`, query)
	assert.Equal(t, []any{"%song%", "%Music%", "%Cool%"}, args)
}

func TestBuildAudioSearchConditions_IgnoresUnknownFields(t *testing.T) {
	query, args := conditionsSQL(t, &entity.AudioSearchFilter{
		FilterType: "and",
		Filters: []entity.AudioFieldFilter{
			{Field: "id; DROP TABLE audio", Value: "1"},
			{Field: "category", Value: "Music"},
		},
	})

	assert.Equal(t, `SELECT id FROM audio WHERE ((category ILIKE $1))`, query)
	assert.Equal(t, []any{"%Music%"}, args)
}

func TestBuildAudioSearchConditions_EmptyFilterMatchesAll(t *testing.T) {
	query, args := conditionsSQL(t, &entity.AudioSearchFilter{})

	assert.Equal(t, `SELECT id FROM audio WHERE (1=1)`, query)
	assert.Empty(t, args)
}
