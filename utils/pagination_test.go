package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationDefaults(t *testing.T) {
	p := ParsePagination("", "")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, int64(0), p.Skip())
}

func TestParsePaginationClamping(t *testing.T) {
	p := ParsePagination("0", "500")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)

	p = ParsePagination("-3", "abc")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
}

func TestPaginationSkipMath(t *testing.T) {
	// 25 records, limit 10: page 3 starts after 20
	p := ParsePagination("3", "10")
	assert.Equal(t, int64(20), p.Skip())
}

func TestSortSpec(t *testing.T) {
	sort := SortSpec("", "", "createdAt")
	assert.Equal(t, "createdAt", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)

	sort = SortSpec("totalResolved", "asc", "createdAt")
	assert.Equal(t, "totalResolved", sort[0].Key)
	assert.Equal(t, 1, sort[0].Value)

	sort = SortSpec("views", "desc", "createdAt")
	assert.Equal(t, -1, sort[0].Value)
}
