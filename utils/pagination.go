package utils

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Pagination carries the shared list-endpoint contract: page floor 1,
// limit default 20 with a hard ceiling of 100.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination clamps raw page/limit query values to the contract
func ParsePagination(pageStr, limitStr string) Pagination {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = defaultPage
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Pagination{Page: page, Limit: limit}
}

// Skip returns the number of documents to skip for the current page
func (p Pagination) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// SortSpec builds a single-field sort document; direction defaults to
// descending unless sortDir is "asc".
func SortSpec(sortBy, sortDir, defaultField string) bson.D {
	field := sortBy
	if field == "" {
		field = defaultField
	}
	dir := -1
	if sortDir == "asc" {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}}
}
