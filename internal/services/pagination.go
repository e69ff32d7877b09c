package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"backend-triage/internal/apperr"

	"gorm.io/gorm"
)

// Paging defaults and limits shared by every list operation.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps the row offset of the last page within an int.
	MaxPage = math.MaxInt/MaxLimit + 1
)

// Pagination selects one page of a list. Zero values mean the defaults.
// Sort is a field name of the resource, prefixed with "-" for descending.
type Pagination struct {
	Page  int
	Limit int
	Sort  string
}

// Result is one page of records.
type Result[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// SortOrder maps the sortable API fields of a resource to the column or
// expression ordering them.
type SortOrder map[string]string

// Values lists the accepted sort parameters, ascending and descending.
func (o SortOrder) Values() []string {
	values := make([]string, 0, 2*len(o))
	for field := range o {
		values = append(values, field, "-"+field)
	}
	sort.Strings(values)
	return values
}

func (o SortOrder) clause(param string) (string, bool) {
	field, desc := strings.CutPrefix(param, "-")
	col, ok := o[field]
	if !ok {
		return "", false
	}
	if desc {
		return col + " DESC, id DESC", true
	}
	return col + " ASC, id ASC", true
}

// resolve applies the defaults and checks the bounds of p.
func (p Pagination) resolve(op, defaultSort string, order SortOrder) (Pagination, string, error) {
	var failures []apperr.FieldError
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Sort == "" {
		p.Sort = defaultSort
	}
	switch {
	case p.Page < 1:
		failures = append(failures, apperr.FieldError{Field: "page", Message: "page must be a positive integer"})
	case p.Page > MaxPage:
		failures = append(failures, apperr.FieldError{Field: "page", Message: fmt.Sprintf("page must be at most %d", MaxPage)})
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		failures = append(failures, apperr.FieldError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	clause, ok := order.clause(p.Sort)
	if !ok {
		failures = append(failures, apperr.FieldError{
			Field:   "sort",
			Message: "sort must be one of: " + strings.Join(order.Values(), ", "),
		})
	}
	if len(failures) > 0 {
		return p, "", apperr.Validation(op, failures...)
	}
	return p, clause, nil
}

func (p Pagination) scope(order string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order).Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
	}
}

// rank orders a column by the position of its value in values.
func rank(column string, values []string) string {
	var b strings.Builder
	b.WriteString("CASE " + column)
	for i, v := range values {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", v, i)
	}
	b.WriteString(" END")
	return b.String()
}

func newResult[T any](items []T, total int64, p Pagination) *Result[T] {
	if items == nil {
		items = []T{}
	}
	return &Result[T]{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}
