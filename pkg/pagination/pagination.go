package pagination

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// PageSize is the number of items returned for every listing.
const PageSize = 2

type Metadata struct {
	Total int `json:"total"`
	Page  int `json:"page"`
}

type Page[T any] struct {
	Metadata Metadata `json:"metadata"`
	Data     []T      `json:"data"`
}

// ParsePage reads a page number from a query parameter. Anything that isn't a
// positive integer is page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// List runs build inside a transaction, then counts every matching row and
// scans the requested page, newest first. Both come from the same query so
// the total always agrees with the filter applied to the data.
func List[T any](ctx context.Context, db *bun.DB, page int, orderBy string, build func(q *bun.SelectQuery) *bun.SelectQuery) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	items := make([]T, 0)
	var total int

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := build(tx.NewSelect().Model(&items)).
			OrderExpr(orderBy + " DESC").
			Limit(PageSize).
			Offset(Offset(page))

		var err error
		total, err = q.ScanAndCount(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]T, 0)
	}

	return &Page[T]{
		Metadata: Metadata{Total: total, Page: page},
		Data:     items,
	}, nil
}

// SplitList splits a comma separated query value, dropping blank entries.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

// EscapeLike escapes the LIKE wildcards in s. Queries using it must declare
// ESCAPE '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
