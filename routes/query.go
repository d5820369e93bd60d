package routes

import (
	"strings"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// searchClause builds a case-insensitive substring match OR-ed across the
// given columns. Columns must come from a per-entity whitelist, never from
// the request.
func searchClause(term string, columns []string) (string, []interface{}) {
	pattern := "%" + strings.ToLower(term) + "%"
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		conds[i] = "LOWER(" + column + ") LIKE ?"
		args[i] = pattern
	}
	return strings.Join(conds, " OR "), args
}

func applySearch(db *gorm.DB, term string, columns []string) *gorm.DB {
	if term == "" {
		return db
	}
	cond, args := searchClause(term, columns)
	return db.Where(cond, args...)
}

// orderClause resolves an `ordering` query value (`-` prefix for descending)
// against a whitelist of API name -> column expression. Unknown names fall
// back to the entity default.
func orderClause(ordering string, allowed map[string]string, fallback string) string {
	if ordering == "" {
		return fallback
	}
	expr, ok := allowed[strings.TrimPrefix(ordering, "-")]
	if !ok {
		return fallback
	}
	if strings.HasPrefix(ordering, "-") {
		return expr + " DESC"
	}
	return expr
}

func applyOrdering(db *gorm.DB, ordering string, allowed map[string]string, fallback string) *gorm.DB {
	return db.Order(orderClause(ordering, allowed, fallback))
}

// applyPage slices the query when a `page` parameter is present and reports
// the paging values used; page 0 means the full result set.
func applyPage(ctx iris.Context, db *gorm.DB) (*gorm.DB, int, int) {
	page := ctx.URLParamIntDefault("page", 0)
	if page <= 0 {
		return db, 0, 0
	}
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	return db.Offset((page - 1) * perPage).Limit(perPage), page, perPage
}
