package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/estate/backend/internal/domain/shared"
)

// safeOrderColumn guards against injection through caller-supplied column
// names. Only plain snake_case names pass.
func safeOrderColumn(col string) bool {
	for _, r := range col {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return col != ""
}

// applyFilter applies the equality filters from a shared.Filter to a query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for col, val := range filter.Filters {
		if !safeOrderColumn(col) {
			continue
		}
		query = query.Where(fmt.Sprintf("%s = ?", col), val)
	}
	return query
}

// applyOrderAndPage applies ordering and pagination from a shared.Filter
func applyOrderAndPage(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if orderBy == "" || !safeOrderColumn(orderBy) {
		orderBy = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, dir))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// listPaginated runs the standard count-then-page query sequence and maps
// models to domain objects
func listPaginated[M any, D any](query *gorm.DB, filter shared.Filter, toDomain func(*M) D) (shared.Paginated[D], error) {
	var empty shared.Paginated[D]

	query = applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return empty, err
	}

	var rows []M
	if err := applyOrderAndPage(query, filter).Find(&rows).Error; err != nil {
		return empty, err
	}

	items := make([]D, len(rows))
	for i := range rows {
		items[i] = toDomain(&rows[i])
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}
