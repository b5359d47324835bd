package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/community-workspace-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ActiveOnly hides soft-deleted rows
func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// DueDateNullsLast orders by due_date ascending with undated rows at the end
func DueDateNullsLast(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC")
}
