package persistence

import (
	"errors"
	"strings"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translate maps driver errors onto domain errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.ErrInUse
	}
	return err
}

// forUpdate adds SELECT ... FOR UPDATE. SQLite has no row locks and
// serialises writers anyway, so the clause is skipped there.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// paginate applies ordering and paging from a normalized filter
func paginate(db *gorm.DB, f shared.Filter, allowed map[string]bool, defaultSort string) *gorm.DB {
	f = f.Normalize()
	field := ValidateSortField(f.OrderBy, allowed, defaultSort)
	db = db.Order(field + " " + ValidateSortOrder(f.OrderDir))
	if field != "id" {
		db = db.Order("id")
	}
	return db.Offset(f.Offset()).Limit(f.PageSize)
}

// search matches code or name case-insensitively
func search(db *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return db
	}
	if len(columns) == 0 {
		columns = []string{"code", "name"}
	}
	like := "%" + strings.ToLower(term) + "%"
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		conds[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = like
	}
	return db.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// dateRange restricts column to the inclusive range; zero bounds are open
func dateRange(db *gorm.DB, column string, r shared.DateRange) *gorm.DB {
	if !r.From.IsZero() {
		db = db.Where(column+" >= ?", shared.DateOnly(r.From))
	}
	if !r.To.IsZero() {
		db = db.Where(column+" <= ?", shared.DateOnly(r.To))
	}
	return db
}

// equalFilters copies whitelisted keys from the filter map into WHERE clauses
func equalFilters(db *gorm.DB, f shared.Filter, keys ...string) *gorm.DB {
	for _, k := range keys {
		if v, ok := f.Filters[k]; ok && v != nil && v != "" {
			db = db.Where(k+" = ?", v)
		}
	}
	return db
}

// updateVersioned writes every column of an aggregate whose in-memory version
// has already been bumped. A lost race shows up as zero rows affected.
func updateVersioned(db *gorm.DB, model any, tenantID, id uuid.UUID, version int) error {
	result := db.Model(model).
		Where("tenant_id = ? AND version = ?", tenantID, version-1).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		var n int64
		if err := db.Session(&gorm.Session{NewDB: true}).Model(model).
			Where("tenant_id = ? AND id = ?", tenantID, id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// saveVersioned inserts a fresh aggregate or applies an optimistic update
func saveVersioned(db *gorm.DB, model any, tenantID, id uuid.UUID, version int) error {
	if version <= 1 {
		return translate(db.Omit(clause.Associations).Create(model).Error)
	}
	return updateVersioned(db, model, tenantID, id, version)
}

// deleteScoped deletes one row of a tenant-owned table
func deleteScoped(db *gorm.DB, model any, tenantID, id uuid.UUID) error {
	result := db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(model)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// exists reports whether any row matches
func exists(db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := db.Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
