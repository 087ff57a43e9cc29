package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	} else if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

func (p Page) Limit() int {
	return p.Normalize().PageSize
}

func paginate(p Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit())
	}
}

// forUpdate takes row locks on engines that support SELECT ... FOR UPDATE.
// SQLite serializes writers at the database level instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// likeEscape works on both postgres and sqlite.
const likeEscape = " ESCAPE '!'"

// likePattern lowercases user input and escapes LIKE wildcards with '!'.
func likePattern(s string, prefixOnly bool) string {
	r := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	s = strings.ToLower(r.Replace(strings.TrimSpace(s)))
	if prefixOnly {
		return s + "%"
	}
	return "%" + s + "%"
}
