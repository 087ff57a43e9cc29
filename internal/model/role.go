package model

import "strings"

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
)

var DefaultRoles = []Role{
	{Code: RoleAdmin, Name: "Administrator", Description: "Full system access with all privileges"},
	{Code: RoleManager, Name: "Store Manager", Description: "Catalog, stock, sales and reports; no user administration"},
	{Code: RoleCashier, Name: "Cashier", Description: "Product lookup and checkout"},
}

var cashierPrivileges = map[string]bool{
	PrivProductView:  true,
	PrivCategoryView: true,
	PrivSaleCreate:   true,
	PrivSaleView:     true,
}

// DefaultPrivilegesFor filters all privileges down to what a seeded role receives.
func DefaultPrivilegesFor(roleCode string, all []Privilege) []Privilege {
	out := []Privilege{}
	for _, p := range all {
		switch roleCode {
		case RoleAdmin:
			out = append(out, p)
		case RoleManager:
			if !strings.HasPrefix(p.Code, "user:") {
				out = append(out, p)
			}
		case RoleCashier:
			if cashierPrivileges[p.Code] {
				out = append(out, p)
			}
		}
	}
	return out
}
