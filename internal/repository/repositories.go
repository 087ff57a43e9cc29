package repository

import "gorm.io/gorm"

// Repositories bundles every repository built over one *gorm.DB.
type Repositories struct {
	Users     UserRepository
	Roles     RoleRepository
	Privilege PrivilegeRepository
	Category  CategoryRepository
	Products  ProductRepository
	Sales     SaleRepository
	Movements StockMovementRepository
	Audit     AuditRepository
	Reports   ReportRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepo(db),
		Roles:     NewRoleRepo(db),
		Privilege: NewPrivilegeRepo(db),
		Category:  NewCategoryRepo(db),
		Products:  NewProductRepo(db),
		Sales:     NewSaleRepo(db),
		Movements: NewStockMovementRepo(db),
		Audit:     NewAuditRepo(db),
		Reports:   NewReportRepo(db),
	}
}
