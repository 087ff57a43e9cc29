package model

// All lists every table AutoMigrate manages, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Privilege{}, &Role{}, &User{}, &Category{}, &Product{},
		&Sale{}, &SaleItem{}, &StockMovement{}, &AuditLog{},
	}
}
