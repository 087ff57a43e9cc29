package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"
	PrivCategoryView        = "category:view"
	PrivCategoryCreate      = "category:create"
	PrivCategoryUpdate      = "category:update"
	PrivCategoryDelete      = "category:delete"
	PrivProductView         = "product:view"
	PrivProductCreate       = "product:create"
	PrivProductUpdate       = "product:update"
	PrivProductDelete       = "product:delete"
	PrivStockAdd            = "stock:add"
	PrivSaleView            = "sale:view"
	PrivSaleCreate          = "sale:create"
	PrivReportView          = "report:view"
	PrivReportExport        = "report:export"
	PrivAuditView           = "audit:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	{Code: PrivCategoryView, Name: "View Category"},
	{Code: PrivCategoryCreate, Name: "Create Category"},
	{Code: PrivCategoryUpdate, Name: "Update Category"},
	{Code: PrivCategoryDelete, Name: "Delete Category"},
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivStockAdd, Name: "Add Stock"},
	{Code: PrivSaleView, Name: "View Sale"},
	{Code: PrivSaleCreate, Name: "Create Sale"},
	{Code: PrivReportView, Name: "View Report"},
	{Code: PrivReportExport, Name: "Export Report"},
	{Code: PrivAuditView, Name: "View Audit Log"},
}
