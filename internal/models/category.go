package models

// Category represents a row of the categories table. ParentID is nullable.
type Category struct {
	CategoryID   string  `db:"category_id"`
	CompanyID    string  `db:"company_id"`
	Name         string  `db:"name"`
	CategoryType string  `db:"category_type"`
	ParentID     *string `db:"parent_id"`
	Color        string  `db:"color"`
	Icon         string  `db:"icon"`
	IsActive     bool    `db:"is_active"`
	AuditFields
}
