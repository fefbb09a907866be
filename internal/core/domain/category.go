package domain

// CategoryType restricts which transaction types a category may classify.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"
)

func (t CategoryType) IsValid() bool {
	return t == CategoryIncome || t == CategoryExpense || t == CategoryBoth
}

// Accepts reports whether a transaction of type tt may be classified under this category.
// Transfers are not restricted.
func (t CategoryType) Accepts(tt TransactionType) bool {
	switch tt {
	case TransactionIncome:
		return t == CategoryIncome || t == CategoryBoth
	case TransactionExpense:
		return t == CategoryExpense || t == CategoryBoth
	default:
		return true
	}
}

const (
	DefaultCategoryColor = "#6c757d"
	DefaultCategoryIcon  = "fas fa-tag"
)

// Category classifies transactions. Hierarchy is at most one level deep.
type Category struct {
	CategoryID   string       `json:"categoryID"`
	CompanyID    string       `json:"companyID"`
	Name         string       `json:"name"`
	CategoryType CategoryType `json:"categoryType"`
	ParentID     *string      `json:"parentID,omitempty"`
	Color        string       `json:"color"`
	Icon         string       `json:"icon"`
	IsActive     bool         `json:"isActive"`
	AuditFields
}
