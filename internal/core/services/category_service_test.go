package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type CategoryServiceTestSuite struct {
	ledgerFixture
	categories portssvc.CategorySvcFacade
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.setup(ledgerNow)
	suite.categories = services.NewCategoryService(suite.store, suite.options()...)
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func (suite *CategoryServiceTestSuite) create(req dto.CreateCategoryRequest) (*domain.Category, error) {
	return suite.categories.CreateCategory(suite.ctx, suite.companyID, req, suite.userID)
}

func (suite *CategoryServiceTestSuite) TestCreateAppliesDefaults() {
	category, err := suite.create(dto.CreateCategoryRequest{Name: " Rent ", CategoryType: domain.CategoryExpense})
	suite.Require().NoError(err)
	suite.Equal("Rent", category.Name)
	suite.Equal(domain.DefaultCategoryColor, category.Color)
	suite.Equal(domain.DefaultCategoryIcon, category.Icon)
	suite.True(category.IsActive)
	suite.Contains(suite.store.categories, category.CategoryID)
}

func (suite *CategoryServiceTestSuite) TestHierarchyIsOneLevelDeep() {
	parent, err := suite.create(dto.CreateCategoryRequest{Name: "Operations", CategoryType: domain.CategoryExpense})
	suite.Require().NoError(err)
	child, err := suite.create(dto.CreateCategoryRequest{Name: "Utilities", CategoryType: domain.CategoryExpense, ParentID: &parent.CategoryID})
	suite.Require().NoError(err)
	suite.Equal(parent.CategoryID, *child.ParentID)

	_, err = suite.create(dto.CreateCategoryRequest{Name: "Power", CategoryType: domain.CategoryExpense, ParentID: &child.CategoryID})
	suite.ErrorIs(err, apperrors.ErrValidation)

	other, err := suite.create(dto.CreateCategoryRequest{Name: "Marketing", CategoryType: domain.CategoryExpense})
	suite.Require().NoError(err)
	_, err = suite.categories.UpdateCategory(suite.ctx, suite.companyID, parent.CategoryID, dto.UpdateCategoryRequest{ParentID: &other.CategoryID}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrValidation, "a parent with children cannot become a child")

	_, err = suite.categories.UpdateCategory(suite.ctx, suite.companyID, other.CategoryID, dto.UpdateCategoryRequest{ParentID: &other.CategoryID}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	detached, err := suite.categories.UpdateCategory(suite.ctx, suite.companyID, child.CategoryID, dto.UpdateCategoryRequest{ParentID: ptr("")}, suite.userID)
	suite.Require().NoError(err)
	suite.Nil(detached.ParentID)
}

func (suite *CategoryServiceTestSuite) TestParentMustBelongToCompany() {
	foreign := domain.Category{CategoryID: uuid.NewString(), CompanyID: uuid.NewString(), Name: "x", CategoryType: domain.CategoryIncome}
	suite.store.categories[foreign.CategoryID] = foreign

	_, err := suite.create(dto.CreateCategoryRequest{Name: "Sales", CategoryType: domain.CategoryIncome, ParentID: &foreign.CategoryID})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CategoryServiceTestSuite) TestListByTypeIncludesBoth() {
	for _, c := range []struct {
		name string
		typ  domain.CategoryType
	}{
		{"Sales", domain.CategoryIncome},
		{"Rent", domain.CategoryExpense},
		{"Adjustments", domain.CategoryBoth},
	} {
		_, err := suite.create(dto.CreateCategoryRequest{Name: c.name, CategoryType: c.typ})
		suite.Require().NoError(err)
	}

	expense := domain.CategoryExpense
	list, err := suite.categories.ListCategories(suite.ctx, suite.companyID, dto.ListCategoriesParams{CategoryType: &expense}, suite.userID)
	suite.Require().NoError(err)
	suite.Require().Len(list, 2)
	suite.Equal("Adjustments", list[0].Name)
	suite.Equal("Rent", list[1].Name)

	empty, err := suite.categories.ListCategories(suite.ctx, uuid.NewString(), dto.ListCategoriesParams{}, suite.userID)
	suite.Require().NoError(err)
	suite.NotNil(empty)
}

func (suite *CategoryServiceTestSuite) TestInvalidType() {
	_, err := suite.create(dto.CreateCategoryRequest{Name: "Odd", CategoryType: "transfer"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CategoryServiceTestSuite) TestDeleteUncategorisesTransactions() {
	account := suite.newAccount("Operating", "0")
	category, err := suite.create(dto.CreateCategoryRequest{Name: "Sales", CategoryType: domain.CategoryIncome})
	suite.Require().NoError(err)
	txn := suite.record(suite.completedOn(domain.TransactionIncome, account, category.CategoryID, "10", day(time.March, 1)))

	suite.Require().NoError(suite.categories.DeleteCategory(suite.ctx, suite.companyID, category.CategoryID, suite.userID))
	suite.NotContains(suite.store.categories, category.CategoryID)
	suite.Nil(suite.store.txns[txn.TransactionID].CategoryID)
}
