package query

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/caterstock/billing/internal/sale/domain"
	"github.com/caterstock/billing/internal/sale/repository"
)

func newTestRepo(t *testing.T) *repository.GormSaleRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	repo := repository.NewGormSaleRepository(db)
	require.NoError(t, repo.AutoMigrate())

	return repo
}

func uintPtr(v uint) *uint {
	return &v
}

func TestGetSale_RebuildsCompositeTree(t *testing.T) {
	repo := newTestRepo(t)

	sale := &domain.Sale{CatererID: 1, BillNumber: "BILL-T1"}
	require.NoError(t, repo.Create(sale))

	group := uint(1)
	header := &domain.SaleLineItem{
		SaleID:         sale.ID,
		Name:           "Spice Mix",
		Quantity:       1,
		IsComposite:    true,
		CompositeGroup: &group,
	}
	require.NoError(t, repo.CreateLineItem(header))

	for _, name := range []string{"Turmeric", "Cumin"} {
		require.NoError(t, repo.CreateLineItem(&domain.SaleLineItem{
			SaleID:         sale.ID,
			ProductID:      uintPtr(1),
			Name:           name,
			Quantity:       1,
			CompositeGroup: &group,
			ParentLineID:   &header.ID,
		}))
	}

	require.NoError(t, repo.CreateLineItem(&domain.SaleLineItem{
		SaleID:    sale.ID,
		ProductID: uintPtr(2),
		Name:      "Rice",
		Quantity:  5,
	}))

	handler := NewGetSaleHandler(repo)
	details, err := handler.Handle(GetSaleQuery{ID: sale.ID})
	require.NoError(t, err)

	require.Len(t, details.Lines, 2, "component rows must not appear at the top level")

	var mixNode *LineItemNode
	for i := range details.Lines {
		if details.Lines[i].Name == "Spice Mix" {
			mixNode = &details.Lines[i]
		}
	}
	require.NotNil(t, mixNode)
	require.Len(t, mixNode.Components, 2)
	assert.Equal(t, "Turmeric", mixNode.Components[0].Name)
	assert.Equal(t, "Cumin", mixNode.Components[1].Name)

	assert.Nil(t, details.Items, "flat rows are replaced by the tree view")
}

func TestGetSale_RequiresID(t *testing.T) {
	repo := newTestRepo(t)
	handler := NewGetSaleHandler(repo)

	_, err := handler.Handle(GetSaleQuery{})
	assert.Error(t, err)
}

func TestListSales_Defaults(t *testing.T) {
	repo := newTestRepo(t)

	for _, bill := range []string{"B-1", "B-2", "B-3"} {
		require.NoError(t, repo.Create(&domain.Sale{CatererID: 1, BillNumber: bill}))
	}

	handler := NewListSalesHandler(repo)

	sales, err := handler.Handle(ListSalesQuery{})
	require.NoError(t, err)
	assert.Len(t, sales, 3)

	limited, err := handler.Handle(ListSalesQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
