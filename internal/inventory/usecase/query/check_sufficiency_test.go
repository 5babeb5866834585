package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/caterstock/billing/internal/inventory/domain"
	"github.com/caterstock/billing/internal/inventory/repository"
)

func newTestRepo(t *testing.T) (*repository.GormInventoryRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	repo := repository.NewGormInventoryRepository(db)
	require.NoError(t, repo.AutoMigrate())

	return repo, db
}

func seedBatch(t *testing.T, db *gorm.DB, batch domain.InventoryBatch) domain.InventoryBatch {
	t.Helper()
	if batch.Status == "" {
		batch.Status = domain.BatchStatusActive
	}
	require.NoError(t, db.Create(&batch).Error)
	return batch
}

func TestCheckSufficiency(t *testing.T) {
	repo, db := newTestRepo(t)

	seedBatch(t, db, domain.InventoryBatch{ProductID: 1, Label: "A", Quantity: 5, CostPerUnit: 1})
	seedBatch(t, db, domain.InventoryBatch{ProductID: 1, Label: "B", Quantity: 3, CostPerUnit: 1})
	seedBatch(t, db, domain.InventoryBatch{ProductID: 2, Label: "C", Quantity: 1, CostPerUnit: 1})

	handler := NewCheckSufficiencyHandler(repo)

	t.Run("sums all batches when no label given", func(t *testing.T) {
		statuses, err := handler.Handle(context.Background(), CheckSufficiencyQuery{
			Demands: []ProductDemand{{ProductID: 1, Name: "Rice", Quantity: 7}},
		})
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.True(t, statuses[0].IsSufficient)
		assert.InDelta(t, 8, statuses[0].Available, 1e-9)
	})

	t.Run("label restricts availability", func(t *testing.T) {
		statuses, err := handler.Handle(context.Background(), CheckSufficiencyQuery{
			Demands: []ProductDemand{{ProductID: 1, Name: "Rice", Quantity: 4, BatchLabel: "B"}},
		})
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.False(t, statuses[0].IsSufficient)
		assert.InDelta(t, 3, statuses[0].Available, 1e-9)
		assert.InDelta(t, 1, statuses[0].Deficit, 1e-9)
	})

	t.Run("repeated demands for one product are merged", func(t *testing.T) {
		statuses, err := handler.Handle(context.Background(), CheckSufficiencyQuery{
			Demands: []ProductDemand{
				{ProductID: 1, Name: "Rice", Quantity: 5},
				{ProductID: 1, Name: "Rice", Quantity: 4},
			},
		})
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.False(t, statuses[0].IsSufficient)
		assert.InDelta(t, 9, statuses[0].Required, 1e-9)
		assert.InDelta(t, 1, statuses[0].Deficit, 1e-9)
	})

	t.Run("near-equal demand passes within tolerance", func(t *testing.T) {
		statuses, err := handler.Handle(context.Background(), CheckSufficiencyQuery{
			Demands: []ProductDemand{{ProductID: 2, Name: "Oil", Quantity: 1.0005}},
		})
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.True(t, statuses[0].IsSufficient)
	})

	t.Run("unknown product reports zero availability", func(t *testing.T) {
		statuses, err := handler.Handle(context.Background(), CheckSufficiencyQuery{
			Demands: []ProductDemand{{ProductID: 99, Name: "Ghost", Quantity: 1}},
		})
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.False(t, statuses[0].IsSufficient)
		assert.InDelta(t, 0, statuses[0].Available, 1e-9)
	})

	t.Run("zero-quantity demands are ignored", func(t *testing.T) {
		statuses, err := handler.Handle(context.Background(), CheckSufficiencyQuery{
			Demands: []ProductDemand{{ProductID: 1, Name: "Rice", Quantity: 0}},
		})
		require.NoError(t, err)
		assert.Empty(t, statuses)
	})
}

func TestCheckSufficiency_ExcludesMergedBatches(t *testing.T) {
	repo, db := newTestRepo(t)

	seedBatch(t, db, domain.InventoryBatch{ProductID: 5, Label: "LIVE", Quantity: 2, CostPerUnit: 1})
	seedBatch(t, db, domain.InventoryBatch{
		ProductID: 5, Label: "GONE", Quantity: 10, CostPerUnit: 1,
		Status: domain.BatchStatusMerged, CreatedAt: time.Now().Add(-time.Hour),
	})

	handler := NewCheckSufficiencyHandler(repo)
	statuses, err := handler.Handle(context.Background(), CheckSufficiencyQuery{
		Demands: []ProductDemand{{ProductID: 5, Name: "Tea", Quantity: 3}},
	})
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].IsSufficient)
	assert.InDelta(t, 2, statuses[0].Available, 1e-9)
}

func TestVerifyDeductions(t *testing.T) {
	repo, db := newTestRepo(t)

	append := func(saleID uint, quantity float64, name string) {
		require.NoError(t, db.Create(&domain.DeductionRecord{
			ProductID:     1,
			Quantity:      quantity,
			Note:          noteFor(saleID, name),
			ReferenceType: domain.ReferenceTypeCatererSale,
			ReferenceID:   saleID,
		}).Error)
	}

	append(42, -2, "Rice")
	append(42, -1, "Oil")
	append(421, -1, "Salt")

	handler := NewVerifyDeductionsHandler(repo)

	t.Run("matching count passes", func(t *testing.T) {
		err := handler.Handle(VerifyDeductionsQuery{
			SaleID: 42,
			Items: []domain.DeductionItem{
				{Name: "Rice", Quantity: 2},
				{Name: "Oil", Quantity: 1},
			},
		})
		assert.NoError(t, err)
	})

	t.Run("missing row is a mismatch", func(t *testing.T) {
		err := handler.Handle(VerifyDeductionsQuery{
			SaleID: 42,
			Items: []domain.DeductionItem{
				{Name: "Rice", Quantity: 2},
				{Name: "Oil", Quantity: 1},
				{Name: "Salt", Quantity: 1},
			},
		})
		var mismatch *domain.DeductionMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, int64(3), mismatch.Expected)
		assert.Equal(t, int64(2), mismatch.Actual)
	})

	t.Run("sale 42 does not count sale 421 rows", func(t *testing.T) {
		err := handler.Handle(VerifyDeductionsQuery{
			SaleID: 421,
			Items:  []domain.DeductionItem{{Name: "Salt", Quantity: 1}},
		})
		assert.NoError(t, err)
	})

	t.Run("composite expects one row per component", func(t *testing.T) {
		err := handler.Handle(VerifyDeductionsQuery{
			SaleID: 42,
			Items: []domain.DeductionItem{
				{
					Name:        "Mix",
					IsComposite: true,
					Components: []domain.DeductionItem{
						{Name: "Rice", Quantity: 2},
						{Name: "Oil", Quantity: 1},
					},
				},
			},
		})
		assert.NoError(t, err)
	})
}

func noteFor(saleID uint, name string) string {
	return fmt.Sprintf("Caterer sale deduction | Sale ID: %d | Item: %s", saleID, name)
}
