package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/movedocs/tariffworks/business_flow"
	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/pricing"
	"github.com/movedocs/tariffworks/repository"
	testingutil "github.com/movedocs/tariffworks/testing"
	"github.com/movedocs/tariffworks/utils"
)

func TestCarrierProfileRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCarrierProfileRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		carrier, err := fixtures.CreateTestCarrier()
		require.NoError(t, err)

		t.Run("ByMCNumber", func(t *testing.T) {
			found, err := repo.ByMCNumber(ctx, carrier.MCNumber)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, carrier.ID, found.ID)
			assert.Equal(t, carrier.CompanyName, found.CompanyName)
		})

		t.Run("ByMCNumberNotFound", func(t *testing.T) {
			found, err := repo.ByMCNumber(ctx, "MC-000000")
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByUUID", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, carrier.UUID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, carrier.MCNumber, found.MCNumber)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTariffOrderRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTariffOrderRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		carrier, err := fixtures.CreateTestCarrier()
		require.NoError(t, err)

		active, err := fixtures.CreateTestOrder(carrier.ID, models.PricingMethodWeight)
		require.NoError(t, err)
		lapsed, err := fixtures.CreateLapsedOrder(carrier.ID, models.PricingMethodCubic)
		require.NoError(t, err)
		expired, err := fixtures.CreateExpiredOrder(carrier.ID, models.PricingMethodFlat)
		require.NoError(t, err)

		t.Run("ListActiveByCarrier", func(t *testing.T) {
			orders, err := repo.ListActiveByCarrier(ctx, carrier.ID)
			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, active.ID, orders[0].ID)
		})

		t.Run("ListExpiredActive", func(t *testing.T) {
			orders, err := repo.ListExpiredActive(ctx, 100)
			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, lapsed.ID, orders[0].ID)
			assert.NotEqual(t, expired.ID, orders[0].ID)
		})

		t.Run("MarkExpired", func(t *testing.T) {
			require.NoError(t, repo.MarkExpired(ctx, lapsed.ID))

			refreshed, err := repo.ByID(ctx, lapsed.ID)
			require.NoError(t, err)
			require.NotNil(t, refreshed)
			assert.Equal(t, models.OrderStatusExpired, refreshed.Status)

			orders, err := repo.ListExpiredActive(ctx, 100)
			require.NoError(t, err)
			assert.Empty(t, orders)
		})

		t.Run("SaveBatch", func(t *testing.T) {
			rates, _ := pricing.Normalize(pricing.RawRateSubmission{}, models.PricingMethodMixed)
			batch := []*models.TariffOrder{
				{CarrierID: carrier.ID, PricingMethod: models.PricingMethodMixed, Accessorials: models.StringList{}, Rates: rates},
				{CarrierID: carrier.ID, PricingMethod: models.PricingMethodMixed, Accessorials: models.StringList{}, Rates: rates},
			}
			require.NoError(t, repo.SaveBatch(ctx, batch))
			for _, order := range batch {
				assert.NotZero(t, order.ID)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExpireDueSweep(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		orderRepo := repository.NewTariffOrderRepository(testDB.DB)
		carrierRepo := repository.NewCarrierProfileRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		carrier, err := fixtures.CreateTestCarrier()
		require.NoError(t, err)
		_, err = fixtures.CreateTestOrder(carrier.ID, models.PricingMethodWeight)
		require.NoError(t, err)
		lapsed, err := fixtures.CreateLapsedOrder(carrier.ID, models.PricingMethodCubic)
		require.NoError(t, err)

		flow := businessflow.NewTariffOrderFlow(testDB.DB, orderRepo, carrierRepo, auditRepo, nil)

		n, err := flow.ExpireDue(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		refreshed, err := orderRepo.ByID(ctx, lapsed.ID)
		require.NoError(t, err)
		require.NotNil(t, refreshed)
		assert.Equal(t, models.OrderStatusExpired, refreshed.Status)

		logs, err := auditRepo.ListByAction(ctx, models.AuditActionTariffExpired, 10, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, carrier.ID, *logs[0].CarrierID)

		// A second sweep finds nothing left to expire.
		n, err = flow.ExpireDue(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		return nil
	})
	require.NoError(t, err)
}

func TestMethodChangeRequestRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewMethodChangeRequestRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		carrier, err := fixtures.CreateTestCarrier()
		require.NoError(t, err)
		order, err := fixtures.CreateTestOrder(carrier.ID, models.PricingMethodWeight)
		require.NoError(t, err)

		pending, err := fixtures.CreateTestMethodChange(order, models.PricingMethodFlat, nil)
		require.NoError(t, err)

		t.Run("PendingByOrder", func(t *testing.T) {
			found, err := repo.PendingByOrder(ctx, order.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, pending.ID, found.ID)
		})

		t.Run("ListPending", func(t *testing.T) {
			requests, err := repo.ListPending(ctx, 10, 0)
			require.NoError(t, err)
			require.Len(t, requests, 1)
			assert.Equal(t, pending.UUID, requests[0].UUID)
		})

		t.Run("DecidedRequestIsNoLongerPending", func(t *testing.T) {
			require.NoError(t, fixtures.DecideTestMethodChange(pending, models.MethodChangeStatusRejected, "insufficient detail"))

			found, err := repo.PendingByOrder(ctx, order.ID)
			require.NoError(t, err)
			assert.Nil(t, found)

			requests, err := repo.ListPending(ctx, 10, 0)
			require.NoError(t, err)
			assert.Empty(t, requests)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTariffDocumentRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTariffDocumentRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		carrier, err := fixtures.CreateTestCarrier()
		require.NoError(t, err)
		order, err := fixtures.CreateTestOrder(carrier.ID, models.PricingMethodWeight)
		require.NoError(t, err)

		first, err := fixtures.CreateTestDocument(order.ID, []byte("first artifact"), "aaa")
		require.NoError(t, err)

		t.Run("LatestByOrder", func(t *testing.T) {
			latest, err := repo.LatestByOrder(ctx, order.ID)
			require.NoError(t, err)
			require.NotNil(t, latest)
			assert.Equal(t, first.ID, latest.ID)
			assert.True(t, latest.IsCurrent())
		})

		t.Run("SupersedePrior", func(t *testing.T) {
			second, err := fixtures.CreateTestDocument(order.ID, []byte("second artifact"), "bbb")
			require.NoError(t, err)
			require.NoError(t, repo.SupersedePrior(ctx, order.ID, second.ID))

			latest, err := repo.LatestByOrder(ctx, order.ID)
			require.NoError(t, err)
			require.NotNil(t, latest)
			assert.Equal(t, second.ID, latest.ID)

			prior, err := repo.ByID(ctx, first.ID)
			require.NoError(t, err)
			require.NotNil(t, prior)
			require.NotNil(t, prior.SupersededBy)
			assert.Equal(t, second.ID, *prior.SupersededBy)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAuditLogRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAuditLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		carrier, err := fixtures.CreateTestCarrier()
		require.NoError(t, err)

		purchased := models.AuditLog{
			CarrierID: &carrier.ID,
			Action:    models.AuditActionTariffPurchased,
			Success:   utils.ToPtr(true),
		}
		exported := models.AuditLog{
			CarrierID: &carrier.ID,
			Action:    models.AuditActionRateSheetExported,
			Success:   utils.ToPtr(true),
		}
		require.NoError(t, repo.Save(ctx, &purchased))
		require.NoError(t, repo.Save(ctx, &exported))

		t.Run("ListByCarrier", func(t *testing.T) {
			logs, err := repo.ListByCarrier(ctx, carrier.ID, 10, 0)
			require.NoError(t, err)
			assert.Len(t, logs, 2)
		})

		t.Run("ListByAction", func(t *testing.T) {
			logs, err := repo.ListByAction(ctx, models.AuditActionTariffPurchased, 10, 0)
			require.NoError(t, err)
			require.Len(t, logs, 1)
			assert.Equal(t, models.AuditActionTariffPurchased, logs[0].Action)
		})

		return nil
	})
	require.NoError(t, err)
}
