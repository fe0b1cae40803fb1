// Package testing provides test utilities and database setup for testing the tariff system
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/movedocs/tariffworks/models"
	"github.com/movedocs/tariffworks/pricing"
	"github.com/movedocs/tariffworks/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCarrier creates an active carrier profile with a random MC number
func (tf *TestFixtures) CreateTestCarrier() (*models.CarrierProfile, error) {
	randomDigits := fmt.Sprintf("%06d", rand.Intn(900000)+100000)

	carrier := &models.CarrierProfile{
		CompanyName: "Test Van Lines Inc",
		MCNumber:    fmt.Sprintf("MC-%s", randomDigits),
		USDOTNumber: fmt.Sprintf("%07d", rand.Intn(9000000)+1000000),
		Address:     "123 Test Road, Springfield, IL 62701",
		Phone:       "2175551234",
		Email:       fmt.Sprintf("dispatch.%s@example.com", randomDigits),
		IsActive:    utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(carrier).Error; err != nil {
		return nil, fmt.Errorf("failed to create test carrier: %w", err)
	}

	return carrier, nil
}

// CreateTestOrder creates a completed tariff order for the carrier with a
// fully normalized default rate schedule under the given pricing method.
func (tf *TestFixtures) CreateTestOrder(carrierID uint, method models.PricingMethod) (*models.TariffOrder, error) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{}, method)

	now := utils.UTCNow()
	order := &models.TariffOrder{
		CarrierID:        carrierID,
		PricingMethod:    method,
		ServiceTerritory: "48 contiguous states",
		Accessorials:     models.StringList{"Shuttle Service", "Stair Carry"},
		Rates:            rates,
		Status:           models.OrderStatusCompleted,
		EnrolledDate:     now,
		ExpiryDate:       now.AddDate(1, 0, 0),
	}

	if err := tf.DB.DB.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create test order: %w", err)
	}

	return order, nil
}

// CreateExpiredOrder creates an order whose enrollment year has already ended
func (tf *TestFixtures) CreateExpiredOrder(carrierID uint, method models.PricingMethod) (*models.TariffOrder, error) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{}, method)

	enrolled := utils.UTCNow().AddDate(-1, -1, 0)
	order := &models.TariffOrder{
		CarrierID:        carrierID,
		PricingMethod:    method,
		ServiceTerritory: "48 contiguous states",
		Accessorials:     models.StringList{},
		Rates:            rates,
		Status:           models.OrderStatusExpired,
		EnrolledDate:     enrolled,
		ExpiryDate:       enrolled.AddDate(1, 0, 0),
	}

	if err := tf.DB.DB.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create expired test order: %w", err)
	}

	return order, nil
}

// CreateLapsedOrder creates an order whose validity period has passed but
// whose status has not yet been moved to expired, as the expiry sweeper
// would find it.
func (tf *TestFixtures) CreateLapsedOrder(carrierID uint, method models.PricingMethod) (*models.TariffOrder, error) {
	rates, _ := pricing.Normalize(pricing.RawRateSubmission{}, method)

	enrolled := utils.UTCNow().AddDate(-1, -1, 0)
	order := &models.TariffOrder{
		CarrierID:        carrierID,
		PricingMethod:    method,
		ServiceTerritory: "48 contiguous states",
		Accessorials:     models.StringList{},
		Rates:            rates,
		Status:           models.OrderStatusCompleted,
		EnrolledDate:     enrolled,
		ExpiryDate:       enrolled.AddDate(1, 0, 0),
	}

	if err := tf.DB.DB.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create lapsed test order: %w", err)
	}

	return order, nil
}

// CreateTestDocument stores a generated document row for the order
func (tf *TestFixtures) CreateTestDocument(orderID uint, content []byte, checksum string) (*models.TariffDocument, error) {
	now := utils.UTCNow()
	doc := &models.TariffDocument{
		OrderID:       orderID,
		DocType:       "Tariff",
		Checksum:      checksum,
		SizeBytes:     int64(len(content)),
		Content:       content,
		EffectiveDate: now,
		ExpiryDate:    now.AddDate(1, 0, 0),
		GeneratedAt:   now,
	}

	if err := tf.DB.DB.Create(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create test document: %w", err)
	}

	return doc, nil
}

// CreateTestMethodChange creates a pending pricing method change request
func (tf *TestFixtures) CreateTestMethodChange(order *models.TariffOrder, toMethod models.PricingMethod, proposed []byte) (*models.PricingMethodChangeRequest, error) {
	req := &models.PricingMethodChangeRequest{
		OrderID:       order.ID,
		CarrierID:     order.CarrierID,
		FromMethod:    order.PricingMethod,
		ToMethod:      toMethod,
		ProposedRates: proposed,
		Status:        models.MethodChangeStatusPending,
	}

	if err := tf.DB.DB.Create(req).Error; err != nil {
		return nil, fmt.Errorf("failed to create test method change request: %w", err)
	}

	return req, nil
}

// DecideTestMethodChange marks a request approved or rejected
func (tf *TestFixtures) DecideTestMethodChange(req *models.PricingMethodChangeRequest, status models.MethodChangeStatus, note string) error {
	now := time.Now().UTC()
	req.Status = status
	req.DecisionNote = &note
	req.DecidedAt = &now
	if err := tf.DB.DB.Save(req).Error; err != nil {
		return fmt.Errorf("failed to update test method change request: %w", err)
	}
	return nil
}
