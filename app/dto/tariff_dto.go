// Package dto contains request and response data transfer objects for the API layer
package dto

// PurchaseTariffRequest starts a new tariff order for the authenticated
// carrier. Rates is the raw rate submission keyed exactly like the persisted
// schedule; unknown fields are ignored and missing fields take defaults.
type PurchaseTariffRequest struct {
	PricingMethod    string         `json:"pricing_method" validate:"required,oneof=weight cubic flat mixed"`
	ServiceTerritory string         `json:"service_territory" validate:"required,max=255"`
	Accessorials     []string       `json:"accessorials" validate:"omitempty,dive,oneof=packing storage stairs long_carry shuttle waiting"`
	Rates            map[string]any `json:"rates"`

	// Set from the authenticated context, not the request body
	CarrierID uint `json:"-"`
}

// PurchaseTariffResponse reports the created order and any rate cells that
// were coerced to zero during normalization
type PurchaseTariffResponse struct {
	Message      string   `json:"message"`
	UUID         string   `json:"uuid"`
	Status       string   `json:"status"`
	EnrolledDate string   `json:"enrolled_date"`
	ExpiryDate   string   `json:"expiry_date"`
	DocumentURL  string   `json:"document_url,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// UpdateRatesRequest edits an order's rate schedule. The pricing method must
// match the order's current method; switching methods goes through a
// PricingMethodChangeRequest instead.
type UpdateRatesRequest struct {
	PricingMethod string         `json:"pricing_method" validate:"required,oneof=weight cubic flat mixed"`
	Rates         map[string]any `json:"rates" validate:"required"`

	UUID      string `json:"-"`
	CarrierID uint   `json:"-"`
}

// UpdateRatesResponse reports the regenerated document state
type UpdateRatesResponse struct {
	Message     string   `json:"message"`
	UUID        string   `json:"uuid"`
	Status      string   `json:"status"`
	DocumentURL string   `json:"document_url,omitempty"`
	UpdatedAt   string   `json:"updated_at"`
	Warnings    []string `json:"warnings,omitempty"`
}

// RenewTariffResponse reports the order created for the next validity period
type RenewTariffResponse struct {
	Message      string `json:"message"`
	UUID         string `json:"uuid"`
	PriorUUID    string `json:"prior_uuid"`
	EnrolledDate string `json:"enrolled_date"`
	ExpiryDate   string `json:"expiry_date"`
	DocumentURL  string `json:"document_url,omitempty"`
}

// SubmitMethodChangeRequest asks to switch an order's pricing method.
// ProposedRates carries the raw rate submission for the new method and is
// normalized only if the request is approved.
type SubmitMethodChangeRequest struct {
	ToMethod      string         `json:"to_method" validate:"required,oneof=weight cubic flat mixed"`
	ProposedRates map[string]any `json:"proposed_rates"`

	OrderUUID string `json:"-"`
	CarrierID uint   `json:"-"`
}

// SubmitMethodChangeResponse reports the created change request
type SubmitMethodChangeResponse struct {
	Message    string `json:"message"`
	UUID       string `json:"uuid"`
	FromMethod string `json:"from_method"`
	ToMethod   string `json:"to_method"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// DecideMethodChangeRequest approves or rejects a pending change request
type DecideMethodChangeRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=1024"`

	UUID string `json:"-"`
}

// DecideMethodChangeResponse reports the decision outcome
type DecideMethodChangeResponse struct {
	Message   string   `json:"message"`
	UUID      string   `json:"uuid"`
	Status    string   `json:"status"`
	DecidedAt string   `json:"decided_at"`
	Warnings  []string `json:"warnings,omitempty"`
}

// TariffOrderDTO is the order representation returned by list/get endpoints
type TariffOrderDTO struct {
	UUID             string   `json:"uuid"`
	PricingMethod    string   `json:"pricing_method"`
	ServiceTerritory string   `json:"service_territory"`
	Accessorials     []string `json:"accessorials"`
	Status           string   `json:"status"`
	EnrolledDate     string   `json:"enrolled_date"`
	ExpiryDate       string   `json:"expiry_date"`
	DocumentURL      string   `json:"document_url,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

// ListTariffOrdersRequest pages through a carrier's orders
type ListTariffOrdersRequest struct {
	Page     int `json:"page" validate:"omitempty,min=1"`
	PageSize int `json:"page_size" validate:"omitempty,min=1,max=100"`

	CarrierID uint `json:"-"`
}

// ListTariffOrdersResponse returns one page of orders
type ListTariffOrdersResponse struct {
	Message  string           `json:"message"`
	Orders   []TariffOrderDTO `json:"orders"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// MethodChangeRequestDTO is the change-request representation for listings
type MethodChangeRequestDTO struct {
	UUID       string  `json:"uuid"`
	OrderUUID  string  `json:"order_uuid"`
	FromMethod string  `json:"from_method"`
	ToMethod   string  `json:"to_method"`
	Status     string  `json:"status"`
	Note       *string `json:"note,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// DocumentDownload carries a rendered artifact to the transport layer
type DocumentDownload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
	Checksum    string `json:"checksum"`
	GeneratedAt string `json:"generated_at"`
}
