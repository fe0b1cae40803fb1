package utils

import (
	"time"
)

// Tariff lifecycle constants
const (
	// TariffValidityPeriod is how long a purchased tariff stays active (1 year)
	TariffValidityPeriod = 365 * 24 * time.Hour

	// LocalMoveDistanceMiles is the distance at or under which a shipment is
	// billed as a local move. Mixed-method hourly billing and the local
	// minimum-charge floor both key off this boundary.
	LocalMoveDistanceMiles = 50.0
)

// Rate schedule defaults applied during normalization
const (
	// DefaultOverageThresholdPercent is the flat-rate weight allowance above
	// the assumed weight before overage billing starts (10%)
	DefaultOverageThresholdPercent = 10.0

	// DefaultOverageRatePerLb is the per-pound charge for flat-rate overage
	DefaultOverageRatePerLb = 0.55

	// DefaultMinLaborHours is the minimum billable hours for loading/unloading
	DefaultMinLaborHours = 2.0

	// DefaultMinCrew is the minimum billable crew size for loading/unloading
	DefaultMinCrew = 2.0
)

// Document constants
const (
	// DocTypeTariff is the document-type token used in download filenames
	DocTypeTariff = "Tariff"

	PDFContentType  = "application/pdf"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Regeneration constants
const (
	// MaxRegenerationWaiters bounds the per-order queue of pending
	// regenerations; submissions beyond the bound are rejected as retryable
	MaxRegenerationWaiters = 8

	// ArtifactCacheTTL is how long rendered document bytes stay in the cache
	ArtifactCacheTTL = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
