package payment

import "time"

// Charge statuses reported in the Coinbase Commerce timeline. Only
// COMPLETED is load-bearing here; everything else means "still payable".
const (
	ChargeStatusNew       = "NEW"
	ChargeStatusPending   = "PENDING"
	ChargeStatusCompleted = "COMPLETED"
	ChargeStatusExpired   = "EXPIRED"
	ChargeStatusResolved  = "RESOLVED"
)

// Webhook event types sent by Coinbase Commerce.
const (
	EventChargeCreated   = "charge:created"
	EventChargePending   = "charge:pending"
	EventChargeConfirmed = "charge:confirmed"
	EventChargeFailed    = "charge:failed"
)

type LocalPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type Pricing struct {
	Local LocalPrice `json:"local"`
}

type TimelineEntry struct {
	Time   time.Time `json:"time"`
	Status string    `json:"status"`
}

// Charge is the Coinbase Commerce charge resource, reduced to the fields
// this integration reads.
type Charge struct {
	ID            string          `json:"id"`
	HostedURL     string          `json:"hosted_url"`
	Pricing       Pricing         `json:"pricing"`
	Timeline      []TimelineEntry `json:"timeline"`
	FailureReason string          `json:"failure_reason,omitempty"`
}

// LatestStatus returns the status of the last timeline entry. An absent or
// empty timeline yields "", which callers treat as "not completed".
func (c *Charge) LatestStatus() string {
	if len(c.Timeline) == 0 {
		return ""
	}
	return c.Timeline[len(c.Timeline)-1].Status
}

type ChargeMetadata struct {
	InvoiceID uint   `json:"invoice_id"`
	UserID    uint   `json:"user_id"`
	Total     string `json:"total"`
}

type CreateChargeRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	PricingType string         `json:"pricing_type"`
	LocalPrice  LocalPrice     `json:"local_price"`
	Metadata    ChargeMetadata `json:"metadata"`
	RedirectURL string         `json:"redirect_url"`
	CancelURL   string         `json:"cancel_url"`
}

// chargeEnvelope is the {"data": {...}} wrapper on charge API responses.
type chargeEnvelope struct {
	Data Charge `json:"data"`
}

// WebhookEvent is the signed event pushed by Coinbase Commerce.
type WebhookEvent struct {
	Event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data Charge `json:"data"`
	} `json:"event"`
}
