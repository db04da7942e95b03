package payments

import (
	"encoding/json"
	"fmt"
	"strings"

	"givehub/internal/domain"
)

// providerEvent is the wire shape shared by the supported payment providers.
// Providers differ in envelope details; everything downstream sees only the
// typed DonationEvent produced here.
type providerEvent struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Method     string `json:"method"`
	CampaignID string `json:"campaign_id"`
	Donor      struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"donor"`
}

// normalizeEvent extracts the settlement-relevant fields from a raw provider
// payload. Donor identity is best effort and never required.
func normalizeEvent(body []byte) (domain.DonationEvent, error) {
	var raw providerEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.DonationEvent{}, fmt.Errorf("%w: decode event: %v", domain.ErrValidation, err)
	}
	if strings.TrimSpace(raw.ID) == "" {
		return domain.DonationEvent{}, fmt.Errorf("%w: missing event id", domain.ErrValidation)
	}
	if strings.TrimSpace(raw.CampaignID) == "" {
		return domain.DonationEvent{}, fmt.Errorf("%w: missing campaign_id", domain.ErrValidation)
	}
	if raw.Amount <= 0 {
		return domain.DonationEvent{}, fmt.Errorf("%w: amount %d", domain.ErrInvalidAmount, raw.Amount)
	}

	source := domain.SourceProcessorCard
	if strings.EqualFold(raw.Method, "peer") || strings.EqualFold(raw.Method, "p2p") {
		source = domain.SourceProcessorPeer
	}

	return domain.DonationEvent{
		CampaignID:  raw.CampaignID,
		Source:      source,
		ExternalRef: raw.ID,
		Gross:       raw.Amount,
		DonorName:   raw.Donor.Name,
		DonorEmail:  raw.Donor.Email,
		Status:      domain.DonationReceived,
	}, nil
}

// ComputeFee returns the platform fee for a gross amount in cents, rounded
// half up.
func ComputeFee(gross int64, feeBps int) int64 {
	return (gross*int64(feeBps) + 5000) / 10000
}
