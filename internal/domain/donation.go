package domain

import "time"

// DonationSource identifies the authority a donation event originated from.
type DonationSource string

const (
	SourceProcessorCard DonationSource = "processor_card"
	SourceProcessorPeer DonationSource = "processor_peer"
	SourceOnChain       DonationSource = "on_chain"
)

// DonationStatus is the processing state of a donation event.
type DonationStatus string

const (
	DonationReceived DonationStatus = "received"
	DonationApplied  DonationStatus = "applied"
	DonationFailed   DonationStatus = "failed"
)

// DonationEvent is one normalized payment-provider event. The pair
// (Source, ExternalRef) is the idempotency key: it transitions to applied
// exactly once, redeliveries are no-ops. Gross, Fee and Net are integer cents
// and always satisfy Fee+Net == Gross.
type DonationEvent struct {
	ID          string
	CampaignID  string
	Source      DonationSource
	ExternalRef string
	Gross       int64
	Fee         int64
	Net         int64
	DonorName   string
	DonorEmail  string
	Status      DonationStatus
	ReceivedAt  time.Time
}
