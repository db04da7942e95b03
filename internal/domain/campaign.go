package domain

import "time"

// CampaignStatus enumerates the campaign lifecycle.
type CampaignStatus string

const (
	CampaignDraft   CampaignStatus = "draft"
	CampaignPending CampaignStatus = "pending"
	CampaignMinted  CampaignStatus = "minted"
	CampaignActive  CampaignStatus = "active"
	CampaignClosed  CampaignStatus = "closed"
)

// Campaign is a fundraising campaign backed by an on-chain fund contract.
// Amounts are integer cents. ContractAddress and ContractVersion must resolve
// through the chain registry before any on-chain mutation is attempted.
type Campaign struct {
	ID                     string
	Title                  string
	ChainID                uint64
	ContractAddress        string
	ContractVersion        string
	GoalAmount             int64
	GrossRaised            int64
	NetRaised              int64
	FeeCollected           int64
	Status                 CampaignStatus
	ImmediatePayoutEnabled bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
