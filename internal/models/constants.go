package models

// Статусы RFP.
const (
	RFPStatusDraft  = "draft"
	RFPStatusSent   = "sent"
	RFPStatusClosed = "closed"
)

// Статусы предложений поставщиков.
const (
	ProposalStatusReceived = "received"
	ProposalStatusReviewed = "reviewed"
	ProposalStatusAccepted = "accepted"
	ProposalStatusRejected = "rejected"
)

// IsValidRFPStatus проверяет, что статус RFP из допустимого набора.
func IsValidRFPStatus(status string) bool {
	switch status {
	case RFPStatusDraft, RFPStatusSent, RFPStatusClosed:
		return true
	}
	return false
}

// IsValidProposalStatus проверяет, что статус предложения из допустимого набора.
func IsValidProposalStatus(status string) bool {
	switch status {
	case ProposalStatusReceived, ProposalStatusReviewed, ProposalStatusAccepted, ProposalStatusRejected:
		return true
	}
	return false
}

// Статусы рассылки приглашений.
const (
	InviteStatusPending = "pending"
	InviteStatusSent    = "sent"
	InviteStatusFailed  = "failed"
)
