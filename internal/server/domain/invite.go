package domain

import (
	"github.com/google/uuid"
)

// InvitePayload is the decoded contents of an invitation token: the admin
// who issued it and a high-entropy nonce unique to this issuance.
type InvitePayload struct {
	IssuerID uuid.UUID `json:"uid"`
	Nonce    []byte    `json:"nonce"`
}
