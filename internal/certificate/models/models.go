package models

import (
	"time"

	id "tranchor/pkg/domain"
)

// Certificate is a uniquely-numbered, quantity-bearing reward unit. Created
// once by the issuer and never deleted; TotalSupply only decreases through
// ledger movements (retirement), never by direct mutation.
type Certificate struct {
	ID          id.CertificateID
	TotalSupply uint64
	Metadata    string
	IssuedAt    time.Time
}
