// Package domain holds the typed identifiers shared across the engine.
// Keeping them in one place prevents accidental mixing of certificate ids,
// tranche levels, and participant identities in function signatures.
package domain

import "strconv"

// ParticipantID identifies a participant (wallet, account, member).
// Opaque string so callers can plug in addresses, UUIDs, or usernames.
type ParticipantID string

func (p ParticipantID) String() string { return string(p) }

// IsZero reports whether the participant id is unset.
func (p ParticipantID) IsZero() bool { return p == "" }

// CertificateID is the sequential integer id of a reward certificate.
// Valid ids are strictly positive; zero is reserved as "no certificate".
type CertificateID uint64

func (c CertificateID) String() string { return strconv.FormatUint(uint64(c), 10) }

// Valid reports whether the id is usable (positive).
func (c CertificateID) Valid() bool { return c > 0 }

// Pred returns the immediately preceding id. Only meaningful for ids > 1.
func (c CertificateID) Pred() CertificateID { return c - 1 }

// TrancheLevel identifies a reward tier. Levels are non-negative and carry
// no ordering semantics beyond identity.
type TrancheLevel uint32

func (l TrancheLevel) String() string { return strconv.FormatUint(uint64(l), 10) }

// ParseCertificateID parses a decimal certificate id from transport input.
func ParseCertificateID(s string) (CertificateID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return CertificateID(v), nil
}

// ParseTrancheLevel parses a decimal tranche level from transport input.
func ParseTrancheLevel(s string) (TrancheLevel, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return TrancheLevel(v), nil
}
