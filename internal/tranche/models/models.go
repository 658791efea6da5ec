package models

import id "tranchor/pkg/domain"

// Definition is a tranche level's configuration: the ordered certificate ids
// it entitles members to and the per-id maximum redeemable amount.
// Definitions are long-lived configuration, mutated only through privileged
// registry operations.
type Definition struct {
	Level id.TrancheLevel
	// IDs is ordered; redemption preserves this order when intersecting with
	// a request.
	IDs  []id.CertificateID
	Caps map[id.CertificateID]uint64
}

// CapFor returns the maximum redeemable amount for a certificate id, zero if
// the id is not part of the definition.
func (d *Definition) CapFor(certID id.CertificateID) uint64 {
	if d == nil || d.Caps == nil {
		return 0
	}
	return d.Caps[certID]
}

// Includes reports whether the definition entitles the given id.
func (d *Definition) Includes(certID id.CertificateID) bool {
	if d == nil {
		return false
	}
	for _, candidate := range d.IDs {
		if candidate == certID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot alias registry state.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	clone := &Definition{
		Level: d.Level,
		IDs:   append([]id.CertificateID(nil), d.IDs...),
		Caps:  make(map[id.CertificateID]uint64, len(d.Caps)),
	}
	for k, v := range d.Caps {
		clone.Caps[k] = v
	}
	return clone
}

// Assignment maps a participant to their single active tranche level.
type Assignment struct {
	Participant id.ParticipantID
	Level       id.TrancheLevel
}
