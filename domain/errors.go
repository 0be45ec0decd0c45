// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "errors"

var (
	// ErrNotFound is returned by a KeyValueStore for a key it does not hold.
	ErrNotFound = errors.New("key not found")

	// ErrFormat marks a snapshot or stored value that cannot be decoded,
	// including a snapshot written with an unknown format version.
	ErrFormat = errors.New("invalid storage format")

	// ErrTrainingInconsistency is returned when untraining is applied to state
	// that does not reflect a prior training. The only recovery is to discard
	// the store and retrain from the full corpus.
	ErrTrainingInconsistency = errors.New("training inconsistency")

	// ErrInvalidConfiguration is returned for cutoffs or weights that must be
	// rejected before any classifier operation runs.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotLoaded is returned when a classifier is used before Load.
	ErrNotLoaded = errors.New("classifier state not loaded")
)
