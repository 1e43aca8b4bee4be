// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package reconciler

import (
	"github.com/juju/errors"
)

const (
	// ErrConfiguration describes charm configuration that is missing
	// or malformed. The unit blocks until the operator fixes it.
	ErrConfiguration = errors.ConstError("invalid charm configuration")

	// ErrSecretResolution describes a tunnel-token secret reference
	// that cannot be resolved or lacks the expected field.
	ErrSecretResolution = errors.ConstError("cannot resolve tunnel-token secret")

	// ErrRelationNotReady describes a required relation with no peer
	// connected yet.
	ErrRelationNotReady = errors.ConstError("relation not ready")
)
