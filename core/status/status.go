// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

// Status represents the workload status of the configurator unit as
// reported back to Juju after a reconciliation pass.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

const (
	// Active indicates the unit has published a complete route
	// advertisement and requires no operator attention.
	Active Status = "active"

	// Blocked indicates the unit cannot make progress without operator
	// intervention, for example missing configuration or a relation
	// that has not been created yet.
	Blocked Status = "blocked"

	// Waiting indicates the unit is waiting on an external resource
	// that is expected to appear without operator intervention.
	Waiting Status = "waiting"

	// Maintenance indicates the unit is performing an operation such
	// as an upgrade and is temporarily not serving.
	Maintenance Status = "maintenance"

	// Error indicates a hook failed and human intervention is required
	// for the unit to operate correctly.
	Error Status = "error"
)

// StatusInfo holds a Status and the human readable message that
// accompanies it.
type StatusInfo struct {
	Status  Status
	Message string
}

// KnownWorkloadStatus reports whether status is a value the Juju
// runtime accepts for a workload.
func KnownWorkloadStatus(status Status) bool {
	switch status {
	case Active, Blocked, Waiting, Maintenance, Error:
		return true
	}
	return false
}
