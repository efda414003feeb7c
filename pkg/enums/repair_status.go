package enums

import "fmt"

// RepairStatus tracks a service ticket through the repair queue.
type RepairStatus string

const (
	RepairStatusPending    RepairStatus = "Pending"
	RepairStatusInProgress RepairStatus = "In Progress"
	RepairStatusCompleted  RepairStatus = "Completed"
)

var validRepairStatuses = []RepairStatus{
	RepairStatusPending,
	RepairStatusInProgress,
	RepairStatusCompleted,
}

// String implements fmt.Stringer.
func (r RepairStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RepairStatus.
func (r RepairStatus) IsValid() bool {
	for _, candidate := range validRepairStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRepairStatus converts raw input into a RepairStatus.
func ParseRepairStatus(value string) (RepairStatus, error) {
	for _, candidate := range validRepairStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid repair status %q", value)
}
