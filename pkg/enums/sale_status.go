package enums

import "fmt"

// SaleStatus tracks the lifecycle of a committed sale record.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusVoid      SaleStatus = "void"
	SaleStatusReturned  SaleStatus = "returned"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusCompleted,
	SaleStatusVoid,
	SaleStatusReturned,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether a status change is allowed.
// Completed records may be voided or returned; everything else is final.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	if s != SaleStatusCompleted {
		return false
	}
	return next == SaleStatusVoid || next == SaleStatusReturned
}

// ParseSaleStatus converts raw input into a SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
