// Package domain holds the equipment lifecycle vocabulary: item statuses,
// condition grades, ledger transaction types, and the transition rules
// between statuses. The service layer consults this package before every
// state change; the database enforces the same sets via CHECK constraints.
package domain

// Status is the lifecycle state of an equipment item.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusCheckedOut  Status = "checked_out"
	StatusInTransit   Status = "in_transit"
	StatusMaintenance Status = "maintenance"
	StatusDamaged     Status = "damaged"
	StatusLost        Status = "lost"
	StatusRemoved     Status = "removed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusCheckedOut, StatusInTransit,
		StatusMaintenance, StatusDamaged, StatusLost, StatusRemoved:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
// Removed items stay removed; the row is kept for ledger integrity.
func (s Status) Terminal() bool {
	return s == StatusRemoved
}

// Operation is a lifecycle action the service layer applies to an item.
type Operation string

const (
	OpCheckOut       Operation = "check_out"
	OpCheckIn        Operation = "check_in"
	OpAssignUser     Operation = "assign_user"
	OpAssignLocation Operation = "assign_location"
	OpUnassign       Operation = "unassign"
	OpRemove         Operation = "remove"
	OpForceRemove    Operation = "force_remove"
)

type transitionRule struct {
	sources map[Status]bool
	next    Status
}

func statusSet(statuses ...Status) map[Status]bool {
	set := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// anyActive is every non-terminal status.
var anyActive = statusSet(StatusAvailable, StatusCheckedOut, StatusInTransit,
	StatusMaintenance, StatusDamaged, StatusLost)

// transitions keys each operation to the statuses it may start from and
// the status it produces. Removed appears in no source set: nothing
// leaves the terminal state.
var transitions = map[Operation]transitionRule{
	OpCheckOut:       {sources: statusSet(StatusAvailable), next: StatusCheckedOut},
	OpCheckIn:        {sources: statusSet(StatusCheckedOut), next: StatusAvailable},
	OpAssignUser:     {sources: anyActive, next: StatusCheckedOut},
	OpAssignLocation: {sources: anyActive, next: StatusAvailable},
	OpUnassign:       {sources: anyActive, next: StatusAvailable},
	OpRemove: {sources: statusSet(StatusAvailable, StatusInTransit,
		StatusMaintenance, StatusDamaged, StatusLost), next: StatusRemoved},
	OpForceRemove: {sources: anyActive, next: StatusRemoved},
}

// CanApply reports whether op is allowed from the given status.
func CanApply(op Operation, from Status) bool {
	return transitions[op].sources[from]
}

// Next returns the status an item lands in after op succeeds.
func (op Operation) Next() Status {
	return transitions[op].next
}

// AvailableActions returns the scanner actions offered for an item
// in status s. The front-end renders these as buttons after a QR scan.
func (s Status) AvailableActions() []string {
	switch s {
	case StatusAvailable:
		return []string{"checkout", "transfer", "update_condition"}
	case StatusCheckedOut:
		return []string{"checkin", "view_assignment"}
	case StatusInTransit:
		return []string{"checkin"}
	case StatusMaintenance, StatusDamaged:
		return []string{"update_condition", "remove"}
	case StatusLost:
		return []string{"checkin", "remove"}
	default:
		return []string{}
	}
}

// Condition is the physical condition grade of an item.
type Condition string

const (
	ConditionExcellent   Condition = "excellent"
	ConditionGood        Condition = "good"
	ConditionFair        Condition = "fair"
	ConditionPoor        Condition = "poor"
	ConditionNeedsRepair Condition = "needs_repair"
)

// Valid reports whether c is a known condition grade.
func (c Condition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionNeedsRepair:
		return true
	}
	return false
}

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionCheckout        TransactionType = "checkout"
	TransactionCheckin         TransactionType = "checkin"
	TransactionTransfer        TransactionType = "transfer"
	TransactionRemoval         TransactionType = "removal"
	TransactionConditionUpdate TransactionType = "condition_update"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionCheckout, TransactionCheckin, TransactionTransfer,
		TransactionRemoval, TransactionConditionUpdate:
		return true
	}
	return false
}
