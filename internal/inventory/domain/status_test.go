package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	valid := []Status{
		StatusAvailable, StatusCheckedOut, StatusInTransit,
		StatusMaintenance, StatusDamaged, StatusLost, StatusRemoved,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}

	assert.False(t, Status("").Valid())
	assert.False(t, Status("borrowed").Valid())
	assert.False(t, Status("AVAILABLE").Valid())
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusRemoved.Terminal())

	for _, s := range []Status{StatusAvailable, StatusCheckedOut, StatusInTransit, StatusMaintenance, StatusDamaged, StatusLost} {
		assert.False(t, s.Terminal(), "expected %q to be non-terminal", s)
	}
}

func TestCanApply_RemovedIsTerminal(t *testing.T) {
	ops := []Operation{
		OpCheckOut, OpCheckIn, OpAssignUser, OpAssignLocation,
		OpUnassign, OpRemove, OpForceRemove,
	}
	for _, op := range ops {
		assert.False(t, CanApply(op, StatusRemoved), "%q must not apply to a removed item", op)
	}
}

func TestCanApply(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		from Status
		want bool
	}{
		{"checkout", OpCheckOut, StatusAvailable, true},
		{"checkin", OpCheckIn, StatusCheckedOut, true},
		{"removal from available", OpRemove, StatusAvailable, true},
		{"removal from damaged", OpRemove, StatusDamaged, true},
		{"checkin requires a checked out item", OpCheckIn, StatusLost, false},
		{"lost item recovered via location assignment", OpAssignLocation, StatusLost, true},
		{"lost item cannot be checked out directly", OpCheckOut, StatusLost, false},
		{"damaged cannot be checked out", OpCheckOut, StatusDamaged, false},
		{"checked out blocks plain removal", OpRemove, StatusCheckedOut, false},
		{"force removal overrides checked out", OpForceRemove, StatusCheckedOut, true},
		{"assignment works from maintenance", OpAssignUser, StatusMaintenance, true},
		{"unknown source", OpCheckOut, Status("borrowed"), false},
		{"unknown operation", Operation("archive"), StatusAvailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanApply(tt.op, tt.from))
		})
	}
}

func TestOperation_Next(t *testing.T) {
	assert.Equal(t, StatusCheckedOut, OpCheckOut.Next())
	assert.Equal(t, StatusAvailable, OpCheckIn.Next())
	assert.Equal(t, StatusCheckedOut, OpAssignUser.Next())
	assert.Equal(t, StatusAvailable, OpAssignLocation.Next())
	assert.Equal(t, StatusAvailable, OpUnassign.Next())
	assert.Equal(t, StatusRemoved, OpRemove.Next())
	assert.Equal(t, StatusRemoved, OpForceRemove.Next())
}

func TestStatus_AvailableActions(t *testing.T) {
	assert.Equal(t, []string{"checkout", "transfer", "update_condition"}, StatusAvailable.AvailableActions())
	assert.Equal(t, []string{"checkin", "view_assignment"}, StatusCheckedOut.AvailableActions())
	assert.Equal(t, []string{"checkin"}, StatusInTransit.AvailableActions())
	assert.Equal(t, []string{"update_condition", "remove"}, StatusMaintenance.AvailableActions())
	assert.Equal(t, []string{"update_condition", "remove"}, StatusDamaged.AvailableActions())
	assert.Equal(t, []string{"checkin", "remove"}, StatusLost.AvailableActions())
	assert.Empty(t, StatusRemoved.AvailableActions())
}

func TestCondition_Valid(t *testing.T) {
	for _, c := range []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionNeedsRepair} {
		assert.True(t, c.Valid(), "expected %q to be valid", c)
	}
	assert.False(t, Condition("broken").Valid())
	assert.False(t, Condition("").Valid())
}

func TestTransactionType_Valid(t *testing.T) {
	for _, tt := range []TransactionType{TransactionCheckout, TransactionCheckin, TransactionTransfer, TransactionRemoval, TransactionConditionUpdate} {
		assert.True(t, tt.Valid(), "expected %q to be valid", tt)
	}
	assert.False(t, TransactionType("loan").Valid())
}
