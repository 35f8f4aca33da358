package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSLADays(t *testing.T) {
	tests := []struct {
		priority Priority
		days     int
	}{
		{PriorityLow, 7},
		{PriorityNormal, 5},
		{PriorityHigh, 3},
		{PriorityUrgent, 1},
		{Priority("bogus"), 5},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.days, SLADays(tc.priority), "priority %s", tc.priority)
	}
}

func TestSLADeadlineAnchorsToCreation(t *testing.T) {
	created := time.Date(2026, 8, 10, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, created.AddDate(0, 0, 3), SLADeadline(PriorityHigh, created))
	assert.Equal(t, created.AddDate(0, 0, 1), SLADeadline(PriorityUrgent, created))
}

func TestSLABreached(t *testing.T) {
	created := time.Now().AddDate(0, 0, -10)
	c := Complaint{Status: StatusInProgress, CreatedAt: created, SLADeadline: created.AddDate(0, 0, 5)}
	assert.True(t, c.SLABreached(time.Now()))

	// Terminal complaints are never reported as breached, however old.
	c.Status = StatusResolved
	assert.False(t, c.SLABreached(time.Now()))
	c.Status = StatusClosed
	assert.False(t, c.SLABreached(time.Now()))

	// Rejected is not terminal for SLA purposes.
	c.Status = StatusRejected
	assert.True(t, c.SLABreached(time.Now()))
}

func TestDepartmentFor(t *testing.T) {
	assert.Equal(t, "PWD", DepartmentFor("Road Damage").Code)
	assert.Equal(t, "PWD", DepartmentFor("Potholes").Code)
	assert.Equal(t, "SAN", DepartmentFor("Garbage Collection").Code)
	assert.Equal(t, "GSD", DepartmentFor("Other").Code)
	// Unknown categories fall back to the catch-all department.
	assert.Equal(t, "GSD", DepartmentFor("Something Else").Code)
}

func TestPriorityOrDefault(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityOrDefault(PriorityHigh))
	assert.Equal(t, PriorityNormal, PriorityOrDefault(""))
	assert.Equal(t, PriorityNormal, PriorityOrDefault(Priority("weird")))
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus(Status("Escalated")))
}

func TestAgeDays(t *testing.T) {
	c := Complaint{CreatedAt: time.Now().Add(-49 * time.Hour)}
	assert.Equal(t, 2, c.AgeDays(time.Now()))
}
