package model

import (
	"testing"
	"time"
)

func TestTaskStateValid(t *testing.T) {
	for _, s := range []TaskState{StateBacklog, StateInProgress, StateDone, StatePaused, StateCanceled} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if TaskState("ARCHIVED").Valid() {
		t.Fatal("unknown state should be invalid")
	}
}

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{State: StateInProgress}, false},
		{"due tomorrow", Task{State: StateInProgress, DueDate: &tomorrow}, false},
		{"past due, open", Task{State: StateInProgress, DueDate: &yesterday}, true},
		{"past due, done", Task{State: StateDone, DueDate: &yesterday}, false},
		{"past due, canceled", Task{State: StateCanceled, DueDate: &yesterday}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Overdue(now); got != tt.want {
				t.Fatalf("Overdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidPriority(t *testing.T) {
	for p := 1; p <= 5; p++ {
		if !ValidPriority(p) {
			t.Fatalf("priority %d should be valid", p)
		}
	}
	for _, p := range []int{0, 6, -1} {
		if ValidPriority(p) {
			t.Fatalf("priority %d should be invalid", p)
		}
	}
}

func TestPermissionLattice(t *testing.T) {
	if !PermissionAdmin.Covers(PermissionWrite) || !PermissionWrite.Covers(PermissionRead) {
		t.Fatal("higher permissions should cover lower ones")
	}
	if PermissionRead.Covers(PermissionWrite) {
		t.Fatal("READ should not cover WRITE")
	}
	if SharePermission("NONE").Covers(PermissionRead) {
		t.Fatal("unknown permission should cover nothing")
	}
}
