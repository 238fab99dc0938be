package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRolePrecedence(t *testing.T) {
	tests := []struct {
		role      Role
		min       Role
		want      bool
		canManage bool
	}{
		{RoleOwner, RoleManager, true, true},
		{RoleManager, RoleManager, true, true},
		{RoleParticipant, RoleManager, false, false},
		{RoleParticipant, RoleParticipant, true, false},
		{Role("admin"), RoleParticipant, false, false},
	}
	for _, tt := range tests {
		if got := tt.role.AtLeast(tt.min); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
		if got := tt.role.CanManage(); got != tt.canManage {
			t.Errorf("%s.CanManage() = %v, want %v", tt.role, got, tt.canManage)
		}
	}
}

func TestEnumValidation(t *testing.T) {
	if !StatusInProgress.Valid() || TaskStatus("archived").Valid() {
		t.Error("unexpected TaskStatus validity")
	}
	if !PriorityCritical.Valid() || Priority("urgent").Valid() {
		t.Error("unexpected Priority validity")
	}
	if !TypeResearch.Valid() || TaskType("epic").Valid() {
		t.Error("unexpected TaskType validity")
	}
}

func TestNullableDistinguishesAbsentFromNull(t *testing.T) {
	var body struct {
		AssigneeID Nullable[string]    `json:"assignee_id"`
		DueDate    Nullable[time.Time] `json:"due_date"`
		Hours      Nullable[float64]   `json:"estimated_hours"`
	}
	if err := json.Unmarshal([]byte(`{"assignee_id": null, "estimated_hours": 2.5}`), &body); err != nil {
		t.Fatal(err)
	}

	if !body.AssigneeID.Set || body.AssigneeID.Valid || body.AssigneeID.Ptr() != nil {
		t.Errorf("null assignee should be set and invalid: %+v", body.AssigneeID)
	}
	if body.DueDate.Set {
		t.Errorf("absent due_date should not be set")
	}
	if p := body.Hours.Ptr(); p == nil || *p != 2.5 {
		t.Errorf("estimated_hours = %v, want 2.5", p)
	}
}

func TestAppErrorMatchesKind(t *testing.T) {
	err := fmt.Errorf("create task: %w", ForbiddenError("Not a member of project %s", "p1"))

	if !errors.Is(err, ErrForbidden) {
		t.Error("expected ErrForbidden kind")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("did not expect ErrNotFound kind")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Message != "Not a member of project p1" {
		t.Errorf("unexpected AppError %+v", appErr)
	}
}
