package handlers

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LepeyevaEmiliya/projects/models"
)

func decodeTaskRequest(t *testing.T, body string) taskRequest {
	t.Helper()
	var req taskRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
	return req
}

func TestTaskRequestPatchFields(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, p models.TaskPatch)
	}{
		{"absent fields stay unset", `{"title":"x"}`, func(t *testing.T, p models.TaskPatch) {
			if p.AssigneeID.Set || p.DueDate.Set || p.EstimatedHours.Set {
				t.Errorf("expected unset nullable fields: %+v", p)
			}
		}},
		{"empty strings clear", `{"assignee_id":"","due_date":"","estimated_hours":""}`, func(t *testing.T, p models.TaskPatch) {
			if !p.AssigneeID.Set || p.AssigneeID.Valid || !p.DueDate.Set || p.DueDate.Valid || !p.EstimatedHours.Set || p.EstimatedHours.Valid {
				t.Errorf("expected cleared fields: %+v", p)
			}
		}},
		{"null clears", `{"estimated_hours":null}`, func(t *testing.T, p models.TaskPatch) {
			if !p.EstimatedHours.Set || p.EstimatedHours.Valid {
				t.Errorf("expected cleared estimated_hours: %+v", p.EstimatedHours)
			}
		}},
		{"numeric estimate", `{"estimated_hours":4}`, func(t *testing.T, p models.TaskPatch) {
			if !p.EstimatedHours.Valid || p.EstimatedHours.Value != 4 {
				t.Errorf("estimated_hours = %+v", p.EstimatedHours)
			}
		}},
		{"string estimate", `{"estimated_hours":" 1.5 "}`, func(t *testing.T, p models.TaskPatch) {
			if !p.EstimatedHours.Valid || p.EstimatedHours.Value != 1.5 {
				t.Errorf("estimated_hours = %+v", p.EstimatedHours)
			}
		}},
		{"date only due date", `{"due_date":"2030-05-01"}`, func(t *testing.T, p models.TaskPatch) {
			want := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
			if !p.DueDate.Valid || !p.DueDate.Value.Equal(want) {
				t.Errorf("due_date = %+v", p.DueDate)
			}
		}},
		{"rfc3339 due date", `{"due_date":"2030-05-01T10:00:00+02:00"}`, func(t *testing.T, p models.TaskPatch) {
			want := time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)
			if !p.DueDate.Valid || !p.DueDate.Value.Equal(want) {
				t.Errorf("due_date = %+v", p.DueDate)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := decodeTaskRequest(t, tt.body).patch()
			if err != nil {
				t.Fatalf("patch: %v", err)
			}
			tt.check(t, p)
		})
	}
}

func TestTaskRequestRejectsBadValues(t *testing.T) {
	for _, body := range []string{
		`{"estimated_hours":"a lot"}`,
		`{"due_date":"next week"}`,
		`{"assignee_id":"bob"}`,
	} {
		_, err := decodeTaskRequest(t, body).patch()
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("%s: err = %v, want validation error", body, err)
		}
	}

	if _, err := decodeTaskRequest(t, `{"title":"x","project_id":"nope"}`).newTask(); !errors.Is(err, models.ErrValidation) {
		t.Errorf("malformed project_id: err = %v, want validation error", err)
	}
}
