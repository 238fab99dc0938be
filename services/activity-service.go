package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
	activityWriteTimeout = 2 * time.Second
)

// ActivityService keeps the optional project activity feed. A nil store
// disables it; writes never fail the caller.
type ActivityService struct {
	store    ActivityStore
	projects ProjectStore
	breaker  *gobreaker.CircuitBreaker
}

func NewActivityService(store ActivityStore, projects ProjectStore) *ActivityService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "activity-store-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	return &ActivityService{store: store, projects: projects, breaker: breaker}
}

func (s *ActivityService) Enabled() bool {
	return s != nil && s.store != nil
}

func (s *ActivityService) Record(ctx context.Context, projectID, actorID string, typ models.ActivityType, taskID *string, details string) {
	if !s.Enabled() {
		return
	}

	// the write outlives a cancelled request but not a stuck store
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), activityWriteTimeout)
	defer cancel()

	activity := models.ProjectActivity{
		ProjectID:    projectID,
		ActivityType: typ,
		TaskID:       taskID,
		ActorID:      actorID,
		Timestamp:    nowUTC(),
		Details:      details,
	}
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.store.Record(ctx, activity)
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: ACTIVITY_RECORD_FAILED, Description: Could not record %s for project %s: %v", typ, projectID, err)
	}
}

func (s *ActivityService) ListForProject(ctx context.Context, projectID, userID string, limit int) ([]models.ProjectActivity, error) {
	if _, err := requireMember(ctx, s.projects, projectID, userID); err != nil {
		return nil, err
	}
	if !s.Enabled() {
		return []models.ProjectActivity{}, nil
	}

	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.store.ListByProject(ctx, projectID, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return out.([]models.ProjectActivity), nil
}
