package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/models"
)

type ProjectService struct {
	projects ProjectStore
	users    UserStore
	activity *ActivityService
}

func NewProjectService(projects ProjectStore, users UserStore, activity *ActivityService) *ProjectService {
	return &ProjectService{projects: projects, users: users, activity: activity}
}

func (s *ProjectService) CreateProject(ctx context.Context, ownerID, name, description string) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Project{}, models.ValidationError("Project name is required")
	}

	project := models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		IsActive:    true,
		CreatedAt:   nowUTC(),
	}
	if err := s.projects.CreateWithOwner(ctx, &project); err != nil {
		return models.Project{}, fmt.Errorf("create project: %w", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created by %s", project.ID, ownerID)
	return project, nil
}

func (s *ProjectService) ListProjectsForUser(ctx context.Context, userID string) ([]models.ProjectSummary, error) {
	return s.projects.ListForUser(ctx, userID)
}

func (s *ProjectService) GetProject(ctx context.Context, projectID, userID string) (models.Project, error) {
	if _, err := requireMember(ctx, s.projects, projectID, userID); err != nil {
		return models.Project{}, err
	}
	return s.projects.GetByID(ctx, projectID)
}

func (s *ProjectService) UpdateProject(ctx context.Context, projectID, userID string, patch models.ProjectPatch) (models.Project, error) {
	m, err := requireMember(ctx, s.projects, projectID, userID)
	if err != nil {
		return models.Project{}, err
	}
	if !m.Role.CanManage() {
		return models.Project{}, models.ForbiddenError("Only the project owner or a manager can change project settings")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.Project{}, models.ValidationError("Project name cannot be empty")
		}
		patch.Name = &name
	}
	if patch.Empty() {
		return models.Project{}, models.ValidationError("No fields to update")
	}

	project, err := s.projects.Update(ctx, projectID, patch)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Project{}, models.NotFoundError("Project not found")
		}
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// AddMember invites targetUserID. An empty role means participant; owner
// cannot be granted this way.
func (s *ProjectService) AddMember(ctx context.Context, projectID, actingUserID, targetUserID string, role models.Role) (models.Member, error) {
	if role == "" {
		role = models.RoleParticipant
	}
	if !role.Valid() {
		return models.Member{}, models.ValidationError("Invalid role %q", role)
	}
	if role == models.RoleOwner {
		return models.Member{}, models.ValidationError("A project can only have one owner")
	}

	m, err := requireMember(ctx, s.projects, projectID, actingUserID)
	if err != nil {
		return models.Member{}, err
	}
	if !m.Role.CanManage() {
		return models.Member{}, models.ForbiddenError("Only the project owner or a manager can add members")
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Member{}, models.NotFoundError("User not found")
		}
		return models.Member{}, fmt.Errorf("get user: %w", err)
	}

	membership := models.Membership{
		ProjectID: projectID,
		UserID:    target.ID,
		Role:      role,
		Status:    models.MembershipInvited,
		JoinedAt:  nowUTC(),
	}
	if err := s.projects.AddMember(ctx, membership); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.Member{}, models.ConflictError("User is already a member of this project")
		}
		return models.Member{}, fmt.Errorf("add member: %w", err)
	}

	logging.Logger.Infof("Event ID: MEMBER_ADDED, Description: User %s invited to project %s as %s", target.ID, projectID, role)
	s.activity.Record(ctx, projectID, actingUserID, models.ActivityAddMember, nil, fmt.Sprintf("%s invited as %s", target.Name, role))

	return models.Member{
		ID:        target.ID,
		ProjectID: projectID,
		Name:      target.Name,
		Email:     target.Email,
		Role:      role,
		Status:    membership.Status,
		JoinedAt:  membership.JoinedAt,
	}, nil
}

// AddMemberByEmail resolves the invitee by email first.
func (s *ProjectService) AddMemberByEmail(ctx context.Context, projectID, actingUserID, email string, role models.Role) (models.Member, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Member{}, models.NotFoundError("User with this email not found")
		}
		return models.Member{}, fmt.Errorf("get user: %w", err)
	}
	return s.AddMember(ctx, projectID, actingUserID, user.ID, role)
}

func (s *ProjectService) AcceptInvitation(ctx context.Context, projectID, userID string) (models.Membership, error) {
	if _, err := requireMember(ctx, s.projects, projectID, userID); err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return models.Membership{}, models.NotFoundError("No invitation for this project")
		}
		return models.Membership{}, err
	}
	return s.projects.AcceptInvitation(ctx, projectID, userID)
}

func (s *ProjectService) ListMembers(ctx context.Context, projectID, userID string) ([]models.Member, error) {
	if _, err := requireMember(ctx, s.projects, projectID, userID); err != nil {
		return nil, err
	}
	return s.projects.ListMembers(ctx, projectID)
}
