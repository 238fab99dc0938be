package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/LepeyevaEmiliya/projects/models"
)

type ProjectRepository struct {
	db *DB
}

func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `p.id, p.name, p.description, p.owner_id, p.is_active, p.created_at`

// CreateWithOwner inserts the project and the owner's accepted membership atomically.
func (r *ProjectRepository) CreateWithOwner(ctx context.Context, project *models.Project) error {
	return r.db.withTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO projects (id, name, description, owner_id, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q,
			project.ID, project.Name, project.Description, project.OwnerID, project.IsActive, project.CreatedAt); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}

		owner := models.Membership{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
			Role:      models.RoleOwner,
			Status:    models.MembershipAccepted,
			JoinedAt:  project.CreatedAt,
		}
		return insertMembership(ctx, tx, owner)
	})
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	q := r.db.conn.Rebind(`SELECT ` + projectColumns + ` FROM projects p WHERE p.id = ?`)
	if err := r.db.conn.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, models.ErrNotFound
		}
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	var out models.Project
	err := r.db.withTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`SELECT ` + projectColumns + ` FROM projects p WHERE p.id = ?`)
		if err := tx.GetContext(ctx, &out, q, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrNotFound
			}
			return fmt.Errorf("get project: %w", err)
		}

		if patch.Name != nil {
			out.Name = *patch.Name
		}
		if patch.Description != nil {
			out.Description = *patch.Description
		}
		if patch.IsActive != nil {
			out.IsActive = *patch.IsActive
		}

		q = tx.Rebind(`UPDATE projects SET name = ?, description = ?, is_active = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, q, out.Name, out.Description, out.IsActive, id); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		return nil
	})
	return out, err
}

func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]models.ProjectSummary, error) {
	q := r.db.conn.Rebind(`
		SELECT ` + projectColumns + `,
		       u.name AS owner_name,
		       m.role,
		       m.status AS membership_status,
		       (SELECT COUNT(*) FROM project_members c WHERE c.project_id = p.id) AS member_count
		FROM project_members m
		JOIN projects p ON p.id = m.project_id
		JOIN users u ON u.id = p.owner_id
		WHERE m.user_id = ?
		ORDER BY p.created_at DESC`)

	out := []models.ProjectSummary{}
	if err := r.db.conn.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (r *ProjectRepository) GetMembership(ctx context.Context, projectID, userID string) (models.Membership, error) {
	var m models.Membership
	q := r.db.conn.Rebind(`SELECT project_id, user_id, role, status, joined_at FROM project_members WHERE project_id = ? AND user_id = ?`)
	if err := r.db.conn.GetContext(ctx, &m, q, projectID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Membership{}, models.ErrNotFound
		}
		return models.Membership{}, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// AddMember returns models.ErrConflict when the pair already exists.
func (r *ProjectRepository) AddMember(ctx context.Context, m models.Membership) error {
	return insertMembership(ctx, r.db.conn, m)
}

func insertMembership(ctx context.Context, ext sqlx.ExtContext, m models.Membership) error {
	q := ext.Rebind(`INSERT INTO project_members (project_id, user_id, role, status, joined_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := ext.ExecContext(ctx, q, m.ProjectID, m.UserID, m.Role, m.Status, m.JoinedAt); err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return models.ErrNotFound
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// AcceptInvitation flips an invited membership to accepted. Accepting twice is a no-op.
func (r *ProjectRepository) AcceptInvitation(ctx context.Context, projectID, userID string) (models.Membership, error) {
	q := r.db.conn.Rebind(`UPDATE project_members SET status = ?, joined_at = ? WHERE project_id = ? AND user_id = ? AND status = ?`)
	if _, err := r.db.conn.ExecContext(ctx, q, models.MembershipAccepted, now(), projectID, userID, models.MembershipInvited); err != nil {
		return models.Membership{}, fmt.Errorf("accept invitation: %w", err)
	}
	return r.GetMembership(ctx, projectID, userID)
}

func (r *ProjectRepository) ListMembers(ctx context.Context, projectID string) ([]models.Member, error) {
	q := r.db.conn.Rebind(`
		SELECT u.id, m.project_id, u.name, u.email, m.role, m.status, m.joined_at
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = ?
		ORDER BY m.joined_at, u.name`)

	out := []models.Member{}
	if err := r.db.conn.SelectContext(ctx, &out, q, projectID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return out, nil
}
