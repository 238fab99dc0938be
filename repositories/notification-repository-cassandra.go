package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gocql/gocql"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/models"
)

// CassandraNotificationRepository stores notifications partitioned by recipient,
// newest first. notification_owners maps an id back to its partition.
type CassandraNotificationRepository struct {
	session *gocql.Session
}

func NewCassandraNotificationRepository(hosts, keyspace string) (*CassandraNotificationRepository, error) {
	cluster := gocql.NewCluster(strings.Split(hosts, ",")...)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASSANDRA_CONNECT_FAILED, Description: Failed to connect to Cassandra at %s: %v", hosts, err)
		return nil, fmt.Errorf("connect cassandra: %w", err)
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
		 WITH replication = {
			'class': 'SimpleStrategy',
			'replication_factor': 1
		 }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASSANDRA_KEYSPACE_FAILED, Description: Failed to create keyspace %s: %v", keyspace, err)
		return nil, fmt.Errorf("create keyspace: %w", err)
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASSANDRA_CONNECT_FAILED, Description: Failed to connect to keyspace %s: %v", keyspace, err)
		return nil, fmt.Errorf("connect keyspace: %w", err)
	}

	logging.Logger.Infof("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra keyspace %s", keyspace)
	return &CassandraNotificationRepository{session: session}, nil
}

func (r *CassandraNotificationRepository) Close() {
	r.session.Close()
	logging.Logger.Info("Event ID: CASSANDRA_SESSION_CLOSED, Description: Cassandra session closed")
}

func (r *CassandraNotificationRepository) CreateTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notifications_by_user (
			user_id            text,
			id                 timeuuid,
			type               text,
			title              text,
			message            text,
			related_task_id    text,
			related_project_id text,
			is_read            boolean,
			created_at         timestamp,
			PRIMARY KEY ((user_id), id)
		) WITH CLUSTERING ORDER BY (id DESC)`,
		`CREATE TABLE IF NOT EXISTS notification_owners (
			id      timeuuid PRIMARY KEY,
			user_id text
		)`,
	}
	for _, stmt := range stmts {
		if err := r.session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("create notification tables: %w", err)
		}
	}
	logging.Logger.Info("Event ID: CASSANDRA_TABLES_READY, Description: Notification tables created")
	return nil
}

func (r *CassandraNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = gocql.TimeUUID().String()
	}
	id, err := gocql.ParseUUID(n.ID)
	if err != nil {
		return fmt.Errorf("notification id: %w", err)
	}

	b := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(`INSERT INTO notifications_by_user (user_id, id, type, title, message, related_task_id, related_project_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, id, string(n.Type), n.Title, n.Message, n.RelatedTaskID, n.RelatedProjectID, n.IsRead, n.CreatedAt)
	b.Query(`INSERT INTO notification_owners (id, user_id) VALUES (?, ?)`, id, n.UserID)

	if err := r.session.ExecuteBatch(b); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *CassandraNotificationRepository) GetByID(ctx context.Context, id string) (models.Notification, error) {
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return models.Notification{}, models.ErrNotFound
	}

	var owner string
	if err := r.session.Query(`SELECT user_id FROM notification_owners WHERE id = ?`, uid).
		WithContext(ctx).Scan(&owner); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return models.Notification{}, models.ErrNotFound
		}
		return models.Notification{}, fmt.Errorf("get notification owner: %w", err)
	}

	iter := r.session.Query(`SELECT user_id, id, type, title, message, related_task_id, related_project_id, is_read, created_at
		FROM notifications_by_user WHERE user_id = ? AND id = ?`, owner, uid).WithContext(ctx).Iter()
	list, err := scanNotifications(iter)
	if err != nil {
		return models.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	if len(list) == 0 {
		return models.Notification{}, models.ErrNotFound
	}
	return list[0], nil
}

func (r *CassandraNotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	iter := r.session.Query(`SELECT user_id, id, type, title, message, related_task_id, related_project_id, is_read, created_at
		FROM notifications_by_user WHERE user_id = ?`, userID).WithContext(ctx).Iter()
	list, err := scanNotifications(iter)
	if err != nil {
		logging.Logger.Errorf("Event ID: CASSANDRA_QUERY_FAILED, Description: Failed to list notifications for %s: %v", userID, err)
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func scanNotifications(iter *gocql.Iter) ([]models.Notification, error) {
	out := []models.Notification{}
	var (
		n   models.Notification
		id  gocql.UUID
		typ string
	)
	for iter.Scan(&n.UserID, &id, &typ, &n.Title, &n.Message, &n.RelatedTaskID, &n.RelatedProjectID, &n.IsRead, &n.CreatedAt) {
		n.ID = id.String()
		n.Type = models.NotificationType(typ)
		out = append(out, n)
		n = models.Notification{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CassandraNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	return unread, nil
}

func (r *CassandraNotificationRepository) MarkRead(ctx context.Context, n models.Notification) error {
	uid, err := gocql.ParseUUID(n.ID)
	if err != nil {
		return models.ErrNotFound
	}
	if err := r.session.Query(`UPDATE notifications_by_user SET is_read = true WHERE user_id = ? AND id = ?`, n.UserID, uid).
		WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (r *CassandraNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	b := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	var count int64
	for _, n := range list {
		if n.IsRead {
			continue
		}
		uid, err := gocql.ParseUUID(n.ID)
		if err != nil {
			continue
		}
		b.Query(`UPDATE notifications_by_user SET is_read = true WHERE user_id = ? AND id = ?`, userID, uid)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if err := r.session.ExecuteBatch(b); err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return count, nil
}

func (r *CassandraNotificationRepository) Delete(ctx context.Context, n models.Notification) error {
	uid, err := gocql.ParseUUID(n.ID)
	if err != nil {
		return models.ErrNotFound
	}

	b := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(`DELETE FROM notifications_by_user WHERE user_id = ? AND id = ?`, n.UserID, uid)
	b.Query(`DELETE FROM notification_owners WHERE id = ?`, uid)
	if err := r.session.ExecuteBatch(b); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (r *CassandraNotificationRepository) ExistsForTask(ctx context.Context, userID, taskID string, typ models.NotificationType) (bool, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, n := range list {
		if n.Type == typ && n.RelatedTaskID != nil && *n.RelatedTaskID == taskID {
			return true, nil
		}
	}
	return false, nil
}
