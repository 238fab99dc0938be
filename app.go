package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LepeyevaEmiliya/projects/config"
	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/repositories"
	"github.com/LepeyevaEmiliya/projects/services"
)

// app holds the stores shared by every command.
type app struct {
	cfg           config.Config
	db            *repositories.DB
	notifications services.NotificationStore
	closers       []func()
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	logging.InitLogger(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	return cfg, nil
}

// openApp connects to the relational store and the configured notification
// backend. Callers must call close.
func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := repositories.Open(connectCtx, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		logging.Logger.Errorf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for %s failed: %v", cfg.DB.Driver, err)
		return nil, err
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Connected to %s database", cfg.DB.Driver)

	a := &app{cfg: cfg, db: db}
	a.closers = append(a.closers, func() { _ = db.Close() })

	switch cfg.NotificationsBackend {
	case "cassandra":
		cass, err := repositories.NewCassandraNotificationRepository(cfg.Cassandra.Hosts, cfg.Cassandra.Keyspace)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect cassandra: %w", err)
		}
		a.closers = append(a.closers, cass.Close)
		if err := cass.CreateTables(connectCtx); err != nil {
			a.close()
			return nil, fmt.Errorf("create cassandra tables: %w", err)
		}
		a.notifications = cass
		logging.Logger.Infof("Event ID: NOTIFICATIONS_BACKEND, Description: Using Cassandra keyspace %s", cfg.Cassandra.Keyspace)
	default:
		a.notifications = repositories.NewNotificationRepository(db)
	}
	return a, nil
}

// activityStore connects to MongoDB when MONGO_URI is set. It returns an
// untyped nil otherwise so the activity log is disabled.
func (a *app) activityStore(ctx context.Context) services.ActivityStore {
	if strings.TrimSpace(a.cfg.Mongo.URI) == "" {
		logging.Logger.Info("Event ID: ACTIVITY_DISABLED, Description: MONGO_URI not set, project activity log disabled")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	repo, err := repositories.NewActivityRepository(connectCtx, a.cfg.Mongo.URI, a.cfg.Mongo.DBName, a.cfg.Mongo.ActivityCollection)
	if err != nil {
		logging.Logger.Warnf("Event ID: ACTIVITY_DISABLED, Description: MongoDB unavailable, project activity log disabled: %v", err)
		return nil
	}
	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = repo.Close(ctx)
	})
	logging.Logger.Infof("Event ID: ACTIVITY_ENABLED, Description: Recording project activity in %s/%s", a.cfg.Mongo.DBName, a.cfg.Mongo.ActivityCollection)
	return repo
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
