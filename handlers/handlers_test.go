package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LepeyevaEmiliya/projects/config"
	"github.com/LepeyevaEmiliya/projects/models"
	"github.com/LepeyevaEmiliya/projects/repositories"
	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Stack   string          `json:"stack"`
}

type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := repositories.Open(ctx, repositories.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := repositories.NewUserRepository(db)
	projects := repositories.NewProjectRepository(db)
	tasks := repositories.NewTaskRepository(db)

	jwt := utils.NewJWTManager("test-secret", time.Hour)
	activity := services.NewActivityService(nil, projects)
	notifications := services.NewNotificationService(repositories.NewNotificationRepository(db), tasks)
	taskService := services.NewTaskService(tasks, projects, notifications, activity)

	cfg := config.Config{Env: config.EnvDevelopment, APIVersion: "v1", CORSOrigin: "*"}
	h := NewRouter(cfg, Services{
		Auth:          services.NewAuthService(users, jwt),
		Projects:      services.NewProjectService(projects, users, activity),
		Tasks:         taskService,
		Comments:      services.NewCommentService(repositories.NewCommentRepository(db), taskService, projects, users, notifications, activity),
		Notifications: notifications,
		Activity:      activity,
		JWT:           jwt,
		DB:            db,
	})
	return &testServer{handler: h}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Code != http.StatusNoContent {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func (s *testServer) mustDo(t *testing.T, method, path, token string, body any, want int, out any) {
	t.Helper()
	status, env := s.do(t, method, path, token, body)
	if status != want {
		t.Fatalf("%s %s: status = %d, want %d (error %q)", method, path, status, want, env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("%s %s: decode data %s: %v", method, path, env.Data, err)
		}
	}
}

// signUp registers and logs in, returning the user and its token.
func (s *testServer) signUp(t *testing.T, name string) (models.PublicUser, string) {
	t.Helper()
	email := name + "@example.com"
	s.mustDo(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "password1", "name": name,
	}, http.StatusCreated, nil)

	var res models.LoginResult
	s.mustDo(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "password1",
	}, http.StatusOK, &res)
	if res.AccessToken == "" {
		t.Fatalf("login for %s returned no token", name)
	}
	return res.User, res.AccessToken
}

func TestEndToEndTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	alice, token := srv.signUp(t, "alice")

	var project models.Project
	srv.mustDo(t, "POST", "/api/v1/projects", token, map[string]string{"name": "Launch"}, http.StatusCreated, &project)

	var task models.TaskView
	srv.mustDo(t, "POST", "/api/v1/tasks", token, map[string]any{
		"project_id":  project.ID,
		"title":       "Write specs",
		"assignee_id": alice.ID,
	}, http.StatusCreated, &task)
	if task.Status != models.StatusNew {
		t.Fatalf("new task status = %q", task.Status)
	}

	srv.mustDo(t, "PATCH", "/api/v1/tasks/"+task.ID+"/status", token, map[string]string{"status": "done"}, http.StatusOK, nil)

	var got models.TaskView
	srv.mustDo(t, "GET", "/api/v1/tasks/"+task.ID, token, nil, http.StatusOK, &got)
	if got.Status != models.StatusDone || got.CompletedAt == nil {
		t.Fatalf("expected done with completed_at, got status %q completed_at %v", got.Status, got.CompletedAt)
	}

	var mine []models.TaskView
	srv.mustDo(t, "GET", "/api/v1/tasks/my-tasks", token, nil, http.StatusOK, &mine)
	if len(mine) != 1 || mine[0].ID != task.ID {
		t.Fatalf("my-tasks = %+v, want the created task", mine)
	}

	var list models.NotificationList
	srv.mustDo(t, "GET", "/api/v1/notifications", token, nil, http.StatusOK, &list)
	if len(list.Notifications) != 1 || list.Notifications[0].Type != models.NotificationTaskAssigned {
		t.Errorf("expected one task_assigned notification, got %+v", list.Notifications)
	}
}

func TestAuthErrors(t *testing.T) {
	srv := newTestServer(t)
	srv.signUp(t, "alice")

	status, env := srv.do(t, "GET", "/api/v1/auth/me", "", nil)
	if status != http.StatusUnauthorized || env.Success {
		t.Errorf("missing token: status %d envelope %+v", status, env)
	}

	status, env = srv.do(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	if status != http.StatusUnauthorized || env.Error != "Invalid email or password" {
		t.Errorf("bad password: status %d error %q", status, env.Error)
	}

	status, env = srv.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "password1", "name": "Again",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate register: status %d error %q", status, env.Error)
	}
}

func TestChangePasswordAcceptsCamelCase(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signUp(t, "alice")

	srv.mustDo(t, "POST", "/api/v1/auth/change-password", token, map[string]string{
		"oldPassword": "password1", "newPassword": "password2",
	}, http.StatusOK, nil)

	srv.mustDo(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password2",
	}, http.StatusOK, nil)
}

func TestRoutingErrors(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signUp(t, "alice")

	status, env := srv.do(t, "GET", "/api/v1/nope", token, nil)
	if status != http.StatusNotFound || env.Error != "Route not found" {
		t.Errorf("unknown route: status %d error %q", status, env.Error)
	}

	status, _ = srv.do(t, "PUT", "/api/v1/projects", token, nil)
	if status != http.StatusMethodNotAllowed {
		t.Errorf("wrong method: status %d, want 405", status)
	}

	status, env = srv.do(t, "GET", "/api/v1/tasks/not-a-uuid", token, nil)
	if status != http.StatusNotFound || env.Error != "Task not found" {
		t.Errorf("malformed id: status %d error %q", status, env.Error)
	}

	status, env = srv.do(t, "GET", "/api/v1/tasks/"+uuid.NewString(), token, nil)
	if status != http.StatusNotFound {
		t.Errorf("missing task: status %d error %q", status, env.Error)
	}
}

func TestNonMemberIsForbidden(t *testing.T) {
	srv := newTestServer(t)
	_, aliceToken := srv.signUp(t, "alice")
	_, bobToken := srv.signUp(t, "bob")

	var project models.Project
	srv.mustDo(t, "POST", "/api/v1/projects", aliceToken, map[string]string{"name": "Launch"}, http.StatusCreated, &project)
	var task models.TaskView
	srv.mustDo(t, "POST", "/api/v1/tasks", aliceToken, map[string]any{
		"project_id": project.ID, "title": "Secret",
	}, http.StatusCreated, &task)

	for _, path := range []string{
		"/api/v1/projects/" + project.ID,
		"/api/v1/projects/" + project.ID + "/tasks",
		"/api/v1/tasks/" + task.ID,
	} {
		if status, env := srv.do(t, "GET", path, bobToken, nil); status != http.StatusForbidden {
			t.Errorf("GET %s as non-member: status %d error %q", path, status, env.Error)
		}
	}
}

func TestVersionConflict(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signUp(t, "alice")

	var project models.Project
	srv.mustDo(t, "POST", "/api/v1/projects", token, map[string]string{"name": "Launch"}, http.StatusCreated, &project)
	var task models.TaskView
	srv.mustDo(t, "POST", "/api/v1/tasks", token, map[string]any{
		"project_id": project.ID, "title": "Write specs",
	}, http.StatusCreated, &task)

	var updated models.TaskView
	srv.mustDo(t, "PATCH", "/api/v1/tasks/"+task.ID, token, map[string]any{
		"title": "Write better specs", "version": task.Version,
	}, http.StatusOK, &updated)
	if updated.Version != task.Version+1 {
		t.Fatalf("version = %d, want %d", updated.Version, task.Version+1)
	}

	status, env := srv.do(t, "PATCH", "/api/v1/tasks/"+task.ID, token, map[string]any{
		"title": "Stale edit", "version": task.Version,
	})
	if status != http.StatusConflict {
		t.Errorf("stale PATCH: status %d error %q", status, env.Error)
	}

	status, _ = srv.do(t, "PATCH", "/api/v1/tasks/"+task.ID+"/status", token, map[string]any{
		"status": "review", "version": task.Version,
	})
	if status != http.StatusConflict {
		t.Errorf("stale status change: status %d, want 409", status)
	}
}

func TestUpdateTaskRejectsStatus(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signUp(t, "alice")

	var project models.Project
	srv.mustDo(t, "POST", "/api/v1/projects", token, map[string]string{"name": "Launch"}, http.StatusCreated, &project)
	var task models.TaskView
	srv.mustDo(t, "POST", "/api/v1/tasks", token, map[string]any{
		"project_id": project.ID, "title": "Write specs",
	}, http.StatusCreated, &task)

	status, _ := srv.do(t, "PATCH", "/api/v1/tasks/"+task.ID, token, map[string]any{"status": "done"})
	if status != http.StatusBadRequest {
		t.Errorf("status in PATCH body: status %d, want 400", status)
	}
}

func TestMembersAndComments(t *testing.T) {
	srv := newTestServer(t)
	_, aliceToken := srv.signUp(t, "alice")
	bob, bobToken := srv.signUp(t, "bob")

	var project models.Project
	srv.mustDo(t, "POST", "/api/v1/projects", aliceToken, map[string]string{"name": "Launch"}, http.StatusCreated, &project)
	srv.mustDo(t, "POST", "/api/v1/projects/"+project.ID+"/members", aliceToken, map[string]string{
		"email": "bob@example.com",
	}, http.StatusCreated, nil)
	srv.mustDo(t, "POST", "/api/v1/projects/"+project.ID+"/accept", bobToken, nil, http.StatusOK, nil)

	var members []models.Member
	srv.mustDo(t, "GET", "/api/v1/projects/"+project.ID+"/members", bobToken, nil, http.StatusOK, &members)
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}

	var task models.TaskView
	srv.mustDo(t, "POST", "/api/v1/tasks", aliceToken, map[string]any{
		"project_id": project.ID, "title": "Write specs", "estimated_hours": "2.5", "due_date": "2030-01-02",
	}, http.StatusCreated, &task)
	if task.EstimatedHours == nil || *task.EstimatedHours != 2.5 {
		t.Errorf("estimated_hours = %v, want 2.5", task.EstimatedHours)
	}

	srv.mustDo(t, "POST", "/api/v1/tasks/"+task.ID+"/comments", aliceToken, map[string]string{
		"content": "@bob please review",
	}, http.StatusCreated, nil)

	var comments []models.Comment
	srv.mustDo(t, "GET", "/api/v1/tasks/"+task.ID+"/comments", bobToken, nil, http.StatusOK, &comments)
	if len(comments) != 1 || len(comments[0].Mentions) != 1 || comments[0].Mentions[0] != bob.ID {
		t.Fatalf("unexpected comments %+v", comments)
	}

	var list models.NotificationList
	srv.mustDo(t, "GET", "/api/v1/notifications", bobToken, nil, http.StatusOK, &list)
	if list.Unread != 1 {
		t.Fatalf("bob unread = %d, want 1", list.Unread)
	}
	id := list.Notifications[0].ID

	if status, _ := srv.do(t, "PATCH", "/api/v1/notifications/"+id, aliceToken, nil); status != http.StatusForbidden {
		t.Errorf("marking someone else's notification: status %d, want 403", status)
	}
	srv.mustDo(t, "PATCH", "/api/v1/notifications/mark-all-read", bobToken, nil, http.StatusOK, nil)
	srv.mustDo(t, "DELETE", "/api/v1/notifications/"+id, bobToken, nil, http.StatusOK, nil)
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(t)

	srv.mustDo(t, "GET", "/health", "", nil, http.StatusOK, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: status %d headers %v", rec.Code, rec.Header())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("security headers missing")
	}
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsDatabaseDown(t *testing.T) {
	h := NewHealthHandler(downDB{}, "v1", config.EnvDevelopment)
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestWriteErrorHidesInternalsOutsideDevelopment(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	rec := httptest.NewRecorder()
	responder{development: false}.writeError(rec, req, errors.New("pq: relation missing"))
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if rec.Code != http.StatusInternalServerError || env.Error != "Internal server error" || env.Message != "" || env.Stack != "" {
		t.Errorf("production 500 leaked details: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	responder{development: true}.writeError(rec, req, errors.New("pq: relation missing"))
	env = envelope{}
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Message != "pq: relation missing" || env.Stack == "" {
		t.Errorf("development 500 should carry details: %s", rec.Body.String())
	}
}
