package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-manager.com/task-manager/internal/auth"
	config "task-manager.com/task-manager/internal/configs"
	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	repository "task-manager.com/task-manager/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.NewSQLite(":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// fixedClock returns a clock that advances by one second per call so that
// creation order is strictly increasing.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func newTestServices(t *testing.T) (*TaskService, *QueryService) {
	t.Helper()
	repo := repository.NewTaskRepository(setupTestDB(t))

	tasks := NewTaskService(repo)
	tasks.now = fixedClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	queries := NewQueryService(repo)
	queries.now = func() time.Time { return time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC) }
	return tasks, queries
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestTaskService_CreateDefaults(t *testing.T) {
	service, _ := newTestServices(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "alice", CreateTaskInput{Title: "  Buy milk  "})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if task.ID == "" {
		t.Error("expected task ID to be set")
	}
	if task.Title != "Buy milk" {
		t.Errorf("expected trimmed title, got %q", task.Title)
	}
	if task.Priority != constants.PriorityMedium {
		t.Errorf("expected priority %s, got %s", constants.PriorityMedium, task.Priority)
	}
	if task.Status != constants.StatusPending || task.Completed {
		t.Errorf("expected pending/false, got %s/%v", task.Status, task.Completed)
	}
	if task.OwnerID != "alice" {
		t.Errorf("expected owner alice, got %s", task.OwnerID)
	}
	if task.DueDate != nil {
		t.Errorf("expected no due date, got %v", task.DueDate)
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	service, _ := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		owner   string
		in      CreateTaskInput
		wantErr error
	}{
		{"blank title", "alice", CreateTaskInput{Title: "   "}, apperrors.ErrValidation},
		{"bad priority", "alice", CreateTaskInput{Title: "x", Priority: "urgent"}, apperrors.ErrValidation},
		{"no owner", "", CreateTaskInput{Title: "x"}, apperrors.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateTask(ctx, tt.owner, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	tasks, _ := service.ListTasks(ctx, "alice")
	if len(tasks) != 0 {
		t.Errorf("expected no tasks after failed creates, got %d", len(tasks))
	}
}

func TestTaskService_Lifecycle(t *testing.T) {
	service, _ := newTestServices(t)
	ctx := context.Background()

	due := time.Date(2025, 3, 12, 17, 45, 0, 0, time.UTC)
	task, err := service.CreateTask(ctx, "alice", CreateTaskInput{
		Title:       "Buy milk",
		Description: "2 litres",
		Priority:    "high",
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("expected due instant %v kept, got %v", due, task.DueDate)
	}

	updated, err := service.UpdateTask(ctx, "alice", task.ID, UpdateTaskInput{Status: strPtr("in progress")})
	if err != nil {
		t.Fatalf("failed to update task: %v", err)
	}
	if updated.Status != constants.StatusInProgress || updated.Completed {
		t.Errorf("expected in progress/false, got %s/%v", updated.Status, updated.Completed)
	}

	toggled, err := service.ToggleTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("failed to toggle task: %v", err)
	}
	if toggled.Status != constants.StatusDone || !toggled.Completed {
		t.Errorf("expected done/true, got %s/%v", toggled.Status, toggled.Completed)
	}

	toggled, err = service.ToggleTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("failed to toggle task: %v", err)
	}
	if toggled.Status != constants.StatusPending || toggled.Completed {
		t.Errorf("expected pending/false, got %s/%v", toggled.Status, toggled.Completed)
	}

	if err := service.DeleteTask(ctx, "alice", task.ID); err != nil {
		t.Fatalf("failed to delete task: %v", err)
	}
	if _, err := service.GetTask(ctx, "alice", task.ID); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound after delete, got %v", err)
	}
}

func TestTaskService_UpdateReconcilesCompletion(t *testing.T) {
	tests := []struct {
		name          string
		start         *string
		in            UpdateTaskInput
		wantStatus    constants.TaskStatus
		wantCompleted bool
	}{
		{
			name:          "completed true marks done",
			in:            UpdateTaskInput{Completed: boolPtr(true)},
			wantStatus:    constants.StatusDone,
			wantCompleted: true,
		},
		{
			name:          "status wins over completed",
			in:            UpdateTaskInput{Status: strPtr("in progress"), Completed: boolPtr(true)},
			wantStatus:    constants.StatusInProgress,
			wantCompleted: false,
		},
		{
			name:          "completed false reopens done",
			start:         strPtr("done"),
			in:            UpdateTaskInput{Completed: boolPtr(false)},
			wantStatus:    constants.StatusPending,
			wantCompleted: false,
		},
		{
			name:          "completed false keeps in progress",
			start:         strPtr("in progress"),
			in:            UpdateTaskInput{Completed: boolPtr(false)},
			wantStatus:    constants.StatusInProgress,
			wantCompleted: false,
		},
		{
			name:          "title only keeps done",
			start:         strPtr("done"),
			in:            UpdateTaskInput{Title: strPtr("Renamed")},
			wantStatus:    constants.StatusDone,
			wantCompleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestServices(t)
			ctx := context.Background()

			task, err := service.CreateTask(ctx, "alice", CreateTaskInput{Title: "Buy milk"})
			if err != nil {
				t.Fatalf("failed to create task: %v", err)
			}
			if tt.start != nil {
				if _, err := service.UpdateTask(ctx, "alice", task.ID, UpdateTaskInput{Status: tt.start}); err != nil {
					t.Fatalf("failed to set start status: %v", err)
				}
			}

			got, err := service.UpdateTask(ctx, "alice", task.ID, tt.in)
			if err != nil {
				t.Fatalf("failed to update task: %v", err)
			}
			if got.Status != tt.wantStatus || got.Completed != tt.wantCompleted {
				t.Errorf("expected %s/%v, got %s/%v", tt.wantStatus, tt.wantCompleted, got.Status, got.Completed)
			}
		})
	}
}

func TestTaskService_UpdateValidation(t *testing.T) {
	service, _ := newTestServices(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "alice", CreateTaskInput{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	for name, in := range map[string]UpdateTaskInput{
		"legacy status":  {Status: strPtr("in-progress")},
		"unknown status": {Status: strPtr("archived")},
		"blank title":    {Title: strPtr("  ")},
		"bad priority":   {Priority: strPtr("HIGH")},
	} {
		if _, err := service.UpdateTask(ctx, "alice", task.ID, in); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}

	got, err := service.GetTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.Version != 1 {
		t.Errorf("expected rejected updates to leave version 1, got %d", got.Version)
	}
}

func TestTaskService_ClearDueDate(t *testing.T) {
	service, _ := newTestServices(t)
	ctx := context.Background()

	due := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	task, err := service.CreateTask(ctx, "alice", CreateTaskInput{Title: "Buy milk", DueDate: &due})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	got, err := service.UpdateTask(ctx, "alice", task.ID, UpdateTaskInput{ClearDueDate: true})
	if err != nil {
		t.Fatalf("failed to update task: %v", err)
	}
	if got.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", got.DueDate)
	}
}

func TestTaskService_CrossUserAccess(t *testing.T) {
	service, _ := newTestServices(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "alice", CreateTaskInput{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if _, err := service.GetTask(ctx, "bob", task.ID); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("get: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := service.UpdateTask(ctx, "bob", task.ID, UpdateTaskInput{Title: strPtr("Mine now")}); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("update: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := service.ToggleTask(ctx, "bob", task.ID); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("toggle: expected ErrTaskNotFound, got %v", err)
	}
	if err := service.DeleteTask(ctx, "bob", task.ID); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("delete: expected ErrTaskNotFound, got %v", err)
	}

	got, err := service.GetTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("owner lost the task: %v", err)
	}
	if got.Title != "Buy milk" || got.Completed || got.Version != 1 {
		t.Errorf("task was modified by another user: %+v", got)
	}

	if tasks, _ := service.ListTasks(ctx, "bob"); len(tasks) != 0 {
		t.Errorf("expected bob to see no tasks, got %d", len(tasks))
	}
}

func TestTaskService_ConcurrentSubmissions(t *testing.T) {
	service, _ := newTestServices(t)

	const concurrentCount = 50
	var wg sync.WaitGroup
	wg.Add(concurrentCount)

	errs := make(chan error, concurrentCount)

	for i := 0; i < concurrentCount; i++ {
		go func() {
			defer wg.Done()
			_, err := service.CreateTask(context.Background(), "alice", CreateTaskInput{Title: "Title", Description: "Desc"})
			if err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent creation failed: %v", err)
	}

	tasks, _ := service.ListTasks(context.Background(), "alice")
	if len(tasks) != concurrentCount {
		t.Errorf("expected %d tasks, got %d", concurrentCount, len(tasks))
	}
}

func TestTaskService_ConcurrentToggles(t *testing.T) {
	service, _ := newTestServices(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "alice", CreateTaskInput{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	const toggles = 15
	var wg sync.WaitGroup
	wg.Add(toggles)
	for i := 0; i < toggles; i++ {
		go func() {
			defer wg.Done()
			if _, err := service.ToggleTask(ctx, "alice", task.ID); err != nil {
				t.Errorf("toggle failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := service.GetTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if got.Status != constants.StatusDone || !got.Completed {
		t.Errorf("expected an odd number of toggles to end done/true, got %s/%v", got.Status, got.Completed)
	}
}

func TestQueryService_Paginate(t *testing.T) {
	tasks, queries := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := tasks.CreateTask(ctx, "alice", CreateTaskInput{Title: "task"}); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
	}

	tests := []struct {
		page, limit int
		wantLen     int
		wantPages   int
		wantMore    bool
	}{
		{page: 1, limit: 5, wantLen: 5, wantPages: 3, wantMore: true},
		{page: 3, limit: 5, wantLen: 2, wantPages: 3, wantMore: false},
		{page: 4, limit: 5, wantLen: 0, wantPages: 3, wantMore: false},
		{page: 1, limit: 100, wantLen: 12, wantPages: 1, wantMore: false},
	}

	for _, tt := range tests {
		page, err := queries.Paginate(ctx, "alice", tt.page, tt.limit)
		if err != nil {
			t.Fatalf("page %d: %v", tt.page, err)
		}
		if len(page.Tasks) != tt.wantLen || page.TotalPages != tt.wantPages || page.HasMore != tt.wantMore {
			t.Errorf("page %d limit %d: got len=%d pages=%d more=%v", tt.page, tt.limit, len(page.Tasks), page.TotalPages, page.HasMore)
		}
		if page.TotalTasks != 12 || page.CurrentPage != tt.page {
			t.Errorf("page %d: got total=%d current=%d", tt.page, page.TotalTasks, page.CurrentPage)
		}
		if page.Tasks == nil {
			t.Errorf("page %d: tasks must be an empty slice, not nil", tt.page)
		}
	}

	first, _ := queries.Paginate(ctx, "alice", 1, 5)
	if !first.Tasks[0].CreatedAt.After(first.Tasks[1].CreatedAt) {
		t.Error("expected newest task first")
	}

	if _, err := queries.Paginate(ctx, "alice", 0, 5); !errors.Is(err, apperrors.ErrInvalidPage) {
		t.Errorf("expected ErrInvalidPage, got %v", err)
	}
	for _, limit := range []int{0, -1, MaxPageLimit + 1} {
		if _, err := queries.Paginate(ctx, "alice", 1, limit); !errors.Is(err, apperrors.ErrInvalidLimit) {
			t.Errorf("limit %d: expected ErrInvalidLimit, got %v", limit, err)
		}
	}
}

func TestQueryService_PaginateEmpty(t *testing.T) {
	_, queries := newTestServices(t)

	page, err := queries.Paginate(context.Background(), "alice", 1, 5)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if page.TotalPages != 0 || page.HasMore || len(page.Tasks) != 0 {
		t.Errorf("unexpected empty page: %+v", page)
	}
}

func TestQueryService_Stats(t *testing.T) {
	tasks, queries := newTestServices(t)
	ctx := context.Background()

	create := func(owner string) string {
		task, err := tasks.CreateTask(ctx, owner, CreateTaskInput{Title: "task"})
		if err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
		return task.ID
	}

	create("alice")
	progress := create("alice")
	done := create("alice")
	create("bob")

	if _, err := tasks.UpdateTask(ctx, "alice", progress, UpdateTaskInput{Status: strPtr("in progress")}); err != nil {
		t.Fatal(err)
	}
	if _, err := tasks.ToggleTask(ctx, "alice", done); err != nil {
		t.Fatal(err)
	}

	stats, err := queries.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{Pending: 1, InProgress: 1, Done: 1, Total: 3}
	if *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}

	empty, err := queries.Stats(ctx, "carol")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if *empty != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", *empty)
	}
}

func TestQueryService_SearchAndDue(t *testing.T) {
	tasks, queries := newTestServices(t)
	ctx := context.Background()

	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	milk, _ := tasks.CreateTask(ctx, "alice", CreateTaskInput{Title: "Buy milk", DueDate: &today})
	if _, err := tasks.CreateTask(ctx, "alice", CreateTaskInput{Title: "Call bank", Description: "about MILK money", DueDate: &tomorrow}); err != nil {
		t.Fatal(err)
	}
	if _, err := tasks.CreateTask(ctx, "bob", CreateTaskInput{Title: "Buy milk", DueDate: &today}); err != nil {
		t.Fatal(err)
	}
	if _, err := tasks.ToggleTask(ctx, "alice", milk.ID); err != nil {
		t.Fatal(err)
	}

	found, err := queries.Search(ctx, "alice", "milk", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected 2 matches, got %d", len(found))
	}

	found, err = queries.Search(ctx, "alice", "milk", "done")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != milk.ID {
		t.Errorf("expected only the done task, got %+v", found)
	}

	if _, err := queries.Search(ctx, "alice", "milk", "completed"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for legacy status filter, got %v", err)
	}

	due, err := queries.DueOn(ctx, "alice", nil)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].ID != milk.ID {
		t.Errorf("expected today's task only, got %+v", due)
	}

	due, err = queries.DueOn(ctx, "alice", &tomorrow)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].Title != "Call bank" {
		t.Errorf("expected tomorrow's task only, got %+v", due)
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *auth.Verifier) {
	t.Helper()
	users := repository.NewUserRepository(setupTestDB(t))
	tokens := auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret"})
	denylist := auth.NewMemoryDenylist()

	service := NewAuthService(users, auth.NewPasswordHasher(bcrypt.MinCost), tokens, denylist)
	return service, auth.NewVerifier(tokens, denylist)
}

func TestAuthService_RegisterLoginLogout(t *testing.T) {
	service, verifier := newTestAuthService(t)
	ctx := context.Background()

	session, err := service.Register(ctx, "Alice", "  Alice@Example.com ", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.User.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %q", session.User.Email)
	}
	if session.User.PasswordHash == "s3cret" {
		t.Error("password stored in plain text")
	}

	if _, err := service.Register(ctx, "Alice again", "alice@example.com", "another"); !errors.Is(err, apperrors.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	login, err := service.Login(ctx, "ALICE@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != session.User.ID {
		t.Errorf("login resolved a different user")
	}

	claims, err := verifier.Authenticate(ctx, "Bearer "+login.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.UserID() != session.User.ID {
		t.Errorf("expected subject %s, got %s", session.User.ID, claims.UserID())
	}

	if err := service.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := verifier.Authenticate(ctx, "Bearer "+login.Token); !errors.Is(err, auth.ErrRevokedToken) {
		t.Errorf("expected revoked token, got %v", err)
	}
	if _, err := verifier.Authenticate(ctx, "Bearer "+session.Token); err != nil {
		t.Errorf("logout must only revoke the presented token: %v", err)
	}
}

func TestAuthService_Failures(t *testing.T) {
	service, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "Alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"wrong password", func() error { _, err := service.Login(ctx, "alice@example.com", "nope!!"); return err }, apperrors.ErrInvalidCredentials},
		{"unknown email", func() error { _, err := service.Login(ctx, "bob@example.com", "s3cret"); return err }, apperrors.ErrInvalidCredentials},
		{"invalid email", func() error { _, err := service.Register(ctx, "Bob", "not-an-email", "s3cret"); return err }, apperrors.ErrValidation},
		{"short password", func() error { _, err := service.Register(ctx, "Bob", "bob@example.com", "12345"); return err }, apperrors.ErrValidation},
		{"missing password", func() error { _, err := service.Login(ctx, "alice@example.com", ""); return err }, apperrors.ErrValidation},
		{"logout without claims", func() error { return service.Logout(ctx, nil) }, apperrors.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTaskService_BuyMilkToggleRoundTrip(t *testing.T) {
	service, _ := newTestServices(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, "alice", CreateTaskInput{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	stored, err := service.GetTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if stored.Title != "Buy milk" || stored.Priority != constants.PriorityMedium ||
		stored.Status != constants.StatusPending || stored.Completed {
		t.Fatalf("unexpected stored task: %+v", stored)
	}

	toggled, err := service.ToggleTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("failed to toggle task: %v", err)
	}
	if toggled.Status != constants.StatusDone || !toggled.Completed {
		t.Errorf("expected done/true, got %s/%v", toggled.Status, toggled.Completed)
	}

	toggled, err = service.ToggleTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("failed to toggle task: %v", err)
	}
	if toggled.Status != stored.Status || toggled.Completed != stored.Completed {
		t.Errorf("toggling twice must restore %s/%v, got %s/%v",
			stored.Status, stored.Completed, toggled.Status, toggled.Completed)
	}
}

func TestQueryService_StatsScenario(t *testing.T) {
	tasks, queries := newTestServices(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		task, err := tasks.CreateTask(ctx, "alice", CreateTaskInput{Title: "task"})
		if err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
		ids = append(ids, task.ID)
	}
	if _, err := tasks.UpdateTask(ctx, "alice", ids[0], UpdateTaskInput{Status: strPtr("in progress")}); err != nil {
		t.Fatal(err)
	}

	stats, err := queries.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if want := (Stats{Pending: 2, InProgress: 1, Done: 0, Total: 3}); *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}
}

func TestQueryService_PagesAreDisjoint(t *testing.T) {
	tasks, queries := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := tasks.CreateTask(ctx, "alice", CreateTaskInput{Title: "task"}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := tasks.ListTasks(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}

	var paged []string
	for p := 1; ; p++ {
		page, err := queries.Paginate(ctx, "alice", p, 3)
		if err != nil {
			t.Fatal(err)
		}
		for _, task := range page.Tasks {
			paged = append(paged, task.ID)
		}
		if !page.HasMore {
			break
		}
	}

	if len(paged) != len(all) {
		t.Fatalf("expected %d paged tasks, got %d", len(all), len(paged))
	}
	for i := range all {
		if paged[i] != all[i].ID {
			t.Errorf("position %d: expected %s, got %s", i, all[i].ID, paged[i])
		}
	}
}

func TestQueryService_DueOnFollowsCallerDay(t *testing.T) {
	tasks, queries := newTestServices(t)
	ctx := context.Background()

	ist := time.FixedZone("+05:30", 5*3600+1800)
	est := time.FixedZone("-05:00", -5*3600)

	// Mar 12 02:00 picked in +05:30 and Mar 12 09:00 picked in -05:00, sent as UTC.
	eastPick := time.Date(2025, 3, 11, 20, 30, 0, 0, time.UTC)
	westPick := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)

	east, err := tasks.CreateTask(ctx, "alice", CreateTaskInput{Title: "east", DueDate: &eastPick})
	if err != nil {
		t.Fatal(err)
	}
	west, err := tasks.CreateTask(ctx, "alice", CreateTaskInput{Title: "west", DueDate: &westPick})
	if err != nil {
		t.Fatal(err)
	}

	stored, err := tasks.GetTask(ctx, "alice", east.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := stored.DueDate.In(ist); got.Day() != 12 || got.Hour() != 2 {
		t.Errorf("expected Mar 12 02:00 in +05:30, got %v", got)
	}

	tests := []struct {
		name string
		day  time.Time
		want []string
	}{
		{"east local day", time.Date(2025, 3, 12, 0, 0, 0, 0, ist), []string{west.ID, east.ID}},
		{"west local day", time.Date(2025, 3, 12, 0, 0, 0, 0, est), []string{west.ID}},
		{"west local day before", time.Date(2025, 3, 11, 0, 0, 0, 0, est), []string{east.ID}},
		{"utc day of east pick", time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), []string{east.ID}},
	}

	for _, tt := range tests {
		due, err := queries.DueOn(ctx, "alice", &tt.day)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		var got []string
		for _, task := range due {
			got = append(got, task.ID)
		}
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
				break
			}
		}
	}
}

func TestAuthService_LogoutWithoutTokenID(t *testing.T) {
	users := repository.NewUserRepository(setupTestDB(t))
	tokens := auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret"})
	denylist := auth.NewMemoryDenylist()
	service := NewAuthService(users, auth.NewPasswordHasher(bcrypt.MinCost), tokens, denylist)
	verifier := auth.NewVerifier(tokens, denylist)
	ctx := context.Background()

	legacy, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	claims, err := verifier.Authenticate(ctx, "Bearer "+legacy)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := service.Logout(ctx, claims); err != nil {
		t.Errorf("expected logout of a token without jti to succeed, got %v", err)
	}
}
