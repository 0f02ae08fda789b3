package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/repository"
)

// memDB backs every fake repository so a fake transaction can roll all of them back.
type memDB struct {
	mu           sync.Mutex
	nextID       int64
	now          time.Time
	users        map[int64]domain.User
	jobs         map[int64]domain.JobPosting
	applications map[int64]domain.Application
	audit        []domain.AuditEntry
	auditErr     error
	racingInsert bool
}

func newMemDB() *memDB {
	return &memDB{
		now:          time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		users:        make(map[int64]domain.User),
		jobs:         make(map[int64]domain.JobPosting),
		applications: make(map[int64]domain.Application),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) tick() time.Time {
	db.now = db.now.Add(time.Minute)
	return db.now
}

type snapshot struct {
	users        map[int64]domain.User
	jobs         map[int64]domain.JobPosting
	applications map[int64]domain.Application
	audit        []domain.AuditEntry
}

func (db *memDB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := snapshot{
		users:        make(map[int64]domain.User, len(db.users)),
		jobs:         make(map[int64]domain.JobPosting, len(db.jobs)),
		applications: make(map[int64]domain.Application, len(db.applications)),
		audit:        append([]domain.AuditEntry{}, db.audit...),
	}
	for k, v := range db.users {
		s.users[k] = v
	}
	for k, v := range db.jobs {
		s.jobs[k] = v
	}
	for k, v := range db.applications {
		s.applications[k] = v
	}
	return s
}

func (db *memDB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = s.users
	db.jobs = s.jobs
	db.applications = s.applications
	db.audit = s.audit
}

func (db *memDB) userCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users)
}

func (db *memDB) auditCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.audit)
}

type fakeTransactor struct {
	db        *memDB
	commits   int
	rollbacks int
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}

type fakeUserRepo struct{ db *memDB }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == user.Username {
			return &repository.DuplicateError{Constraint: repository.ConstraintUsername}
		}
		if u.Email == user.Email {
			return &repository.DuplicateError{Constraint: repository.ConstraintEmail}
		}
	}
	user.ID = r.db.id()
	user.CreatedAt = r.db.tick()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, u := range r.db.users {
		if id != user.ID && u.Username == user.Username {
			return &repository.DuplicateError{Constraint: repository.ConstraintUsername}
		}
		if id != user.ID && u.Email == user.Email {
			return &repository.DuplicateError{Constraint: repository.ConstraintEmail}
		}
	}
	user.UpdatedAt = r.db.tick()
	r.db.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.racingInsert {
		return nil, repository.ErrNotFound
	}
	for _, u := range r.db.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.User
	for _, u := range r.db.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(u.Username, *filter.SearchTerm) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) ListAdmins(_ context.Context) ([]repository.AdminPermissionRow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []repository.AdminPermissionRow
	for _, u := range r.db.users {
		if u.Role == domain.RoleAdmin {
			out = append(out, repository.AdminPermissionRow{ID: u.ID, Username: u.Username, Permissions: u.Permissions.Serialize()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) UpdatePermissions(_ context.Context, id int64, permissions string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Permissions = domain.ParsePermissions(permissions)
	r.db.users[id] = u
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Active = active
	r.db.users[id] = u
	return nil
}

type fakeJobRepo struct{ db *memDB }

func (r *fakeJobRepo) Create(_ context.Context, job *domain.JobPosting) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	job.ID = r.db.id()
	job.PostedAt = r.db.tick()
	r.db.jobs[job.ID] = *job
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id int64) (*domain.JobPosting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	j, ok := r.db.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &j, nil
}

func (r *fakeJobRepo) active() []domain.JobPosting {
	var out []domain.JobPosting
	for _, j := range r.db.jobs {
		if j.Active {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.After(out[j].PostedAt) })
	return out
}

func (r *fakeJobRepo) ListActive(_ context.Context, limit, offset int) ([]domain.JobPosting, int, error) {
	if limit < 0 || offset < 0 {
		return nil, 0, errors.New("negative limit or offset")
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := r.active()
	if offset >= len(all) {
		return []domain.JobPosting{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (r *fakeJobRepo) Search(_ context.Context, keyword string) ([]domain.JobPosting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	keyword = strings.ToLower(keyword)
	out := []domain.JobPosting{}
	for _, j := range r.active() {
		if strings.Contains(strings.ToLower(j.Title), keyword) || strings.Contains(strings.ToLower(j.Description), keyword) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) Deactivate(_ context.Context, id int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	j, ok := r.db.jobs[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if !j.Active {
		return false, nil
	}
	j.Active = false
	r.db.jobs[id] = j
	return true, nil
}

func (r *fakeJobRepo) ListByEmployer(_ context.Context, employerID int64) ([]domain.PostedJobSummary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.PostedJobSummary
	for _, j := range r.db.jobs {
		if j.EmployerID != employerID {
			continue
		}
		summary := domain.PostedJobSummary{JobPosting: j}
		for _, a := range r.db.applications {
			if a.JobID == j.ID {
				summary.ApplicationCount++
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeApplicationRepo struct{ db *memDB }

func (r *fakeApplicationRepo) Create(_ context.Context, app *domain.Application) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.applications {
		if a.JobID == app.JobID && a.SeekerID == app.SeekerID {
			return &repository.DuplicateError{Constraint: repository.ConstraintApplication}
		}
	}
	app.ID = r.db.id()
	app.AppliedAt = r.db.tick()
	app.UpdatedAt = app.AppliedAt
	r.db.applications[app.ID] = *app
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id int64) (*domain.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeApplicationRepo) FindByJobAndSeeker(_ context.Context, jobID, seekerID int64) (*domain.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.racingInsert {
		return nil, repository.ErrNotFound
	}
	for _, a := range r.db.applications {
		if a.JobID == jobID && a.SeekerID == seekerID {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeApplicationRepo) UpdateStatus(_ context.Context, id int64, status domain.ApplicationStatus) (time.Time, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.applications[id]
	if !ok {
		return time.Time{}, repository.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = r.db.tick()
	r.db.applications[id] = a
	return a.UpdatedAt, nil
}

func (r *fakeApplicationRepo) ListAppliedJobs(_ context.Context, seekerID int64) ([]domain.AppliedJob, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.AppliedJob{}
	for _, a := range r.db.applications {
		if a.SeekerID != seekerID {
			continue
		}
		j := r.db.jobs[a.JobID]
		out = append(out, domain.AppliedJob{
			ApplicationID: a.ID,
			JobID:         j.ID,
			JobTitle:      j.Title,
			JobType:       j.JobType,
			Status:        a.Status,
			AppliedAt:     a.AppliedAt,
			PostedAt:      j.PostedAt,
		})
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListRecentForEmployer(_ context.Context, employerID int64, limit int) ([]domain.ReceivedApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []domain.ReceivedApplication{}
	for _, a := range r.db.applications {
		j := r.db.jobs[a.JobID]
		if j.EmployerID != employerID {
			continue
		}
		seeker := r.db.users[a.SeekerID]
		out = append(out, domain.ReceivedApplication{
			ApplicationID:  a.ID,
			JobID:          j.ID,
			JobTitle:       j.Title,
			ApplicantName:  seeker.Username,
			ApplicantEmail: seeker.Email,
			Status:         a.Status,
			AppliedAt:      a.AppliedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAuditRepo struct{ db *memDB }

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.auditErr != nil {
		return r.db.auditErr
	}
	entry.ID = r.db.id()
	entry.CreatedAt = r.db.tick()
	r.db.audit = append(r.db.audit, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(_ context.Context, entity domain.AuditEntity, entityID int64) ([]domain.AuditEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.db.audit {
		if e.Entity == entity && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockReportRepo struct {
	overviewFunc  func(ctx context.Context, window repository.ReportWindow) (domain.SystemOverview, error)
	homeStatsFunc func(ctx context.Context) (domain.HomeStats, error)
}

func (m *mockReportRepo) Overview(ctx context.Context, window repository.ReportWindow) (domain.SystemOverview, error) {
	if m.overviewFunc != nil {
		return m.overviewFunc(ctx, window)
	}
	return domain.SystemOverview{}, errors.New("not implemented")
}

func (m *mockReportRepo) HomeStats(ctx context.Context) (domain.HomeStats, error) {
	if m.homeStatsFunc != nil {
		return m.homeStatsFunc(ctx)
	}
	return domain.HomeStats{}, errors.New("not implemented")
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

// =============================================================================
// Test Fixture
// =============================================================================

type fixture struct {
	db           *memDB
	tx           *fakeTransactor
	users        *fakeUserRepo
	dispatcher   *recordingDispatcher
	sessions     *auth.RedisSessionStore
	redis        *miniredis.Miniredis
	auth         *AuthService
	admins       *AdminService
	jobs         *JobService
	applications *ApplicationService
	profiles     *ProfileService
}

func testConfig() config.Config {
	return config.Config{
		Auth:    config.AuthConfig{SessionSecret: "test-secret", BcryptCost: 4},
		Session: config.SessionConfig{TTLMinutes: 720, RememberDays: 30, CookieName: "jobboard_session"},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	db := newMemDB()
	tx := &fakeTransactor{db: db}
	users := &fakeUserRepo{db: db}
	jobs := &fakeJobRepo{db: db}
	applications := &fakeApplicationRepo{db: db}
	audit := &fakeAuditRepo{db: db}
	dispatcher := &recordingDispatcher{}
	sessions := auth.NewRedisSessionStore(client)

	return &fixture{
		db:         db,
		tx:         tx,
		users:      users,
		dispatcher: dispatcher,
		sessions:   sessions,
		redis:      mr,
		auth: NewAuthService(cfg, AuthDependencies{
			UserRepo:   users,
			Sessions:   sessions,
			Tokens:     auth.NewTokenManager(cfg.Auth.SessionSecret),
			Limiter:    auth.NewRedisLimiter(client, 3, time.Minute, "login", nil),
			Dispatcher: dispatcher,
		}),
		admins: NewAdminService(cfg, AdminDependencies{
			UserRepo:   users,
			AuditRepo:  audit,
			Tx:         tx,
			Dispatcher: dispatcher,
		}),
		jobs: NewJobService(JobDependencies{
			JobRepo:    jobs,
			AuditRepo:  audit,
			Tx:         tx,
			Dispatcher: dispatcher,
		}),
		applications: NewApplicationService(ApplicationDependencies{
			ApplicationRepo: applications,
			JobRepo:         jobs,
			AuditRepo:       audit,
			Tx:              tx,
			Dispatcher:      dispatcher,
		}),
		profiles: NewProfileService(cfg, users),
	}
}

// seedUser stores an account directly, bypassing registration rules.
func (f *fixture) seedUser(t *testing.T, username string, role domain.Role, permissions domain.Permissions) domain.Actor {
	t.Helper()
	hash, err := auth.HashPassword("secret1", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		Permissions:  permissions,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return domain.ActorFromUser(user)
}

func (f *fixture) postJob(t *testing.T, employer domain.Actor, title string) *domain.JobPosting {
	t.Helper()
	job, err := f.jobs.PostJob(context.Background(), employer, PostJobInput{Title: title, Description: "Build things"})
	if err != nil {
		t.Fatalf("PostJob() error = %v", err)
	}
	return job
}
