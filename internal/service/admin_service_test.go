package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

func adminCount(t *testing.T, f *fixture) int {
	t.Helper()
	admins, err := f.users.ListAdmins(context.Background())
	if err != nil {
		t.Fatalf("ListAdmins() error = %v", err)
	}
	return len(admins)
}

func TestCreateAdminRequiresManageUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reporter := f.seedUser(t, "reporter", domain.RoleAdmin, domain.Permissions{ViewReports: true})
	employer := f.seedUser(t, "bob", domain.RoleEmployer, domain.Permissions{})
	before := adminCount(t, f)

	input := CreateAdminInput{
		Username:    "newadmin",
		Email:       "newadmin@x.com",
		Password:    "secret1",
		Permissions: []domain.Capability{domain.CapViewReports},
	}
	for _, requester := range []domain.Actor{reporter, employer} {
		_, err := f.admins.CreateAdmin(ctx, requester, input)
		if !apperrors.HasCode(err, apperrors.CodeForbidden) {
			t.Fatalf("requester %s: got %v", requester.Username, err)
		}
	}

	_, err := f.admins.CreateAdmin(ctx, domain.AnonymousActor, input)
	if !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("anonymous: got %v", err)
	}
	if got := adminCount(t, f); got != before {
		t.Fatalf("admin count = %d, want %d", got, before)
	}
	if f.db.auditCount() != 0 {
		t.Fatal("no audit entry may be written")
	}
}

func TestCreateAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.seedUser(t, "root", domain.RoleAdmin, domain.DefaultAdminPermissions())
	fullName := "  Jane Ops  "

	admin, err := f.admins.CreateAdmin(ctx, root, CreateAdminInput{
		Username:    "jane",
		Email:       "jane@x.com",
		Password:    "secret1",
		FullName:    &fullName,
		Permissions: []domain.Capability{domain.CapManageJobs, domain.CapViewReports},
	})
	if err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}
	if admin.Role != domain.RoleAdmin || admin.CreatedBy == nil || *admin.CreatedBy != root.UserID {
		t.Fatalf("unexpected admin %+v", admin)
	}
	if admin.FullName == nil || *admin.FullName != "Jane Ops" {
		t.Fatalf("full name = %v", admin.FullName)
	}

	stored, err := f.users.GetByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !stored.Permissions.ManageJobs || !stored.Permissions.ViewReports || stored.Permissions.ManageUsers {
		t.Fatalf("stored permissions = %+v", stored.Permissions)
	}

	entries, err := (&fakeAuditRepo{db: f.db}).ListByEntity(ctx, domain.AuditEntityUser, admin.ID)
	if err != nil {
		t.Fatalf("ListByEntity() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Action != domain.AuditActionAdminCreated || *entries[0].ActorID != root.UserID {
		t.Fatalf("audit = %+v", entries)
	}
}

func TestCreateAdminValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.seedUser(t, "root", domain.RoleAdmin, domain.DefaultAdminPermissions())

	tests := []struct {
		name  string
		input CreateAdminInput
	}{
		{name: "no permissions", input: CreateAdminInput{Username: "x", Email: "x@x.com", Password: "secret1"}},
		{name: "short password", input: CreateAdminInput{Username: "x", Email: "x@x.com", Password: "123", Permissions: []domain.Capability{domain.CapViewReports}}},
		{name: "bad email", input: CreateAdminInput{Username: "x", Email: "x", Password: "secret1", Permissions: []domain.Capability{domain.CapViewReports}}},
		{name: "taken username", input: CreateAdminInput{Username: "root", Email: "r@x.com", Password: "secret1", Permissions: []domain.Capability{domain.CapViewReports}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.db.userCount()
			_, err := f.admins.CreateAdmin(ctx, root, tt.input)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("got %v", err)
			}
			if f.db.userCount() != before {
				t.Fatal("no account may be created")
			}
		})
	}
}

func TestCreateAdminRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	root := f.seedUser(t, "root", domain.RoleAdmin, domain.DefaultAdminPermissions())
	before := f.db.userCount()
	f.db.auditErr = errors.New("audit table locked")

	_, err := f.admins.CreateAdmin(context.Background(), root, CreateAdminInput{
		Username:    "jane",
		Email:       "jane@x.com",
		Password:    "secret1",
		Permissions: []domain.Capability{domain.CapViewReports},
	})
	if !apperrors.HasCode(err, apperrors.CodeStorage) {
		t.Fatalf("got %v", err)
	}
	if f.db.userCount() != before {
		t.Fatal("the admin row must be rolled back with the audit entry")
	}
	if f.tx.rollbacks != 1 {
		t.Fatalf("rollbacks = %d", f.tx.rollbacks)
	}
}

func TestUpdateAdminPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.seedUser(t, "root", domain.RoleAdmin, domain.DefaultAdminPermissions())
	other := f.seedUser(t, "ops", domain.RoleAdmin, domain.Permissions{ViewReports: true})
	seeker := f.seedUser(t, "alice", domain.RoleSeeker, domain.Permissions{})

	updated, err := f.admins.UpdateAdminPermissions(ctx, root, other.UserID, []domain.Capability{domain.CapManageJobs})
	if err != nil {
		t.Fatalf("UpdateAdminPermissions() error = %v", err)
	}
	if !updated.Permissions.ManageJobs || updated.Permissions.ViewReports {
		t.Fatalf("permissions = %+v", updated.Permissions)
	}

	_, err = f.admins.UpdateAdminPermissions(ctx, root, root.UserID, []domain.Capability{domain.CapViewReports})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("self lockout: got %v", err)
	}
	_, err = f.admins.UpdateAdminPermissions(ctx, root, seeker.UserID, []domain.Capability{domain.CapViewReports})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("non admin target: got %v", err)
	}
	_, err = f.admins.UpdateAdminPermissions(ctx, root, 999, []domain.Capability{domain.CapViewReports})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("missing target: got %v", err)
	}

	// ops no longer holds manage_users even though its session actor still says so.
	stale := other
	stale.Permissions = domain.DefaultAdminPermissions()
	_, err = f.admins.UpdateAdminPermissions(ctx, stale, root.UserID, []domain.Capability{domain.CapManageUsers})
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("stale actor: got %v", err)
	}
}

func TestSetUserActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.seedUser(t, "root", domain.RoleAdmin, domain.DefaultAdminPermissions())
	alice := f.seedUser(t, "alice", domain.RoleSeeker, domain.Permissions{})

	user, err := f.admins.SetUserActive(ctx, root, alice.UserID, false)
	if err != nil {
		t.Fatalf("SetUserActive() error = %v", err)
	}
	if user.Active {
		t.Fatal("user should be inactive")
	}
	if _, err := f.admins.SetUserActive(ctx, root, alice.UserID, false); err != nil {
		t.Fatalf("repeated deactivation: %v", err)
	}
	if f.db.auditCount() != 1 {
		t.Fatalf("audit count = %d, want 1", f.db.auditCount())
	}

	_, err = f.admins.SetUserActive(ctx, root, root.UserID, false)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("self deactivation: got %v", err)
	}
}

func TestListUsersFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.seedUser(t, "root", domain.RoleAdmin, domain.DefaultAdminPermissions())
	f.seedUser(t, "alice", domain.RoleSeeker, domain.Permissions{})
	f.seedUser(t, "bob", domain.RoleEmployer, domain.Permissions{})

	role := domain.RoleSeeker
	users, err := f.admins.ListUsers(ctx, root, repository.UserFilter{Role: &role})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("users = %+v", users)
	}

	role = domain.RoleAdmin
	users, err = f.admins.ListUsers(ctx, root, repository.UserFilter{Role: &role, SearchTerm: strPtr("nobody")})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected an empty, non-nil list, got %#v", users)
	}
}

func strPtr(s string) *string {
	return &s
}

func TestSeedAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, created, err := f.admins.SeedAdmin(ctx, "admin", "admin@x.com", "secret1")
	if err != nil || !created {
		t.Fatalf("SeedAdmin() = %v, %v", created, err)
	}
	if admin.Permissions != domain.DefaultAdminPermissions() {
		t.Fatalf("permissions = %+v", admin.Permissions)
	}

	_, created, err = f.admins.SeedAdmin(ctx, "admin2", "admin2@x.com", "secret1")
	if err != nil || created {
		t.Fatalf("second SeedAdmin() = %v, %v", created, err)
	}
	if adminCount(t, f) != 1 {
		t.Fatal("seeding must not create a second admin")
	}
}

func TestMigrateLegacyPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	legacy := f.seedUser(t, "legacy", domain.RoleAdmin, domain.Permissions{})
	empty := f.seedUser(t, "empty", domain.RoleAdmin, domain.Permissions{})
	current := f.seedUser(t, "current", domain.RoleAdmin, domain.Permissions{ViewReports: true})

	// Serve one bag with the old keys the way it sits in older databases.
	rows := map[int64]string{legacy.UserID: `{"can_manage_users": true, "can_view_analytics": true}`}
	legacyRepo := &legacyUserRepo{fakeUserRepo: f.users, raw: rows}
	svc := NewAdminService(testConfig(), AdminDependencies{UserRepo: legacyRepo, Tx: f.tx})

	result, err := svc.MigrateLegacyPermissions(ctx)
	if err != nil {
		t.Fatalf("MigrateLegacyPermissions() error = %v", err)
	}
	if result.Scanned != 3 || result.Migrated != 1 || result.Defaulted != 1 || result.Unchanged != 1 {
		t.Fatalf("result = %+v", result)
	}

	got, _ := f.users.GetByID(ctx, legacy.UserID)
	if !got.Permissions.ManageUsers || !got.Permissions.ViewReports || got.Permissions.ManageJobs {
		t.Fatalf("legacy bag = %+v", got.Permissions)
	}
	got, _ = f.users.GetByID(ctx, empty.UserID)
	if got.Permissions != domain.DefaultAdminPermissions() {
		t.Fatalf("empty bag = %+v", got.Permissions)
	}
	got, _ = f.users.GetByID(ctx, current.UserID)
	if got.Permissions != (domain.Permissions{ViewReports: true}) {
		t.Fatalf("current bag = %+v", got.Permissions)
	}
}

// legacyUserRepo serves raw stored bags for selected admins.
type legacyUserRepo struct {
	*fakeUserRepo
	raw map[int64]string
}

func (r *legacyUserRepo) ListAdmins(ctx context.Context) ([]repository.AdminPermissionRow, error) {
	rows, err := r.fakeUserRepo.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if raw, ok := r.raw[rows[i].ID]; ok {
			rows[i].Permissions = raw
		}
	}
	return rows, nil
}
