package services

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg/cache"
	"github.com/akinalp/workdesk/pkg/email"
	"github.com/akinalp/workdesk/pkg/i18n"
	"github.com/akinalp/workdesk/pkg/metrics"
	"github.com/akinalp/workdesk/pkg/push"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/ws"
)

const testPassword = "correct-horse"

var testPasswordHash string

func TestMain(m *testing.M) {
	locales, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		panic(err)
	}
	if err := i18n.Load(locales); err != nil {
		panic(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	testPasswordHash = string(hash)
	os.Exit(m.Run())
}

type fakeHub struct {
	mu     sync.Mutex
	online map[string]bool
	events map[string][]ws.Event
}

func newFakeHub() *fakeHub {
	return &fakeHub{online: make(map[string]bool), events: make(map[string][]ws.Event)}
}

func (h *fakeHub) BroadcastToUser(userID string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[userID] = append(h.events[userID], event)
}

func (h *fakeHub) IsOnline(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.online[userID]
}

func (h *fakeHub) ops(userID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, e := range h.events[userID] {
		out = append(out, e.Op)
	}
	return out
}

type fakePusher struct {
	mu   sync.Mutex
	sent []push.Subscription
	err  error
}

func (p *fakePusher) Send(_ context.Context, sub push.Subscription, _ push.Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, sub)
	return nil
}

func (p *fakePusher) PublicKey() string { return "test-public-key" }

type fakeMailer struct {
	mu     sync.Mutex
	resets map[string]string
	sent   []string
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resets == nil {
		m.resets = make(map[string]string)
	}
	m.resets[to] = token
	return nil
}

func (m *fakeMailer) SendNotification(_ context.Context, to string, _ email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

// testEnv wires the services against a fresh SQLite file, the embedded
// work policy and UTC.
type testEnv struct {
	db       *sql.DB
	policy   *config.Policy
	loc      *time.Location
	hub      *fakeHub
	pusher   *fakePusher
	mailer   *fakeMailer
	store    *cache.MemoryStore
	registry *metrics.Registry

	users         repository.UserRepository
	sessions      repository.SessionRepository
	resets        repository.PasswordResetRepository
	approvalRepo  repository.ApprovalRepository
	attendanceRep repository.AttendanceRepository
	notifRepo     repository.NotificationRepository
	pushRepo      repository.PushSubscriptionRepository

	auth          AuthService
	employees     EmployeeService
	notifications NotificationService
	reports       ReportService
	flow          *ApprovalFlow
	approvals     ApprovalService
	leaves        LeaveService
	permissions   PermissionService
	overtime      OvertimeService
	submissions   SubmissionService
	attendance    AttendanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := database.New(filepath.Join(t.TempDir(), "test.db"), database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	policy, err := config.LoadPolicy("")
	require.NoError(t, err)

	e := &testEnv{
		db:       conn.Conn,
		policy:   policy,
		loc:      time.UTC,
		hub:      newFakeHub(),
		pusher:   &fakePusher{},
		mailer:   &fakeMailer{},
		store:    cache.NewMemoryStore(time.Minute),
		registry: metrics.NewRegistry(),
	}
	t.Cleanup(func() { e.store.Close() })

	db := e.db
	e.users = repository.NewSQLiteUserRepo(db)
	e.sessions = repository.NewSQLiteSessionRepo(db)
	e.resets = repository.NewSQLiteResetTokenRepo(db)
	e.approvalRepo = repository.NewSQLiteApprovalRepo(db)
	e.attendanceRep = repository.NewSQLiteAttendanceRepo(db)
	e.notifRepo = repository.NewSQLiteNotificationRepo(db)
	e.pushRepo = repository.NewSQLitePushSubscriptionRepo(db)

	e.auth = NewAuthService(e.users, e.sessions, e.resets, e.mailer, "test-secret", 15, 7)
	e.employees = NewEmployeeService(db, e.users, e.sessions)
	e.notifications = NewNotificationService(e.notifRepo, e.users, e.pushRepo, e.hub, e.pusher, e.mailer, e.registry, nil, e.loc)
	e.reports = NewReportService(e.attendanceRep, repository.NewSQLiteLeaveRepo(db), repository.NewSQLiteOvertimeRepo(db),
		e.users, e.store, time.Minute, e.registry, policy, e.loc)
	e.flow = NewApprovalFlow(db, e.users, e.approvalRepo, e.notifications, e.hub, e.registry, e.reports)
	e.approvals = NewApprovalService(e.flow, e.approvalRepo)
	e.leaves = NewLeaveService(e.flow, repository.NewSQLiteLeaveRepo(db), e.users, policy)
	e.permissions = NewPermissionService(e.flow, repository.NewSQLitePermissionRepo(db), policy)
	e.overtime = NewOvertimeService(e.flow, repository.NewSQLiteOvertimeRepo(db), policy, e.loc)
	e.submissions = NewSubmissionService(e.flow, repository.NewSQLiteSubmissionRepo(db))
	e.attendance = NewAttendanceService(e.attendanceRep, e.users, e.reports, policy, e.loc)
	return e
}

// user inserts an active user with testPassword.
func (e *testEnv) user(t *testing.T, email string, role models.Role, lead, manager *models.User) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		PasswordHash: testPasswordHash,
		FullName:     email,
		Role:         role,
		Language:     "en",
		IsActive:     true,
	}
	if lead != nil {
		u.TeamLeadID = &lead.ID
	}
	if manager != nil {
		u.ManagerID = &manager.ID
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

// org is the usual three-level reporting line plus an admin.
type org struct {
	admin, manager, lead, employee *models.User
}

func (e *testEnv) org(t *testing.T) org {
	t.Helper()
	var o org
	o.admin = e.user(t, "admin@example.com", models.RoleAdmin, nil, nil)
	o.manager = e.user(t, "manager@example.com", models.RoleManager, nil, nil)
	o.lead = e.user(t, "lead@example.com", models.RoleTeamLead, nil, o.manager)
	o.employee = e.user(t, "employee@example.com", models.RoleEmployee, o.lead, o.manager)
	return o
}

func (e *testEnv) unread(t *testing.T, userID string) int {
	t.Helper()
	n, err := e.notifications.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	return n
}

// at returns a fixed instant in UTC.
func at(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }
