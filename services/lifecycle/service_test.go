package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"repairdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- MOCKS ---

// MockRequestStore simulates the conditional replace of the Mongo repository.
type MockRequestStore struct {
	mu   sync.Mutex
	rows map[string]models.ServiceRequest
}

func NewMockRequestStore() *MockRequestStore {
	return &MockRequestStore{rows: map[string]models.ServiceRequest{}}
}

func (m *MockRequestStore) Create(ctx context.Context, req *models.ServiceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[req.ID] = *clone(req)
	return nil
}

func (m *MockRequestStore) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("service request %s: %w", id, models.ErrNotFound)
	}
	return clone(&r), nil
}

func (m *MockRequestStore) list(keep func(models.ServiceRequest) bool) []models.ServiceRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ServiceRequest{}
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *MockRequestStore) ListByShop(ctx context.Context, shopID string) ([]models.ServiceRequest, error) {
	return m.list(func(r models.ServiceRequest) bool { return r.ShopID == shopID }), nil
}

func (m *MockRequestStore) ListByUser(ctx context.Context, userID string) ([]models.ServiceRequest, error) {
	return m.list(func(r models.ServiceRequest) bool { return r.UserID == userID }), nil
}

func (m *MockRequestStore) ListPaid(ctx context.Context) ([]models.ServiceRequest, error) {
	return m.list(func(r models.ServiceRequest) bool { return r.Status == models.StatusPaid }), nil
}

func (m *MockRequestStore) FindForAnalytics(ctx context.Context, shopID string, since *time.Time) ([]models.ServiceRequest, error) {
	return m.ListByShop(ctx, shopID)
}

func (m *MockRequestStore) ReplaceIfUnchanged(ctx context.Context, next *models.ServiceRequest, status models.RequestStatus, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[next.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Status != status || cur.Version != version {
		return models.ErrConflict
	}
	m.rows[next.ID] = *clone(next)
	return nil
}

type MockIdentities map[string]*models.Identity

func (m MockIdentities) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	if i, ok := m[id]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
}

type sentNotification struct {
	UserID string
	Type   string
	Data   map[string]any
}

type MockNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	Fail bool
}

func (m *MockNotifier) Notify(ctx context.Context, userID, title, message string, data map[string]any) *models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return nil
	}
	t, _ := data["type"].(string)
	m.sent = append(m.sent, sentNotification{UserID: userID, Type: t, Data: data})
	return &models.Notification{UserID: userID, Title: title, Message: message, Data: data}
}

func (m *MockNotifier) ListRecent(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	return nil, nil
}
func (m *MockNotifier) MarkAllRead(ctx context.Context, userID string) (int64, error) { return 0, nil }
func (m *MockNotifier) CountUnread(ctx context.Context, actor models.Actor) (int64, error) {
	return 0, nil
}

func (m *MockNotifier) take() []sentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sent
	m.sent = nil
	return out
}

type MockInvalidator struct {
	shops []string
}

func (m *MockInvalidator) InvalidateShop(ctx context.Context, shopID string) {
	m.shops = append(m.shops, shopID)
}

// --- FIXTURES ---

var (
	shopActor     = models.Actor{ID: "S", Name: "Ravi", Role: models.RoleService}
	customerActor = models.Actor{ID: "U", Name: "Asha", Role: models.RoleUser}
	adminActor    = models.Actor{ID: "A", Role: models.RoleAdmin}
	strangerShop  = models.Actor{ID: "S2", Role: models.RoleService}
)

type fixture struct {
	svc      *DefaultLifecycleService
	store    *MockRequestStore
	notifier *MockNotifier
	cache    *MockInvalidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMockRequestStore()
	notifier := &MockNotifier{}
	ids := MockIdentities{
		"S":  {ID: "S", Name: "Fixit", Role: models.RoleService},
		"S2": {ID: "S2", Name: "Other", Role: models.RoleService},
		"U":  {ID: "U", Name: "Asha", Role: models.RoleUser},
		"U2": {ID: "U2", Name: "Bo", Role: models.RoleUser},
	}
	svc, err := NewDefaultLifecycleService(store, ids, notifier, zap.NewNop())
	require.NoError(t, err)
	cache := &MockInvalidator{}
	svc.Analytics = cache
	svc.Now = func() time.Time { return time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, store: store, notifier: notifier, cache: cache}
}

func validInput() models.ServiceRequestInput {
	return models.ServiceRequestInput{
		ShopID:          "S",
		DeviceType:      "phone",
		Brand:           "Acme",
		ModelName:       "X1",
		ModelNumber:     "X1-2024",
		Problem:         "screen cracked",
		CustomerName:    "Asha",
		CustomerPhone:   "+911234567890",
		CustomerAddress: "12 Park Street",
	}
}

// seed creates a request and walks it to status with the shop actor.
func (f *fixture) seed(t *testing.T, status models.RequestStatus) *models.ServiceRequest {
	t.Helper()
	ctx := context.Background()
	req, err := f.svc.Create(ctx, customerActor, validInput())
	require.NoError(t, err)

	path := map[models.RequestStatus][]func() (*models.ServiceRequest, error){}
	accept := func() (*models.ServiceRequest, error) {
		return f.svc.Transition(ctx, shopActor, req.ID, models.StatusAccepted, nil)
	}
	decline := func() (*models.ServiceRequest, error) {
		return f.svc.Transition(ctx, shopActor, req.ID, models.StatusDeclined, nil)
	}
	start := func() (*models.ServiceRequest, error) {
		return f.svc.Transition(ctx, shopActor, req.ID, models.StatusInProgress, nil)
	}
	finish := func() (*models.ServiceRequest, error) {
		return f.svc.Transition(ctx, shopActor, req.ID, models.StatusCompleted, nil)
	}
	bill := func() (*models.ServiceRequest, error) { return f.svc.Complete(ctx, shopActor, req.ID, 600) }
	pay := func() (*models.ServiceRequest, error) {
		return f.svc.RecordPayment(ctx, customerActor, req.ID, models.PaymentOutcome{Status: models.PaymentPaid})
	}
	path[models.StatusPending] = nil
	path[models.StatusAccepted] = []func() (*models.ServiceRequest, error){accept}
	path[models.StatusDeclined] = []func() (*models.ServiceRequest, error){decline}
	path[models.StatusInProgress] = []func() (*models.ServiceRequest, error){accept, start}
	path[models.StatusCompleted] = []func() (*models.ServiceRequest, error){accept, start, finish}
	path[models.StatusPaymentPending] = []func() (*models.ServiceRequest, error){accept, start, bill}
	path[models.StatusPaid] = []func() (*models.ServiceRequest, error){accept, start, bill, pay}

	for _, step := range path[status] {
		req, err = step()
		require.NoError(t, err)
	}
	require.Equal(t, status, req.Status)
	f.notifier.take()
	return req
}

// --- TESTS ---

func TestCreateThenReadBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, customerActor, validInput())
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, customerActor, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.RepairUpdate)
	assert.Nil(t, got.Payment)
	assert.Nil(t, got.AcceptedAt)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, models.PriorityMedium, got.Priority)
	assert.Equal(t, "U", got.UserID)

	sent := f.notifier.take()
	require.Len(t, sent, 1)
	assert.Equal(t, "S", sent[0].UserID)
	assert.Equal(t, models.NotifNewServiceRequest, sent[0].Type)
	assert.Equal(t, req.ID, sent[0].Data["requestId"])
	assert.Equal(t, []string{"S"}, f.cache.shops)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.ServiceRequestInput)
		wantErr error
	}{
		{"missing model name", func(in *models.ServiceRequestInput) { in.ModelName = "" }, models.ErrValidation},
		{"blank problem", func(in *models.ServiceRequestInput) { in.Problem = "  " }, models.ErrValidation},
		{"bad priority", func(in *models.ServiceRequestInput) { in.Priority = "asap" }, models.ErrValidation},
		{"inverted cost range", func(in *models.ServiceRequestInput) {
			in.EstimatedCostRange = &models.CostRange{Min: 500, Max: 100}
		}, models.ErrValidation},
		{"unknown shop", func(in *models.ServiceRequestInput) { in.ShopID = "nope" }, models.ErrNotFound},
		{"shop id is a customer", func(in *models.ServiceRequestInput) { in.ShopID = "U2" }, models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput()
			tt.mutate(&in)

			_, err := f.svc.Create(context.Background(), customerActor, in)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Empty(t, f.store.rows)
			assert.Empty(t, f.notifier.take())
		})
	}
}

func TestCreateRejectsShopActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), shopActor, validInput())
	assert.True(t, errors.Is(err, models.ErrForbidden))
}

func TestFullLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, customerActor, validInput())
	require.NoError(t, err)
	sent := f.notifier.take()
	require.Len(t, sent, 1)
	assert.Equal(t, "S", sent[0].UserID)
	assert.Equal(t, models.NotifNewServiceRequest, sent[0].Type)

	req, err = f.svc.Transition(ctx, shopActor, req.ID, models.StatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, req.Status)
	require.NotNil(t, req.AcceptedAt)
	sent = f.notifier.take()
	require.Len(t, sent, 1)
	assert.Equal(t, "U", sent[0].UserID)
	assert.Equal(t, models.NotifServiceRequestUpdate, sent[0].Type)

	labor, parts := 200.0, 300.0
	req, err = f.svc.Transition(ctx, shopActor, req.ID, models.StatusInProgress, &models.RepairFields{
		LaborCost: &labor,
		PartsCost: &parts,
	})
	require.NoError(t, err)
	require.NotNil(t, req.RepairUpdate)
	assert.Equal(t, 500.0, req.RepairUpdate.TotalCost)
	assert.Equal(t, "Ravi", req.RepairUpdate.ServicePersonName)
	assert.Len(t, f.notifier.take(), 1)

	req, err = f.svc.Complete(ctx, shopActor, req.ID, 600)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentPending, req.Status)
	require.NotNil(t, req.Payment)
	assert.Equal(t, 600.0, req.Payment.Amount)
	assert.Equal(t, models.PaymentPending, req.Payment.Status)
	assert.NotNil(t, req.CompletedAt)
	sent = f.notifier.take()
	require.Len(t, sent, 1)
	assert.Equal(t, "U", sent[0].UserID)
	assert.Equal(t, models.NotifPaymentRequired, sent[0].Type)
	assert.Equal(t, 600.0, sent[0].Data["amount"])

	amount := 600.0
	req, err = f.svc.RecordPayment(ctx, customerActor, req.ID, models.PaymentOutcome{
		Status:        models.PaymentPaid,
		Amount:        &amount,
		TransactionID: "pi_123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, req.Status)
	assert.Equal(t, models.PaymentPaid, req.Payment.Status)
	assert.NotNil(t, req.Payment.PaidAt)
	assert.Equal(t, "pi_123", req.Payment.TransactionID)

	sent = f.notifier.take()
	require.Len(t, sent, 2)
	assert.Equal(t, "S", sent[0].UserID)
	assert.Equal(t, models.NotifPaymentReceived, sent[0].Type)
	assert.Equal(t, "U", sent[1].UserID)
	assert.Equal(t, models.NotifPaymentSuccessful, sent[1].Type)
}

func TestTransitionTable(t *testing.T) {
	statuses := []models.RequestStatus{
		models.StatusPending, models.StatusAccepted, models.StatusDeclined, models.StatusInProgress,
		models.StatusCompleted, models.StatusPaymentPending, models.StatusPaid,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				f := newFixture(t)
				req := f.seed(t, from)

				got, err := f.svc.Transition(context.Background(), shopActor, req.ID, to, nil)
				if !CanTransition(from, to) {
					assert.True(t, errors.Is(err, models.ErrInvalidTransition), "got %v", err)
					assert.Empty(t, f.notifier.take())
					stored, _ := f.store.GetByID(context.Background(), req.ID)
					assert.Equal(t, from, stored.Status)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, to, got.Status)
				sent := f.notifier.take()
				require.Len(t, sent, 1)
				assert.Equal(t, "U", sent[0].UserID)
				assert.Equal(t, models.NotifServiceRequestUpdate, sent[0].Type)
			})
		}
	}
}

func TestTotalCostRecompute(t *testing.T) {
	labor, parts, override := 300.0, 450.0, 1000.0

	tests := []struct {
		name   string
		fields *models.RepairFields
		want   float64
	}{
		{"derived", &models.RepairFields{LaborCost: &labor, PartsCost: &parts}, 750},
		{"override", &models.RepairFields{LaborCost: &labor, PartsCost: &parts, TotalCost: &override}, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.seed(t, models.StatusAccepted)

			got, err := f.svc.Transition(context.Background(), shopActor, req.ID, models.StatusInProgress, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.RepairUpdate.TotalCost)
		})
	}
}

func TestRepeatedInProgressUpdatesMerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, models.StatusInProgress)

	labor, parts, details := 100.0, 50.0, "replaced battery"
	_, err := f.svc.Transition(ctx, shopActor, req.ID, models.StatusInProgress, &models.RepairFields{LaborCost: &labor})
	require.NoError(t, err)
	got, err := f.svc.Transition(ctx, shopActor, req.ID, models.StatusInProgress, &models.RepairFields{
		PartsCost: &parts,
		Details:   &details,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.RepairUpdate.LaborCost)
	assert.Equal(t, 150.0, got.RepairUpdate.TotalCost)
	assert.Equal(t, details, got.RepairUpdate.Details)
	assert.Len(t, f.notifier.take(), 2)
}

func TestTransitionRejectsNegativeCost(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, models.StatusAccepted)
	labor := -1.0

	_, err := f.svc.Transition(context.Background(), shopActor, req.ID, models.StatusInProgress, &models.RepairFields{LaborCost: &labor})
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Empty(t, f.notifier.take())
}

func TestNotFoundMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, shopActor, "missing", models.StatusAccepted, nil)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	_, err = f.svc.Complete(ctx, shopActor, "missing", 10)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	_, err = f.svc.RecordPayment(ctx, customerActor, "missing", models.PaymentOutcome{Status: models.PaymentPaid})
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Empty(t, f.notifier.take())
}

func TestShopAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, models.StatusPending)

	_, err := f.svc.Transition(ctx, strangerShop, req.ID, models.StatusAccepted, nil)
	assert.True(t, errors.Is(err, models.ErrForbidden))
	_, err = f.svc.Transition(ctx, customerActor, req.ID, models.StatusAccepted, nil)
	assert.True(t, errors.Is(err, models.ErrForbidden))

	got, err := f.svc.Transition(ctx, adminActor, req.ID, models.StatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
}

func TestCompleteRules(t *testing.T) {
	t.Run("amount must be positive", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusInProgress)
		_, err := f.svc.Complete(context.Background(), shopActor, req.ID, 0)
		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("not reachable from accepted", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusAccepted)
		_, err := f.svc.Complete(context.Background(), shopActor, req.ID, 100)
		assert.True(t, errors.Is(err, models.ErrInvalidTransition))
		assert.Empty(t, f.notifier.take())
	})

	t.Run("keeps first completedAt", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusCompleted)
		first := *req.CompletedAt
		f.svc.Now = func() time.Time { return first.Add(time.Hour) }

		got, err := f.svc.Complete(context.Background(), shopActor, req.ID, 100)
		require.NoError(t, err)
		assert.Equal(t, first, *got.CompletedAt)
	})

	t.Run("paid amount is immutable", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusPaid)
		_, err := f.svc.Complete(context.Background(), shopActor, req.ID, 999)
		assert.True(t, errors.Is(err, models.ErrInvalidTransition))
		stored, _ := f.store.GetByID(context.Background(), req.ID)
		assert.Equal(t, 600.0, stored.Payment.Amount)
	})
}

func TestRecordPaymentOutcomes(t *testing.T) {
	tests := []struct {
		status     models.PaymentStatus
		wantStatus models.RequestStatus
		wantTypes  []string
	}{
		{models.PaymentPaid, models.StatusPaid, []string{models.NotifPaymentReceived, models.NotifPaymentSuccessful}},
		{models.PaymentFailed, models.StatusPaymentPending, []string{models.NotifPaymentFailed}},
		{models.PaymentPending, models.StatusPaymentPending, nil},
		{models.PaymentRefunded, models.StatusPaymentPending, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newFixture(t)
			req := f.seed(t, models.StatusPaymentPending)

			got, err := f.svc.RecordPayment(context.Background(), customerActor, req.ID, models.PaymentOutcome{Status: tt.status})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.status, got.Payment.Status)
			assert.Equal(t, tt.status == models.PaymentPaid, got.Payment.PaidAt != nil)

			var types []string
			for _, n := range f.notifier.take() {
				types = append(types, n.Type)
				if n.Type == models.NotifPaymentFailed {
					assert.Equal(t, "U", n.UserID)
				}
			}
			assert.Equal(t, tt.wantTypes, types)
		})
	}
}

func TestRecordPaymentGuards(t *testing.T) {
	t.Run("only the customer pays", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusPaymentPending)
		_, err := f.svc.RecordPayment(context.Background(), shopActor, req.ID, models.PaymentOutcome{Status: models.PaymentPaid})
		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("amount must match", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusPaymentPending)
		wrong := 1.0
		_, err := f.svc.RecordPayment(context.Background(), customerActor, req.ID,
			models.PaymentOutcome{Status: models.PaymentPaid, Amount: &wrong})
		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("cannot pay twice", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusPaid)
		_, err := f.svc.RecordPayment(context.Background(), customerActor, req.ID, models.PaymentOutcome{Status: models.PaymentPaid})
		assert.True(t, errors.Is(err, models.ErrInvalidTransition))
		assert.Empty(t, f.notifier.take())
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusPaymentPending)
		_, err := f.svc.RecordPayment(context.Background(), customerActor, req.ID, models.PaymentOutcome{Status: "bounced"})
		assert.True(t, errors.Is(err, models.ErrValidation))
	})
}

func TestNotificationFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, models.StatusPending)
	f.notifier.Fail = true

	got, err := f.svc.Transition(context.Background(), shopActor, req.ID, models.StatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)

	stored, err := f.store.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, stored.Status)
}

func TestStaleWriteConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, models.StatusInProgress)

	stale, err := f.store.GetByID(ctx, req.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, shopActor, req.ID, 100)
	require.NoError(t, err)
	f.notifier.take()

	next := clone(stale)
	next.Status = models.StatusCompleted
	err = f.svc.commit(ctx, stale, next)
	assert.True(t, errors.Is(err, models.ErrConflict))
}

func TestConcurrentCompleteSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, models.StatusInProgress)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Complete(context.Background(), shopActor, req.ID, 250)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrInvalidTransition), "got %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Len(t, f.notifier.take(), 1)
}

func TestReadPathsAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, models.StatusPaid)

	_, err := f.svc.Get(ctx, strangerShop, req.ID)
	assert.True(t, errors.Is(err, models.ErrForbidden))

	list, err := f.svc.ListForShop(ctx, shopActor)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListForShop(ctx, customerActor)
	assert.True(t, errors.Is(err, models.ErrForbidden))

	_, err = f.svc.ListTransactions(ctx, shopActor)
	assert.True(t, errors.Is(err, models.ErrForbidden))
	paid, err := f.svc.ListTransactions(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, paid, 1)
}

// MockVerifier accepts only the intent ids it knows.
type MockVerifier struct {
	Succeeded map[string]bool
	Calls     int
}

func (m *MockVerifier) VerifyPaid(ctx context.Context, req *models.ServiceRequest, transactionID string) error {
	m.Calls++
	if !m.Succeeded[transactionID] {
		return models.NewValidationError("transactionId", "payment intent not succeeded")
	}
	return nil
}

func TestRecordPaymentVerifiesCardPayments(t *testing.T) {
	t.Run("unverified paid is rejected", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusPaymentPending)
		f.svc.Payments = &MockVerifier{Succeeded: map[string]bool{"pi_real": true}}

		_, err := f.svc.RecordPayment(context.Background(), customerActor, req.ID,
			models.PaymentOutcome{Status: models.PaymentPaid, TransactionID: "pi_made_up"})
		assert.True(t, errors.Is(err, models.ErrValidation))

		stored, _ := f.store.GetByID(context.Background(), req.ID)
		assert.Equal(t, models.StatusPaymentPending, stored.Status)
		assert.Nil(t, stored.Payment.PaidAt)
		assert.Empty(t, f.notifier.take())
	})

	t.Run("verified intent closes the request", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusPaymentPending)
		f.svc.Payments = &MockVerifier{Succeeded: map[string]bool{"pi_real": true}}

		got, err := f.svc.RecordPayment(context.Background(), customerActor, req.ID,
			models.PaymentOutcome{Status: models.PaymentPaid, TransactionID: "pi_real", PaymentMethod: "card"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaid, got.Status)
		assert.Equal(t, "pi_real", got.Payment.TransactionID)
		assert.Len(t, f.notifier.take(), 2)
	})

	t.Run("failed outcomes skip verification", func(t *testing.T) {
		f := newFixture(t)
		req := f.seed(t, models.StatusPaymentPending)
		verifier := &MockVerifier{}
		f.svc.Payments = verifier

		_, err := f.svc.RecordPayment(context.Background(), customerActor, req.ID,
			models.PaymentOutcome{Status: models.PaymentFailed})
		require.NoError(t, err)
		assert.Equal(t, 0, verifier.Calls)
	})
}
