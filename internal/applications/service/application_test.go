package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	applicationerrors "kitapool/internal/applications/errors"
	"kitapool/internal/applications/repository"
	"kitapool/internal/applications/validator"
	profileerrors "kitapool/internal/profiles/errors"
	requesterrors "kitapool/internal/requests/errors"
	"kitapool/pkg/config"
	mongotx "kitapool/pkg/db/mongo"
	apperrors "kitapool/pkg/errors"
	"kitapool/pkg/logger"
	"kitapool/pkg/model"
)

type mockApplicationRepo struct {
	created   []*model.RequestApplication
	byID      map[string]*model.RequestApplication
	byRequest map[string][]*model.RequestApplication
	decisions map[string]repository.Decision
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{
		byID:      map[string]*model.RequestApplication{},
		byRequest: map[string][]*model.RequestApplication{},
		decisions: map[string]repository.Decision{},
	}
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *model.RequestApplication) error {
	app.ID = "app-1"
	m.created = append(m.created, app)
	m.byID[app.ID] = app
	return nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*model.RequestApplication, error) {
	if app, ok := m.byID[id]; ok {
		return app, nil
	}
	return nil, applicationerrors.ErrApplicationNotFound
}

func (m *mockApplicationRepo) FindByRequestID(ctx context.Context, requestID string) ([]*model.RequestApplication, error) {
	return m.byRequest[requestID], nil
}

func (m *mockApplicationRepo) FindByRequestIDs(ctx context.Context, requestIDs []string) ([]*model.RequestApplication, error) {
	var out []*model.RequestApplication
	for _, id := range requestIDs {
		out = append(out, m.byRequest[id]...)
	}
	return out, nil
}

func (m *mockApplicationRepo) FindByProviderAndRequest(ctx context.Context, providerUserID, requestID string) (*model.RequestApplication, error) {
	return nil, applicationerrors.ErrApplicationNotFound
}

func (m *mockApplicationRepo) ApplyDecision(ctx context.Context, id string, decision repository.Decision) error {
	if _, ok := m.byID[id]; !ok {
		return applicationerrors.ErrApplicationNotFound
	}
	m.decisions[id] = decision
	return nil
}

func (m *mockApplicationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockRequestStore struct {
	byID         map[string]*model.SubstitutionRequest
	statusWrites map[string]string
}

func newMockRequestStore() *mockRequestStore {
	return &mockRequestStore{
		byID:         map[string]*model.SubstitutionRequest{},
		statusWrites: map[string]string{},
	}
}

func (m *mockRequestStore) Create(ctx context.Context, req *model.SubstitutionRequest) error {
	return nil
}

func (m *mockRequestStore) FindByID(ctx context.Context, id string) (*model.SubstitutionRequest, error) {
	if req, ok := m.byID[id]; ok {
		return req, nil
	}
	return nil, requesterrors.ErrRequestNotFound
}

func (m *mockRequestStore) FindByStatus(ctx context.Context, status string) ([]*model.SubstitutionRequest, error) {
	return nil, nil
}

func (m *mockRequestStore) FindByUserID(ctx context.Context, userID string) ([]*model.SubstitutionRequest, error) {
	var out []*model.SubstitutionRequest
	for _, req := range m.byID {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestStore) FindByIDs(ctx context.Context, ids []string) ([]*model.SubstitutionRequest, error) {
	return nil, nil
}

func (m *mockRequestStore) UpdateStatus(ctx context.Context, id, status string) error {
	req, ok := m.byID[id]
	if !ok {
		return requesterrors.ErrRequestNotFound
	}
	req.Status = status
	m.statusWrites[id] = status
	return nil
}

func (m *mockRequestStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockProviderOwner struct {
	byUser map[string]*model.ProviderProfile
	byID   map[string]*model.ProviderProfile
}

func (m *mockProviderOwner) Create(ctx context.Context, p *model.ProviderProfile) error { return nil }
func (m *mockProviderOwner) FindByID(ctx context.Context, id string) (*model.ProviderProfile, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, profileerrors.ErrProviderProfileNotFound
}
func (m *mockProviderOwner) FindByUserID(ctx context.Context, userID string) (*model.ProviderProfile, error) {
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return nil, profileerrors.ErrProviderProfileNotFound
}
func (m *mockProviderOwner) FindByCity(ctx context.Context, city string) ([]*model.ProviderProfile, error) {
	return nil, nil
}
func (m *mockProviderOwner) Update(ctx context.Context, id string, p *model.ProviderProfile) error {
	return nil
}

type mockFacilityOwner struct {
	byUser map[string]*model.ExchangeProfile
}

func (m *mockFacilityOwner) Create(ctx context.Context, p *model.ExchangeProfile) error { return nil }
func (m *mockFacilityOwner) FindByID(ctx context.Context, id string) (*model.ExchangeProfile, error) {
	return nil, profileerrors.ErrExchangeProfileNotFound
}
func (m *mockFacilityOwner) FindByUserID(ctx context.Context, userID string) (*model.ExchangeProfile, error) {
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return nil, profileerrors.ErrExchangeProfileNotFound
}
func (m *mockFacilityOwner) Update(ctx context.Context, id string, p *model.ExchangeProfile) error {
	return nil
}

type recordingPublisher struct {
	submitted []*model.RequestApplication
	decided   []*model.RequestApplication
}

func (p *recordingPublisher) RequestCreated(ctx context.Context, req *model.SubstitutionRequest, city string, matchCount int) error {
	return nil
}
func (p *recordingPublisher) ProviderMatched(ctx context.Context, match *model.RequestMatch) error {
	return nil
}
func (p *recordingPublisher) ApplicationSubmitted(ctx context.Context, app *model.RequestApplication) error {
	p.submitted = append(p.submitted, app)
	return nil
}
func (p *recordingPublisher) ApplicationDecided(ctx context.Context, app *model.RequestApplication) error {
	p.decided = append(p.decided, app)
	return nil
}
func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	apps      *mockApplicationRepo
	requests  *mockRequestStore
	providers *mockProviderOwner
	exchanges *mockFacilityOwner
	publisher *recordingPublisher
	svc       ApplicationService
}

func newFixture() *fixture {
	anna := &model.ProviderProfile{
		ID:     "60f7a9b8c1d2e3f4a5b6c7d8",
		UserID: "provider-a",
		Phone:  "+4915112345678",
		Email:  "anna@example.org",
	}
	f := &fixture{
		apps:     newMockApplicationRepo(),
		requests: newMockRequestStore(),
		providers: &mockProviderOwner{
			byUser: map[string]*model.ProviderProfile{"provider-a": anna},
			byID:   map[string]*model.ProviderProfile{anna.ID: anna},
		},
		exchanges: &mockFacilityOwner{byUser: map[string]*model.ExchangeProfile{
			"facility-1": {
				ID:     "ffffffffffffffffffffffff",
				UserID: "facility-1",
				Phone:  "+493012345678",
				Email:  "kita@example.org",
			},
		}},
		publisher: &recordingPublisher{},
	}
	f.requests.byID["req-1"] = &model.SubstitutionRequest{
		ID:     "req-1",
		UserID: "facility-1",
		Status: model.RequestStatusOpen,
	}
	f.svc = NewApplicationService(
		f.apps, f.requests, f.providers, f.exchanges,
		validator.NewApplicationValidator(), f.publisher,
		&config.Config{Log: logger.New(logger.Config{Level: "error", Format: logger.JSON})},
	)
	return f
}

func TestApply_CopiesContactOnOptIn(t *testing.T) {
	f := newFixture()

	app, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{
		RequestID:  "req-1",
		CoverNote:  "Happy to help",
		SharePhone: true,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusApplied, app.Status)
	assert.Equal(t, "+4915112345678", app.SharedPhone)
	assert.Empty(t, app.SharedEmail, "email was not opted in")
	require.Len(t, f.publisher.submitted, 1)
}

func TestApply_NoOptInNoCopy(t *testing.T) {
	f := newFixture()

	app, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{RequestID: "req-1"})
	require.NoError(t, err)
	assert.Empty(t, app.SharedPhone)
	assert.Empty(t, app.SharedEmail)
}

func TestApply_OptInWithEmptySourceFieldStaysEmpty(t *testing.T) {
	f := newFixture()
	f.providers.byUser["provider-a"].Phone = ""

	app, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{
		RequestID:  "req-1",
		SharePhone: true,
	})
	require.NoError(t, err)
	assert.Empty(t, app.SharedPhone, "opt-in with empty profile field copies nothing")
}

func TestApply_RequiresProviderProfile(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Apply(context.Background(), "stranger", ApplyInput{RequestID: "req-1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)
}

func TestApply_MissingRequest(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{RequestID: "req-gone"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestApply_NoUniquenessGuard(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{RequestID: "req-1"})
	require.NoError(t, err)
	_, err = f.svc.Apply(context.Background(), "provider-a", ApplyInput{RequestID: "req-1"})
	require.NoError(t, err, "a second application on the same request is allowed")
	assert.Len(t, f.apps.created, 2)
}

func TestDecide_AcceptFulfilsRequestAtomically(t *testing.T) {
	f := newFixture()
	app, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{RequestID: "req-1"})
	require.NoError(t, err)

	decided, err := f.svc.Decide(context.Background(), "facility-1", app.ID, DecideInput{
		Status:     model.ApplicationStatusAccepted,
		Message:    "See you Monday",
		SharePhone: true,
		ShareEmail: true,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusAccepted, decided.Status)
	require.NotNil(t, decided.DecisionAt)
	assert.Equal(t, "See you Monday", decided.DecisionMessage)
	assert.Equal(t, "+493012345678", decided.ExchangeSharedPhone)
	assert.Equal(t, "kita@example.org", decided.ExchangeSharedEmail)

	assert.Equal(t, model.RequestStatusFulfilled, f.requests.statusWrites["req-1"])
	require.Len(t, f.publisher.decided, 1)
}

func TestDecide_DeclineLeavesRequestOpen(t *testing.T) {
	f := newFixture()
	app, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{RequestID: "req-1"})
	require.NoError(t, err)

	decided, err := f.svc.Decide(context.Background(), "facility-1", app.ID, DecideInput{
		Status: model.ApplicationStatusDeclined,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusDeclined, decided.Status)
	assert.Empty(t, f.requests.statusWrites, "decline never touches the request status")
}

func TestDecide_OwnerOnly(t *testing.T) {
	f := newFixture()
	app, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{RequestID: "req-1"})
	require.NoError(t, err)

	_, err = f.svc.Decide(context.Background(), "provider-a", app.ID, DecideInput{
		Status: model.ApplicationStatusAccepted,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)
}

func TestDecide_RejectsUnknownStatus(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Decide(context.Background(), "facility-1", "app-1", DecideInput{Status: "maybe"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(err).Code)
}

func TestListForRequest_QuietFailClosed(t *testing.T) {
	f := newFixture()
	app, err := f.svc.Apply(context.Background(), "provider-a", ApplyInput{RequestID: "req-1"})
	require.NoError(t, err)
	f.apps.byRequest["req-1"] = []*model.RequestApplication{app}

	items, err := f.svc.ListForRequest(context.Background(), "facility-1", "req-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, app.ID, items[0].Application.ID)
	require.NotNil(t, items[0].ProviderProfile, "each application lists with its provider profile")
	assert.Equal(t, "provider-a", items[0].ProviderProfile.UserID)

	items, err = f.svc.ListForRequest(context.Background(), "intruder", "req-1")
	require.NoError(t, err)
	assert.Empty(t, items, "foreign owner sees an empty list, not an error")

	items, err = f.svc.ListForRequest(context.Background(), "facility-1", "req-gone")
	require.NoError(t, err)
	assert.Empty(t, items, "missing request yields an empty list, not an error")
}

func TestListForRequest_MissingProviderLeavesJoinEmpty(t *testing.T) {
	f := newFixture()
	f.apps.byRequest["req-1"] = []*model.RequestApplication{
		{ID: "a1", RequestID: "req-1", ProviderProfileID: "bbbbbbbbbbbbbbbbbbbbbbbb"},
	}

	items, err := f.svc.ListForRequest(context.Background(), "facility-1", "req-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].ProviderProfile, "a vanished provider profile never fails the list")
}

func TestMyApplications_AggregatesOwnedRequests(t *testing.T) {
	f := newFixture()
	f.requests.byID["req-2"] = &model.SubstitutionRequest{ID: "req-2", UserID: "facility-1", Status: model.RequestStatusOpen}
	providerID := "60f7a9b8c1d2e3f4a5b6c7d8"
	f.apps.byRequest["req-1"] = []*model.RequestApplication{{ID: "a1", RequestID: "req-1", ProviderProfileID: providerID}}
	f.apps.byRequest["req-2"] = []*model.RequestApplication{{ID: "a2", RequestID: "req-2", ProviderProfileID: providerID}}

	items, err := f.svc.MyApplications(context.Background(), "facility-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		require.NotNil(t, item.Request, "each application carries its parent request")
		assert.Equal(t, item.Application.RequestID, item.Request.ID)
		require.NotNil(t, item.ProviderProfile)
		assert.Equal(t, "provider-a", item.ProviderProfile.UserID)
	}

	items, err = f.svc.MyApplications(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, items)
}
