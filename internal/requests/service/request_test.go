package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	applicationerrors "kitapool/internal/applications/errors"
	applicationrepo "kitapool/internal/applications/repository"
	"kitapool/internal/matching"
	profileerrors "kitapool/internal/profiles/errors"
	requesterrors "kitapool/internal/requests/errors"
	"kitapool/internal/requests/validator"
	"kitapool/pkg/config"
	mongotx "kitapool/pkg/db/mongo"
	apperrors "kitapool/pkg/errors"
	"kitapool/pkg/logger"
	"kitapool/pkg/model"
)

type mockRequestRepo struct {
	created      []*model.SubstitutionRequest
	byID         map[string]*model.SubstitutionRequest
	byStatus     []*model.SubstitutionRequest
	statusWrites map[string]string
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{
		byID:         map[string]*model.SubstitutionRequest{},
		statusWrites: map[string]string{},
	}
}

func (m *mockRequestRepo) Create(ctx context.Context, req *model.SubstitutionRequest) error {
	req.ID = "aaaaaaaaaaaaaaaaaaaaaaaa"
	m.created = append(m.created, req)
	m.byID[req.ID] = req
	return nil
}

func (m *mockRequestRepo) FindByID(ctx context.Context, id string) (*model.SubstitutionRequest, error) {
	if req, ok := m.byID[id]; ok {
		return req, nil
	}
	return nil, requesterrors.ErrRequestNotFound
}

func (m *mockRequestRepo) FindByStatus(ctx context.Context, status string) ([]*model.SubstitutionRequest, error) {
	return m.byStatus, nil
}

func (m *mockRequestRepo) FindByUserID(ctx context.Context, userID string) ([]*model.SubstitutionRequest, error) {
	var out []*model.SubstitutionRequest
	for _, req := range m.byID {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.SubstitutionRequest, error) {
	var out []*model.SubstitutionRequest
	for _, id := range ids {
		if req, ok := m.byID[id]; ok {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, id, status string) error {
	req, ok := m.byID[id]
	if !ok {
		return requesterrors.ErrRequestNotFound
	}
	req.Status = status
	m.statusWrites[id] = status
	return nil
}

func (m *mockRequestRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockMatchRepo struct {
	created        []*model.RequestMatch
	byID           map[string]*model.RequestMatch
	byProviderUser []*model.RequestMatch
	statusWrites   map[string]string
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{byID: map[string]*model.RequestMatch{}, statusWrites: map[string]string{}}
}

func (m *mockMatchRepo) CreateMany(ctx context.Context, matches []*model.RequestMatch) error {
	m.created = append(m.created, matches...)
	return nil
}

func (m *mockMatchRepo) FindByID(ctx context.Context, id string) (*model.RequestMatch, error) {
	if match, ok := m.byID[id]; ok {
		return match, nil
	}
	return nil, requesterrors.ErrMatchNotFound
}

func (m *mockMatchRepo) FindByRequestID(ctx context.Context, requestID string) ([]*model.RequestMatch, error) {
	return nil, nil
}

func (m *mockMatchRepo) FindByProviderUserID(ctx context.Context, providerUserID string) ([]*model.RequestMatch, error) {
	return m.byProviderUser, nil
}

func (m *mockMatchRepo) UpdateStatus(ctx context.Context, id, status string) error {
	m.statusWrites[id] = status
	return nil
}

type mockProviderPool struct {
	pool []*model.ProviderProfile
}

func (m *mockProviderPool) Create(ctx context.Context, p *model.ProviderProfile) error { return nil }
func (m *mockProviderPool) FindByID(ctx context.Context, id string) (*model.ProviderProfile, error) {
	return nil, profileerrors.ErrProviderProfileNotFound
}
func (m *mockProviderPool) FindByUserID(ctx context.Context, userID string) (*model.ProviderProfile, error) {
	return nil, profileerrors.ErrProviderProfileNotFound
}
func (m *mockProviderPool) FindByCity(ctx context.Context, city string) ([]*model.ProviderProfile, error) {
	var out []*model.ProviderProfile
	for _, p := range m.pool {
		if p.City == city {
			out = append(out, p)
		}
	}
	return out, nil
}
func (m *mockProviderPool) Update(ctx context.Context, id string, p *model.ProviderProfile) error {
	return nil
}

type mockExchangeOwner struct {
	byUser map[string]*model.ExchangeProfile
	byID   map[string]*model.ExchangeProfile
}

func (m *mockExchangeOwner) Create(ctx context.Context, p *model.ExchangeProfile) error { return nil }
func (m *mockExchangeOwner) FindByID(ctx context.Context, id string) (*model.ExchangeProfile, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, profileerrors.ErrExchangeProfileNotFound
}
func (m *mockExchangeOwner) FindByUserID(ctx context.Context, userID string) (*model.ExchangeProfile, error) {
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return nil, profileerrors.ErrExchangeProfileNotFound
}
func (m *mockExchangeOwner) Update(ctx context.Context, id string, p *model.ExchangeProfile) error {
	return nil
}

type mockApplicationLookup struct {
	byProviderRequest map[string]*model.RequestApplication
}

func (m *mockApplicationLookup) Create(ctx context.Context, app *model.RequestApplication) error {
	return nil
}
func (m *mockApplicationLookup) FindByID(ctx context.Context, id string) (*model.RequestApplication, error) {
	return nil, applicationerrors.ErrApplicationNotFound
}
func (m *mockApplicationLookup) FindByRequestID(ctx context.Context, requestID string) ([]*model.RequestApplication, error) {
	return nil, nil
}
func (m *mockApplicationLookup) FindByRequestIDs(ctx context.Context, requestIDs []string) ([]*model.RequestApplication, error) {
	return nil, nil
}
func (m *mockApplicationLookup) FindByProviderAndRequest(ctx context.Context, providerUserID, requestID string) (*model.RequestApplication, error) {
	if app, ok := m.byProviderRequest[providerUserID+"/"+requestID]; ok {
		return app, nil
	}
	return nil, applicationerrors.ErrApplicationNotFound
}
func (m *mockApplicationLookup) ApplyDecision(ctx context.Context, id string, decision applicationrepo.Decision) error {
	return nil
}
func (m *mockApplicationLookup) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type recordingPublisher struct {
	requestCreated int
	matched        int
}

func (p *recordingPublisher) RequestCreated(ctx context.Context, req *model.SubstitutionRequest, city string, matchCount int) error {
	p.requestCreated++
	return nil
}
func (p *recordingPublisher) ProviderMatched(ctx context.Context, match *model.RequestMatch) error {
	p.matched++
	return nil
}
func (p *recordingPublisher) ApplicationSubmitted(ctx context.Context, app *model.RequestApplication) error {
	return nil
}
func (p *recordingPublisher) ApplicationDecided(ctx context.Context, app *model.RequestApplication) error {
	return nil
}
func (p *recordingPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: "error", Format: logger.JSON}),
	}
}

func berlinFacility() *model.ExchangeProfile {
	lat, lon := 52.5200, 13.4050
	return &model.ExchangeProfile{
		ID:           "ffffffffffffffffffffffff",
		UserID:       "facility-1",
		FacilityName: "Kita Sonnenschein",
		Address:      "Torstr. 1",
		City:         "Berlin",
		Latitude:     &lat,
		Longitude:    &lon,
	}
}

func validRequest() *model.SubstitutionRequest {
	return &model.SubstitutionRequest{
		AgeGroups: []string{"3-5"},
		StartDate: "2024-06-03",
		EndDate:   "2024-06-03",
		TimeFrom:  "09:00",
		TimeTo:    "13:00",
	}
}

type fixture struct {
	requests  *mockRequestRepo
	matches   *mockMatchRepo
	providers *mockProviderPool
	exchanges *mockExchangeOwner
	apps      *mockApplicationLookup
	publisher *recordingPublisher
	svc       RequestService
}

func newFixture(pool []*model.ProviderProfile) *fixture {
	f := &fixture{
		requests:  newMockRequestRepo(),
		matches:   newMockMatchRepo(),
		providers: &mockProviderPool{pool: pool},
		exchanges: &mockExchangeOwner{
			byUser: map[string]*model.ExchangeProfile{"facility-1": berlinFacility()},
			byID:   map[string]*model.ExchangeProfile{"ffffffffffffffffffffffff": berlinFacility()},
		},
		apps:      &mockApplicationLookup{byProviderRequest: map[string]*model.RequestApplication{}},
		publisher: &recordingPublisher{},
	}
	f.svc = NewRequestService(
		f.requests, f.matches, f.providers, f.exchanges, f.apps,
		matching.NewEngine(), validator.NewRequestValidator(), f.publisher, testConfig(),
	)
	return f
}

func ptr(v float64) *float64 { return &v }

func eligibleProvider(userID string) *model.ProviderProfile {
	return &model.ProviderProfile{
		ID:            "60f7a9b8c1d2e3f4a5b6c7d8",
		UserID:        userID,
		City:          "Berlin",
		Capacity:      2,
		AgeGroups:     []string{"3-5"},
		MaxCommuteKm:  10,
		AvailableDays: []string{"Mon"},
		TimeFrom:      "08:00",
		TimeTo:        "14:00",
		Latitude:      ptr(52.5400),
		Longitude:     ptr(13.4200),
	}
}

func TestCreate_FansOutMatches(t *testing.T) {
	ageMismatch := eligibleProvider("provider-b")
	ageMismatch.AgeGroups = []string{"0-2"}

	f := newFixture([]*model.ProviderProfile{
		eligibleProvider("provider-a"),
		ageMismatch,
	})

	req := validRequest()
	matchCount, err := f.svc.Create(context.Background(), "facility-1", req)
	require.NoError(t, err)

	assert.Equal(t, 1, matchCount)
	assert.Equal(t, model.RequestStatusOpen, req.Status)
	assert.Equal(t, "ffffffffffffffffffffffff", req.ExchangeProfileID)
	require.Len(t, f.matches.created, 1)
	assert.Equal(t, "provider-a", f.matches.created[0].ProviderUserID)
	assert.Equal(t, model.MatchStatusPending, f.matches.created[0].Status)

	assert.Equal(t, 1, f.publisher.requestCreated)
	assert.Equal(t, 1, f.publisher.matched)
}

func TestCreate_CityScopesCandidatePool(t *testing.T) {
	ageMismatch := eligibleProvider("provider-b")
	ageMismatch.AgeGroups = []string{"0-2"}
	otherCity := eligibleProvider("provider-c")
	otherCity.City = "Hamburg"
	otherCity.Latitude = ptr(52.5210)
	otherCity.Longitude = ptr(13.4060)

	f := newFixture([]*model.ProviderProfile{
		eligibleProvider("provider-a"),
		ageMismatch,
		otherCity,
	})

	matchCount, err := f.svc.Create(context.Background(), "facility-1", validRequest())
	require.NoError(t, err)

	// Only the Berlin provider with intersecting age groups matches;
	// the Hamburg provider never enters the candidate pool even though
	// it satisfies every other criterion.
	assert.Equal(t, 1, matchCount)
	require.Len(t, f.matches.created, 1)
	assert.Equal(t, "provider-a", f.matches.created[0].ProviderUserID)
}

func TestCreate_RejectsInvertedTimeWindow(t *testing.T) {
	f := newFixture(nil)

	req := validRequest()
	req.TimeFrom = "14:00"
	req.TimeTo = "09:00"

	_, err := f.svc.Create(context.Background(), "facility-1", req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(err).Code)
	assert.Empty(t, f.requests.created)
}

func TestCreate_RequiresExchangeProfile(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Create(context.Background(), "someone-without-profile", validRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)
}

func TestCreate_ValidationFailure(t *testing.T) {
	f := newFixture(nil)

	req := validRequest()
	req.EndDate = "2024-06-01"

	_, err := f.svc.Create(context.Background(), "facility-1", req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(err).Code)
	assert.Empty(t, f.requests.created)
}

func TestCreate_NoEligibleProviders(t *testing.T) {
	f := newFixture(nil)

	matchCount, err := f.svc.Create(context.Background(), "facility-1", validRequest())
	require.NoError(t, err)
	assert.Zero(t, matchCount)
	assert.Len(t, f.requests.created, 1, "request persists even when nobody matches")
}

func TestUpdateStatus_OwnerOnly(t *testing.T) {
	f := newFixture(nil)

	req := validRequest()
	_, err := f.svc.Create(context.Background(), "facility-1", req)
	require.NoError(t, err)

	err = f.svc.UpdateStatus(context.Background(), "intruder", req.ID, model.RequestStatusCancelled)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)

	err = f.svc.UpdateStatus(context.Background(), "facility-1", req.ID, model.RequestStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, f.requests.statusWrites[req.ID])
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(nil)

	err := f.svc.UpdateStatus(context.Background(), "facility-1", "aaaaaaaaaaaaaaaaaaaaaaaa", "archived")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

func TestSetMatchStatus_ProviderOwned(t *testing.T) {
	f := newFixture(nil)
	f.matches.byID["m1"] = &model.RequestMatch{
		ID:             "m1",
		RequestID:      "aaaaaaaaaaaaaaaaaaaaaaaa",
		ProviderUserID: "provider-a",
		Status:         model.MatchStatusPending,
	}

	err := f.svc.SetMatchStatus(context.Background(), "provider-b", "m1", model.MatchStatusAccepted)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)

	err = f.svc.SetMatchStatus(context.Background(), "provider-a", "m1", model.MatchStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusAccepted, f.matches.statusWrites["m1"])
}

func TestListOpen_Filters(t *testing.T) {
	f := newFixture(nil)
	f.requests.byStatus = []*model.SubstitutionRequest{
		{ID: "r1", ExchangeProfileID: "ffffffffffffffffffffffff", AgeGroups: []string{"3-5"}, Status: model.RequestStatusOpen},
		{ID: "r2", ExchangeProfileID: "ffffffffffffffffffffffff", AgeGroups: []string{"0-2"}, Status: model.RequestStatusOpen},
		{ID: "r3", ExchangeProfileID: "000000000000000000000000", AgeGroups: []string{"3-5"}, Status: model.RequestStatusOpen},
	}

	items, err := f.svc.ListOpen(context.Background(), "Berlin", "3-5")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r1", items[0].Request.ID)
	require.NotNil(t, items[0].ExchangeProfile)
	assert.Equal(t, "Kita Sonnenschein", items[0].ExchangeProfile.FacilityName)

	items, err = f.svc.ListOpen(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestProviderInbox_Joins(t *testing.T) {
	f := newFixture(nil)
	req := validRequest()
	_, err := f.svc.Create(context.Background(), "facility-1", req)
	require.NoError(t, err)

	f.matches.byProviderUser = []*model.RequestMatch{
		{ID: "m1", RequestID: req.ID, ProviderUserID: "provider-a", Status: model.MatchStatusPending},
	}
	f.apps.byProviderRequest["provider-a/"+req.ID] = &model.RequestApplication{
		ID:        "app-1",
		RequestID: req.ID,
		Status:    model.ApplicationStatusApplied,
	}

	items, err := f.svc.ProviderInbox(context.Background(), "provider-a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].Match.ID)
	require.NotNil(t, items[0].Request)
	require.NotNil(t, items[0].ExchangeProfile)
	require.NotNil(t, items[0].MyApplication)
	assert.Equal(t, "app-1", items[0].MyApplication.ID)
}

func TestGetDetailsForProvider(t *testing.T) {
	f := newFixture(nil)
	req := validRequest()
	_, err := f.svc.Create(context.Background(), "facility-1", req)
	require.NoError(t, err)

	details, err := f.svc.GetDetailsForProvider(context.Background(), "provider-a", req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, details.Request.ID)
	assert.Nil(t, details.MyApplication)

	_, err = f.svc.GetDetailsForProvider(context.Background(), "provider-a", "bbbbbbbbbbbbbbbbbbbbbbbb")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}
