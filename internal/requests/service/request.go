package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	applicationrepo "kitapool/internal/applications/repository"
	"kitapool/internal/matching"
	profileerrors "kitapool/internal/profiles/errors"
	profilerepo "kitapool/internal/profiles/repository"
	requesterrors "kitapool/internal/requests/errors"
	"kitapool/internal/requests/repository"
	"kitapool/internal/requests/validator"
	"kitapool/pkg/config"
	apperrors "kitapool/pkg/errors"
	"kitapool/pkg/events"
	"kitapool/pkg/model"
	"kitapool/pkg/sanitizer"
)

// OpenRequestItem is an open request joined with its facility, as
// shown to browsing providers.
type OpenRequestItem struct {
	Request         *model.SubstitutionRequest `json:"request"`
	ExchangeProfile *model.ExchangeProfile     `json:"exchange_profile,omitempty"`
}

// InboxItem is one entry of a provider's match inbox.
type InboxItem struct {
	Match           *model.RequestMatch        `json:"match"`
	Request         *model.SubstitutionRequest `json:"request,omitempty"`
	ExchangeProfile *model.ExchangeProfile     `json:"exchange_profile,omitempty"`
	MyApplication   *model.RequestApplication  `json:"my_application,omitempty"`
}

// RequestDetails is the provider-facing view of a single request.
type RequestDetails struct {
	Request         *model.SubstitutionRequest `json:"request"`
	ExchangeProfile *model.ExchangeProfile     `json:"exchange_profile,omitempty"`
	MyApplication   *model.RequestApplication  `json:"my_application,omitempty"`
}

type RequestService interface {
	Create(ctx context.Context, callerUserID string, req *model.SubstitutionRequest) (int, error)
	ListOpen(ctx context.Context, city, ageGroup string) ([]*OpenRequestItem, error)
	MyRequests(ctx context.Context, callerUserID string) ([]*model.SubstitutionRequest, error)
	UpdateStatus(ctx context.Context, callerUserID, requestID, status string) error
	ProviderInbox(ctx context.Context, callerUserID string) ([]*InboxItem, error)
	SetMatchStatus(ctx context.Context, callerUserID, matchID, status string) error
	GetDetailsForProvider(ctx context.Context, callerUserID, requestID string) (*RequestDetails, error)
}

type requestService struct {
	requests     repository.SubstitutionRequestRepository
	matches      repository.RequestMatchRepository
	providers    profilerepo.ProviderProfileRepository
	exchanges    profilerepo.ExchangeProfileRepository
	applications applicationrepo.RequestApplicationRepository
	engine       *matching.Engine
	validator    *validator.RequestValidator
	publisher    events.Publisher
	cfg          *config.Config
}

func NewRequestService(
	requests repository.SubstitutionRequestRepository,
	matches repository.RequestMatchRepository,
	providers profilerepo.ProviderProfileRepository,
	exchanges profilerepo.ExchangeProfileRepository,
	applications applicationrepo.RequestApplicationRepository,
	engine *matching.Engine,
	requestValidator *validator.RequestValidator,
	publisher events.Publisher,
	cfg *config.Config,
) RequestService {
	return &requestService{
		requests:     requests,
		matches:      matches,
		providers:    providers,
		exchanges:    exchanges,
		applications: applications,
		engine:       engine,
		validator:    requestValidator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// Create persists the request and its match fan-out in one
// transaction. The eligible set is computed exactly once here and
// never recomputed; later profile edits do not change it.
func (s *requestService) Create(ctx context.Context, callerUserID string, req *model.SubstitutionRequest) (int, error) {
	facility, err := s.exchanges.FindByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, profileerrors.ErrExchangeProfileNotFound) {
			return 0, apperrors.Forbidden("An exchange profile is required to post requests")
		}
		return 0, apperrors.Internal("Failed to load exchange profile", err)
	}

	req.UserID = callerUserID
	req.ExchangeProfileID = facility.ID
	req.Status = model.RequestStatusOpen
	s.sanitize(req)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Request validation failed",
			"user_id", callerUserID,
			"error", err,
		)
		return 0, apperrors.Validation("Request validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	candidates, err := s.providers.FindByCity(ctx, facility.City)
	if err != nil {
		return 0, apperrors.Internal("Failed to load provider candidates", err)
	}

	eligible := s.engine.EligibleProviders(
		matching.Criteria{
			AgeGroups: req.AgeGroups,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			TimeFrom:  req.TimeFrom,
			TimeTo:    req.TimeTo,
		},
		matching.Location{Latitude: facility.Latitude, Longitude: facility.Longitude},
		candidates,
	)

	var matches []*model.RequestMatch
	err = s.requests.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.requests.Create(sessCtx, req); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		matches = make([]*model.RequestMatch, 0, len(eligible))
		for _, p := range eligible {
			matches = append(matches, &model.RequestMatch{
				RequestID:         req.ID,
				ProviderProfileID: p.ID,
				ProviderUserID:    p.UserID,
				Status:            model.MatchStatusPending,
			})
		}
		if err := s.matches.CreateMany(sessCtx, matches); err != nil {
			return fmt.Errorf("failed to create matches: %w", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create substitution request",
			"user_id", callerUserID,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return 0, err
		}
		return 0, apperrors.Internal("Failed to create substitution request", err)
	}

	s.cfg.Log.Info("Substitution request created",
		"id", req.ID,
		"user_id", callerUserID,
		"city", facility.City,
		"match_count", len(matches),
	)

	// Events are best effort; a publish failure never fails the call.
	if err := s.publisher.RequestCreated(ctx, req, facility.City, len(matches)); err != nil {
		s.cfg.Log.Warn("Failed to publish request created event", "request_id", req.ID, "error", err)
	}
	for _, m := range matches {
		if err := s.publisher.ProviderMatched(ctx, m); err != nil {
			s.cfg.Log.Warn("Failed to publish provider matched event", "match_id", m.ID, "error", err)
		}
	}

	return len(matches), nil
}

func (s *requestService) ListOpen(ctx context.Context, city, ageGroup string) ([]*OpenRequestItem, error) {
	city = sanitizer.City(city)
	ageGroup = sanitizer.Tag(ageGroup)

	open, err := s.requests.FindByStatus(ctx, model.RequestStatusOpen)
	if err != nil {
		s.cfg.Log.Error("Failed to list open requests", "error", err)
		return nil, apperrors.Internal("Failed to list open requests", err)
	}

	items := make([]*OpenRequestItem, 0, len(open))
	for _, req := range open {
		if ageGroup != "" && !contains(req.AgeGroups, ageGroup) {
			continue
		}

		facility, err := s.exchanges.FindByID(ctx, req.ExchangeProfileID)
		if err != nil {
			// A request whose facility vanished still lists, without
			// the profile join.
			s.cfg.Log.Warn("Open request has no exchange profile",
				"request_id", req.ID,
				"exchange_profile_id", req.ExchangeProfileID,
			)
			facility = nil
		}
		if city != "" && (facility == nil || facility.City != city) {
			continue
		}

		items = append(items, &OpenRequestItem{Request: req, ExchangeProfile: facility})
	}
	return items, nil
}

func (s *requestService) MyRequests(ctx context.Context, callerUserID string) ([]*model.SubstitutionRequest, error) {
	requests, err := s.requests.FindByUserID(ctx, callerUserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list own requests", "user_id", callerUserID, "error", err)
		return nil, apperrors.Internal("Failed to list requests", err)
	}
	return requests, nil
}

func (s *requestService) UpdateStatus(ctx context.Context, callerUserID, requestID, status string) error {
	if status != model.RequestStatusOpen &&
		status != model.RequestStatusFulfilled &&
		status != model.RequestStatusCancelled {
		return apperrors.InvalidInput("Status must be 'open', 'fulfilled' or 'cancelled'")
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return s.translateRequestErr(err, requestID)
	}
	if req.UserID != callerUserID {
		return apperrors.Forbidden("Only the request owner can change its status")
	}

	if err := s.requests.UpdateStatus(ctx, requestID, status); err != nil {
		s.cfg.Log.Error("Failed to update request status", "request_id", requestID, "error", err)
		return apperrors.Internal("Failed to update request status", err)
	}

	s.cfg.Log.Info("Request status updated",
		"request_id", requestID,
		"user_id", callerUserID,
		"status", status,
	)
	return nil
}

func (s *requestService) ProviderInbox(ctx context.Context, callerUserID string) ([]*InboxItem, error) {
	matches, err := s.matches.FindByProviderUserID(ctx, callerUserID)
	if err != nil {
		s.cfg.Log.Error("Failed to load provider inbox", "user_id", callerUserID, "error", err)
		return nil, apperrors.Internal("Failed to load inbox", err)
	}

	requestIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		requestIDs = append(requestIDs, m.RequestID)
	}
	requests, err := s.requests.FindByIDs(ctx, requestIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load inbox requests", "user_id", callerUserID, "error", err)
		return nil, apperrors.Internal("Failed to load inbox", err)
	}
	requestByID := make(map[string]*model.SubstitutionRequest, len(requests))
	for _, req := range requests {
		requestByID[req.ID] = req
	}

	items := make([]*InboxItem, 0, len(matches))
	for _, m := range matches {
		item := &InboxItem{Match: m}

		req, ok := requestByID[m.RequestID]
		if !ok {
			s.cfg.Log.Warn("Inbox match points at a missing request",
				"match_id", m.ID,
				"request_id", m.RequestID,
			)
			items = append(items, item)
			continue
		}
		item.Request = req

		if facility, err := s.exchanges.FindByID(ctx, req.ExchangeProfileID); err == nil {
			item.ExchangeProfile = facility
		}
		if app, err := s.applications.FindByProviderAndRequest(ctx, callerUserID, req.ID); err == nil {
			item.MyApplication = app
		}

		items = append(items, item)
	}
	return items, nil
}

func (s *requestService) SetMatchStatus(ctx context.Context, callerUserID, matchID, status string) error {
	if status != model.MatchStatusPending &&
		status != model.MatchStatusAccepted &&
		status != model.MatchStatusDeclined {
		return apperrors.InvalidInput("Status must be 'pending', 'accepted' or 'declined'")
	}

	match, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, requesterrors.ErrMatchNotFound) {
			return apperrors.NotFoundWithID("Request match", matchID)
		}
		if errors.Is(err, requesterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid match ID format")
		}
		return apperrors.Internal("Failed to load match", err)
	}
	if match.ProviderUserID != callerUserID {
		return apperrors.Forbidden("Only the matched provider can acknowledge the match")
	}

	if err := s.matches.UpdateStatus(ctx, matchID, status); err != nil {
		s.cfg.Log.Error("Failed to update match status", "match_id", matchID, "error", err)
		return apperrors.Internal("Failed to update match status", err)
	}

	s.cfg.Log.Info("Match status updated",
		"match_id", matchID,
		"user_id", callerUserID,
		"status", status,
	)
	return nil
}

func (s *requestService) GetDetailsForProvider(ctx context.Context, callerUserID, requestID string) (*RequestDetails, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, s.translateRequestErr(err, requestID)
	}

	details := &RequestDetails{Request: req}
	if facility, err := s.exchanges.FindByID(ctx, req.ExchangeProfileID); err == nil {
		details.ExchangeProfile = facility
	}
	if app, err := s.applications.FindByProviderAndRequest(ctx, callerUserID, requestID); err == nil {
		details.MyApplication = app
	}
	return details, nil
}

func (s *requestService) sanitize(req *model.SubstitutionRequest) {
	req.AgeGroups = sanitizer.Slice(req.AgeGroups, sanitizer.Tag)
	req.StartDate = sanitizer.Text(req.StartDate)
	req.EndDate = sanitizer.Text(req.EndDate)
	req.TimeFrom = sanitizer.Text(req.TimeFrom)
	req.TimeTo = sanitizer.Text(req.TimeTo)
	req.Notes = sanitizer.Text(req.Notes)
}

func (s *requestService) translateRequestErr(err error, id string) error {
	if errors.Is(err, requesterrors.ErrRequestNotFound) {
		return apperrors.NotFoundWithID("Substitution request", id)
	}
	if errors.Is(err, requesterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid request ID format")
	}
	return apperrors.Internal("Failed to load substitution request", err)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
