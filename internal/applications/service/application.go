package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	applicationerrors "kitapool/internal/applications/errors"
	"kitapool/internal/applications/repository"
	"kitapool/internal/applications/validator"
	profileerrors "kitapool/internal/profiles/errors"
	profilerepo "kitapool/internal/profiles/repository"
	requesterrors "kitapool/internal/requests/errors"
	requestrepo "kitapool/internal/requests/repository"
	"kitapool/pkg/config"
	apperrors "kitapool/pkg/errors"
	"kitapool/pkg/events"
	"kitapool/pkg/model"
	"kitapool/pkg/sanitizer"
)

// ApplyInput is a provider's bid on a request. SharePhone/ShareEmail
// opt the provider's profile contact into the application copy.
type ApplyInput struct {
	RequestID      string `json:"request_id"`
	CoverNote      string `json:"cover_note"`
	InitialMessage string `json:"initial_message"`
	SharePhone     bool   `json:"share_phone"`
	ShareEmail     bool   `json:"share_email"`
}

// DecideInput is the facility's accept/decline call.
type DecideInput struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	SharePhone bool   `json:"share_phone"`
	ShareEmail bool   `json:"share_email"`
}

// ApplicationItem is one application joined with the provider behind
// it, as shown to the facility reviewing a request.
type ApplicationItem struct {
	Application     *model.RequestApplication `json:"application"`
	ProviderProfile *model.ProviderProfile    `json:"provider_profile,omitempty"`
}

// MyApplicationItem additionally carries the parent request, for the
// facility's cross-request overview.
type MyApplicationItem struct {
	Application     *model.RequestApplication  `json:"application"`
	Request         *model.SubstitutionRequest `json:"request,omitempty"`
	ProviderProfile *model.ProviderProfile     `json:"provider_profile,omitempty"`
}

type ApplicationService interface {
	Apply(ctx context.Context, callerUserID string, input ApplyInput) (*model.RequestApplication, error)
	Decide(ctx context.Context, callerUserID, applicationID string, input DecideInput) (*model.RequestApplication, error)
	ListForRequest(ctx context.Context, callerUserID, requestID string) ([]*ApplicationItem, error)
	MyApplications(ctx context.Context, callerUserID string) ([]*MyApplicationItem, error)
}

type applicationService struct {
	applications repository.RequestApplicationRepository
	requests     requestrepo.SubstitutionRequestRepository
	providers    profilerepo.ProviderProfileRepository
	exchanges    profilerepo.ExchangeProfileRepository
	validator    *validator.ApplicationValidator
	publisher    events.Publisher
	cfg          *config.Config
}

func NewApplicationService(
	applications repository.RequestApplicationRepository,
	requests requestrepo.SubstitutionRequestRepository,
	providers profilerepo.ProviderProfileRepository,
	exchanges profilerepo.ExchangeProfileRepository,
	applicationValidator *validator.ApplicationValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ApplicationService {
	return &applicationService{
		applications: applications,
		requests:     requests,
		providers:    providers,
		exchanges:    exchanges,
		validator:    applicationValidator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// Apply records the bid with contact copies taken now. The copies are
// snapshots: later profile edits never propagate into them.
func (s *applicationService) Apply(ctx context.Context, callerUserID string, input ApplyInput) (*model.RequestApplication, error) {
	input.CoverNote = sanitizer.Text(input.CoverNote)
	input.InitialMessage = sanitizer.Text(input.InitialMessage)

	if err := s.validator.ValidateApply(input.RequestID, input.CoverNote, input.InitialMessage); err != nil {
		return nil, apperrors.Validation("Application validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	provider, err := s.providers.FindByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, profileerrors.ErrProviderProfileNotFound) {
			return nil, apperrors.Forbidden("A provider profile is required to apply")
		}
		return nil, apperrors.Internal("Failed to load provider profile", err)
	}

	req, err := s.requests.FindByID(ctx, input.RequestID)
	if err != nil {
		return nil, s.translateRequestErr(err, input.RequestID)
	}

	app := &model.RequestApplication{
		RequestID:         req.ID,
		ProviderProfileID: provider.ID,
		ProviderUserID:    callerUserID,
		CoverNote:         input.CoverNote,
		InitialMessage:    input.InitialMessage,
		Status:            model.ApplicationStatusApplied,
	}
	if input.SharePhone && provider.Phone != "" {
		app.SharedPhone = provider.Phone
	}
	if input.ShareEmail && provider.Email != "" {
		app.SharedEmail = provider.Email
	}

	if err := s.applications.Create(ctx, app); err != nil {
		s.cfg.Log.Error("Failed to create application",
			"request_id", req.ID,
			"user_id", callerUserID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create application", err)
	}

	s.cfg.Log.Info("Application submitted",
		"id", app.ID,
		"request_id", req.ID,
		"user_id", callerUserID,
		"shared_phone", app.SharedPhone != "",
		"shared_email", app.SharedEmail != "",
	)

	if err := s.publisher.ApplicationSubmitted(ctx, app); err != nil {
		s.cfg.Log.Warn("Failed to publish application submitted event", "application_id", app.ID, "error", err)
	}

	return app, nil
}

// Decide writes the decision and, on accept, marks the parent request
// fulfilled in the same transaction. Either both writes land or
// neither does.
func (s *applicationService) Decide(ctx context.Context, callerUserID, applicationID string, input DecideInput) (*model.RequestApplication, error) {
	input.Message = sanitizer.Text(input.Message)

	if err := s.validator.ValidateDecide(input.Status, input.Message); err != nil {
		return nil, apperrors.Validation("Decision validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, s.translateApplicationErr(err, applicationID)
	}

	req, err := s.requests.FindByID(ctx, app.RequestID)
	if err != nil {
		return nil, s.translateRequestErr(err, app.RequestID)
	}
	if req.UserID != callerUserID {
		return nil, apperrors.Forbidden("Only the request owner can decide on applications")
	}

	decision := repository.Decision{
		Status:          input.Status,
		DecisionAt:      time.Now().UTC().Truncate(time.Millisecond),
		DecisionMessage: input.Message,
	}
	if facility, err := s.exchanges.FindByUserID(ctx, callerUserID); err == nil {
		if input.SharePhone && facility.Phone != "" {
			decision.ExchangeSharedPhone = facility.Phone
		}
		if input.ShareEmail && facility.Email != "" {
			decision.ExchangeSharedEmail = facility.Email
		}
	}

	err = s.applications.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.applications.ApplyDecision(sessCtx, applicationID, decision); err != nil {
			return fmt.Errorf("failed to apply decision: %w", err)
		}
		if input.Status == model.ApplicationStatusAccepted {
			if err := s.requests.UpdateStatus(sessCtx, req.ID, model.RequestStatusFulfilled); err != nil {
				return fmt.Errorf("failed to fulfil request: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to decide on application",
			"application_id", applicationID,
			"status", input.Status,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to decide on application", err)
	}

	app.Status = decision.Status
	app.DecisionAt = &decision.DecisionAt
	app.DecisionMessage = decision.DecisionMessage
	app.ExchangeSharedPhone = decision.ExchangeSharedPhone
	app.ExchangeSharedEmail = decision.ExchangeSharedEmail

	s.cfg.Log.Info("Application decided",
		"id", app.ID,
		"request_id", req.ID,
		"status", app.Status,
	)

	if err := s.publisher.ApplicationDecided(ctx, app); err != nil {
		s.cfg.Log.Warn("Failed to publish application decided event", "application_id", app.ID, "error", err)
	}

	return app, nil
}

// ListForRequest fails closed but quietly: a missing request or one
// owned by someone else yields an empty list, not an error.
func (s *applicationService) ListForRequest(ctx context.Context, callerUserID, requestID string) ([]*ApplicationItem, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requesterrors.ErrRequestNotFound) || errors.Is(err, requesterrors.ErrInvalidID) {
			return []*ApplicationItem{}, nil
		}
		return nil, apperrors.Internal("Failed to load substitution request", err)
	}
	if req.UserID != callerUserID {
		return []*ApplicationItem{}, nil
	}

	apps, err := s.applications.FindByRequestID(ctx, requestID)
	if err != nil {
		s.cfg.Log.Error("Failed to list applications", "request_id", requestID, "error", err)
		return nil, apperrors.Internal("Failed to list applications", err)
	}

	items := make([]*ApplicationItem, 0, len(apps))
	for _, app := range apps {
		items = append(items, &ApplicationItem{
			Application:     app,
			ProviderProfile: s.lookupProvider(ctx, app.ProviderProfileID),
		})
	}
	return items, nil
}

// MyApplications aggregates applications across every request the
// caller owns, newest first.
func (s *applicationService) MyApplications(ctx context.Context, callerUserID string) ([]*MyApplicationItem, error) {
	requests, err := s.requests.FindByUserID(ctx, callerUserID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load requests", err)
	}
	if len(requests) == 0 {
		return []*MyApplicationItem{}, nil
	}

	ids := make([]string, 0, len(requests))
	requestByID := make(map[string]*model.SubstitutionRequest, len(requests))
	for _, req := range requests {
		ids = append(ids, req.ID)
		requestByID[req.ID] = req
	}

	apps, err := s.applications.FindByRequestIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate applications", "user_id", callerUserID, "error", err)
		return nil, apperrors.Internal("Failed to list applications", err)
	}

	items := make([]*MyApplicationItem, 0, len(apps))
	for _, app := range apps {
		items = append(items, &MyApplicationItem{
			Application:     app,
			Request:         requestByID[app.RequestID],
			ProviderProfile: s.lookupProvider(ctx, app.ProviderProfileID),
		})
	}
	return items, nil
}

// lookupProvider joins a provider profile into a listing. A vanished
// profile leaves the join empty rather than failing the list.
func (s *applicationService) lookupProvider(ctx context.Context, providerProfileID string) *model.ProviderProfile {
	provider, err := s.providers.FindByID(ctx, providerProfileID)
	if err != nil {
		s.cfg.Log.Warn("Application points at a missing provider profile",
			"provider_profile_id", providerProfileID,
		)
		return nil
	}
	return provider
}

func (s *applicationService) translateRequestErr(err error, id string) error {
	if errors.Is(err, requesterrors.ErrRequestNotFound) {
		return apperrors.NotFoundWithID("Substitution request", id)
	}
	if errors.Is(err, requesterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid request ID format")
	}
	return apperrors.Internal("Failed to load substitution request", err)
}

func (s *applicationService) translateApplicationErr(err error, id string) error {
	if errors.Is(err, applicationerrors.ErrApplicationNotFound) {
		return apperrors.NotFoundWithID("Application", id)
	}
	if errors.Is(err, applicationerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid application ID format")
	}
	return apperrors.Internal("Failed to load application", err)
}
