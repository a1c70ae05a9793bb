package service

import (
	"context"
	"errors"
	"fmt"

	profileerrors "kitapool/internal/profiles/errors"
	"kitapool/internal/profiles/repository"
	"kitapool/internal/profiles/validator"
	"kitapool/pkg/config"
	apperrors "kitapool/pkg/errors"
	"kitapool/pkg/geocode"
	"kitapool/pkg/model"
	"kitapool/pkg/sanitizer"
)

type ProfileService interface {
	CreateProviderProfile(ctx context.Context, callerUserID string, profile *model.ProviderProfile) error
	UpdateProviderProfile(ctx context.Context, callerUserID, id string, profile *model.ProviderProfile) error
	MyProviderProfile(ctx context.Context, callerUserID string) (*model.ProviderProfile, error)

	CreateExchangeProfile(ctx context.Context, callerUserID string, profile *model.ExchangeProfile) error
	UpdateExchangeProfile(ctx context.Context, callerUserID, id string, profile *model.ExchangeProfile) error
	MyExchangeProfile(ctx context.Context, callerUserID string) (*model.ExchangeProfile, error)

	SearchProviders(ctx context.Context, city, ageGroup, day string) ([]*model.ProviderProfile, error)

	SetActiveProfile(ctx context.Context, callerUserID, role string) (*model.UserSettings, error)
	MySettings(ctx context.Context, callerUserID string) (*model.UserSettings, error)
}

type profileService struct {
	providers repository.ProviderProfileRepository
	exchanges repository.ExchangeProfileRepository
	settings  repository.UserSettingsRepository
	validator *validator.ProfileValidator
	geocoder  geocode.Geocoder
	cfg       *config.Config
}

func NewProfileService(
	providers repository.ProviderProfileRepository,
	exchanges repository.ExchangeProfileRepository,
	settings repository.UserSettingsRepository,
	profileValidator *validator.ProfileValidator,
	geocoder geocode.Geocoder,
	cfg *config.Config,
) ProfileService {
	return &profileService{
		providers: providers,
		exchanges: exchanges,
		settings:  settings,
		validator: profileValidator,
		geocoder:  geocoder,
		cfg:       cfg,
	}
}

func (s *profileService) CreateProviderProfile(ctx context.Context, callerUserID string, profile *model.ProviderProfile) error {
	profile.UserID = callerUserID
	s.sanitizeProvider(profile)

	if err := s.validator.ValidateProvider(profile); err != nil {
		s.cfg.Log.Warn("Provider profile validation failed",
			"user_id", callerUserID,
			"error", err,
		)
		return apperrors.Validation("Provider profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.providers.FindByUserID(ctx, callerUserID)
	if err != nil && !errors.Is(err, profileerrors.ErrProviderProfileNotFound) {
		return apperrors.Internal("Failed to check for existing provider profile", err)
	}
	if existing != nil {
		return apperrors.Conflict(fmt.Sprintf(
			"User already has a provider profile (id: %s)", existing.ID,
		))
	}

	if !profile.HasCoordinates() {
		s.geocodeProvider(ctx, profile)
	}

	if err := s.providers.Create(ctx, profile); err != nil {
		s.cfg.Log.Error("Failed to create provider profile",
			"user_id", callerUserID,
			"error", err,
		)
		return apperrors.Internal("Failed to create provider profile", err)
	}

	s.cfg.Log.Info("Provider profile created",
		"id", profile.ID,
		"user_id", callerUserID,
		"city", profile.City,
		"geocoded", profile.HasCoordinates(),
	)
	return nil
}

func (s *profileService) UpdateProviderProfile(ctx context.Context, callerUserID, id string, profile *model.ProviderProfile) error {
	existing, err := s.providers.FindByID(ctx, id)
	if err != nil {
		return s.translateProviderErr(err, id)
	}
	if existing.UserID != callerUserID {
		return apperrors.Forbidden("Only the profile owner can update it")
	}

	profile.UserID = existing.UserID
	s.sanitizeProvider(profile)

	if err := s.validator.ValidateProvider(profile); err != nil {
		return apperrors.Validation("Provider profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	addressChanged := profile.Address != existing.Address ||
		profile.City != existing.City ||
		profile.PostalCode != existing.PostalCode
	if !profile.HasCoordinates() {
		if addressChanged {
			s.geocodeProvider(ctx, profile)
		} else {
			profile.Latitude = existing.Latitude
			profile.Longitude = existing.Longitude
		}
	}

	if err := s.providers.Update(ctx, id, profile); err != nil {
		s.cfg.Log.Error("Failed to update provider profile", "id", id, "error", err)
		return apperrors.Internal("Failed to update provider profile", err)
	}

	s.cfg.Log.Info("Provider profile updated", "id", id, "user_id", callerUserID)
	return nil
}

func (s *profileService) MyProviderProfile(ctx context.Context, callerUserID string) (*model.ProviderProfile, error) {
	profile, err := s.providers.FindByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, profileerrors.ErrProviderProfileNotFound) {
			return nil, apperrors.NotFound("Provider profile")
		}
		s.cfg.Log.Error("Failed to load provider profile", "user_id", callerUserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve provider profile", err)
	}
	return profile, nil
}

func (s *profileService) CreateExchangeProfile(ctx context.Context, callerUserID string, profile *model.ExchangeProfile) error {
	profile.UserID = callerUserID
	s.sanitizeExchange(profile)

	if err := s.validator.ValidateExchange(profile); err != nil {
		s.cfg.Log.Warn("Exchange profile validation failed",
			"user_id", callerUserID,
			"error", err,
		)
		return apperrors.Validation("Exchange profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.exchanges.FindByUserID(ctx, callerUserID)
	if err != nil && !errors.Is(err, profileerrors.ErrExchangeProfileNotFound) {
		return apperrors.Internal("Failed to check for existing exchange profile", err)
	}
	if existing != nil {
		return apperrors.Conflict(fmt.Sprintf(
			"User already has an exchange profile (id: %s)", existing.ID,
		))
	}

	if !profile.HasCoordinates() {
		s.geocodeExchange(ctx, profile)
	}

	if err := s.exchanges.Create(ctx, profile); err != nil {
		s.cfg.Log.Error("Failed to create exchange profile",
			"user_id", callerUserID,
			"error", err,
		)
		return apperrors.Internal("Failed to create exchange profile", err)
	}

	s.cfg.Log.Info("Exchange profile created",
		"id", profile.ID,
		"user_id", callerUserID,
		"city", profile.City,
		"geocoded", profile.HasCoordinates(),
	)
	return nil
}

func (s *profileService) UpdateExchangeProfile(ctx context.Context, callerUserID, id string, profile *model.ExchangeProfile) error {
	existing, err := s.exchanges.FindByID(ctx, id)
	if err != nil {
		return s.translateExchangeErr(err, id)
	}
	if existing.UserID != callerUserID {
		return apperrors.Forbidden("Only the profile owner can update it")
	}

	profile.UserID = existing.UserID
	s.sanitizeExchange(profile)

	if err := s.validator.ValidateExchange(profile); err != nil {
		return apperrors.Validation("Exchange profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	addressChanged := profile.Address != existing.Address ||
		profile.City != existing.City ||
		profile.PostalCode != existing.PostalCode
	if !profile.HasCoordinates() {
		if addressChanged {
			s.geocodeExchange(ctx, profile)
		} else {
			profile.Latitude = existing.Latitude
			profile.Longitude = existing.Longitude
		}
	}

	if err := s.exchanges.Update(ctx, id, profile); err != nil {
		s.cfg.Log.Error("Failed to update exchange profile", "id", id, "error", err)
		return apperrors.Internal("Failed to update exchange profile", err)
	}

	s.cfg.Log.Info("Exchange profile updated", "id", id, "user_id", callerUserID)
	return nil
}

func (s *profileService) MyExchangeProfile(ctx context.Context, callerUserID string) (*model.ExchangeProfile, error) {
	profile, err := s.exchanges.FindByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, profileerrors.ErrExchangeProfileNotFound) {
			return nil, apperrors.NotFound("Exchange profile")
		}
		s.cfg.Log.Error("Failed to load exchange profile", "user_id", callerUserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve exchange profile", err)
	}
	return profile, nil
}

// SearchProviders looks up the city index and applies the optional
// age-group and weekday filters in memory; the pool per city is small.
func (s *profileService) SearchProviders(ctx context.Context, city, ageGroup, day string) ([]*model.ProviderProfile, error) {
	city = sanitizer.City(city)
	if city == "" {
		return nil, apperrors.InvalidInput("City must be provided")
	}
	ageGroup = sanitizer.Tag(ageGroup)
	day = sanitizer.Text(day)

	profiles, err := s.providers.FindByCity(ctx, city)
	if err != nil {
		s.cfg.Log.Error("Failed to search providers", "city", city, "error", err)
		return nil, apperrors.Internal("Failed to search providers", err)
	}

	results := make([]*model.ProviderProfile, 0, len(profiles))
	for _, p := range profiles {
		if ageGroup != "" && !contains(p.AgeGroups, ageGroup) {
			continue
		}
		if day != "" && len(p.AvailableDays) > 0 && !contains(p.AvailableDays, day) {
			continue
		}
		results = append(results, p)
	}

	s.cfg.Log.Debug("Provider search completed",
		"city", city,
		"age_group", ageGroup,
		"day", day,
		"results_count", len(results),
	)
	return results, nil
}

// SetActiveProfile switches the user's active role, linking whichever
// profiles the user currently owns.
func (s *profileService) SetActiveProfile(ctx context.Context, callerUserID, role string) (*model.UserSettings, error) {
	if role != model.RoleProvider && role != model.RoleExchange {
		return nil, apperrors.InvalidInput("Role must be 'provider' or 'exchange'")
	}

	settings := &model.UserSettings{
		UserID:     callerUserID,
		ActiveRole: role,
	}

	if provider, err := s.providers.FindByUserID(ctx, callerUserID); err == nil {
		settings.ActiveProviderProfileID = provider.ID
	} else if !errors.Is(err, profileerrors.ErrProviderProfileNotFound) {
		return nil, apperrors.Internal("Failed to resolve provider profile", err)
	}

	if exchange, err := s.exchanges.FindByUserID(ctx, callerUserID); err == nil {
		settings.ActiveExchangeProfileID = exchange.ID
	} else if !errors.Is(err, profileerrors.ErrExchangeProfileNotFound) {
		return nil, apperrors.Internal("Failed to resolve exchange profile", err)
	}

	if role == model.RoleProvider && settings.ActiveProviderProfileID == "" {
		return nil, apperrors.InvalidInput("Cannot activate provider role without a provider profile")
	}
	if role == model.RoleExchange && settings.ActiveExchangeProfileID == "" {
		return nil, apperrors.InvalidInput("Cannot activate exchange role without an exchange profile")
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		s.cfg.Log.Error("Failed to save user settings", "user_id", callerUserID, "error", err)
		return nil, apperrors.Internal("Failed to save user settings", err)
	}

	s.cfg.Log.Info("Active profile switched", "user_id", callerUserID, "role", role)
	return settings, nil
}

func (s *profileService) MySettings(ctx context.Context, callerUserID string) (*model.UserSettings, error) {
	settings, err := s.settings.FindByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, profileerrors.ErrSettingsNotFound) {
			return nil, apperrors.NotFound("User settings")
		}
		return nil, apperrors.Internal("Failed to retrieve user settings", err)
	}
	return settings, nil
}

// geocodeProvider resolves coordinates best-effort; a failed lookup
// leaves the profile without coordinates and matching falls back to
// the city filter alone.
func (s *profileService) geocodeProvider(ctx context.Context, profile *model.ProviderProfile) {
	pos, err := s.geocoder.Lookup(ctx, profile.Address, profile.City, profile.PostalCode)
	if err != nil {
		s.cfg.Log.Warn("Geocoding failed, profile stays without coordinates",
			"city", profile.City,
			"error", err,
		)
		return
	}
	if pos != nil {
		profile.Latitude = &pos.Latitude
		profile.Longitude = &pos.Longitude
	}
}

func (s *profileService) geocodeExchange(ctx context.Context, profile *model.ExchangeProfile) {
	pos, err := s.geocoder.Lookup(ctx, profile.Address, profile.City, profile.PostalCode)
	if err != nil {
		s.cfg.Log.Warn("Geocoding failed, profile stays without coordinates",
			"city", profile.City,
			"error", err,
		)
		return
	}
	if pos != nil {
		profile.Latitude = &pos.Latitude
		profile.Longitude = &pos.Longitude
	}
}

func (s *profileService) sanitizeProvider(profile *model.ProviderProfile) {
	profile.DisplayName = sanitizer.Text(profile.DisplayName)
	profile.Address = sanitizer.Text(profile.Address)
	profile.City = sanitizer.City(profile.City)
	profile.PostalCode = sanitizer.Text(profile.PostalCode)
	profile.Phone = sanitizer.Phone(profile.Phone)
	profile.Email = sanitizer.Text(profile.Email)
	profile.AgeGroups = sanitizer.Slice(profile.AgeGroups, sanitizer.Tag)
	profile.AvailableDays = sanitizer.Slice(profile.AvailableDays, sanitizer.Text)
	profile.Bio = sanitizer.Text(profile.Bio)
}

func (s *profileService) sanitizeExchange(profile *model.ExchangeProfile) {
	profile.FacilityName = sanitizer.Text(profile.FacilityName)
	profile.Address = sanitizer.Text(profile.Address)
	profile.City = sanitizer.City(profile.City)
	profile.PostalCode = sanitizer.Text(profile.PostalCode)
	profile.ContactPersonName = sanitizer.Text(profile.ContactPersonName)
	profile.Phone = sanitizer.Phone(profile.Phone)
	profile.Email = sanitizer.Text(profile.Email)
	profile.AgeGroups = sanitizer.Slice(profile.AgeGroups, sanitizer.Tag)
	profile.OpeningDays = sanitizer.Slice(profile.OpeningDays, sanitizer.Text)
	profile.Bio = sanitizer.Text(profile.Bio)
}

func (s *profileService) translateProviderErr(err error, id string) error {
	if errors.Is(err, profileerrors.ErrProviderProfileNotFound) {
		return apperrors.NotFoundWithID("Provider profile", id)
	}
	if errors.Is(err, profileerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid profile ID format")
	}
	return apperrors.Internal("Failed to load provider profile", err)
}

func (s *profileService) translateExchangeErr(err error, id string) error {
	if errors.Is(err, profileerrors.ErrExchangeProfileNotFound) {
		return apperrors.NotFoundWithID("Exchange profile", id)
	}
	if errors.Is(err, profileerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid profile ID format")
	}
	return apperrors.Internal("Failed to load exchange profile", err)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
