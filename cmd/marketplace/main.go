package main

import (
	"github.com/julienschmidt/httprouter"

	applicationhandler "kitapool/internal/applications/handler"
	applicationrepo "kitapool/internal/applications/repository"
	applicationservice "kitapool/internal/applications/service"
	applicationvalidator "kitapool/internal/applications/validator"
	"kitapool/internal/matching"
	profilehandler "kitapool/internal/profiles/handler"
	profilerepo "kitapool/internal/profiles/repository"
	profileservice "kitapool/internal/profiles/service"
	profilevalidator "kitapool/internal/profiles/validator"
	requesthandler "kitapool/internal/requests/handler"
	requestrepo "kitapool/internal/requests/repository"
	requestservice "kitapool/internal/requests/service"
	requestvalidator "kitapool/internal/requests/validator"
	"kitapool/pkg/app"
	"kitapool/pkg/config"
	"kitapool/pkg/events"
	"kitapool/pkg/geocode"
	kafkaconfig "kitapool/pkg/kafka/config"
	"kitapool/pkg/sealer"
)

const ServiceName = "marketplace"

// marketplaceHandler registers the routes of all three features on one
// router.
type marketplaceHandler struct {
	profiles     *profilehandler.ProfileHandler
	requests     *requesthandler.RequestHandler
	applications *applicationhandler.ApplicationHandler
}

func (h *marketplaceHandler) RegisterRoutes(router *httprouter.Router) {
	h.profiles.RegisterRoutes(router)
	h.requests.RegisterRoutes(router)
	h.applications.RegisterRoutes(router)
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.LogConfiguration()
	cfg.SetMongo()

	publisher := initPublisher(cfg)

	providerRepo := profilerepo.NewMongoProviderProfileRepository(cfg)
	exchangeRepo := profilerepo.NewMongoExchangeProfileRepository(cfg)
	settingsRepo := profilerepo.NewMongoUserSettingsRepository(cfg)
	requestRepo := requestrepo.NewMongoRequestRepository(cfg)
	matchRepo := requestrepo.NewMongoMatchRepository(cfg)
	applicationRepo := applicationrepo.NewMongoApplicationRepository(cfg)

	profileService := profileservice.NewProfileService(
		providerRepo,
		exchangeRepo,
		settingsRepo,
		profilevalidator.NewProfileValidator(),
		initGeocoder(cfg),
		cfg,
	)
	requestService := requestservice.NewRequestService(
		requestRepo,
		matchRepo,
		providerRepo,
		exchangeRepo,
		applicationRepo,
		matching.NewEngine(),
		requestvalidator.NewRequestValidator(),
		publisher,
		cfg,
	)
	applicationService := applicationservice.NewApplicationService(
		applicationRepo,
		requestRepo,
		providerRepo,
		exchangeRepo,
		applicationvalidator.NewApplicationValidator(),
		publisher,
		cfg,
	)

	cfg.Log.Info("Marketplace services initialized")

	appHandler := &marketplaceHandler{
		profiles:     profilehandler.NewProfileHandler(profileService, cfg.Log),
		requests:     requesthandler.NewRequestHandler(requestService, cfg.Log),
		applications: applicationhandler.NewApplicationHandler(applicationService, cfg.Log),
	}

	application := app.NewApplication()
	application.SetPublisher(publisher)
	application.SetApp(cfg, appHandler)
	application.Run()
}

func initGeocoder(cfg *config.Config) geocode.Geocoder {
	if cfg.GeocoderBaseURL == "" {
		cfg.Log.Info("Geocoding disabled, profiles keep client-supplied coordinates only")
		return geocode.Noop{}
	}
	return geocode.NewNominatimGeocoder(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout)
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Event publishing disabled")
		return events.Noop{}
	}

	seal, err := sealer.New(cfg.MatchSealKey)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize match token sealer", "error", err)
	}

	kafkaCfg := kafkaconfig.Load()
	publisher, err := events.NewKafkaPublisher(kafkaCfg, seal, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}

	cfg.Log.Info("Kafka event publisher initialized", "brokers", kafkaCfg.Brokers)
	return publisher
}
