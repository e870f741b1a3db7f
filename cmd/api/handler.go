package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"focusmeet-backend/internal/access"
	analysisDelivery "focusmeet-backend/internal/analysis/delivery"
	analysisUsecase "focusmeet-backend/internal/analysis/usecase"
	authDelivery "focusmeet-backend/internal/auth/delivery"
	authRepo "focusmeet-backend/internal/auth/repository"
	authUsecase "focusmeet-backend/internal/auth/usecase"
	feedbackDelivery "focusmeet-backend/internal/feedback/delivery"
	feedbackRepo "focusmeet-backend/internal/feedback/repository"
	feedbackUsecase "focusmeet-backend/internal/feedback/usecase"
	"focusmeet-backend/internal/notification"
	patientDelivery "focusmeet-backend/internal/patient/delivery"
	patientRepo "focusmeet-backend/internal/patient/repository"
	patientUsecase "focusmeet-backend/internal/patient/usecase"
	reportDelivery "focusmeet-backend/internal/report/delivery"
	reportRepo "focusmeet-backend/internal/report/repository"
	reportUsecase "focusmeet-backend/internal/report/usecase"
	taskDelivery "focusmeet-backend/internal/task/delivery"
	taskUsecase "focusmeet-backend/internal/task/usecase"
	"focusmeet-backend/pkg/ai"
	"focusmeet-backend/pkg/config"
	"focusmeet-backend/pkg/fcm"
	firebasepkg "focusmeet-backend/pkg/firebase"
	"focusmeet-backend/pkg/store"
	"focusmeet-backend/pkg/transcription"

	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog/log"
)

// Deps are the process-wide collaborators, created once at startup
type Deps struct {
	Store       store.Store
	Verifier    authUsecase.Verifier
	Transcriber transcription.Transcriber
	Analyzer    ai.Analyzer
	// Sender is nil when push notifications are not configured
	Sender fcm.Sender
}

type Handler struct {
	config   *config.Config
	deps     Deps
	notifier *notification.Service

	authHandler     *authDelivery.AuthHandler
	patientHandler  *patientDelivery.PatientHandler
	reportHandler   *reportDelivery.ReportHandler
	feedbackHandler *feedbackDelivery.FeedbackHandler
	analysisHandler *analysisDelivery.AnalysisHandler
	taskHandler     *taskDelivery.TaskHandler
	statusHandler   *StatusHandler
}

// NewHandler selects the backends from cfg and wires every feature
func NewHandler(ctx context.Context, cfg *config.Config) (*Handler, error) {
	var app *firebase.App
	if cfg.HasFirebase() {
		var err error
		app, err = firebasepkg.NewApp(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	st, err := openStore(ctx, cfg, app)
	if err != nil {
		return nil, err
	}

	verifier, err := newVerifier(ctx, cfg, app)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	analyzer, err := ai.NewAnalyzer(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GroqAPIKey:    cfg.GroqAPIKey,
		GroqModel:     cfg.GroqModel,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("AI provider: %w", err)
	}

	transcriber, err := transcription.New(transcription.Config{
		Provider:         transcription.ProviderType(cfg.TranscriptionProvider),
		AssemblyAIAPIKey: cfg.AssemblyAIAPIKey,
		DeepgramAPIKey:   cfg.DeepgramAPIKey,
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
	})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("transcription provider: %w", err)
	}

	deps := Deps{Store: st, Verifier: verifier, Transcriber: transcriber, Analyzer: analyzer}
	if app != nil {
		client, err := fcm.NewClient(ctx, app)
		if err != nil {
			log.Warn().Err(err).Str("component", "fcm").Msg("push notifications disabled")
		} else {
			deps.Sender = client
		}
	}

	log.Info().
		Str("store", st.Name()).
		Str("auth", verifier.Name()).
		Str("ai", analyzer.Name()).
		Str("transcription", transcriber.Name()).
		Bool("push", deps.Sender != nil).
		Msg("backends selected")

	return Assemble(cfg, deps), nil
}

// Assemble wires repositories, usecases and handlers over already built dependencies
func Assemble(cfg *config.Config, deps Deps) *Handler {
	guard := access.NewGuard(deps.Store)

	userRepository := authRepo.NewUserRepository(deps.Store)
	fcmTokenRepository := authRepo.NewFCMTokenRepository(deps.Store)
	reportRepository := reportRepo.NewReportRepository(deps.Store)

	notifier := notification.NewService(fcmTokenRepository, deps.Sender)

	authUc := authUsecase.NewAuthUsecase(userRepository, fcmTokenRepository)
	patientUc := patientUsecase.NewPatientUsecase(patientRepo.NewPatientRepository(deps.Store), guard)
	reportUc := reportUsecase.NewReportUsecase(reportRepository, guard, notifier)
	feedbackUc := feedbackUsecase.NewFeedbackUsecase(feedbackRepo.NewFeedbackRepository(deps.Store))
	analysisUc := analysisUsecase.NewAnalysisUsecase(deps.Transcriber, deps.Analyzer)
	taskUc := taskUsecase.NewTaskUsecase(reportRepository)

	return &Handler{
		config:          cfg,
		deps:            deps,
		notifier:        notifier,
		authHandler:     authDelivery.NewAuthHandler(authUc),
		patientHandler:  patientDelivery.NewPatientHandler(patientUc),
		reportHandler:   reportDelivery.NewReportHandler(reportUc),
		feedbackHandler: feedbackDelivery.NewFeedbackHandler(feedbackUc),
		analysisHandler: analysisDelivery.NewAnalysisHandler(analysisUc, cfg.MaxUploadBytes()),
		taskHandler:     taskDelivery.NewTaskHandler(taskUc),
		statusHandler:   NewStatusHandler(cfg, deps),
	}
}

// openStore picks the persistence backend: Firestore, then Postgres, then the local
// filesystem outside production, and finally a store that refuses every operation.
func openStore(ctx context.Context, cfg *config.Config, app *firebase.App) (store.Store, error) {
	switch {
	case app != nil:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open Firestore: %w", err)
		}
		return store.NewFirestoreStore(client), nil
	case cfg.DatabaseURL != "":
		return store.NewPostgresStore(cfg.DatabaseURL)
	case !cfg.IsProduction():
		log.Warn().Str("component", "store").Str("dir", cfg.DataDir).Msg("no database configured, using local files")
		return store.NewFileStore(cfg.DataDir)
	default:
		log.Error().Str("component", "store").Msg("no database configured in production, data routes will fail")
		return store.Unconfigured{}, nil
	}
}

func newVerifier(ctx context.Context, cfg *config.Config, app *firebase.App) (authUsecase.Verifier, error) {
	switch {
	case app != nil:
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Firebase auth client: %w", err)
		}
		return authUsecase.NewFirebaseVerifier(client), nil
	case cfg.DevAuthSecret != "" && !cfg.IsProduction():
		log.Warn().Str("component", "auth").Msg("using development token verifier")
		return authUsecase.NewDevVerifier(cfg.DevAuthSecret), nil
	default:
		log.Warn().Str("component", "auth").Msg("no identity provider configured, every request is unauthenticated")
		return authUsecase.NewDisabledVerifier(), nil
	}
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight requests
func (h *Handler) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	h.notifier.Wait()
	return nil
}

// Close releases the store
func (h *Handler) Close() error {
	return h.deps.Store.Close()
}
