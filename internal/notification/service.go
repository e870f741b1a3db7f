package notification

import (
	"context"
	"sync"
	"time"

	authrepo "focusmeet-backend/internal/auth/repository"
	"focusmeet-backend/internal/report/domain"
	"focusmeet-backend/pkg/fcm"

	"github.com/rs/zerolog/log"
)

const sendTimeout = 15 * time.Second

// Service pushes a "report saved" notification to every browser the owner registered.
// Sends run in the background and never affect the request that saved the report.
type Service struct {
	fcmRepo   authrepo.FCMTokenRepository
	fcmClient fcm.Sender
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewService(fcmRepo authrepo.FCMTokenRepository, fcmClient fcm.Sender) *Service {
	return &Service{
		fcmRepo:   fcmRepo,
		fcmClient: fcmClient,
		timeout:   sendTimeout,
	}
}

// ReportSaved implements the report usecase notifier
func (s *Service) ReportSaved(userID string, report *domain.Report) {
	if s.fcmClient == nil || s.fcmRepo == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.notify(ctx, userID, report)
	}()
}

// Wait blocks until in-flight notifications finish. Used on shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) notify(ctx context.Context, userID string, report *domain.Report) {
	logger := log.With().Str("component", "fcm").Str("user_id", userID).Str("report_id", report.ID).Logger()

	tokens, err := s.fcmRepo.GetTokensByUserID(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("could not load device tokens")
		return
	}
	if len(tokens) == 0 {
		logger.Debug().Msg("no devices registered, skipping push")
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	failed, err := s.fcmClient.SendToDevices(ctx, tokenStrings, fcm.NotificationData{
		Title: "Reporte guardado",
		Body:  report.Title,
		Data: map[string]string{
			"type":      "report_saved",
			"reportId":  report.ID,
			"patientId": report.PatientID,
		},
		ClickAction: buildReportClickAction(report.ID),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("push notification failed")
		return
	}
	logger.Info().Int("delivered", len(tokenStrings)-len(failed)).Msg("push notification sent")

	// Tokens FCM rejected are stale registrations
	for _, token := range failed {
		if err := s.fcmRepo.DeleteToken(ctx, token); err != nil {
			logger.Warn().Err(err).Str("token", fcm.Redact(token)).Msg("could not prune device token")
		}
	}
}

// buildReportClickAction returns the URL path for opening a report
func buildReportClickAction(reportID string) string {
	if reportID == "" {
		return "/reportes"
	}
	return "/reportes/" + reportID
}
