package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"focusmeet-backend/internal/analysis/dto"
	"focusmeet-backend/pkg/ai"
	"focusmeet-backend/pkg/apperror"
	"focusmeet-backend/pkg/transcription"

	"github.com/rs/zerolog/log"
)

// AnalysisUsecase runs uploaded consultations through the speech and language providers
type AnalysisUsecase interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*transcription.Transcript, error)
	Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*ai.Result, error)
}

type analysisUsecase struct {
	transcriber transcription.Transcriber
	analyzer    ai.Analyzer
}

func NewAnalysisUsecase(transcriber transcription.Transcriber, analyzer ai.Analyzer) AnalysisUsecase {
	return &analysisUsecase{transcriber: transcriber, analyzer: analyzer}
}

func (u *analysisUsecase) Transcribe(ctx context.Context, audio []byte, mimeType string) (*transcription.Transcript, error) {
	start := time.Now()
	out, err := u.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, transcription.ErrUnsupportedFormat), errors.Is(err, transcription.ErrEmptyAudio):
			return nil, apperror.Validation(err.Error())
		default:
			return nil, apperror.Dependency("could not transcribe audio", err)
		}
	}
	log.Info().
		Str("component", "transcription").
		Str("provider", u.transcriber.Name()).
		Int("bytes", len(audio)).
		Int("segments", len(out.Segments)).
		Dur("took", time.Since(start)).
		Msg("audio transcribed")
	return out, nil
}

func (u *analysisUsecase) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*ai.Result, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, apperror.Validation("text is required")
	}
	format := ai.Format(req.Format)
	switch format {
	case "":
		format = ai.FormatSOAP
	case ai.FormatSOAP, ai.FormatHPIROS:
	default:
		return nil, apperror.Validation("format must be soap or hpi_ros")
	}

	start := time.Now()
	res, err := u.analyzer.Analyze(ctx, ai.Request{Text: req.Text, Format: format, Model: strings.TrimSpace(req.Model)})
	if err != nil {
		return nil, apperror.Dependency("could not analyze transcript", err)
	}
	log.Info().
		Str("component", "ai").
		Str("provider", u.analyzer.Name()).
		Str("format", string(format)).
		Dur("took", time.Since(start)).
		Msg("transcript analyzed")
	return res, nil
}
