package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"focusmeet-backend/pkg/config"
)

// ErrNoCredentials is returned when neither inline credentials nor a credentials file is set
var ErrNoCredentials = errors.New("firebase credentials not configured")

type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ClientOptions builds the credential option for the configured source. Inline env
// credentials win over a credentials file.
func ClientOptions(cfg *config.Config) ([]option.ClientOption, error) {
	if cfg.HasFirebaseEnvCredentials() {
		raw, err := json.Marshal(serviceAccount{
			Type:        "service_account",
			ProjectID:   cfg.FirebaseProjectID,
			ClientEmail: cfg.FirebaseClientEmail,
			PrivateKey:  cfg.FirebasePrivateKey,
			TokenURI:    "https://oauth2.googleapis.com/token",
		})
		if err != nil {
			return nil, err
		}
		return []option.ClientOption{option.WithCredentialsJSON(raw)}, nil
	}
	if cfg.FirebaseCredentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseCredentialsFile)}, nil
	}
	return nil, ErrNoCredentials
}

// NewApp initializes the process-wide Firebase app
func NewApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	opts, err := ClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	log.Info().Str("component", "firebase").Str("project", cfg.FirebaseProjectID).Msg("Firebase app initialized")
	return app, nil
}
