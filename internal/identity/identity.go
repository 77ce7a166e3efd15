// Package identity verifies third-party sign-in tokens and turns them into
// principals for the user resolver.
package identity

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/venusseo127/dentalApp/config"
	"github.com/venusseo127/dentalApp/types"
	"google.golang.org/api/option"
)

// ErrInvalidToken is returned when a token cannot be verified.
var ErrInvalidToken = errors.New("invalid identity token")

// Verifier checks an ID token issued by an identity provider.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (types.Principal, error)
}

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier verifies Firebase Authentication ID tokens.
type FirebaseVerifier struct {
	client tokenVerifier
}

// NewFirebaseVerifier initializes a Firebase app from the configured
// credentials file, falling back to application default credentials.
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (types.Principal, error) {
	if idToken == "" {
		return types.Principal{}, ErrInvalidToken
	}
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return types.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return principalFromToken(token), nil
}

func principalFromToken(token *auth.Token) types.Principal {
	principal := types.Principal{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		principal.Email = email
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		principal.EmailVerified = verified
	}
	if name, ok := token.Claims["name"].(string); ok {
		principal.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		principal.PhotoURL = picture
	}
	return principal
}
