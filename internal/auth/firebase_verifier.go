package auth

import (
	"context"
	"fmt"

	"liveparallel-server/internal/models"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// IdentityVerifier проверяет токен мобильного клиента и возвращает
// непрозрачный идентификатор пользователя (UID).
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (string, error)
}

// FirebaseVerifier проверяет Firebase ID токены. Клиент LiveParallel
// логинится через Firebase Auth, сервис только верифицирует результат.
type FirebaseVerifier struct {
	client *fbauth.Client
	logger *zap.Logger
}

// NewFirebaseVerifier создает верификатор поверх Firebase Admin SDK.
// Если credentialsPath пуст, используются Application Default Credentials.
func NewFirebaseVerifier(ctx context.Context, credentialsPath string, logger *zap.Logger) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Firebase Auth клиента: %w", err)
	}

	return &FirebaseVerifier{
		client: client,
		logger: logger.Named("FirebaseVerifier"),
	}, nil
}

// VerifyToken проверяет подпись и срок действия ID токена и извлекает UID.
func (v *FirebaseVerifier) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, tokenString)
	if err != nil {
		v.logger.Warn("Failed to verify Firebase ID token", zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if token.UID == "" {
		v.logger.Warn("Verified token has empty UID")
		return "", models.ErrUnauthorized
	}
	return token.UID, nil
}
