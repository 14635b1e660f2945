package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/sirupsen/logrus"
)

const tokenScope = "https://graph.microsoft.com/.default"

// renewTokenEarly is how long before expiry the cached token is renewed.
const renewTokenEarly = 60 * time.Second

// TokenService acquires and caches the client-credential access token used by
// the list-storage gateway. The token is shared process-wide; callers
// serialize access behind the board service's mutex.
type TokenService struct {
	config *shared.ListStorageConfig
	client *http.Client
	logger *logrus.Logger

	accessToken string
	expiresAt   time.Time
}

// NewTokenService creates a new token service
func NewTokenService(config *shared.ListStorageConfig, clientFactory *shared.HTTPClientFactory) *TokenService {
	return &TokenService{
		config: config,
		client: clientFactory.CreateOptimizedHTTPClient(config.Timeout),
		logger: logrus.New(),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// GetAccessToken returns the cached token, refreshing it when absent or
// within a minute of expiry
func (s *TokenService) GetAccessToken() (string, error) {
	now := time.Now()
	if s.accessToken != "" && now.Before(s.expiresAt.Add(-renewTokenEarly)) {
		return s.accessToken, nil
	}

	token, expiresIn, err := s.requestToken()
	if err != nil {
		shared.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", err
	}

	shared.TokenRefreshesTotal.WithLabelValues("success").Inc()
	s.accessToken = token
	s.expiresAt = now.Add(time.Duration(expiresIn) * time.Second)

	s.logger.WithField("expires_at", s.expiresAt).Info("Acquired list-storage access token")
	return s.accessToken, nil
}

// requestToken performs the client-credential exchange against the authority
func (s *TokenService) requestToken() (string, int, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", s.config.AuthorityBase, s.config.TenantID)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.config.ClientID)
	form.Set("client_secret", s.config.ClientSecret)
	form.Set("scope", tokenScope)

	request, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build token request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := shared.ExecuteHTTPRequest(s.client, request)
	if err != nil {
		return "", 0, shared.NewServiceError(
			shared.ErrorCategoryAuthentication,
			"TOKEN_REQUEST_FAILED",
			"token endpoint request failed",
			"TokenService",
			"requestToken",
			err,
		)
	}
	defer response.Body.Close()

	var parsed tokenResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return "", 0, shared.NewServiceError(
			shared.ErrorCategoryAuthentication,
			"TOKEN_DECODE_FAILED",
			"token endpoint returned an unreadable body",
			"TokenService",
			"requestToken",
			err,
		)
	}

	if parsed.AccessToken == "" {
		return "", 0, shared.NewServiceError(
			shared.ErrorCategoryAuthentication,
			"TOKEN_MISSING",
			"token endpoint reply carried no access token",
			"TokenService",
			"requestToken",
			nil,
		)
	}

	if parsed.ExpiresIn <= 0 {
		parsed.ExpiresIn = 3600
	}

	return parsed.AccessToken, parsed.ExpiresIn, nil
}
