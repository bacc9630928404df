package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	accounts "github.com/arunpune/whladmin2-sub003"
)

// DefaultEndpoint is the provider's verification endpoint.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// Provider failure codes the adapter emits itself, alongside whatever
// the provider returns.
const (
	CodeMissingToken   = "missing-input-response"
	CodeScoreTooLow    = "score-too-low"
	CodeActionMismatch = "action-mismatch"
)

// Config configures the reCAPTCHA gateway.
type Config struct {
	// Secret is the server-side site secret.
	Secret string

	// Endpoint overrides the verification URL; tests point it at a
	// local server.
	Endpoint string

	// MinScore rejects verdicts below this v3 score. Zero disables the
	// score check.
	MinScore float64

	// HTTPClient overrides the client used for verification calls.
	HTTPClient *http.Client
}

// Gateway implements accounts.BotProtectionGateway against the
// reCAPTCHA siteverify API.
type Gateway struct {
	config Config
	client *http.Client
}

var _ accounts.BotProtectionGateway = (*Gateway)(nil)

// New creates a reCAPTCHA-backed gateway.
func New(cfg Config) (*Gateway, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("recaptcha: site secret is required")
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Gateway{config: cfg, client: client}, nil
}

type siteverifyResponse struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Validate implements accounts.BotProtectionGateway. Provider error
// codes pass through untouched; the adapter only adds its own codes for
// local rejections (empty token, score floor, action mismatch).
func (g *Gateway) Validate(ctx context.Context, action string, rc accounts.RequestContext, token string) (*accounts.BotProtectionResult, error) {
	if strings.TrimSpace(token) == "" {
		return &accounts.BotProtectionResult{
			Success:    false,
			ErrorCodes: []string{CodeMissingToken},
		}, nil
	}

	form := url.Values{}
	form.Set("secret", g.config.Secret)
	form.Set("response", token)
	if rc.RemoteIP != "" {
		form.Set("remoteip", rc.RemoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("recaptcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recaptcha: verification call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recaptcha: verification returned status %d", resp.StatusCode)
	}

	var verdict siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("recaptcha: decode response: %w", err)
	}

	result := &accounts.BotProtectionResult{
		Success:    verdict.Success,
		Score:      verdict.Score,
		ErrorCodes: verdict.ErrorCodes,
	}

	if !verdict.Success {
		return result, nil
	}

	if verdict.Action != "" && action != "" && verdict.Action != action {
		result.Success = false
		result.ErrorCodes = append(result.ErrorCodes, CodeActionMismatch)
		return result, nil
	}

	if g.config.MinScore > 0 && verdict.Score < g.config.MinScore {
		result.Success = false
		result.ErrorCodes = append(result.ErrorCodes, CodeScoreTooLow)
	}

	return result, nil
}
