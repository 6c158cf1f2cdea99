package riskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/domain/providers"
	"github.com/medirisk/assessment-client/internal/infrastructure/observability"
	"github.com/medirisk/assessment-client/pkg/config"
	apperrors "github.com/medirisk/assessment-client/pkg/errors"
)

// statusCompleted is the wire value signalling that a chat reply ends the
// session.
const statusCompleted = "completed"

// HTTPClient is the request gateway to the remote prediction service. It
// attaches the current session credential to every call, classifies
// failures into the application error taxonomy and never retries. An
// authorization rejection from any call invalidates the credential store.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	creds      providers.CredentialSource
	metrics    *observability.Metrics
}

// NewClient creates a gateway for the service at cfg.BaseURL
func NewClient(cfg *config.APIConfig, creds providers.CredentialSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		creds: creds,
	}
}

// WithMetrics attaches request metrics to the gateway
func (c *HTTPClient) WithMetrics(metrics *observability.Metrics) *HTTPClient {
	c.metrics = metrics
	return c
}

type chatStartResponse struct {
	SessionID int64  `json:"session_id"`
	Message   string `json:"message"`
}

type chatPrediction struct {
	ID        int64                  `json:"id"`
	Result    string                 `json:"result"`
	Timestamp string                 `json:"timestamp"`
	Details   map[string]interface{} `json:"details"`
}

type chatMessageResponse struct {
	Response   string          `json:"response"`
	Status     string          `json:"status"`
	Prediction *chatPrediction `json:"prediction"`
}

type historyMessage struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type scoredRecord struct {
	Disease     string  `json:"disease"`
	RiskScore   float64 `json:"risk_score"`
	RiskLevel   string  `json:"risk_level"`
	Explanation string  `json:"explanation"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type uploadResponse struct {
	Message string `json:"message"`
}

// ListDiseases returns the disease identifiers with uploaded training data
func (c *HTTPClient) ListDiseases(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/predict/datasets/unique-diseases", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartChat opens a conversational session for a disease
func (c *HTTPClient) StartChat(ctx context.Context, disease string) (*entities.ChatStart, error) {
	query := url.Values{}
	query.Set("disease_context", disease)

	var out chatStartResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat/start", query, nil, &out); err != nil {
		return nil, err
	}
	return &entities.ChatStart{SessionID: out.SessionID, Message: out.Message}, nil
}

// SendChatMessage submits one user utterance to an open session
func (c *HTTPClient) SendChatMessage(ctx context.Context, sessionID int64, content string) (*entities.ChatReply, error) {
	query := url.Values{}
	query.Set("content", content)

	var out chatMessageResponse
	path := fmt.Sprintf("/chat/%d/message", sessionID)
	if err := c.doJSON(ctx, http.MethodPost, path, query, nil, &out); err != nil {
		return nil, err
	}

	reply := &entities.ChatReply{
		Message:   out.Response,
		Completed: out.Status == statusCompleted,
	}
	if out.Prediction != nil {
		reply.Outcomes = []entities.Outcome{
			entities.VerdictOutcome{Verdict: out.Prediction.Result},
		}
	}
	return reply, nil
}

// ChatHistory returns the stored turns of a session
func (c *HTTPClient) ChatHistory(ctx context.Context, sessionID int64) ([]entities.Turn, error) {
	var out []historyMessage
	path := fmt.Sprintf("/chat/%d/history", sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}

	turns := make([]entities.Turn, 0, len(out))
	for _, msg := range out {
		speaker := entities.SpeakerUser
		if msg.Sender != "user" {
			speaker = entities.SpeakerSystem
		}
		turns = append(turns, entities.Turn{
			Speaker:   speaker,
			Text:      msg.Content,
			State:     entities.TurnCommitted,
			CreatedAt: msg.Timestamp,
		})
	}
	return turns, nil
}

// PredictTabular submits a coerced feature set for a single-shot assessment
func (c *HTTPClient) PredictTabular(ctx context.Context, features map[string]interface{}, diseaseType string) ([]entities.ScoredOutcome, error) {
	payload := map[string]interface{}{
		"features":     features,
		"disease_type": diseaseType,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode features", err)
	}

	var out []scoredRecord
	if err := c.doJSON(ctx, http.MethodPost, "/predict/tabular", nil, bytes.NewReader(body), &out); err != nil {
		return nil, err
	}

	records := make([]entities.ScoredOutcome, 0, len(out))
	for _, rec := range out {
		records = append(records, entities.ScoredOutcome{
			Disease:     rec.Disease,
			RiskScore:   rec.RiskScore,
			RiskLevel:   rec.RiskLevel,
			Explanation: rec.Explanation,
		})
	}
	return records, nil
}

// Login exchanges email/password for a bearer credential
func (c *HTTPClient) Login(ctx context.Context, email, password, role string) (entities.Credentials, error) {
	query := url.Values{}
	query.Set("role", role)

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", query,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &out)
	if err != nil {
		return entities.Credentials{}, err
	}
	return entities.Credentials{Token: out.AccessToken, Role: role, Email: email}, nil
}

// Signup registers a new user account and returns its credential
func (c *HTTPClient) Signup(ctx context.Context, email, fullName, password string) (entities.Credentials, error) {
	payload := map[string]string{
		"email":     email,
		"full_name": fullName,
		"password":  password,
		"role":      "user",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return entities.Credentials{}, apperrors.NewInternalError("failed to encode signup request", err)
	}

	var out tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", nil, bytes.NewReader(body), &out); err != nil {
		return entities.Credentials{}, err
	}
	return entities.Credentials{Token: out.AccessToken, Role: "user", Email: email}, nil
}

// UploadCSV submits a training dataset for a disease and returns the server
// acknowledgement
func (c *HTTPClient) UploadCSV(ctx context.Context, filename, diseaseType string, data io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", apperrors.NewInternalError("failed to build upload request", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", apperrors.NewInternalError("failed to read dataset", err)
	}
	if err := writer.WriteField("disease_type", diseaseType); err != nil {
		return "", apperrors.NewInternalError("failed to build upload request", err)
	}
	if err := writer.Close(); err != nil {
		return "", apperrors.NewInternalError("failed to build upload request", err)
	}

	var out uploadResponse
	if err := c.do(ctx, http.MethodPost, "/predict/upload_csv", nil, writer.FormDataContentType(), &buf, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// AdminStats returns the platform aggregates for the admin dashboard
func (c *HTTPClient) AdminStats(ctx context.Context) (*entities.AdminStats, error) {
	out := &entities.AdminStats{}
	if err := c.doJSON(ctx, http.MethodGet, "/predict/dashboard/admin-stats", nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserStats returns the per-user aggregates for the user dashboard
func (c *HTTPClient) UserStats(ctx context.Context) (*entities.UserStats, error) {
	out := &entities.UserStats{}
	if err := c.doJSON(ctx, http.MethodGet, "/predict/dashboard/user-stats", nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, body io.Reader, out interface{}) error {
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, contentType, body, out)
}

// do submits one request and classifies the response. 401 invalidates the
// credential store before surfacing AuthExpired; 404 surfaces NotFound so
// callers can detect the dataset-missing condition; everything else
// non-2xx, and any network failure, is a transport error.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out interface{}) error {
	ctx, span := observability.StartSpan(ctx, "riskapi "+method+" "+path)
	defer span.End()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := c.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordRequestMetric(ctx, c.metrics, method, path, 0, time.Since(start))
		return apperrors.NewTransportError("remote service unreachable", err)
	}
	defer resp.Body.Close()

	observability.RecordRequestMetric(ctx, c.metrics, method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := c.classify(ctx, resp)
		observability.RecordError(span, appErr)
		return appErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		observability.RecordError(span, err)
		return apperrors.NewTransportError("failed to decode response", err)
	}
	return nil
}

func (c *HTTPClient) classify(ctx context.Context, resp *http.Response) error {
	detail := readDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if err := c.creds.Invalidate(); err != nil {
			observability.LoggerFromContext(ctx).Error().Err(err).
				Msg("failed to invalidate credentials after authorization rejection")
		}
		return apperrors.NewAuthExpiredError("session credential rejected")
	case http.StatusNotFound:
		if detail == "" {
			detail = "resource not found"
		}
		return apperrors.NewNotFoundError(detail)
	default:
		if detail == "" {
			detail = fmt.Sprintf("remote service returned status %d", resp.StatusCode)
		}
		return apperrors.NewTransportError(detail, nil)
	}
}

// readDetail extracts the service's error detail field, if the body carries
// one
func readDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}
