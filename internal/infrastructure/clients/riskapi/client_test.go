package riskapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/infrastructure/clients/riskapi"
	"github.com/medirisk/assessment-client/pkg/config"
	apperrors "github.com/medirisk/assessment-client/pkg/errors"
)

// fakeCreds is a credential source with call accounting
type fakeCreds struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (c *fakeCreds) Token() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return "", false
	}
	return c.token, true
}

func (c *fakeCreds) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.invalidated++
	return nil
}

func (c *fakeCreds) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

func newTestClient(server *httptest.Server, creds *fakeCreds) *riskapi.HTTPClient {
	cfg := &config.APIConfig{BaseURL: server.URL, TimeoutSeconds: 5}
	return riskapi.NewClient(cfg, creds)
}

func TestClient_AttachesBearerCredential(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]string{"Heart Disease"})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok-123"})
	diseases, err := client.ListDiseases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Heart Disease"}, diseases)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_NoCredentialMeansNoHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]string{})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{})
	_, err := client.ListDiseases(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_UnauthorizedInvalidatesCredentialOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	}))
	defer server.Close()

	creds := &fakeCreds{token: "expired"}
	client := newTestClient(server, creds)

	_, err := client.ListDiseases(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthExpired(err))
	assert.Equal(t, 1, creds.invalidations())
}

func TestClient_NotFoundCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "No dataset found for disease: Kidney Disease"})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})
	_, err := client.StartChat(context.Background(), "Kidney Disease")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "No dataset found for disease: Kidney Disease", apperrors.MessageOf(err))
}

func TestClient_ServerErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})
	_, err := client.ListDiseases(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClient_UnreachableServiceIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := newTestClient(server, &fakeCreds{token: "tok"})
	_, err := client.ListDiseases(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClient_StartChatSendsDiseaseContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/start", r.URL.Path)
		assert.Equal(t, "Heart Disease", r.URL.Query().Get("disease_context"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"session_id": 42,
			"message":    "Hello! Let's assess your heart disease risk.",
		})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})
	start, err := client.StartChat(context.Background(), "Heart Disease")
	require.NoError(t, err)
	assert.Equal(t, int64(42), start.SessionID)
	assert.Equal(t, "Hello! Let's assess your heart disease risk.", start.Message)
}

func TestClient_SendChatMessageInProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/42/message", r.URL.Path)
		assert.Equal(t, "I am 54", r.URL.Query().Get("content"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "How is your blood pressure?",
			"status":   "in-progress",
		})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})
	reply, err := client.SendChatMessage(context.Background(), 42, "I am 54")
	require.NoError(t, err)
	assert.False(t, reply.Completed)
	assert.Empty(t, reply.Outcomes)
	assert.Equal(t, "How is your blood pressure?", reply.Message)
}

func TestClient_SendChatMessageCompletedCarriesVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "Assessment complete.",
			"status":   "completed",
			"prediction": map[string]interface{}{
				"id":        7,
				"result":    "High Risk",
				"timestamp": "2026-08-29T10:00:00Z",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})
	reply, err := client.SendChatMessage(context.Background(), 42, "done")
	require.NoError(t, err)
	assert.True(t, reply.Completed)
	require.Len(t, reply.Outcomes, 1)
	assert.Equal(t, entities.VerdictOutcome{Verdict: "High Risk"}, reply.Outcomes[0])
}

func TestClient_ChatHistoryMapsSpeakers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/42/history", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"sender": "assistant", "content": "Hello", "timestamp": "2026-08-29T10:00:00Z"},
			{"sender": "user", "content": "Hi", "timestamp": "2026-08-29T10:00:05Z"},
		})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})
	turns, err := client.ChatHistory(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entities.SpeakerSystem, turns[0].Speaker)
	assert.Equal(t, entities.SpeakerUser, turns[1].Speaker)
	assert.Equal(t, entities.TurnCommitted, turns[0].State)
}

func TestClient_PredictTabularRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict/tabular", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload struct {
			Features    map[string]interface{} `json:"features"`
			DiseaseType string                 `json:"disease_type"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Lung Cancer", payload.DiseaseType)
		assert.Equal(t, 54.0, payload.Features["age"])

		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"disease": "Lung Cancer", "risk_score": 66.1, "risk_level": "Medium", "explanation": "smoking history"},
		})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})
	records, err := client.PredictTabular(context.Background(), map[string]interface{}{"age": 54.0, "smoking": 1}, "Lung Cancer")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Lung Cancer", records[0].Disease)
	assert.Equal(t, 66.1, records[0].RiskScore)
	assert.Equal(t, "smoking history", records[0].Explanation)
}

func TestClient_LoginSendsFormEncodedCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "admin", r.URL.Query().Get("role"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "doc@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))

		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-99", "token_type": "bearer"})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{})
	creds, err := client.Login(context.Background(), "doc@example.com", "hunter2", "admin")
	require.NoError(t, err)
	assert.Equal(t, "tok-99", creds.Token)
	assert.Equal(t, "admin", creds.Role)
	assert.Equal(t, "doc@example.com", creds.Email)
}

func TestClient_UploadCSVBuildsMultipartRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict/upload_csv", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Diabetes", r.FormValue("disease_type"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "diabetes.csv", header.Filename)

		json.NewEncoder(w).Encode(map[string]string{"message": "Dataset uploaded and model trained"})
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})
	message, err := client.UploadCSV(context.Background(), "diabetes.csv", "Diabetes",
		strings.NewReader("age,glucose\n54,140\n"))
	require.NoError(t, err)
	assert.Equal(t, "Dataset uploaded and model trained", message)
}

func TestClient_DashboardStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/predict/dashboard/admin-stats":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"total_datasets": 4, "total_records": 1200, "active_models": 4, "accuracy_rate": 92.5,
			})
		case "/predict/dashboard/user-stats":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"total_assessments": 7, "health_score": 81.0, "risk_factors": 2,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server, &fakeCreds{token: "tok"})

	admin, err := client.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, admin.TotalDatasets)
	assert.Equal(t, 92.5, admin.AccuracyRate)

	user, err := client.UserStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, user.TotalAssessments)
	assert.Equal(t, 2, user.RiskFactors)
}
