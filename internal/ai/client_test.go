package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpushin/procurement-backend/internal/models"
)

// completionServer отвечает как OpenAI-совместимый API с заданным содержимым.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func testRFP() *models.RFP {
	return &models.RFP{
		Title:        "Office Chairs",
		Description:  "100 ergonomic office chairs",
		Budget:       50000,
		Requirements: types.JSONText(`{"items":[{"name":"chair","quantity":100}]}`),
	}
}

func TestCleanJSONResponse(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":              `{"a":1}`,
		"```\n{\"a\":1}\n```":                  `{"a":1}`,
		"{\"a\":1}":                            `{"a":1}`,
		"Вот результат:\n{\"a\":1}\nГотово.":   `{"a":1}`,
		"```json\n{\"a\":{\"b\":2}}\n```\nok!": `{"a":{"b":2}}`,
	}
	for input, want := range cases {
		assert.Equal(t, want, cleanJSONResponse(input), "input: %q", input)
	}
}

func TestExtractProposal_FencedResponse(t *testing.T) {
	content := "```json\n{\"totalPrice\": 28750, \"deliveryTime\": \"3 weeks\"}\n```"
	server := completionServer(t, content)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	parsed, err := client.ExtractProposal(context.Background(), "our offer is 28750, delivery in 3 weeks", testRFP())
	require.NoError(t, err)

	require.NotNil(t, parsed.TotalPrice)
	assert.Equal(t, 28750.0, *parsed.TotalPrice)
	require.NotNil(t, parsed.DeliveryTime)
	assert.Equal(t, "3 weeks", *parsed.DeliveryTime)
}

func TestExtractRFP_Success(t *testing.T) {
	content := `{"title":"Office Chairs","description":"100 chairs","budget":50000,"deadline":"2026-10-01","requirements":{"items":[]}}`
	server := completionServer(t, content)
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	parsed, err := client.ExtractRFP(context.Background(), "нужно 100 офисных кресел, бюджет 50000, до 1 октября")
	require.NoError(t, err)

	assert.Equal(t, "Office Chairs", parsed.Title)
	assert.Equal(t, 50000.0, parsed.Budget)
	require.NotNil(t, parsed.Deadline)
	assert.Equal(t, "2026-10-01", *parsed.Deadline)
}

func TestExtractRFP_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	_, err := client.ExtractRFP(context.Background(), "заявка")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractProposal_MalformedResponse(t *testing.T) {
	server := completionServer(t, "извините, не могу помочь")
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	_, err := client.ExtractProposal(context.Background(), "offer", testRFP())
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractRFP_NoBaseURL(t *testing.T) {
	client := NewClient("", "", "")
	_, err := client.ExtractRFP(context.Background(), "заявка")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestScoreProposal_Success(t *testing.T) {
	content := `{"summary":"Strong proposal under budget","score":85,"strengths":["price"],"weaknesses":[]}`
	server := completionServer(t, content)
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	price := 28750.0
	evaluation := client.ScoreProposal(context.Background(), &models.ParsedProposal{TotalPrice: &price}, testRFP())

	assert.Equal(t, 85.0, evaluation.Score)
	assert.Equal(t, "Strong proposal under budget", evaluation.Summary)
}

func TestScoreProposal_ServerErrorFallsBackToNeutral(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	evaluation := client.ScoreProposal(context.Background(), &models.ParsedProposal{}, testRFP())

	assert.Equal(t, float64(neutralScore), evaluation.Score)
	assert.Equal(t, "Unable to generate summary", evaluation.Summary)
}

func TestScoreProposal_ClampsScore(t *testing.T) {
	server := completionServer(t, `{"summary":"too good","score":150}`)
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	evaluation := client.ScoreProposal(context.Background(), &models.ParsedProposal{}, testRFP())

	assert.Equal(t, 100.0, evaluation.Score)
}
