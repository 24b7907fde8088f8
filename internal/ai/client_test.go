package ai

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://ai.example.com/v1/chat/completions"

func newTestClient() *Client {
	return NewClient(testURL, "test-key", "test-model", 5*time.Second)
}

func chatReply(content string) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
}

func TestSuggestCategory(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, testURL,
		chatReply(`{"category":"roads","sentiment":"urgent"}`))

	s, err := newTestClient().SuggestCategory(context.Background(), "infrastructure", "Large pothole on Elm St")
	require.NoError(t, err)
	require.NotNil(t, s.Category)
	assert.Equal(t, "roads", *s.Category)
	require.NotNil(t, s.Sentiment)
	assert.Equal(t, "urgent", *s.Sentiment)
}

func TestSuggestCategoryStripsCodeFences(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, testURL,
		chatReply("```json\n{\"category\":\"bribery\",\"sentiment\":\"negative\"}\n```"))

	s, err := newTestClient().SuggestCategory(context.Background(), "misconduct", "demanded money for a permit")
	require.NoError(t, err)
	require.NotNil(t, s.Category)
	assert.Equal(t, "bribery", *s.Category)
}

func TestSuggestCategoryRejectsUnknownEnums(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, testURL,
		chatReply(`{"category":"weather","sentiment":"furious"}`))

	s, err := newTestClient().SuggestCategory(context.Background(), "infrastructure", "storm damage")
	require.NoError(t, err)
	assert.Nil(t, s.Category)
	assert.Nil(t, s.Sentiment)
}

func TestSuggestCategoryMalformedJSON(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, testURL, chatReply("sorry, I cannot help"))

	_, err := newTestClient().SuggestCategory(context.Background(), "infrastructure", "pothole")
	require.Error(t, err)
}

func TestSuggestCategoryUpstreamError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, testURL,
		httpmock.NewStringResponder(http.StatusTooManyRequests, "rate limited"))

	_, err := newTestClient().SuggestCategory(context.Background(), "infrastructure", "pothole")
	require.Error(t, err)
}

func TestParseProjectQuery(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodPost, testURL,
		chatReply(`{"department":"water","status":"ongoing","min_budget":100000,"sort_by":"budget","sort_order":"desc"}`))

	f, err := newTestClient().ParseProjectQuery(context.Background(), "big ongoing water projects")
	require.NoError(t, err)
	assert.Equal(t, "water", f.Department)
	assert.Equal(t, "ongoing", f.Status)
	require.NotNil(t, f.MinBudget)
	assert.InDelta(t, 100000, *f.MinBudget, 0.001)
	assert.Equal(t, "budget", f.SortBy)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(testURL, "", "m", time.Second)
	_, err := c.SuggestCategory(context.Background(), "infrastructure", "x")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = Disabled{}.ParseProjectQuery(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotConfigured)
}
