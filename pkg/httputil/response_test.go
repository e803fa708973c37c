package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Ghani-Agu/review-app/pkg/errors"
	"github.com/Ghani-Agu/review-app/pkg/logger"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteReview(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteReview(rec, map[string]string{"id": "rev-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.NotNil(t, body["review"])
	assert.NotContains(t, body, "reviews")
	assert.NotContains(t, body, "error")
}

func TestWriteReviewsEmptySlice(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteReviews(rec, []string{})

	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	reviews, ok := body["reviews"].([]any)
	require.True(t, ok)
	assert.Empty(t, reviews)
}

func TestWriteErrorAppErrorPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/apps/reviews/reviews", nil)

	var buf bytes.Buffer
	log := logger.NewWithWriter("test", "info", &buf)
	WriteError(rec, r, apperrors.InvalidInput("rating must be a number between 1 and 5"), log)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "rating must be a number between 1 and 5", body["error"])
	// Client errors are not logged as internal failures.
	assert.Zero(t, buf.Len())
}

func TestWriteErrorInternalIsGenericAndLogged(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/apps/reviews/reviews", nil)

	var buf bytes.Buffer
	log := logger.NewWithWriter("test", "info", &buf)
	WriteError(rec, r, errors.New("pq: relation reviews does not exist"), log)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "an internal error occurred", body["error"])

	// The real cause lands in the server log, never in the response.
	assert.Contains(t, buf.String(), "relation reviews does not exist")
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestWriteErrorWrappedAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/apps/reviews/reviews", nil)

	err := apperrors.Wrap(apperrors.Unauthorized("shop could not be identified"), "resolve tenant")
	WriteError(rec, r, err, logger.NewWithWriter("test", "info", &bytes.Buffer{}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "shop could not be identified", body["error"])
}
