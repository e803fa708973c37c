package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghani-Agu/review-app/internal/domain"
	"github.com/Ghani-Agu/review-app/internal/repository"
	"github.com/Ghani-Agu/review-app/internal/service"
	"github.com/Ghani-Agu/review-app/pkg/health"
)

const testPrefix = "/apps/reviews"

// fakeRepo is an in-memory repository.ReviewRepository.
type fakeRepo struct {
	mu        sync.Mutex
	reviews   []domain.Review
	createErr error
}

func (f *fakeRepo) Create(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeRepo) List(_ context.Context, filter repository.ReviewFilter) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]domain.Review, 0)
	for _, r := range f.reviews {
		if r.ShopDomain == filter.ShopDomain && r.ProductID == filter.ProductID && r.Status == filter.Status {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func newTestRouter(t *testing.T, repo repository.ReviewRepository) chi.Router {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	svc := service.NewReviewService(repo, nil, log)
	return NewRouter(RouterConfig{
		ProxyPrefix: testPrefix,
		CacheMaxAge: 30,
	}, NewReviewHandler(svc, log), health.NewHandler(), log)
}

type envelope struct {
	OK      bool             `json:"ok"`
	Review  map[string]any   `json:"review"`
	Reviews []map[string]any `json:"reviews"`
	Error   string           `json:"error"`
}

func doRequest(t *testing.T, router chi.Router, r *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func shopRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Host = "internal.svc.local"
	r.Header.Set("X-Shopify-Shop-Domain", "shop.myshopify.com")
	return r
}

func TestListWithoutTenantIsUnauthorized(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(t, repo)

	r := httptest.NewRequest("GET", testPrefix+"/reviews?product_id=42", nil)
	r.Host = "internal.svc.local"

	rec, env := doRequest(t, router, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.OK)
	assert.NotEmpty(t, env.Error)
	assert.Empty(t, repo.reviews)
}

func TestCreateReview(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	r := shopRequest("POST", testPrefix+"/reviews",
		`{"product_id":"42","rating":5,"body":"Great","author_name":"Ana"}`)

	rec, env := doRequest(t, router, r)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.OK)
	require.NotNil(t, env.Review)
	assert.Equal(t, "pending", env.Review["status"])
	assert.Equal(t, "42", env.Review["productId"])
	assert.Equal(t, "shop.myshopify.com", env.Review["shopDomain"])
	assert.NotEmpty(t, env.Review["id"])
}

func TestCreateReviewFormEncoded(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	form := "product_id=42&rating=4&body=Solid&author_name=Ben&title=Nice"
	r := httptest.NewRequest("POST", testPrefix+"/reviews", strings.NewReader(form))
	r.Host = "internal.svc.local"
	r.Header.Set("X-Shopify-Shop-Domain", "shop.myshopify.com")
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, env := doRequest(t, router, r)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.OK)
	assert.Equal(t, "Nice", env.Review["title"])
	assert.Equal(t, float64(4), env.Review["rating"])
}

func TestCreateReviewMalformedBodyFailsFieldValidation(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	r := shopRequest("POST", testPrefix+"/reviews", `{"product_id": garbled`)

	rec, env := doRequest(t, router, r)
	// A garbled body degrades to an empty field map, so the caller sees a
	// missing-field error rather than a parse error.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "product_id")
}

func TestCreateReviewRatingOutOfBounds(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	r := shopRequest("POST", testPrefix+"/reviews",
		`{"product_id":"42","rating":7,"body":"Great","author_name":"Ana"}`)

	rec, env := doRequest(t, router, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "rating")
}

func TestListDefaultsToApprovedStatus(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(t, repo)

	// Seed one approved and one pending review for the same product.
	approved := shopRequest("POST", testPrefix+"/reviews",
		`{"product_id":"42","rating":5,"body":"Approved one","author_name":"Ana"}`)
	rec, _ := doRequest(t, router, approved)
	require.Equal(t, http.StatusOK, rec.Code)
	repo.mu.Lock()
	repo.reviews[0].Status = domain.StatusApproved
	repo.mu.Unlock()

	pending := shopRequest("POST", testPrefix+"/reviews",
		`{"product_id":"42","rating":1,"body":"Still pending","author_name":"Ben"}`)
	rec, _ = doRequest(t, router, pending)
	require.Equal(t, http.StatusOK, rec.Code)

	r := shopRequest("GET", testPrefix+"/reviews?product_id=42", "")
	rec, env := doRequest(t, router, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.OK)
	require.Len(t, env.Reviews, 1)
	assert.Equal(t, "Approved one", env.Reviews[0]["body"])

	// An unrecognized status filter silently falls back to approved too.
	r = shopRequest("GET", testPrefix+"/reviews?product_id=42&status=published", "")
	_, env = doRequest(t, router, r)
	require.Len(t, env.Reviews, 1)
	assert.Equal(t, "Approved one", env.Reviews[0]["body"])
}

func TestLargeProductIDRoundTrip(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(t, repo)

	create := shopRequest("POST", testPrefix+"/reviews",
		`{"product_id":"123456789012345","rating":5,"body":"Great","author_name":"Ana"}`)
	rec, env := doRequest(t, router, create)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123456789012345", env.Review["productId"])

	repo.mu.Lock()
	repo.reviews[0].Status = domain.StatusApproved
	repo.mu.Unlock()

	list := shopRequest("GET", testPrefix+"/reviews?product_id=123456789012345", "")
	rec, env = doRequest(t, router, list)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Reviews, 1)
	assert.Equal(t, "123456789012345", env.Reviews[0]["productId"])
}

func TestListMissingProductID(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	r := shopRequest("GET", testPrefix+"/reviews", "")
	rec, env := doRequest(t, router, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "product_id")
}

func TestWrongMethodOnReviews(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	r := shopRequest("PUT", testPrefix+"/reviews", "")
	rec, env := doRequest(t, router, r)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, env.OK)
	assert.NotEmpty(t, env.Error)
}

func TestRootRedirectPreservesMethod(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	for _, target := range []string{testPrefix, testPrefix + "/"} {
		r := shopRequest("POST", target, `{"product_id":"42"}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)

		// 307 keeps the method and body intact on the follow-up request.
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code, target)
		assert.Equal(t, testPrefix+"/reviews", rec.Header().Get("Location"), target)
	}
}

func TestRootRedirectKeepsQuery(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	r := shopRequest("GET", testPrefix+"/?product_id=42", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, testPrefix+"/reviews?product_id=42", rec.Header().Get("Location"))
}

func TestListSetsCacheControl(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	r := shopRequest("GET", testPrefix+"/reviews?product_id=42", "")
	rec, _ := doRequest(t, router, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=30", rec.Header().Get("Cache-Control"))
}

func TestOperationalEndpointsMounted(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStoreFailureReturnsGeneric500(t *testing.T) {
	repo := &fakeRepo{createErr: assert.AnError}
	router := newTestRouter(t, repo)

	r := shopRequest("POST", testPrefix+"/reviews",
		`{"product_id":"42","rating":5,"body":"Great","author_name":"Ana"}`)
	rec, env := doRequest(t, router, r)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.OK)
	// Internal detail never leaks to the caller.
	assert.NotContains(t, env.Error, assert.AnError.Error())
}
