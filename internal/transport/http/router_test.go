package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelink/internal/advisory"
	"lifelink/internal/donor"
	"lifelink/internal/interest"
	"lifelink/internal/jwtauth"
	"lifelink/internal/match"
	"lifelink/internal/platform/logger"
	"lifelink/internal/policy"
	"lifelink/internal/profile"
	"lifelink/internal/request"
	"lifelink/internal/stats"
)

// env is a full in-memory stack behind the real router and middleware.
type env struct {
	t      *testing.T
	server http.Handler
	tokens map[string]string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log := logger.New()
	donorStore := donor.NewInMemoryStore()
	requestStore := request.NewInMemoryStore()
	interestStore := interest.NewInMemoryStore()
	eval := policy.NewEvaluator(policy.NewInMemoryDirectory())

	profileSvc := profile.NewService(profile.NewInMemoryStore(), eval)
	donorSvc := donor.NewService(donorStore, eval, donor.WithProfiles(profileSvc))
	interestSvc := interest.NewService(interestStore, donorStore, requestStore, eval)
	requestSvc := request.NewService(requestStore, eval, request.WithInterests(interestSvc))
	matchSvc := match.NewService(requestStore, donorStore, interestSvc, eval)
	statsSvc := stats.NewService(donorStore, requestStore, eval)
	advisorySvc := advisory.NewService(advisory.NewMemoryMarkers())
	jwtSvc := jwtauth.NewService("test-key", "lifelink", "lifelink-api")

	router := NewRouter(Deps{
		Logger:    log,
		Validator: jwtSvc,
		Auth:      NewAuthHandler(jwtSvc, log),
		Profile:   NewProfileHandler(profileSvc),
		Donor:     NewDonorHandler(donorSvc, matchSvc),
		Request:   NewRequestHandler(requestSvc, interestSvc, matchSvc, advisorySvc),
		Admin:     NewAdminHandler(statsSvc, donorSvc, requestSvc, eval),
	})

	return &env{t: t, server: router, tokens: make(map[string]string)}
}

func (e *env) do(principal, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if principal != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(principal))
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func (e *env) token(principal string) string {
	if tok, ok := e.tokens[principal]; ok {
		return tok
	}
	w := e.do("", http.MethodPost, "/auth/token", map[string]string{"principal": principal})
	require.Equal(e.t, http.StatusOK, w.Code)
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	e.tokens[principal] = resp.AccessToken
	return resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestRouter_RejectsMissingAndBadTokens(t *testing.T) {
	e := newEnv(t)

	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w = httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	e.server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health endpoint needs no token")
}

func TestRouter_DonorLifecycle(t *testing.T) {
	e := newEnv(t)

	w := e.do("alice", http.MethodPut, "/donors", map[string]any{
		"id": "d1", "name": "Ana", "blood_type": "O_negative", "location": "Springfield",
		"contact_info": "555-0100",
		"health_checklist": map[string]any{
			"no_chronic_illness": true, "no_recent_surgery": true, "eligible_to_donate": true,
		},
		"availability": true,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do("alice", http.MethodGet, "/donors/d1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("mallory", http.MethodGet, "/donors/d1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do("alice", http.MethodPost, "/donors/d1/availability", map[string]bool{"available": false})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do("alice", http.MethodGet, "/donors/d1/eligibility", nil)
	require.Equal(t, http.StatusOK, w.Code)
	elig := decode[donor.Eligibility](t, w)
	assert.False(t, elig.Eligible, "unavailable donor is not eligible")

	w = e.do("alice", http.MethodGet, "/donors/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RequestInterestMatchFlow(t *testing.T) {
	e := newEnv(t)

	// Donor side.
	w := e.do("donor-owner", http.MethodPut, "/donors", map[string]any{
		"id": "d1", "name": "Ana", "blood_type": "O_negative", "location": "Springfield",
		"contact_info": "555-0100",
		"health_checklist": map[string]any{
			"no_chronic_illness": true, "no_recent_surgery": true, "eligible_to_donate": true,
		},
		"availability": true,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	// Requester side.
	w = e.do("requester", http.MethodPost, "/requests", map[string]any{
		"id": "r1", "recipient_name": "Maria", "blood_type": "A_positive",
		"location": "Springfield", "urgency": "critical", "contact_info": "555-0200",
		"units_required": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Everyone sees the redacted listing; contact info never appears there.
	w = e.do("donor-owner", http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "555-0200")

	w = e.do("requester", http.MethodPost, "/requests/r1/status", map[string]string{"status": "searching"})
	require.Equal(t, http.StatusNoContent, w.Code)

	// Nearby probe is count-only and matches the exact type.
	w = e.do("requester", http.MethodGet, "/donors/nearby?blood_type=O_negative&location=Springfield", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = e.do("requester", http.MethodGet, "/donors/nearby?blood_type=A_positive&location=Springfield", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())

	// Donor expresses interest; the request advances automatically.
	w = e.do("donor-owner", http.MethodPost, "/requests/r1/interest", map[string]string{"donor_id": "d1"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do("requester", http.MethodGet, "/requests/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[getRequestResponse](t, w)
	assert.Equal(t, "donor_contacted", got.Request.Status.String())

	// Duplicate interest conflicts.
	w = e.do("donor-owner", http.MethodPost, "/requests/r1/interest", map[string]string{"donor_id": "d1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Interested donors are listed redacted for the owner.
	w = e.do("requester", http.MethodGet, "/requests/r1/interests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "555-0100")

	// Only the owner may confirm; that is the single disclosure point.
	w = e.do("donor-owner", http.MethodPost, "/requests/r1/match", map[string]string{"donor_id": "d1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do("requester", http.MethodPost, "/requests/r1/match", map[string]string{"donor_id": "d1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "555-0100")

	// Fulfill, then the request accepts nothing further.
	w = e.do("requester", http.MethodPost, "/requests/r1/status", map[string]string{"status": "fulfilled"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do("donor-owner", http.MethodPost, "/requests/r1/interest", map[string]string{"donor_id": "d1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do("requester", http.MethodPost, "/requests/r1/status", map[string]string{"status": "searching"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_AdminEndpoints(t *testing.T) {
	e := newEnv(t)

	// First profile save bootstraps the admin.
	w := e.do("admin", http.MethodPut, "/profile", map[string]string{
		"name": "Root", "role": "requester",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do("alice", http.MethodPut, "/profile", map[string]string{
		"name": "Alice", "role": "donor", "contact_info": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("alice", http.MethodGet, "/admin/stats", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do("admin", http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("admin", http.MethodGet, "/admin/donors?available=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do("admin", http.MethodPost, "/admin/roles", map[string]string{
		"principal": "alice", "role": "admin",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do("alice", http.MethodGet, "/admin/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_BestMatchSuggestsWithoutContact(t *testing.T) {
	e := newEnv(t)

	for i, bt := range []string{"A_positive", "O_negative"} {
		w := e.do("donor-owner", http.MethodPut, "/donors", map[string]any{
			"id": fmt.Sprintf("d%d", i+1), "name": fmt.Sprintf("Donor %d", i+1),
			"blood_type": bt, "location": "Springfield", "contact_info": "secret-555",
			"health_checklist": map[string]any{
				"no_chronic_illness": true, "no_recent_surgery": true, "eligible_to_donate": true,
			},
			"availability": true,
		})
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	w := e.do("requester", http.MethodPost, "/requests", map[string]any{
		"id": "r1", "recipient_name": "Maria", "blood_type": "A_positive",
		"location": "Springfield", "urgency": "urgent", "contact_info": "555-0200",
		"units_required": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do("requester", http.MethodGet, "/requests/r1/candidates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-555")

	w = e.do("requester", http.MethodGet, "/requests/r1/best-match", nil)
	require.Equal(t, http.StatusOK, w.Code)
	suggestion := decode[match.Suggestion](t, w)
	assert.Equal(t, "d1", suggestion.Donor.DonorID, "exact type outranks universal donor")
	assert.Equal(t, 15, suggestion.Score)
	assert.NotContains(t, w.Body.String(), "secret-555")
}
