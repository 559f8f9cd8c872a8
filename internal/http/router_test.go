package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	intconfig "tourquote/internal/config"
	"tourquote/internal/domain/models"
	h "tourquote/internal/http/handlers"
	"tourquote/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *repositories.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repositories.NewMemoryStore()
	store.PutDestination(models.Destination{ID: 1, Name: "Istanbul"})
	store.PutHotel(models.Hotel{ID: 10, DestinationID: 1, Name: "Pera Palace", RoomTypes: []string{"DBL"}, BoardTypes: []string{"BB"}, Currencies: []string{"EUR"}})
	store.PutSource(models.Source{ID: 1, Name: "Direct"})

	hash, err := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.MinCost)
	require.NoError(t, err)
	store.PutUser(models.User{ID: 1, Name: "Admin", Username: "admin", Email: "admin@example.com", Role: "admin", Status: "active", PasswordHash: string(hash)})
	store.PutUser(models.User{ID: 2, Name: "Ops", Username: "ops", Email: "ops@example.com", Role: "operations", Status: "active", PasswordHash: string(hash)})

	a := &h.API{
		Proposals:  store,
		Vouchers:   store,
		MasterData: store,
		Env: intconfig.Env{
			Storage:            intconfig.StorageMemory,
			JWTSecret:          "test-secret",
			JWTTTL:             time.Hour,
			DefaultCurrency:    "EUR",
			CORSAllowedOrigins: []string{"*"},
		},
	}
	return &testServer{t: t, router: NewRouter(a), store: store}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(user string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": user, "password": "pass"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRouter_HealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/api/db-check", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/proposals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/proposals", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ProposalToVoucherFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin")
	ops := s.login("ops@example.com")

	w := s.do(http.MethodPost, "/api/proposals", admin, map[string]any{
		"sourceId": 1, "salesPersonId": 1, "destinationIds": []int{1},
		"overallMargin": "10", "commission": "5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "NEW", created["status"])
	assert.Equal(t, "EUR", created["proposalCurrency"])

	w = s.do(http.MethodPost, "/api/proposals/1/lines/hotels", admin, map[string]any{
		"destinationId": 1, "hotelId": 10, "checkin": "2024-03-15", "checkout": "2024-03-19",
		"roomType": "DBL", "boardType": "BB", "numRooms": "2", "pricePerNight": "150",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/proposals/1/lines/flight", admin, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/proposals/1/totals", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	totals := decode(t, w)
	assert.Equal(t, "1200.00", totals["subtotal"])
	assert.Equal(t, "1380.00", totals["grandTotal"])

	w = s.do(http.MethodPost, "/api/proposals/1/validate", admin, map[string]string{"phase": "all"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["isValid"])

	w = s.do(http.MethodPost, "/api/proposals/1/confirm", ops, map[string]any{"selection": map[string][]int{"hotel": {1}}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/proposals/1/confirm", admin, map[string]any{"selection": map[string][]int{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode(t, w)["code"])

	w = s.do(http.MethodPost, "/api/proposals/1/confirm", admin, map[string]any{"selection": map[string][]int{"hotel": {1}}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var confirmed struct {
		Count    int              `json:"count"`
		Vouchers []models.Voucher `json:"vouchers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &confirmed))
	require.Equal(t, 1, confirmed.Count)
	voucher := confirmed.Vouchers[0]
	assert.Equal(t, models.KindHotel, voucher.ServiceType)
	assert.Equal(t, models.VoucherPendingPayment, voucher.Status)

	w = s.do(http.MethodPost, "/api/proposals/1/confirm", admin, map[string]any{"selection": map[string][]int{"hotel": {1}}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPatch, "/api/proposals/1/lines/hotel/1", admin, map[string]any{"roomType": "DBL"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/proposals/1/vouchers", ops, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(http.MethodPut, "/api/vouchers/"+voucher.ID+"/travellers", ops, map[string]any{"adults": 2, "children": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 3, decode(t, w)["totalPax"])

	w = s.do(http.MethodPut, "/api/vouchers/"+voucher.ID+"/status", ops, map[string]string{"status": "PAID"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPut, "/api/vouchers/"+voucher.ID+"/status", admin, map[string]string{"status": "PAID"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PAID", decode(t, w)["status"])
}

func TestRouter_BadInput(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin")

	w := s.do(http.MethodGet, "/api/proposals/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/proposals/99", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/proposals/1/lines/cruise", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/proposals", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_body", decode(t, w)["code"])

	w = s.do(http.MethodGet, "/api/nowhere", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CreateDefaultsSalesPersonToCaller(t *testing.T) {
	s := newTestServer(t)
	ops := s.login("ops")

	w := s.do(http.MethodPost, "/api/proposals", ops, map[string]any{"sourceId": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode(t, w)["salesPersonId"])

	w = s.do(http.MethodGet, "/api/proposals/1", ops, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ops", decode(t, w)["salesPersonName"])
}
