// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safari-connect/internal/database"
	"safari-connect/internal/inventory"
	"safari-connect/internal/middleware"
	"safari-connect/internal/models"
	"safari-connect/internal/notify"
	"safari-connect/internal/repository"
	"safari-connect/internal/responder"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (n *recordingNotifier) Name() string { return "test" }

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.err
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.msgs...)
}

type testEnv struct {
	handler  *Handler
	router   *mux.Router
	csrf     *middleware.CSRFTokenStore
	notifier *recordingNotifier
	secret   []byte
}

// Monday morning, inside the 09:00-14:00 bucket.
var testNow = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	catalog, err := responder.DefaultCatalog()
	require.NoError(t, err)
	resp, err := responder.New(catalog,
		responder.Contact{Phone: "+255 754 000 111", WhatsAppNumber: "+255754000111"},
		responder.WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	require.NoError(t, err)

	sim := inventory.NewSimulator(
		inventory.WithRand(rand.New(rand.NewPCG(3, 4))),
		inventory.WithLocation(time.UTC),
	)
	inv := inventory.NewService(sim, repository.NewKVRepository(db), time.Minute)

	notifier := &recordingNotifier{}
	relay := notify.NewRelay([]notify.Notifier{notifier},
		notify.WithRecorder(repository.NewNotificationRepository(db)),
		notify.WithClock(func() time.Time { return testNow }),
	)

	index := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(index, []byte("<h1>Safari WiFi</h1>"), 0644))

	h := New(db, resp, inv, relay, index)
	h.now = func() time.Time { return testNow }

	env := &testEnv{
		handler:  h,
		csrf:     middleware.NewCSRFTokenStore(time.Minute),
		notifier: notifier,
		secret:   []byte("admin-secret-for-tests"),
	}
	env.router = h.Routes(RouteConfig{
		CSRF:           env.csrf,
		AllowedOrigins: []string{"*"},
		AdminSecret:    env.secret,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) csrfHeader(t *testing.T) map[string]string {
	t.Helper()
	token, err := e.csrf.GenerateToken()
	require.NoError(t, err)
	return map[string]string{"X-CSRF-Token": token}
}

func (e *testEnv) adminHeader(t *testing.T) map[string]string {
	t.Helper()
	token, err := middleware.IssueAdminToken(e.secret, "owner", time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func validDetails() models.RentalDetails {
	return models.RentalDetails{
		Name:         "Amina Mushi",
		Phone:        "+255 700 111 222",
		Email:        "amina@example.com",
		Plan:         "weekly",
		Location:     "Kilimanjaro Airport",
		ArrivalDate:  "2026-11-02",
		FlightNumber: "kq484",
	}
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: "How much does it COST?"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "price", resp.Category)
	assert.Equal(t, responder.SourceRules, resp.Source)
	assert.Contains(t, resp.Reply, "+255 754 000 111")
	assert.GreaterOrEqual(t, resp.TypingDelayMs, int64(1000))
	assert.LessOrEqual(t, resp.TypingDelayMs, int64(2000))
}

func TestChat_DefaultCategory(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: "jambo"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "default", resp.Category)
}

func TestChat_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	bad := httptest.NewRecorder()
	env.router.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	long := env.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: strings.Repeat("a", maxChatMessage+1)}, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, long.Code)
}

func TestChatMetadata(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/chat/categories", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.Equal(t, []string{"price", "rental", "coverage", "device_spec", "delivery", "tourism", "default"}, categories)

	rec = env.do(t, http.MethodGet, "/api/chat/quick-replies", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quick []responder.QuickReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quick))
	assert.NotEmpty(t, quick)

	rec = env.do(t, http.MethodGet, "/api/chat/rules", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rules []responder.KeywordRule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.NotEmpty(t, rules)
	assert.Equal(t, responder.Price, rules[0].Category)
}

func TestGetInventory(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/inventory", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap inventory.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, inventory.DayKey("2026-10-19"), snap.Date)
	assert.GreaterOrEqual(t, snap.Today, 5)
	assert.LessOrEqual(t, snap.Today, 7)
	assert.GreaterOrEqual(t, snap.Tomorrow, snap.Today+8)
	assert.LessOrEqual(t, snap.Tomorrow, snap.Today+14)
	assert.True(t, env.handler.inventory.Visible(testNow))

	again := env.do(t, http.MethodGet, "/api/inventory", nil, nil)
	var second inventory.Snapshot
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &second))
	assert.Equal(t, snap, second)
}

func TestStreamInventory(t *testing.T) {
	env := newTestEnv(t)
	env.handler.streamInterval = 20 * time.Millisecond

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/inventory/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first inventory.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, inventory.DayKey("2026-10-19"), first.Date)
	assert.GreaterOrEqual(t, first.Today, 5)
	assert.True(t, env.handler.inventory.Visible(testNow))

	var next inventory.Snapshot
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, first, next)
}

func TestStreamInventory_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/inventory/stream", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.handler.inventory.Visible(testNow))
}

func TestTickInventory(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/inventory/tick", models.InventoryTickRequest{Visible: true}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	snap := env.handler.inventory.Snapshot(testNow)

	rec = env.do(t, http.MethodPost, "/api/inventory/tick", models.InventoryTickRequest{Visible: false}, env.csrfHeader(t))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.InventoryTickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, snap.Today, resp.Count)
	assert.False(t, resp.Decremented)

	rec = env.do(t, http.MethodPost, "/api/inventory/tick", models.InventoryTickRequest{Visible: true}, env.csrfHeader(t))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.Count, 1)
	assert.LessOrEqual(t, resp.Count, snap.Today)
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/bookings", validDetails(), env.csrfHeader(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.OrderID, "TZ"))

	booking, err := env.handler.bookingRepo.GetByOrderID(resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Amina Mushi", booking.Details.Name)
	assert.Equal(t, "KQ484", booking.Details.FlightNumber)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.NotEmpty(t, booking.ID)

	msgs := env.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, resp.OrderID, msgs[0].OrderID)
	assert.Equal(t, models.NotificationRental, msgs[0].Type)
}

func TestCreateBooking_NotificationFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("channel down")

	rec := env.do(t, http.MethodPost, "/api/bookings", validDetails(), env.csrfHeader(t))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	notifications, err := env.handler.notificationRepo.ListByOrderID(resp.OrderID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Success)
}

func TestCreateBooking_Rejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/bookings", validDetails(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	invalid := validDetails()
	invalid.Name = ""
	invalid.Email = "not-an-email"
	rec = env.do(t, http.MethodPost, "/api/bookings", invalid, env.csrfHeader(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
	assert.Empty(t, env.notifier.messages())
}

func TestNotify(t *testing.T) {
	env := newTestEnv(t)

	req := models.NotificationRequest{RentalDetails: validDetails(), NotificationType: models.NotificationPayment}
	rec := env.do(t, http.MethodPost, "/api/notify", req, map[string]string{"Origin": "https://safari.example"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp models.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	// TZ, eight base36 digits of milliseconds, four random characters.
	assert.Len(t, resp.OrderID, 14)
	assert.Equal(t, strings.ToUpper(resp.OrderID), resp.OrderID)

	msgs := env.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.NotificationPayment, msgs[0].Type)
}

func TestNotify_Failures(t *testing.T) {
	env := newTestEnv(t)

	bad := models.NotificationRequest{RentalDetails: validDetails(), NotificationType: "refund"}
	rec := env.do(t, http.MethodPost, "/api/notify", bad, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp models.NotificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.OrderID)
	assert.Contains(t, resp.Error, "unknown notification type")

	env.notifier.err = errors.New("smtp unreachable")
	good := models.NotificationRequest{RentalDetails: validDetails(), NotificationType: models.NotificationRental}
	rec = env.do(t, http.MethodPost, "/api/notify", good, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "smtp unreachable")
}

func TestNotify_Options(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodOptions, "/api/notify", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	preflight := env.do(t, http.MethodOptions, "/api/notify", nil, map[string]string{
		"Origin":                        "https://safari.example",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusNoContent, preflight.Code)
	assert.Empty(t, preflight.Body.String())
}

func TestAdminBookings(t *testing.T) {
	env := newTestEnv(t)

	created := env.do(t, http.MethodPost, "/api/bookings", validDetails(), env.csrfHeader(t))
	require.Equal(t, http.StatusCreated, created.Code)
	var createdResp models.NotificationResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createdResp))
	orderID := createdResp.OrderID

	rec := env.do(t, http.MethodGet, "/api/admin/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin := env.adminHeader(t)

	rec = env.do(t, http.MethodGet, "/api/admin/bookings?plan=weekly", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Bookings   []models.Booking          `json:"bookings"`
		Pagination repository.PaginationInfo `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Bookings, 1)
	assert.Equal(t, orderID, list.Bookings[0].OrderID)
	assert.Equal(t, 1, list.Pagination.Total)

	rec = env.do(t, http.MethodGet, "/api/admin/bookings?status=lost", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/bookings/"+orderID, nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/bookings/TZMISSING", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/bookings/"+orderID, statusUpdate{Status: "shipped"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/bookings/"+orderID, statusUpdate{Status: models.BookingPaid}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.BookingPaid, updated.Status)

	msgs := env.notifier.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.NotificationPayment, msgs[1].Type)

	rec = env.do(t, http.MethodGet, "/api/admin/bookings/"+orderID+"/notifications", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifications))
	require.Len(t, notifications, 2)
	assert.Equal(t, models.NotificationRental, notifications[0].Type)
	assert.Equal(t, models.NotificationPayment, notifications[1].Type)

	rec = env.do(t, http.MethodPatch, "/api/admin/bookings/TZMISSING", statusUpdate{Status: models.BookingPaid}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndIndex(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])

	rec = env.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Safari WiFi")
}
