package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-dashboard/kds"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/router"
	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/store"
)

type testApp struct {
	t      *testing.T
	router *gin.Engine
	repos  *repositories.Repositories
	store  store.Store
	hub    *kds.Hub
}

// envelope is the {status,message,data} body every handler answers with.
type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Kind    string            `json:"kind"`
	Fields  map[string]string `json:"fields"`
	Data    json.RawMessage   `json:"data"`
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	s := store.NewGormStore(db, 0)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })

	repos := repositories.New(s)
	hub := kds.NewHub()
	uploadDir := t.TempDir()
	r := router.SetupRouter(router.Dependencies{
		Repos:         repos,
		Lifecycle:     services.NewOrderLifecycle(repos.Orders, hub, services.NoopPublisher{}),
		Hub:           hub,
		QR:            services.NewMenuQRGenerator("http://localhost:8080"),
		Images:        services.NewLocalImageStorage(uploadDir, "http://localhost:8080"),
		UploadDir:     uploadDir,
		AuthRateLimit: rate.Inf,
	})
	return &testApp{t: t, router: r, repos: repos, store: s, hub: hub}
}

func (a *testApp) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// login registers an owner and returns a bearer token for them.
func (a *testApp) login(email string) string {
	a.t.Helper()
	w, _ := a.do(http.MethodPost, "/register", "", map[string]string{
		"name": "Owner", "email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	decode(a.t, env, &data)
	require.NotEmpty(a.t, data.Token)
	return data.Token
}

func (a *testApp) createRestaurant(token, name string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/restaurants", token, map[string]interface{}{
		"name":    name,
		"address": "12 Galle Road, Colombo",
		"location": map[string]float64{
			"longitude": 79.8612,
			"latitude":  6.9271,
		},
		"cuisineType": "Sri Lankan",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var rest struct {
		ID string `json:"id"`
	}
	decode(a.t, env, &rest)
	return rest.ID
}

func (a *testApp) createMenuItem(token, restaurantID, name string, price float64) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/restaurants/"+restaurantID+"/menu-items", token, map[string]interface{}{
		"name": name, "price": price, "isAvailable": true,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var item struct {
		ID string `json:"id"`
	}
	decode(a.t, env, &item)
	return item.ID
}
