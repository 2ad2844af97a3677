package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"crm/config"
	"crm/infras/jwt"
	jwtMocks "crm/infras/jwt/mocks"
	otelMocks "crm/infras/otel/mocks"
	"crm/permissions"
	"crm/shared/constant"
	"crm/transport/http/middleware"
)

const table = `{"endpoints":[
	{"path":"/v1/auth/login","method":"POST","skip":true},
	{"path":"/v1/leads/","method":"GET","roles":["admin","user"]},
	{"path":"/v1/leads/{id}","method":"DELETE","roles":["admin"]}
]}`

func newServer(t *testing.T, tokens *jwtMocks.MockJWT) http.Handler {
	t.Helper()

	data, err := permissions.Parse([]byte(table))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.APIKey = "internal-key"

	mw := middleware.NewAuthRoleMiddleware(tokens, otelMocks.NewOtel(), data, cfg)

	ok := func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(constant.ContextKeyUserID).(string)
		_, _ = w.Write([]byte(userID))
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(mw.APIKey, mw.Auth, mw.RBAC)
		r.Route("/v1", func(r chi.Router) {
			r.Post("/auth/login", ok)
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", ok)
				r.Delete("/{id}", ok)
			})
			r.Get("/unlisted", ok)
		})
	})

	return router
}

func call(handler http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{constant.RequestHeaderAuthorization: "Bearer " + token}
}

func TestAuthRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := jwtMocks.NewMockJWT(ctrl)

	tokens.EXPECT().ValidateToken("sales", jwt.AccessToken).
		Return(&jwt.Claims{UserID: "u-1", Email: "sales@hotel.test", Role: constant.RoleUser}, nil).AnyTimes()
	tokens.EXPECT().ValidateToken("admin", jwt.AccessToken).
		Return(&jwt.Claims{UserID: "u-2", Email: "admin@hotel.test", Role: constant.RoleAdmin}, nil).AnyTimes()
	tokens.EXPECT().ValidateToken("expired", jwt.AccessToken).
		Return(nil, jwt.ErrExpiredToken).AnyTimes()

	server := newServer(t, tokens)

	tests := []struct {
		name   string
		method string
		target string
		header map[string]string
		code   int
		body   string
	}{
		{name: "skipped endpoint", method: http.MethodPost, target: "/v1/auth/login", code: http.StatusOK},
		{name: "missing header", method: http.MethodGet, target: "/v1/leads/", code: http.StatusUnauthorized},
		{name: "malformed header", method: http.MethodGet, target: "/v1/leads/", header: map[string]string{constant.RequestHeaderAuthorization: "sales"}, code: http.StatusUnauthorized},
		{name: "expired token", method: http.MethodGet, target: "/v1/leads/", header: bearer("expired"), code: http.StatusUnauthorized},
		{name: "user lists leads", method: http.MethodGet, target: "/v1/leads/", header: bearer("sales"), code: http.StatusOK, body: "u-1"},
		{name: "user cannot delete lead", method: http.MethodDelete, target: "/v1/leads/l-1", header: bearer("sales"), code: http.StatusForbidden},
		{name: "admin deletes lead", method: http.MethodDelete, target: "/v1/leads/l-1", header: bearer("admin"), code: http.StatusOK, body: "u-2"},
		{name: "route missing from table", method: http.MethodGet, target: "/v1/unlisted", header: bearer("admin"), code: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, target: "/v1/nowhere", header: bearer("admin"), code: http.StatusNotFound},
		{name: "api key bypass", method: http.MethodDelete, target: "/v1/leads/l-1", header: map[string]string{constant.RequestHeaderAPIKey: "internal-key"}, code: http.StatusOK},
		{name: "wrong api key", method: http.MethodGet, target: "/v1/leads/", header: map[string]string{constant.RequestHeaderAPIKey: "guess"}, code: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(server, tt.method, tt.target, tt.header)

			assert.Equal(t, tt.code, rec.Code)

			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
