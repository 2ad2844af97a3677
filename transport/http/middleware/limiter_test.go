package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"crm/config"
	otelMocks "crm/infras/otel/mocks"
	"crm/shared/cache/mocks"
	"crm/shared/constant"
)

func newLimited(t *testing.T) (http.Handler, *mocks.MockRedisCache) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	redisCache := mocks.NewMockRedisCache(gomock.NewController(t))
	mw := NewAppMiddleware(otelMocks.NewOtel(), cfg, redisCache)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	return mw.RateLimit()(ok), redisCache
}

func request() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/leads/", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	req.Header.Set(constant.RequestHeaderUserAgent, "crm-web")

	return req
}

func TestRateLimit(t *testing.T) {
	handler, redisCache := newLimited(t)

	key := "limiter:10.0.0.7:crm-web"
	gomock.InOrder(
		redisCache.EXPECT().Increment(gomock.Any(), key, 60).Return(int64(1), nil),
		redisCache.EXPECT().Increment(gomock.Any(), key, 60).Return(int64(2), nil),
		redisCache.EXPECT().Increment(gomock.Any(), key, 60).Return(int64(3), nil),
	)

	codes := make([]int, 0, 3)
	remaining := make([]string, 0, 3)

	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, request())

		codes = append(codes, rec.Code)
		remaining = append(remaining, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, []string{"1", "0", "0"}, remaining)
}

func TestRateLimitCacheDown(t *testing.T) {
	handler, redisCache := newLimited(t)

	redisCache.EXPECT().Increment(gomock.Any(), gomock.Any(), 60).Return(int64(0), errors.New("connection refused"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, request())

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	a := &appMiddleware{}

	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "forwarded chain", header: map[string]string{constant.RequestHeaderForwardedFor: "203.0.113.9, 10.0.0.1"}, want: "203.0.113.9"},
		{name: "real ip", header: map[string]string{constant.RequestHeaderRealIP: " 198.51.100.4 "}, want: "198.51.100.4"},
		{name: "peer address", remote: "192.0.2.10:443", want: "192.0.2.10"},
		{name: "peer without port", remote: "192.0.2.10", want: "192.0.2.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote

			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, a.getClientIP(req))
		})
	}
}
