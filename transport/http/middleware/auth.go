package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"crm/config"
	"crm/infras/jwt"
	"crm/infras/otel"
	"crm/permissions"
	"crm/shared/constant"
	"crm/shared/failure"
	"crm/transport/http/response"
)

type ctxKey string

const (
	// ctxKeyInternal marks a request authenticated by API key.
	ctxKeyInternal ctxKey = "internal"
	ctxKeyEndpoint ctxKey = "endpoint"
)

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

func internal(ctx context.Context) bool {
	ok, _ := ctx.Value(ctxKeyInternal).(bool)

	return ok
}

// endpoint resolves the chi route pattern of request against the permission
// table, caching the result on the context for the middlewares that follow.
func (m *authRoleImpl) endpoint(request *http.Request) (*http.Request, string, permissions.Permission, bool) {
	ctx := request.Context()

	rctx := chi.RouteContext(ctx)
	if rctx == nil || m.permission == nil {
		return request, constant.Empty, permissions.Permission{}, false
	}

	path := rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
	if cached, ok := ctx.Value(ctxKeyEndpoint).(permissions.Permission); ok && cached.Path == path {
		return request, path, cached, true
	}

	permission, found := m.permission.Find(request.Method, path)
	if found {
		request = request.WithContext(context.WithValue(ctx, ctxKeyEndpoint, permission))
	}

	return request, path, permission, found
}

func deny(writer http.ResponseWriter, scope otel.Scope, err error) {
	response.WithError(writer, err)
	scope.TraceError(err)
	scope.End()
}

// Auth validates the bearer access token and puts the caller on the context.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		request, path, permission, _ := m.endpoint(request)
		if internal(request.Context()) || permission.Skip {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       path,
			"http.method":     request.Method,
		})

		authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
		if authHeader == constant.Empty {
			deny(writer, scope, failure.Unauthorized("Missing authorization header"))

			return
		}

		tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
		if err != nil {
			deny(writer, scope, failure.Unauthorized("Invalid authorization header format"))

			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString, jwt.AccessToken)
		if err != nil {
			message := "Token validation failed"

			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				message = "Token has expired"
			case errors.Is(err, jwt.ErrInvalidToken):
				message = "Invalid token"
			case errors.Is(err, jwt.ErrInvalidClaim):
				message = "Invalid token claims"
			}

			deny(writer, scope, failure.Unauthorized(message))

			return
		}

		if claims.UserID == constant.Empty || claims.Email == constant.Empty {
			log.Error().Str("user_id", claims.UserID).Msg("JWT claims: subject is incomplete")
			deny(writer, scope, failure.Unauthorized("Invalid token claims"))

			return
		}

		ctx := request.Context()
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserName, claims.Name)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.ID)

		scope.End()
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RBAC checks the caller's role against the permission table. Routes missing
// from the table are refused unless the whole table is switched off.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "rbac.middleware")

		if internal(request.Context()) {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		if m.permission == nil {
			deny(writer, scope, failure.ForbiddenError)

			return
		}

		if m.permission.Skip {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		request, path, permission, found := m.endpoint(request)
		if !found {
			// unmatched routes fall through so chi answers 404 or 405
			if path == constant.Empty {
				scope.End()
				next.ServeHTTP(writer, request)

				return
			}

			deny(writer, scope, failure.ForbiddenError)

			return
		}

		if permission.Skip {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		role, _ := request.Context().Value(constant.ContextKeyUserRole).(string)
		if !permission.Allows(role) {
			scope.SetAttributes(map[string]any{
				"user_role":     role,
				"allowed_roles": permission.Roles,
				"reason":        "role_not_allowed",
			})
			deny(writer, scope, failure.ForbiddenError)

			return
		}

		scope.End()
		next.ServeHTTP(writer, request)
	})
}

// APIKey lets internal callers holding the configured key skip Auth and RBAC.
// Requests without the header continue as regular clients.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "api_key.middleware")

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)
		if apiKey == constant.Empty {
			scope.SetAttribute("http.source", "client")
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttribute("http.source", "internal")

		if m.cfg.App.APIKey == constant.Empty || apiKey != m.cfg.App.APIKey {
			deny(writer, scope, failure.ForbiddenError)

			return
		}

		scope.End()
		next.ServeHTTP(writer, request.WithContext(context.WithValue(ctx, ctxKeyInternal, true)))
	})
}
