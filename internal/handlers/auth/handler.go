package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"crm/infras/otel"
	"crm/internal/domains/auth/model/dto"
	"crm/internal/domains/auth/service"
	"crm/shared/constant"
	"crm/shared/validator"
	"crm/transport/http/response"
)

type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Post("/refresh-token", handler.RefreshToken)
		r.Get("/me", handler.Profile)
		r.Post("/change-password", handler.ChangePassword)
	})
}

// decode validates the JSON body into T, answering 400 itself on failure.
func decode[T any](w http.ResponseWriter, r *http.Request, scope otel.Scope) (T, bool) {
	var req T

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("rejected auth request body")
		response.WithError(w, err)

		return req, false
	}

	return req, true
}

func (handler *Handler) fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)

	response.WithError(w, err)
}

func currentUser(r *http.Request) string {
	id, _ := r.Context().Value(constant.ContextKeyUserID).(string)

	return id
}

// Register creates a user account with the user role.
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Email already registered"
// @Router /v1/auth/register [post]
func (handler *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Register")
	defer scope.End()

	req, ok := decode[dto.RegisterRequest](w, r, scope)
	if !ok {
		return
	}

	if err := handler.service.Register(ctx, req); err != nil {
		handler.fail(w, scope, err, "failed to register user")

		return
	}

	response.WithMessage(w, http.StatusCreated, "User registered successfully")
}

// Login exchanges credentials for an access and refresh token pair.
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Data[dto.TokenResponse]
// @Failure 401 {object} response.Error "Invalid email or password"
// @Failure 403 {object} response.Error "Account deactivated"
// @Router /v1/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Login")
	defer scope.End()

	req, ok := decode[dto.LoginRequest](w, r, scope)
	if !ok {
		return
	}

	res, err := handler.service.Login(ctx, req)
	if err != nil {
		handler.fail(w, scope, err, "failed to login")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// RefreshToken trades a refresh token for a new pair.
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Data[dto.TokenResponse]
// @Failure 401 {object} response.Error
// @Router /v1/auth/refresh-token [post]
func (handler *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefreshToken")
	defer scope.End()

	req, ok := decode[dto.RefreshTokenRequest](w, r, scope)
	if !ok {
		return
	}

	res, err := handler.service.RefreshToken(ctx, req)
	if err != nil {
		handler.fail(w, scope, err, "failed to refresh token")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// Profile returns the authenticated sales manager.
// @Summary Own profile
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Data[any] "User profile"
// @Failure 401 {object} response.Error
// @Router /v1/auth/me [get]
// @Security BearerAuth
func (handler *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Profile")
	defer scope.End()

	res, err := handler.service.Profile(ctx, currentUser(r))
	if err != nil {
		handler.fail(w, scope, err, "failed to get profile")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// ChangePassword replaces the password of the authenticated user.
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Change Password Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error "Current password is incorrect"
// @Router /v1/auth/change-password [post]
// @Security BearerAuth
func (handler *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangePassword")
	defer scope.End()

	req, ok := decode[dto.ChangePasswordRequest](w, r, scope)
	if !ok {
		return
	}

	if err := handler.service.ChangePassword(ctx, req, currentUser(r)); err != nil {
		handler.fail(w, scope, err, "failed to change password")

		return
	}

	response.WithMessage(w, http.StatusOK, "Password changed successfully")
}
