package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"crm/infras/otel"
	"crm/internal/domains/user/model"
	"crm/internal/domains/user/model/dto"
	"crm/internal/domains/user/service"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/validator"
	"crm/transport/http/response"
)

// Handler exposes team administration. Only admins reach the write routes.
type Handler struct {
	service service.User
	otel    otel.Otel
}

func New(service service.User, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/users", func(r chi.Router) {
		r.Post("/", handler.CreateUser)
		r.Get("/", handler.GetUsers)
		r.Get("/{id}", handler.GetUserByID)
		r.Patch("/{id}", handler.UpdateUser)
		r.Delete("/{id}", handler.DeleteUser)
	})
}

func (handler *Handler) scope(r *http.Request, name string) (*http.Request, otel.Scope) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)

	return r.WithContext(ctx), scope
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)
	log.Error().Err(err).Msg(msg)

	response.WithError(w, err)
}

// CreateUser adds a team member.
// @Summary Create a user
// @Description Adds a sales team member. Role defaults to user.
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "New user"
// @Success 201 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Email already registered"
// @Router /v1/users [post]
// @Security BearerAuth
func (handler *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	r, scope := handler.scope(r, "CreateUser")
	defer scope.End()

	var req dto.CreateUserRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "invalid create user body")

		return
	}

	if err := handler.service.Create(r.Context(), req); err != nil {
		fail(w, scope, err, "failed to create user")

		return
	}

	response.WithMessage(w, http.StatusCreated, "User created successfully")
}

// GetUsers lists the team.
// @Summary List users
// @Tags User
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param email query string false "Exact email"
// @Param role query string false "Role" Enums(admin, user)
// @Param active query bool false "Active flag"
// @Param search query string false "Matches full name or email"
// @Success 200 {object} response.Data[dto.GetUsersResponse]
// @Failure 400 {object} response.Error
// @Router /v1/users [get]
// @Security BearerAuth
func (handler *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	r, scope := handler.scope(r, "GetUsers")
	defer scope.End()

	params := gDto.QueryParams{}
	params.FromRequest(r, true)
	params.AllowSort(model.FieldFullName, model.FieldFullName, model.FieldEmail, model.FieldRole, model.FieldLastLogin, constant.FieldCreatedAt)

	filter, err := dto.ListFilter(r.URL.Query())
	if err != nil {
		fail(w, scope, err, "invalid user filter")

		return
	}

	users, err := handler.service.GetAll(r.Context(), params, filter)
	if err != nil {
		fail(w, scope, err, "failed to list users")

		return
	}

	response.WithJSON(w, http.StatusOK, users)
}

// GetUserByID
// @Summary Get a user
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Data[dto.UserResponse]
// @Failure 404 {object} response.Error
// @Router /v1/users/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	r, scope := handler.scope(r, "GetUserByID")
	defer scope.End()

	user, err := handler.service.Get(r.Context(), chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		fail(w, scope, err, "failed to get user")

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// UpdateUser changes profile fields, the role or the active flag.
// @Summary Update a user
// @Description Admins cannot demote or deactivate themselves, and the last active admin cannot be demoted or deactivated.
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserRequest true "Changed fields"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Last active admin"
// @Router /v1/users/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	r, scope := handler.scope(r, "UpdateUser")
	defer scope.End()

	var req dto.UpdateUserRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "invalid update user body")

		return
	}

	if err := handler.service.Update(r.Context(), req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		fail(w, scope, err, "failed to update user")

		return
	}

	response.WithMessage(w, http.StatusOK, "User updated successfully")
}

// DeleteUser removes a user that owns no leads.
// @Summary Delete a user
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "User still owns leads"
// @Router /v1/users/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	r, scope := handler.scope(r, "DeleteUser")
	defer scope.End()

	if err := handler.service.Delete(r.Context(), chi.URLParam(r, constant.RequestParamID)); err != nil {
		fail(w, scope, err, "failed to delete user")

		return
	}

	response.WithMessage(w, http.StatusOK, "User deleted successfully")
}
