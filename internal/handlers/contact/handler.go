package contact

import (
	"crm/infras/otel"
	"crm/internal/domains/contact/model"
	"crm/internal/domains/contact/model/dto"
	"crm/internal/domains/contact/service"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/validator"
	"crm/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Contact
	otel    otel.Otel
}

func New(service service.Contact, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/contacts", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateContact)
		routerGroup.Get("/", handler.GetContacts)
		routerGroup.Get("/{id}", handler.GetContactByID)
		routerGroup.Patch("/{id}", handler.UpdateContact)
		routerGroup.Delete("/{id}", handler.DeleteContact)
	})
}

// CreateContact handles the creation of a new contact.
// @Summary Create a new contact
// @Description Create a person record, optionally linked to an organization.
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body dto.CreateContactRequest true "Create Contact Request"
// @Success 201 {object} response.Data[gDto.IDResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/contacts [post]
// @Security BearerAuth
func (handler *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateContact")
	defer scope.End()

	req := dto.CreateContactRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create contact")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Contact created successfully")

	response.WithJSON(w, http.StatusCreated, gDto.IDResponse{ID: id})
}

// GetContacts lists contacts.
// @Summary Get all contacts
// @Tags Contact
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param search query string false "Search by name or email"
// @Param organization_id query string false "Filter by organization"
// @Success 200 {object} response.Data[dto.GetContactsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/contacts [get]
// @Security BearerAuth
func (handler *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetContacts")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.AllowSort(model.FieldFirstName, model.FieldFirstName, model.FieldLastName, constant.FieldCreatedAt)

	query := r.URL.Query()

	filterGroup := gDto.NewFilterGroup()
	filterGroup.AddIfNotEmpty(model.FieldOrganizationID, gDto.FilterOperatorEq, model.TableName, query.Get(model.FieldOrganizationID))

	if search := query.Get(constant.RequestParamSearch); search != "" {
		filterGroup.AddGroup(dto.SearchFilter(search))
	}

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get contacts")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetContactByID retrieves a contact.
// @Summary Get a contact by ID
// @Tags Contact
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} response.Data[dto.ContactResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/contacts/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetContactByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetContactByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get contact")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateContact partially updates a contact.
// @Summary Update a contact
// @Tags Contact
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param request body dto.UpdateContactRequest true "Update Contact Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/contacts/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateContact")
	defer scope.End()

	req := dto.UpdateContactRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update contact")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Contact updated successfully")

	response.WithMessage(w, http.StatusOK, "Contact updated successfully")
}

// DeleteContact deletes a contact that no lead references.
// @Summary Delete a contact
// @Tags Contact
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/contacts/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteContact")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete contact")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Contact deleted successfully")

	response.WithMessage(w, http.StatusOK, "Contact deleted successfully")
}
