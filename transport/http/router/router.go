package router

import (
	"crm/internal/handlers/activity"
	"crm/internal/handlers/auth"
	"crm/internal/handlers/contact"
	"crm/internal/handlers/dashboard"
	"crm/internal/handlers/eventdetail"
	"crm/internal/handlers/lead"
	"crm/internal/handlers/organization"
	"crm/internal/handlers/proposal"
	"crm/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth         auth.Handler
	User         user.Handler
	Organization organization.Handler
	Contact      contact.Handler
	Lead         lead.Handler
	EventDetail  eventdetail.Handler
	Activity     activity.Handler
	Proposal     proposal.Handler
	Dashboard    dashboard.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

// SetupRoutes mounts every handler under /v1. Lead child resources register
// their full /leads/{lead_id}/... patterns next to the /leads subrouter.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Organization.Router(routerGroup)
		r.DomainHandlers.Contact.Router(routerGroup)
		r.DomainHandlers.Lead.Router(routerGroup)
		r.DomainHandlers.EventDetail.Router(routerGroup)
		r.DomainHandlers.Activity.Router(routerGroup)
		r.DomainHandlers.Proposal.Router(routerGroup)
		r.DomainHandlers.Dashboard.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
