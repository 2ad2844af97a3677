package dto

import (
	"crm/internal/domains/proposal/model"
	gDto "crm/shared/dto"
	"crm/shared/timezone"
)

type ProposalResponse struct {
	ID                   string  `json:"id"`
	LeadID               string  `json:"lead_id"`
	Version              int     `json:"version"`
	Number               string  `json:"number"`
	Currency             string  `json:"currency"`
	Subtotal             float64 `json:"subtotal"`
	ServiceChargePercent float64 `json:"service_charge_percent"`
	ServiceCharge        float64 `json:"service_charge"`
	TaxPercent           float64 `json:"tax_percent"`
	Tax                  float64 `json:"tax"`
	Total                float64 `json:"total"`
	FileURL              string  `json:"file_url"`
	ValidUntil           string  `json:"valid_until"`
	gDto.Metadata
}

func (r *ProposalResponse) FromModel(model model.Proposal) {
	r.ID = model.ID
	r.LeadID = model.LeadID
	r.Version = model.Version
	r.Number = model.Number
	r.Currency = model.Currency
	r.Subtotal = model.Subtotal
	r.ServiceChargePercent = model.ServiceChargePercent
	r.ServiceCharge = model.ServiceCharge
	r.TaxPercent = model.TaxPercent
	r.Tax = model.Tax
	r.Total = model.Total
	r.FileURL = model.FileURL
	r.ValidUntil = timezone.FormatDate(model.ValidUntil)
	r.Metadata.FromModel(model.Metadata)
}

type GetProposalsResponse struct {
	Proposals []ProposalResponse `json:"proposals"`
}

func (r *GetProposalsResponse) FromModels(models []model.Proposal) {
	r.Proposals = make([]ProposalResponse, len(models))
	for i, mod := range models {
		r.Proposals[i].FromModel(mod)
	}
}

// File is a rendered proposal streamed to the client.
type File struct {
	Name    string
	Content []byte
}
