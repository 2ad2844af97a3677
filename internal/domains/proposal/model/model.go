package model

import (
	"crm/shared/model"
	"fmt"
	"time"
)

const (
	TableName  = "proposals"
	EntityName = "proposal"

	FieldID         = "id"
	FieldLeadID     = "lead_id"
	FieldVersion    = "version"
	FieldNumber     = "number"
	FieldTotal      = "total"
	FieldValidUntil = "valid_until"
	FieldFileURL    = "file_url"

	ContentType = "application/pdf"
)

type Proposal struct {
	ID                   string    `db:"id"`
	LeadID               string    `db:"lead_id"`
	Version              int       `db:"version"`
	Number               string    `db:"number"`
	Currency             string    `db:"currency"`
	Subtotal             float64   `db:"subtotal"`
	ServiceChargePercent float64   `db:"service_charge_percent"`
	ServiceCharge        float64   `db:"service_charge"`
	TaxPercent           float64   `db:"tax_percent"`
	Tax                  float64   `db:"tax"`
	Total                float64   `db:"total"`
	FileURL              string    `db:"file_url"`
	ValidUntil           time.Time `db:"valid_until"`
	model.Metadata
}

// Number formats a proposal number as <prefix>-<YYYYMMDD>-<version>.
func Number(prefix string, issued time.Time, version int) string {
	return fmt.Sprintf("%s-%s-%02d", prefix, issued.Format("20060102"), version)
}

// FileName is the download name of the rendered PDF.
func FileName(number string) string {
	return number + ".pdf"
}

// ObjectName is the storage key of a stored proposal. Numbers repeat when
// generates race or the latest version is deleted, ids never do.
func ObjectName(number, id string) string {
	return number + "-" + id + ".pdf"
}
