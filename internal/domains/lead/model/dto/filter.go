package dto

import (
	"crm/internal/domains/lead/model"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	"crm/shared/timezone"
	"net/url"
)

// ListFilter builds the lead list filter from the query string. from and to
// bound the arrival date, both inclusive.
func ListFilter(query url.Values) (gDto.FilterGroup, error) {
	filter := gDto.NewFilterGroup()

	status := query.Get(model.FieldStatus)
	if status != "" && !model.Status(status).IsValid() {
		return filter, failure.BadRequestFromString("status must be one of tentative confirmed lost")
	}

	filter.AddIfNotEmpty(model.FieldStatus, gDto.FilterOperatorEq, model.TableName, status)
	filter.AddIfNotEmpty(model.FieldOwnerID, gDto.FilterOperatorEq, model.TableName, query.Get(model.FieldOwnerID))
	filter.AddIfNotEmpty(model.FieldEventType, gDto.FilterOperatorEq, model.TableName, query.Get(model.FieldEventType))
	filter.AddIfNotEmpty(model.FieldContactID, gDto.FilterOperatorEq, model.TableName, query.Get(model.FieldContactID))
	filter.AddIfNotEmpty(model.FieldOrganizationID, gDto.FilterOperatorEq, model.TableName, query.Get(model.FieldOrganizationID))
	filter.AddIfNotEmpty(model.FieldEventName, gDto.FilterOperatorLike, model.TableName, query.Get(constant.RequestParamSearch))

	bounds := []struct {
		param    string
		operator string
	}{
		{constant.RequestParamDateFrom, gDto.FilterOperatorGreaterEq},
		{constant.RequestParamDateTo, gDto.FilterOperatorLessEq},
	}

	for _, bound := range bounds {
		value := query.Get(bound.param)
		if value == "" {
			continue
		}

		date, err := timezone.ParseDate(value)
		if err != nil {
			return filter, failure.BadRequestFromString(bound.param + " must match the format 2006-01-02")
		}

		filter.Add(gDto.Filter{
			ArgName:  "arrival_" + bound.param,
			Field:    model.FieldArrivalDate,
			Operator: bound.operator,
			Value:    date,
			Table:    model.TableName,
		})
	}

	return filter, nil
}
