package dto

import (
	"net/url"
	"strconv"
	"strings"

	"crm/internal/domains/user/model"
	"crm/shared"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/failure"
	gModel "crm/shared/model"
	"crm/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email    string  `json:"email"               validate:"required,email"`
	Password string  `json:"password"            validate:"required,min=8"`
	Role     string  `json:"role,omitempty"      validate:"omitempty,oneof=admin user"`
	FullName string  `json:"full_name"           validate:"required,max=100"`
	JobTitle *string `json:"job_title,omitempty" validate:"omitempty,max=100"`
	Phone    *string `json:"phone,omitempty"     validate:"omitempty,max=30"`
}

func (r *CreateUserRequest) ToModel(actor, hashedPassword string) model.User {
	role := r.Role
	if role == "" {
		role = constant.RoleUser
	}

	return model.User{
		ID:       uuid.NewString(),
		Email:    r.Email,
		Password: hashedPassword,
		Role:     role,
		FullName: r.FullName,
		JobTitle: r.JobTitle,
		Phone:    r.Phone,
		Active:   true,
		Metadata: gModel.NewMetadata(actor, timezone.Now()),
	}
}

type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	FullName  string  `json:"full_name"`
	JobTitle  *string `json:"job_title,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	LastLogin *string `json:"last_login,omitempty"`
	Active    bool    `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Role = model.Role
	r.FullName = model.FullName
	r.JobTitle = model.JobTitle
	r.Phone = model.Phone
	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, constant.DateFormat)
		r.LastLogin = &lastLogin
	}
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type UpdateUserRequest struct {
	Role     string  `db:"role"      json:"role,omitempty"      validate:"omitempty,oneof=admin user"`
	FullName string  `db:"full_name" json:"full_name,omitempty" validate:"omitempty,max=100"`
	JobTitle *string `db:"job_title" json:"job_title,omitempty" validate:"omitempty,max=100"`
	Phone    *string `db:"phone"     json:"phone,omitempty"     validate:"omitempty,max=30"`
	Active   *bool   `db:"active"    json:"active,omitempty"`
}

// IsEmpty reports whether the request carries no change.
func (r UpdateUserRequest) IsEmpty() bool {
	return r.Role == "" && r.FullName == "" && r.JobTitle == nil && r.Phone == nil && r.Active == nil
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

// ListFilter builds the user list filter from the query string. The search
// term matches either the full name or the email.
func ListFilter(query url.Values) (gDto.FilterGroup, error) {
	filter := gDto.NewFilterGroup()

	role := query.Get(model.FieldRole)
	if role != "" && role != constant.RoleAdmin && role != constant.RoleUser {
		return filter, failure.BadRequestFromString("role must be one of admin user")
	}

	filter.AddIfNotEmpty(model.FieldRole, gDto.FilterOperatorEq, model.TableName, role)
	filter.AddIfNotEmpty(model.FieldEmail, gDto.FilterOperatorEq, model.TableName, strings.ToLower(query.Get(model.FieldEmail)))

	if raw := query.Get(model.FieldActive); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, failure.BadRequestFromString("active must be a boolean")
		}

		filter.Add(gDto.Filter{Field: model.FieldActive, Operator: gDto.FilterOperatorEq, Value: active, Table: model.TableName})
	}

	if search := query.Get(constant.RequestParamSearch); search != "" {
		anyOf := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorOr}
		anyOf.Add(gDto.Filter{ArgName: "search_name", Field: model.FieldFullName, Operator: gDto.FilterOperatorLike, Value: search, Table: model.TableName})
		anyOf.Add(gDto.Filter{ArgName: "search_email", Field: model.FieldEmail, Operator: gDto.FilterOperatorLike, Value: search, Table: model.TableName})

		filter.AddGroup(anyOf)
	}

	return filter, nil
}
