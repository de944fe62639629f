// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package forms

import (
	"strings"

	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/validation"
)

// Form is the input for creating or updating a T.
type Form[T any] interface {
	// Check returns nil when every field and cross-field rule passes.
	Check() *validation.RequestValidationError
	ToModel() *T
}

// check runs the tag rules, then extra, and folds both into one result.
func check(form interface{}, extra func(*validation.RequestValidationError)) *validation.RequestValidationError {
	verr := validation.ValidateStruct(form)
	if verr == nil {
		verr = &validation.RequestValidationError{}
	}
	if extra != nil {
		extra(verr)
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func messages(verr *validation.RequestValidationError) map[string]string {
	if verr.Empty() {
		return nil
	}
	return verr.FieldMessages()
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// CarrierForm creates or updates a carrier.
type CarrierForm struct {
	Name         string `json:"name" validate:"required,max=120"`
	Code         string `json:"code" validate:"required,scac"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email,max=254"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,max=40"`
	IsActive     *bool  `json:"is_active"`
}

func (f *CarrierForm) Check() *validation.RequestValidationError { return check(f, nil) }
func (f *CarrierForm) Validate() map[string]string              { return messages(f.Check()) }

func (f *CarrierForm) ToModel() *models.Carrier {
	return &models.Carrier{
		Name:         strings.TrimSpace(f.Name),
		Code:         upper(f.Code),
		ContactEmail: strings.TrimSpace(f.ContactEmail),
		ContactPhone: strings.TrimSpace(f.ContactPhone),
		IsActive:     activeOrDefault(f.IsActive),
	}
}

// CompanyForm creates or updates a company.
type CompanyForm struct {
	Name     string `json:"name" validate:"required,max=120"`
	Code     string `json:"code" validate:"required,max=20"`
	Address  string `json:"address" validate:"omitempty,max=255"`
	Country  string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	IsActive *bool  `json:"is_active"`
}

func (f *CompanyForm) Check() *validation.RequestValidationError { return check(f, nil) }
func (f *CompanyForm) Validate() map[string]string              { return messages(f.Check()) }

func (f *CompanyForm) ToModel() *models.Company {
	return &models.Company{
		Name:     strings.TrimSpace(f.Name),
		Code:     upper(f.Code),
		Address:  strings.TrimSpace(f.Address),
		Country:  upper(f.Country),
		IsActive: activeOrDefault(f.IsActive),
	}
}

// CustomerForm creates or updates a customer.
type CustomerForm struct {
	Name      string `json:"name" validate:"required,max=120"`
	Code      string `json:"code" validate:"required,max=20"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Phone     string `json:"phone" validate:"omitempty,max=40"`
	CompanyID int64  `json:"company_id" validate:"required,gt=0"`
	IsActive  *bool  `json:"is_active"`
}

func (f *CustomerForm) Check() *validation.RequestValidationError { return check(f, nil) }
func (f *CustomerForm) Validate() map[string]string              { return messages(f.Check()) }

func (f *CustomerForm) ToModel() *models.Customer {
	return &models.Customer{
		Name:      strings.TrimSpace(f.Name),
		Code:      upper(f.Code),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		CompanyID: f.CompanyID,
		IsActive:  activeOrDefault(f.IsActive),
	}
}

// SupplierForm creates or updates a supplier.
type SupplierForm struct {
	Name     string `json:"name" validate:"required,max=120"`
	Code     string `json:"code" validate:"required,max=20"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Address  string `json:"address" validate:"omitempty,max=255"`
	Country  string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	IsActive *bool  `json:"is_active"`
}

func (f *SupplierForm) Check() *validation.RequestValidationError { return check(f, nil) }
func (f *SupplierForm) Validate() map[string]string              { return messages(f.Check()) }

func (f *SupplierForm) ToModel() *models.Supplier {
	return &models.Supplier{
		Name:     strings.TrimSpace(f.Name),
		Code:     upper(f.Code),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		Address:  strings.TrimSpace(f.Address),
		Country:  upper(f.Country),
		IsActive: activeOrDefault(f.IsActive),
	}
}

// PortForm creates or updates a port.
type PortForm struct {
	Name     string `json:"name" validate:"required,max=120"`
	Code     string `json:"code" validate:"required,locode"`
	Country  string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Kind     string `json:"kind" validate:"required,port_kind"`
	IsActive *bool  `json:"is_active"`
}

func (f *PortForm) Check() *validation.RequestValidationError {
	return check(f, func(verr *validation.RequestValidationError) {
		// The first two letters of a UN/LOCODE are the country.
		if f.Country != "" && len(f.Code) == 5 && !strings.EqualFold(f.Code[:2], f.Country) {
			verr.Add("country", "Country must match the first two letters of the code")
		}
	})
}
func (f *PortForm) Validate() map[string]string { return messages(f.Check()) }

func (f *PortForm) ToModel() *models.Port {
	return &models.Port{
		Name:     strings.TrimSpace(f.Name),
		Code:     upper(f.Code),
		Country:  upper(f.Country),
		Kind:     models.PortKind(upper(f.Kind)),
		IsActive: activeOrDefault(f.IsActive),
	}
}

// ContainerTypeForm creates or updates a container type.
type ContainerTypeForm struct {
	Code        string `json:"code" validate:"required,container_code"`
	Description string `json:"description" validate:"omitempty,max=255"`
	TEU         int    `json:"teu" validate:"required,oneof=1 2"`
	MaxWeightKg int    `json:"max_weight_kg" validate:"gte=0,lte=40000"`
	IsActive    *bool  `json:"is_active"`
}

func (f *ContainerTypeForm) Check() *validation.RequestValidationError { return check(f, nil) }
func (f *ContainerTypeForm) Validate() map[string]string              { return messages(f.Check()) }

func (f *ContainerTypeForm) ToModel() *models.ContainerType {
	return &models.ContainerType{
		Code:        upper(f.Code),
		Description: strings.TrimSpace(f.Description),
		TEU:         f.TEU,
		MaxWeightKg: f.MaxWeightKg,
		IsActive:    activeOrDefault(f.IsActive),
	}
}

// ContainerThresholdForm creates or updates a container threshold.
type ContainerThresholdForm struct {
	ContainerTypeID int64 `json:"container_type_id" validate:"required,gt=0"`
	PortID          int64 `json:"port_id" validate:"required,gt=0"`
	MinQuantity     int   `json:"min_quantity" validate:"gte=0"`
	MaxQuantity     int   `json:"max_quantity" validate:"gte=0"`
	IsActive        *bool `json:"is_active"`
}

func (f *ContainerThresholdForm) Check() *validation.RequestValidationError {
	return check(f, func(verr *validation.RequestValidationError) {
		if f.MinQuantity > f.MaxQuantity {
			verr.Add("max_quantity", "Maximum quantity must not be below the minimum")
		}
	})
}
func (f *ContainerThresholdForm) Validate() map[string]string { return messages(f.Check()) }

func (f *ContainerThresholdForm) ToModel() *models.ContainerThreshold {
	return &models.ContainerThreshold{
		ContainerTypeID: f.ContainerTypeID,
		PortID:          f.PortID,
		MinQuantity:     f.MinQuantity,
		MaxQuantity:     f.MaxQuantity,
		IsActive:        activeOrDefault(f.IsActive),
	}
}

// ContainerPriorityForm creates or updates a container priority.
type ContainerPriorityForm struct {
	ContainerTypeID int64 `json:"container_type_id" validate:"required,gt=0"`
	CarrierID       int64 `json:"carrier_id" validate:"required,gt=0"`
	Priority        int   `json:"priority" validate:"required,min=1,max=10"`
	IsActive        *bool `json:"is_active"`
}

func (f *ContainerPriorityForm) Check() *validation.RequestValidationError { return check(f, nil) }
func (f *ContainerPriorityForm) Validate() map[string]string              { return messages(f.Check()) }

func (f *ContainerPriorityForm) ToModel() *models.ContainerPriority {
	return &models.ContainerPriority{
		ContainerTypeID: f.ContainerTypeID,
		CarrierID:       f.CarrierID,
		Priority:        f.Priority,
		IsActive:        activeOrDefault(f.IsActive),
	}
}

// UserForm creates or updates a console user. Password is required only
// when creating.
type UserForm struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email,max=254"`
	FullName    string `json:"full_name" validate:"omitempty,max=120"`
	RoleID      int64  `json:"role_id" validate:"required,gt=0"`
	IsSuperuser bool   `json:"is_superuser"`
	Password    string `json:"password" validate:"omitempty,min=8,max=128"`
	IsActive    *bool  `json:"is_active"`

	creating bool
}

// ForCreate marks the form as a create so the password becomes mandatory.
func (f *UserForm) ForCreate() *UserForm {
	f.creating = true
	return f
}

func (f *UserForm) Check() *validation.RequestValidationError {
	return check(f, func(verr *validation.RequestValidationError) {
		if strings.ContainsAny(f.Username, " \t\n") {
			verr.Add("username", "Username must not contain spaces")
		}
		if f.creating && f.Password == "" {
			verr.Add("password", "Password is required")
		}
	})
}
func (f *UserForm) Validate() map[string]string { return messages(f.Check()) }

func (f *UserForm) ToModel() *models.User {
	return &models.User{
		Username:    strings.TrimSpace(f.Username),
		Email:       strings.TrimSpace(f.Email),
		FullName:    strings.TrimSpace(f.FullName),
		RoleID:      f.RoleID,
		IsSuperuser: f.IsSuperuser,
		Password:    f.Password,
		IsActive:    activeOrDefault(f.IsActive),
	}
}

// RoleForm creates or updates a role.
type RoleForm struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"omitempty,max=255"`
	Privileges  []string `json:"privileges" validate:"dive,required,contains=."`
	IsActive    *bool    `json:"is_active"`
}

func (f *RoleForm) Check() *validation.RequestValidationError { return check(f, nil) }
func (f *RoleForm) Validate() map[string]string              { return messages(f.Check()) }

func (f *RoleForm) ToModel() *models.Role {
	privs := make([]string, 0, len(f.Privileges))
	for _, p := range f.Privileges {
		privs = append(privs, strings.TrimSpace(p))
	}
	return &models.Role{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Privileges:  privs,
		IsActive:    activeOrDefault(f.IsActive),
	}
}
