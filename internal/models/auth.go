// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package models

// User is a console user as known to the backend.
type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	FullName    string   `json:"full_name,omitempty"`
	RoleID      int64    `json:"role_id,omitempty"`
	Role        string   `json:"role,omitempty"`
	IsSuperuser bool     `json:"is_superuser"`
	Privileges  []string `json:"privileges,omitempty"`
	IsActive    bool     `json:"is_active"`
	// Password is write-only; the backend never returns it.
	Password string `json:"password,omitempty"`
	Audit
}

func (u User) EntityID() int64 { return u.ID }
func (u User) Active() bool    { return u.IsActive }

// Role groups privileges.
type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Privileges  []string `json:"privileges"`
	IsActive    bool     `json:"is_active"`
	Audit
}

func (r Role) EntityID() int64 { return r.ID }
func (r Role) Active() bool    { return r.IsActive }

// LoginRequest is sent to the backend login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the backend's bearer and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// LoginResponse is the backend login result.
type LoginResponse struct {
	TokenPair
	User *User `json:"user,omitempty"`
}

// RefreshRequest is sent to the backend refresh endpoint.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UploadResult is the backend's summary of a shipment spreadsheet upload.
type UploadResult struct {
	Created int           `json:"created"`
	Failed  int           `json:"failed"`
	Errors  []UploadError `json:"errors,omitempty"`
}

// UploadError describes a rejected spreadsheet row.
type UploadError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
