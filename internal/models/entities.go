// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package models

import "time"

// Audit is embedded in every entity. The backend fills it in.
type Audit struct {
	CreatedBy  string     `json:"created_by,omitempty"`
	ModifiedBy string     `json:"modified_by,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// Entity is implemented by every DTO with an ID and an active flag.
type Entity interface {
	EntityID() int64
	Active() bool
}

// Carrier is a shipping line.
type Carrier struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"` // SCAC
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	IsActive     bool   `json:"is_active"`
	Audit
}

// Company is the legal entity customers belong to.
type Company struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Address  string `json:"address,omitempty"`
	Country  string `json:"country,omitempty"`
	IsActive bool   `json:"is_active"`
	Audit
}

// Customer books shipment orders on behalf of a Company.
type Customer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CompanyID int64  `json:"company_id"`
	IsActive  bool   `json:"is_active"`
	Audit
}

// Supplier ships the goods.
type Supplier struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Country  string `json:"country,omitempty"`
	IsActive bool   `json:"is_active"`
	Audit
}

// PortKind distinguishes ports of loading from ports of discharge.
type PortKind string

const (
	PortKindPOL PortKind = "POL"
	PortKindPOD PortKind = "POD"
)

// Port is a POL or POD identified by its UN/LOCODE.
type Port struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Code     string   `json:"code"`
	Country  string   `json:"country,omitempty"`
	Kind     PortKind `json:"kind"`
	IsActive bool     `json:"is_active"`
	Audit
}

// ContainerType is an ISO container size/type such as 20GP or 40HC.
type ContainerType struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	TEU         int    `json:"teu"`
	MaxWeightKg int    `json:"max_weight_kg,omitempty"`
	IsActive    bool   `json:"is_active"`
	Audit
}

// ContainerThreshold bounds how many containers of a type a port accepts.
type ContainerThreshold struct {
	ID              int64 `json:"id"`
	ContainerTypeID int64 `json:"container_type_id"`
	PortID          int64 `json:"port_id"`
	MinQuantity     int   `json:"min_quantity"`
	MaxQuantity     int   `json:"max_quantity"`
	IsActive        bool  `json:"is_active"`
	Audit
}

// ContainerPriority ranks carriers for a container type. 1 is the highest.
type ContainerPriority struct {
	ID              int64 `json:"id"`
	ContainerTypeID int64 `json:"container_type_id"`
	CarrierID       int64 `json:"carrier_id"`
	Priority        int   `json:"priority"`
	IsActive        bool  `json:"is_active"`
	Audit
}

func (c Carrier) EntityID() int64            { return c.ID }
func (c Carrier) Active() bool               { return c.IsActive }
func (c Company) EntityID() int64            { return c.ID }
func (c Company) Active() bool               { return c.IsActive }
func (c Customer) EntityID() int64           { return c.ID }
func (c Customer) Active() bool              { return c.IsActive }
func (s Supplier) EntityID() int64           { return s.ID }
func (s Supplier) Active() bool              { return s.IsActive }
func (p Port) EntityID() int64               { return p.ID }
func (p Port) Active() bool                  { return p.IsActive }
func (c ContainerType) EntityID() int64      { return c.ID }
func (c ContainerType) Active() bool         { return c.IsActive }
func (c ContainerThreshold) EntityID() int64 { return c.ID }
func (c ContainerThreshold) Active() bool    { return c.IsActive }
func (c ContainerPriority) EntityID() int64  { return c.ID }
func (c ContainerPriority) Active() bool     { return c.IsActive }
