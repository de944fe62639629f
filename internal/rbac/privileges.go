// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package rbac

import "strings"

// Actions shared by every CRUD module.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Module identifiers.
const (
	ModuleDashboard          = "dashboard"
	ModuleShipmentOrder      = "shipment_order"
	ModuleCarrier            = "carrier"
	ModuleCompany            = "company"
	ModuleCustomer           = "customer"
	ModuleSupplier           = "supplier"
	ModulePort               = "port"
	ModuleContainerType      = "container_type"
	ModuleContainerThreshold = "container_threshold"
	ModuleContainerPriority  = "container_priority"
	ModuleUser               = "user"
	ModuleRole               = "role"
	ModuleAdmin              = "admin"
)

// Privileges that are not derived from a CRUD action.
const (
	PrivDashboardView  = "dashboard.view"
	PrivShipmentImport = "shipment_order.import"
	PrivShipmentExport = "shipment_order.export"
	PrivAdminAccess    = "admin.access"
)

// Module describes one navigable area of the console.
type Module struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// Resource is the backend collection behind the module, empty for
	// modules that are not CRUD screens.
	Resource string `json:"resource,omitempty"`
	// Privilege is required to enter the module.
	Privilege string `json:"privilege"`
	Group     string `json:"group"`
}

// Modules is the module registry in navigation order.
var Modules = []Module{
	{ID: ModuleDashboard, Label: "Dashboard", Privilege: PrivDashboardView, Group: "general"},
	{ID: ModuleShipmentOrder, Label: "Shipment Orders", Resource: "shipment-orders", Privilege: Privilege(ModuleShipmentOrder, ActionView), Group: "booking"},
	{ID: ModuleCarrier, Label: "Carriers", Resource: "carriers", Privilege: Privilege(ModuleCarrier, ActionView), Group: "master_data"},
	{ID: ModuleCompany, Label: "Companies", Resource: "companies", Privilege: Privilege(ModuleCompany, ActionView), Group: "master_data"},
	{ID: ModuleCustomer, Label: "Customers", Resource: "customers", Privilege: Privilege(ModuleCustomer, ActionView), Group: "master_data"},
	{ID: ModuleSupplier, Label: "Suppliers", Resource: "suppliers", Privilege: Privilege(ModuleSupplier, ActionView), Group: "master_data"},
	{ID: ModulePort, Label: "Ports", Resource: "ports", Privilege: Privilege(ModulePort, ActionView), Group: "master_data"},
	{ID: ModuleContainerType, Label: "Container Types", Resource: "container-types", Privilege: Privilege(ModuleContainerType, ActionView), Group: "master_data"},
	{ID: ModuleContainerThreshold, Label: "Container Thresholds", Resource: "container-thresholds", Privilege: Privilege(ModuleContainerThreshold, ActionView), Group: "master_data"},
	{ID: ModuleContainerPriority, Label: "Container Priorities", Resource: "container-priorities", Privilege: Privilege(ModuleContainerPriority, ActionView), Group: "master_data"},
	{ID: ModuleUser, Label: "Users", Resource: "users", Privilege: Privilege(ModuleUser, ActionView), Group: "administration"},
	{ID: ModuleRole, Label: "Roles", Resource: "roles", Privilege: Privilege(ModuleRole, ActionView), Group: "administration"},
	{ID: ModuleAdmin, Label: "Administration", Privilege: PrivAdminAccess, Group: "administration"},
}

// Privilege joins a module ID and an action.
func Privilege(module, action string) string {
	return module + "." + action
}

// SplitPrivilege splits p at its last dot. ok is false when p has no
// module or no action part.
func SplitPrivilege(p string) (module, action string, ok bool) {
	i := strings.LastIndexByte(p, '.')
	if i <= 0 || i == len(p)-1 {
		return "", "", false
	}
	return p[:i], p[i+1:], true
}

// FindModule looks a module up by ID.
func FindModule(id string) (Module, bool) {
	for _, m := range Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// ModuleForResource returns the module behind a backend collection name.
func ModuleForResource(resource string) (Module, bool) {
	for _, m := range Modules {
		if m.Resource != "" && m.Resource == resource {
			return m, true
		}
	}
	return Module{}, false
}

// ResourcePrivilege is the privilege a CRUD action on resource needs.
func ResourcePrivilege(resource, action string) (string, bool) {
	m, ok := ModuleForResource(resource)
	if !ok {
		return "", false
	}
	return Privilege(m.ID, action), true
}

// AllPrivileges enumerates every privilege the console knows about.
func AllPrivileges() []string {
	out := make([]string, 0, len(Modules)*4+3)
	for _, m := range Modules {
		if m.Resource == "" {
			continue
		}
		for _, a := range []string{ActionView, ActionCreate, ActionEdit, ActionDelete} {
			out = append(out, Privilege(m.ID, a))
		}
	}
	return append(out, PrivShipmentImport, PrivShipmentExport, PrivAdminAccess, PrivDashboardView)
}
