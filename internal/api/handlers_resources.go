// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/cache"
	"github.com/tomtom215/vendorbooking/internal/forms"
	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/rbac"
	"github.com/tomtom215/vendorbooking/internal/validation"
)

// resourceAPI serves CRUD for one backend collection. F is the pointer
// form type that validates and converts request bodies into T.
type resourceAPI[T any, F forms.Form[T]] struct {
	h    *Handler
	name string

	// pick selects the collection from the session's services.
	pick func(*backend.Services) *backend.Resource[T]

	newForm func() F

	// onCreate and prepare are optional. onCreate adjusts a form before a
	// create; prepare runs before every submit with backend access.
	onCreate func(F)
	prepare  func(ctx context.Context, svc *backend.Services, form F) error
}

// mount registers the collection routes, each gated on the module
// privilege for its action. extra adds collection-specific routes before
// the {id} routes.
func (a *resourceAPI[T, F]) mount(r chi.Router, gate *rbac.Middleware, extra func(chi.Router)) {
	require := func(action string) func(http.Handler) http.Handler {
		priv, ok := rbac.ResourcePrivilege(a.name, action)
		if !ok {
			// Collections without a module are admin only.
			return gate.RequireAdmin()
		}
		return gate.RequirePrivilege(priv)
	}

	r.Route("/"+a.name, func(r chi.Router) {
		if extra != nil {
			extra(r)
		}
		r.With(require(rbac.ActionView)).Get("/", a.list)
		r.With(require(rbac.ActionCreate)).Post("/", a.create)
		r.With(require(rbac.ActionView)).Get("/{id}", a.get)
		r.With(require(rbac.ActionEdit)).Put("/{id}", a.update)
		r.With(require(rbac.ActionEdit)).Patch("/{id}/active", a.setActive)
		r.With(require(rbac.ActionDelete)).Delete("/{id}", a.delete)
	})
}

// list returns one page of the collection.
// GET /api/v1/{resource}?page=&page_size=&search=&sort=&order=&is_active=
func (a *resourceAPI[T, F]) list(w http.ResponseWriter, r *http.Request) {
	svc, session, err := a.h.services(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}

	params := models.ListParamsFromQuery(r.URL.Query())
	key := cache.Key(a.name, session.Username, "list", params)
	page, err := cache.GetOrLoad(a.h.cache, key, func() (*models.Page[T], error) {
		return a.pick(svc).List(r.Context(), params)
	})
	if err != nil {
		a.h.fail(w, r, err)
		return
	}

	items := page.Items
	if items == nil {
		items = []T{}
	}
	NewResponseWriter(w, r).SuccessWithPagination(items, paginationOf(page))
}

// get returns one record.
// GET /api/v1/{resource}/{id}
func (a *resourceAPI[T, F]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	svc, session, err := a.h.services(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}

	key := cache.Key(a.name, session.Username, "get", id)
	item, err := cache.GetOrLoad(a.h.cache, key, func() (*T, error) {
		return a.pick(svc).Get(r.Context(), id)
	})
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	WriteSuccess(w, r, item)
}

// create validates the body and creates a record.
// POST /api/v1/{resource}
func (a *resourceAPI[T, F]) create(w http.ResponseWriter, r *http.Request) {
	a.submit(w, r, 0)
}

// update validates the body and replaces a record.
// PUT /api/v1/{resource}/{id}
func (a *resourceAPI[T, F]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	a.submit(w, r, id)
}

func (a *resourceAPI[T, F]) submit(w http.ResponseWriter, r *http.Request, id int64) {
	svc, session, err := a.h.services(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}

	form := a.newForm()
	if err := decodeJSON(w, r, form); err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	action := rbac.ActionEdit
	send := func(ctx context.Context, m *T) (*T, error) { return a.pick(svc).Update(ctx, id, m) }
	if id == 0 {
		action = rbac.ActionCreate
		send = func(ctx context.Context, m *T) (*T, error) { return a.pick(svc).Create(ctx, m) }
		if a.onCreate != nil {
			a.onCreate(form)
		}
	}
	if a.prepare != nil {
		if err := a.prepare(r.Context(), svc, form); err != nil {
			a.h.fail(w, r, err)
			return
		}
	}

	name := a.name + "." + action
	out, err := forms.Submit(r.Context(), a.h.guard, a.h.invalidator(), forms.Submission[T]{
		Key:      forms.Key(session.ID, name, id),
		Name:     name,
		Resource: a.name,
		Form:     form,
		Send:     send,
	})
	if err != nil {
		a.h.fail(w, r, err)
		return
	}

	if id == 0 {
		a.h.audit.RecordChanged(session.Username, a.name, rbac.ActionCreate, entityID(out))
		NewResponseWriter(w, r).Created(out)
		return
	}
	a.h.audit.RecordChanged(session.Username, a.name, rbac.ActionEdit, id)
	WriteSuccess(w, r, out)
}

func entityID(v interface{}) int64 {
	if e, ok := v.(interface{ EntityID() int64 }); ok {
		return e.EntityID()
	}
	return 0
}

// setActive soft-deletes or reactivates a record.
// PATCH /api/v1/{resource}/{id}/active  {"is_active": false}
func (a *resourceAPI[T, F]) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	svc, session, err := a.h.services(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}

	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}
	if body.IsActive == nil {
		verr := &validation.RequestValidationError{}
		verr.Add("is_active", "Is Active is required")
		a.h.fail(w, r, verr)
		return
	}

	name := a.name + ".active"
	var out *T
	err = forms.Run(r.Context(), a.h.guard, a.h.invalidator(), forms.Key(session.ID, name, id), name, a.name,
		func(ctx context.Context) error {
			var err error
			out, err = a.pick(svc).SetActive(ctx, id, *body.IsActive)
			return err
		})
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	action := "activate"
	if !*body.IsActive {
		action = "deactivate"
	}
	a.h.audit.RecordChanged(session.Username, a.name, action, id)
	WriteSuccess(w, r, out)
}

// delete removes a record.
// DELETE /api/v1/{resource}/{id}
func (a *resourceAPI[T, F]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	svc, session, err := a.h.services(r)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}

	name := a.name + "." + rbac.ActionDelete
	err = forms.Run(r.Context(), a.h.guard, a.h.invalidator(), forms.Key(session.ID, name, id), name, a.name,
		func(ctx context.Context) error { return a.pick(svc).Delete(ctx, id) })
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	a.h.audit.RecordChanged(session.Username, a.name, rbac.ActionDelete, id)
	NewResponseWriter(w, r).NoContent()
}

func paginationOf[T any](p *models.Page[T]) *PaginationMeta {
	return &PaginationMeta{
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(),
		HasMore:    p.HasMore(),
	}
}

// preparePorts looks up the selected POL and POD so the form can check
// their kinds. Missing ports are reported as field errors.
func preparePorts(ctx context.Context, svc *backend.Services, form *forms.ShipmentOrderForm) error {
	verr := &validation.RequestValidationError{}
	kinds := make([]models.PortKind, 2)
	for i, sel := range []struct {
		field string
		id    int64
	}{{"pol_id", form.POLID}, {"pod_id", form.PODID}} {
		if sel.id <= 0 {
			continue
		}
		port, err := svc.Ports.Get(ctx, sel.id)
		if backend.Classify(err) == backend.KindNotFound {
			verr.Add(sel.field, "Selected port does not exist")
			continue
		}
		if err != nil {
			return fmt.Errorf("look up %s: %w", sel.field, err)
		}
		kinds[i] = port.Kind
	}
	if !verr.Empty() {
		return verr
	}
	form.SetPortKinds(kinds[0], kinds[1])
	return nil
}

// mountResources registers every master data and shipment collection.
// exportLimit throttles the workbook downloads.
func (h *Handler) mountResources(r chi.Router, gate *rbac.Middleware, exportLimit func(http.Handler) http.Handler) {
	(&resourceAPI[models.Carrier, *forms.CarrierForm]{
		h: h, name: backend.ResourceCarriers,
		pick:    func(s *backend.Services) *backend.Resource[models.Carrier] { return s.Carriers },
		newForm: func() *forms.CarrierForm { return &forms.CarrierForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.Company, *forms.CompanyForm]{
		h: h, name: backend.ResourceCompanies,
		pick:    func(s *backend.Services) *backend.Resource[models.Company] { return s.Companies },
		newForm: func() *forms.CompanyForm { return &forms.CompanyForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.Customer, *forms.CustomerForm]{
		h: h, name: backend.ResourceCustomers,
		pick:    func(s *backend.Services) *backend.Resource[models.Customer] { return s.Customers },
		newForm: func() *forms.CustomerForm { return &forms.CustomerForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.Supplier, *forms.SupplierForm]{
		h: h, name: backend.ResourceSuppliers,
		pick:    func(s *backend.Services) *backend.Resource[models.Supplier] { return s.Suppliers },
		newForm: func() *forms.SupplierForm { return &forms.SupplierForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.Port, *forms.PortForm]{
		h: h, name: backend.ResourcePorts,
		pick:    func(s *backend.Services) *backend.Resource[models.Port] { return s.Ports },
		newForm: func() *forms.PortForm { return &forms.PortForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.ContainerType, *forms.ContainerTypeForm]{
		h: h, name: backend.ResourceContainerTypes,
		pick:    func(s *backend.Services) *backend.Resource[models.ContainerType] { return s.ContainerTypes },
		newForm: func() *forms.ContainerTypeForm { return &forms.ContainerTypeForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.ContainerThreshold, *forms.ContainerThresholdForm]{
		h: h, name: backend.ResourceContainerThresholds,
		pick:    func(s *backend.Services) *backend.Resource[models.ContainerThreshold] { return s.ContainerThresholds },
		newForm: func() *forms.ContainerThresholdForm { return &forms.ContainerThresholdForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.ContainerPriority, *forms.ContainerPriorityForm]{
		h: h, name: backend.ResourceContainerPriorities,
		pick:    func(s *backend.Services) *backend.Resource[models.ContainerPriority] { return s.ContainerPriorities },
		newForm: func() *forms.ContainerPriorityForm { return &forms.ContainerPriorityForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.User, *forms.UserForm]{
		h: h, name: backend.ResourceUsers,
		pick:     func(s *backend.Services) *backend.Resource[models.User] { return s.Users },
		newForm:  func() *forms.UserForm { return &forms.UserForm{} },
		onCreate: func(f *forms.UserForm) { f.ForCreate() },
	}).mount(r, gate, nil)

	(&resourceAPI[models.Role, *forms.RoleForm]{
		h: h, name: backend.ResourceRoles,
		pick:    func(s *backend.Services) *backend.Resource[models.Role] { return s.Roles },
		newForm: func() *forms.RoleForm { return &forms.RoleForm{} },
	}).mount(r, gate, nil)

	(&resourceAPI[models.ShipmentOrder, *forms.ShipmentOrderForm]{
		h: h, name: backend.ResourceShipmentOrders,
		pick:    func(s *backend.Services) *backend.Resource[models.ShipmentOrder] { return s.ShipmentOrders },
		newForm: func() *forms.ShipmentOrderForm { return &forms.ShipmentOrderForm{} },
		prepare: preparePorts,
	}).mount(r, gate, func(r chi.Router) {
		r.With(gate.RequirePrivilege(rbac.PrivShipmentImport)).Post("/import", h.ImportShipments)
		r.With(gate.RequirePrivilege(rbac.PrivShipmentExport), exportLimit).Get("/export", h.ExportShipments)
		r.With(gate.RequirePrivilege(rbac.PrivShipmentExport)).Get("/template", h.ShipmentTemplate)
	})
}
