// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/tomtom215/vendorbooking/internal/models"
)

// XLSXContentType is the MIME type of shipment spreadsheets.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Services binds the Client to one TokenSource and exposes every resource.
type Services struct {
	client *Client
	tokens TokenSource

	Carriers            *Resource[models.Carrier]
	Companies           *Resource[models.Company]
	Customers           *Resource[models.Customer]
	Suppliers           *Resource[models.Supplier]
	Ports               *Resource[models.Port]
	ContainerTypes      *Resource[models.ContainerType]
	ContainerThresholds *Resource[models.ContainerThreshold]
	ContainerPriorities *Resource[models.ContainerPriority]
	ShipmentOrders      *Resource[models.ShipmentOrder]
	Users               *Resource[models.User]
	Roles               *Resource[models.Role]
}

// Services returns the service wrappers authenticated by tokens.
func (c *Client) Services(tokens TokenSource) *Services {
	return &Services{
		client:              c,
		tokens:              tokens,
		Carriers:            newResource[models.Carrier](c, tokens, ResourceCarriers),
		Companies:           newResource[models.Company](c, tokens, ResourceCompanies),
		Customers:           newResource[models.Customer](c, tokens, ResourceCustomers),
		Suppliers:           newResource[models.Supplier](c, tokens, ResourceSuppliers),
		Ports:               newResource[models.Port](c, tokens, ResourcePorts),
		ContainerTypes:      newResource[models.ContainerType](c, tokens, ResourceContainerTypes),
		ContainerThresholds: newResource[models.ContainerThreshold](c, tokens, ResourceContainerThresholds),
		ContainerPriorities: newResource[models.ContainerPriority](c, tokens, ResourceContainerPriorities),
		ShipmentOrders:      newResource[models.ShipmentOrder](c, tokens, ResourceShipmentOrders),
		Users:               newResource[models.User](c, tokens, ResourceUsers),
		Roles:               newResource[models.Role](c, tokens, ResourceRoles),
	}
}

// Record is a backend record decoded without a schema.
type Record = map[string]interface{}

// Generic returns the named collection decoded into Records. It is meant
// for tools that print any collection; ok is false for unknown names.
func (s *Services) Generic(name string) (r *Resource[Record], ok bool) {
	if !IsResource(name) {
		return nil, false
	}
	return newResource[Record](s.client, s.tokens, name), true
}

// Login exchanges credentials for a token pair. It is the only anonymous call.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/login", "auth", models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	req.anonymous = true

	var out models.LoginResponse
	if err := c.do(ctx, nil, req, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &Error{Kind: KindUnknown, Method: req.method, Path: req.path, Err: fmt.Errorf("login response has no access token")}
	}
	return &out, nil
}

// RefreshTokens exchanges a refresh token for a new pair. It matches
// RefreshFunc so it can back a MemoryTokenSource.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/refresh", "auth", models.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return models.TokenPair{}, err
	}
	req.anonymous = true

	var out models.TokenPair
	if err := c.do(ctx, nil, req, &out); err != nil {
		return models.TokenPair{}, err
	}
	return out, nil
}

// Me returns the authenticated user with its privilege list.
func (s *Services) Me(ctx context.Context) (*models.User, error) {
	req := &request{method: http.MethodGet, path: "/auth/me", accept: "application/json", resource: "auth"}
	var u models.User
	if err := s.client.do(ctx, s.tokens, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes the tokens on the backend, then invalidates the source
// whatever the backend answered.
func (s *Services) Logout(ctx context.Context) error {
	req := &request{method: http.MethodPost, path: "/auth/logout", resource: "auth", retried: true}
	err := s.client.do(ctx, s.tokens, req, nil)
	s.tokens.Invalidate(ctx)
	return err
}

// UploadShipmentFile forwards a spreadsheet to the backend for ingestion.
func (s *Services) UploadShipmentFile(ctx context.Context, filename string, data []byte) (*models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", XLSXContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req := &request{
		method:   http.MethodPost,
		path:     "/" + ResourceShipmentOrders + "/upload",
		body:     buf.Bytes(),
		bodyType: mw.FormDataContentType(),
		accept:   "application/json",
		resource: ResourceShipmentOrders,
	}
	var out models.UploadResult
	if err := s.client.do(ctx, s.tokens, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadShipmentTemplate fetches the backend's own upload template.
func (s *Services) DownloadShipmentTemplate(ctx context.Context) ([]byte, error) {
	req := &request{
		method:   http.MethodGet,
		path:     "/" + ResourceShipmentOrders + "/template",
		accept:   XLSXContentType,
		resource: ResourceShipmentOrders,
	}
	var data []byte
	if err := s.client.do(ctx, s.tokens, req, &data); err != nil {
		return nil, err
	}
	return data, nil
}
