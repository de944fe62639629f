// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package forms

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/vendorbooking/internal/logging"
	"github.com/tomtom215/vendorbooking/internal/metrics"
)

// Invalidator drops cached state for a resource after a write.
type Invalidator interface {
	InvalidateResource(resource string)
}

// Submission describes one submit of a form.
type Submission[T any] struct {
	// Key identifies the in-flight slot; see Key.
	Key string
	// Name labels the form in metrics and logs, e.g. "carriers.create".
	Name     string
	Resource string
	Form     Form[T]
	// Send performs the backend call with the converted model.
	Send func(ctx context.Context, m *T) (*T, error)
}

// Submit is the single write path for forms. Validation failures are
// returned as *validation.RequestValidationError, a concurrent duplicate as
// ErrSubmitInProgress, and backend failures unchanged.
func Submit[T any](ctx context.Context, guard *SubmitGuard, inv Invalidator, s Submission[T]) (*T, error) {
	if verr := s.Form.Check(); verr != nil {
		return nil, verr
	}

	release, err := guard.Begin(s.Key)
	if err != nil {
		if errors.Is(err, ErrSubmitInProgress) {
			metrics.SubmitConflicts.WithLabelValues(s.Name).Inc()
			logging.Ctx(ctx).Debug().Str("form", s.Name).Msg("Duplicate submit rejected")
		}
		return nil, err
	}
	defer release()

	out, err := s.Send(ctx, s.Form.ToModel())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}

	if inv != nil && s.Resource != "" {
		inv.InvalidateResource(s.Resource)
	}
	return out, nil
}

// Run guards an action that has no form, such as a delete or an import.
func Run(ctx context.Context, guard *SubmitGuard, inv Invalidator, key, name, resource string, fn func(ctx context.Context) error) error {
	release, err := guard.Begin(key)
	if err != nil {
		if errors.Is(err, ErrSubmitInProgress) {
			metrics.SubmitConflicts.WithLabelValues(name).Inc()
		}
		return err
	}
	defer release()

	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if inv != nil && resource != "" {
		inv.InvalidateResource(resource)
	}
	return nil
}
