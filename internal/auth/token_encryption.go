// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/tomtom215/vendorbooking/internal/models"
)

// Token sealing errors
var (
	// ErrSealKeyMissing indicates no secret was configured.
	ErrSealKeyMissing = errors.New("token seal key not configured")

	// ErrUnsealFailed indicates the box did not authenticate.
	ErrUnsealFailed = errors.New("token unseal failed")

	// ErrInvalidCiphertext indicates the sealed value is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

const (
	sealContext = "vbt-session-tokens"
	nonceSize   = 24
)

// TokenSealer encrypts backend token pairs before they reach the session
// store. The key is derived from the console secret with HKDF-SHA256.
type TokenSealer struct {
	key [32]byte
}

// NewTokenSealer derives a sealing key from secret.
func NewTokenSealer(secret string) (*TokenSealer, error) {
	if secret == "" {
		return nil, ErrSealKeyMissing
	}
	if len(secret) < 16 {
		return nil, errors.New("seal secret must be at least 16 bytes")
	}

	s := &TokenSealer{}
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(sealContext))
	if _, err := io.ReadFull(reader, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive seal key: %w", err)
	}
	return s, nil
}

// Seal encrypts pair and returns base64 text. The nonce is prepended.
func (s *TokenSealer) Seal(pair models.TokenPair) (string, error) {
	plaintext, err := json.Marshal(pair)
	if err != nil {
		return "", fmt.Errorf("marshal tokens: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal.
func (s *TokenSealer) Open(sealed string) (models.TokenPair, error) {
	var pair models.TokenPair
	if sealed == "" {
		return pair, fmt.Errorf("%w: empty", ErrInvalidCiphertext)
	}

	data, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return pair, fmt.Errorf("%w: base64 decode failed", ErrInvalidCiphertext)
	}
	if len(data) < nonceSize+secretbox.Overhead {
		return pair, fmt.Errorf("%w: data too short", ErrInvalidCiphertext)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])

	plaintext, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &s.key)
	if !ok {
		return pair, ErrUnsealFailed
	}
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return pair, fmt.Errorf("unmarshal tokens: %w", err)
	}
	return pair, nil
}
