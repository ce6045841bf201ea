// SPDX-License-Identifier: Apache-2.0

// Package adapter implements the client side of the vault HTTP API. The
// adapter satisfies the same interfaces as the server-side collaborators
// ([store.RecordRepository] and [gate.GateService]), so the vault service
// cannot tell a remote store from a local one.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/askarin/fieldvault/internal/keychain"
	"github.com/askarin/fieldvault/models"
)

// HTTPClientConfig configures the vault HTTP adapter.
type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPVaultAdapter talks to the vault server. It is safe for concurrent
// use; the bearer token is guarded by a mutex because the auto-lock
// worker and the CLI may touch the adapter from different goroutines.
type HTTPVaultAdapter struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPVaultAdapter constructs an adapter for the given server.
func NewHTTPVaultAdapter(cfg HTTPClientConfig) *HTTPVaultAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &HTTPVaultAdapter{client: cli}
}

// SetToken installs the bearer token used on all authenticated calls.
func (h *HTTPVaultAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token returns the currently installed bearer token.
func (h *HTTPVaultAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// ObtainToken asks the server's development issuer for a token naming the
// given owner and installs it on the adapter. Production clients receive
// their token from the identity provider instead and call SetToken.
func (h *HTTPVaultAdapter) ObtainToken(ctx context.Context, ownerID string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"owner": ownerID}).
		Post("/api/auth/token")
	if err != nil {
		return fmt.Errorf("obtain token request: %w", err)
	}
	if err = mapGateError(resp); err != nil {
		return err
	}

	var tokenResp models.TokenResponse
	if err = json.Unmarshal(resp.Body(), &tokenResp); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}

	h.SetToken(tokenResp.Token)
	return nil
}

// Create implements [store.RecordRepository] over the wire.
func (h *HTTPVaultAdapter) Create(ctx context.Context, record models.Record) (models.Record, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Post("/api/records/")
	if err != nil {
		return models.Record{}, fmt.Errorf("create record request: %w", err)
	}
	if err = mapRecordError(resp); err != nil {
		return models.Record{}, err
	}

	var created models.Record
	if err = json.Unmarshal(resp.Body(), &created); err != nil {
		return models.Record{}, fmt.Errorf("decode create response: %w", err)
	}

	return created, nil
}

// List implements [store.RecordRepository] over the wire. The ownerID
// argument is carried by the bearer token; the server ignores anything
// else.
func (h *HTTPVaultAdapter) List(ctx context.Context, _ string) ([]models.Record, error) {
	resp, err := h.authedRequest(ctx).Get("/api/records/")
	if err != nil {
		return nil, fmt.Errorf("list records request: %w", err)
	}
	if err = mapRecordError(resp); err != nil {
		return nil, err
	}

	var list models.ListResponse
	if err = json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	return list.Records, nil
}

// Get implements [store.RecordRepository] over the wire.
func (h *HTTPVaultAdapter) Get(ctx context.Context, _ string, id string) (models.Record, error) {
	resp, err := h.authedRequest(ctx).Get("/api/records/" + id)
	if err != nil {
		return models.Record{}, fmt.Errorf("get record request: %w", err)
	}
	if err = mapRecordError(resp); err != nil {
		return models.Record{}, err
	}

	var record models.Record
	if err = json.Unmarshal(resp.Body(), &record); err != nil {
		return models.Record{}, fmt.Errorf("decode get response: %w", err)
	}

	return record, nil
}

// Update implements [store.RecordRepository] over the wire.
func (h *HTTPVaultAdapter) Update(ctx context.Context, _ string, id string, record models.Record) (models.Record, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Put("/api/records/" + id)
	if err != nil {
		return models.Record{}, fmt.Errorf("update record request: %w", err)
	}
	if err = mapRecordError(resp); err != nil {
		return models.Record{}, err
	}

	var updated models.Record
	if err = json.Unmarshal(resp.Body(), &updated); err != nil {
		return models.Record{}, fmt.Errorf("decode update response: %w", err)
	}

	return updated, nil
}

// Delete implements [store.RecordRepository] over the wire.
func (h *HTTPVaultAdapter) Delete(ctx context.Context, _ string, id string) error {
	resp, err := h.authedRequest(ctx).Delete("/api/records/" + id)
	if err != nil {
		return fmt.Errorf("delete record request: %w", err)
	}

	return mapRecordError(resp)
}

// HasVerifier implements [gate.GateService] over the wire.
func (h *HTTPVaultAdapter) HasVerifier(ctx context.Context, _ string) (bool, error) {
	resp, err := h.authedRequest(ctx).Get("/api/gate/status")
	if err != nil {
		return false, fmt.Errorf("gate status request: %w", err)
	}
	if err = mapGateError(resp); err != nil {
		return false, err
	}

	var status models.GateStatusResponse
	if err = json.Unmarshal(resp.Body(), &status); err != nil {
		return false, fmt.Errorf("decode gate status response: %w", err)
	}

	return status.Configured, nil
}

// SetVerifier implements [gate.GateService] over the wire. Only the weak
// flag of the strength report crosses the API; score details stay on the
// server.
func (h *HTTPVaultAdapter) SetVerifier(ctx context.Context, _ string, secret string) (keychain.Strength, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"secret": secret}).
		Post("/api/gate/setup")
	if err != nil {
		return keychain.Strength{}, fmt.Errorf("gate setup request: %w", err)
	}
	if err = mapGateError(resp); err != nil {
		return keychain.Strength{}, err
	}

	var setup models.SetupResponse
	if err = json.Unmarshal(resp.Body(), &setup); err != nil {
		return keychain.Strength{}, fmt.Errorf("decode gate setup response: %w", err)
	}

	return keychain.Strength{Weak: setup.Weak}, nil
}

// Verify implements [gate.GateService] over the wire.
func (h *HTTPVaultAdapter) Verify(ctx context.Context, _ string, secret string) (bool, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"secret": secret}).
		Post("/api/gate/verify")
	if err != nil {
		return false, fmt.Errorf("gate verify request: %w", err)
	}
	if err = mapGateError(resp); err != nil {
		return false, err
	}

	var verify models.VerifyResponse
	if err = json.Unmarshal(resp.Body(), &verify); err != nil {
		return false, fmt.Errorf("decode gate verify response: %w", err)
	}

	return verify.Valid, nil
}

// Rekey implements [gate.GateService] over the wire.
func (h *HTTPVaultAdapter) Rekey(ctx context.Context, _ string, oldSecret string, newSecret string) (keychain.Strength, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"oldSecret": oldSecret, "newSecret": newSecret}).
		Post("/api/gate/rekey")
	if err != nil {
		return keychain.Strength{}, fmt.Errorf("gate rekey request: %w", err)
	}
	if err = mapGateError(resp); err != nil {
		return keychain.Strength{}, err
	}

	var rekey models.SetupResponse
	if err = json.Unmarshal(resp.Body(), &rekey); err != nil {
		return keychain.Strength{}, fmt.Errorf("decode gate rekey response: %w", err)
	}

	return keychain.Strength{Weak: rekey.Weak}, nil
}

func (h *HTTPVaultAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
