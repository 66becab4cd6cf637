// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
)

// ProviderRegistry lists and switches generative providers. *ai.Registry
// satisfies it.
type ProviderRegistry interface {
	Available() []string
	ActiveName() string
	SetActive(name string) error
}

// Providers groups the provider selection handlers. The active provider is
// process-wide, so switching is an operator control that is off unless
// allowSwitch is set.
type Providers struct {
	registry    ProviderRegistry
	allowSwitch bool
}

// NewProviders creates the provider handler group.
func NewProviders(registry ProviderRegistry, allowSwitch bool) *Providers {
	return &Providers{registry: registry, allowSwitch: allowSwitch}
}

type providersResponse struct {
	Active     string   `json:"active"`
	Available  []string `json:"available"`
	Switchable bool     `json:"switchable"`
}

// List returns the active provider and every provider with credentials.
func (h *Providers) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, providersResponse{
		Active:     h.registry.ActiveName(),
		Available:  h.registry.Available(),
		Switchable: h.allowSwitch,
	})
}

// Switch makes another configured provider the active one.
func (h *Providers) Switch(w http.ResponseWriter, r *http.Request) {
	if !h.allowSwitch {
		writeError(w, http.StatusForbidden, "switching providers is disabled")
		return
	}
	var req struct {
		Provider string `json:"provider"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.registry.SetActive(req.Provider); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Info("ai provider switched", "provider", req.Provider)
	h.List(w, r)
}
