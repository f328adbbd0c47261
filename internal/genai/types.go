// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package genai

// Params holds the inputs for a single generation request.
type Params struct {
	SystemPrompt string
	UserPrompt   string
	ModelID      string
}

// generateRequest is the wire format sent to the generation service.
type generateRequest struct {
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
	ModelID      string `json:"modelId"`
}

// generateResponse is the wire format returned by the generation
// service. Text is set on success; Error carries the message on non-2xx
// statuses.
type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}
