package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/condoway/client-go/internal/client/paging"
)

// envelope is the standard response wrapper: {success, message, data}.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// paginationMeta mirrors the backend's list metadata block.
type paginationMeta struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Total       int  `json:"total"`
	HasMore     bool `json:"hasMore"`
	PerPage     int  `json:"perPage"`
}

type listEnvelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *paginationMeta `json:"pagination"`
}

// decodeEnvelope unpacks a wrapped response and unmarshals data into out.
// Some endpoints reply with the payload at the top level; those are decoded
// directly.
func decodeEnvelope(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if !env.Success && env.Message != "" {
		return fmt.Errorf("server rejected request: %s", env.Message)
	}
	if env.Data == nil {
		// Not wrapped; the body is the payload itself.
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response payload: %w", err)
		}
		return nil
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response payload: %w", err)
	}
	return nil
}

// decodeListBody turns a list response into a Page. Two shapes exist in the
// wild: {data, pagination} envelopes and bare JSON arrays; the bare-array
// case synthesizes single-page metadata.
func decodeListBody[T any](body []byte, pageSize int) (paging.Page[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return paging.Page[T]{}, fmt.Errorf("failed to decode bare list: %w", err)
		}
		return paging.SinglePage(items, pageSize), nil
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return paging.Page[T]{}, fmt.Errorf("failed to decode list envelope: %w", err)
	}
	if !env.Success && env.Message != "" {
		return paging.Page[T]{}, fmt.Errorf("server rejected request: %s", env.Message)
	}

	var items []T
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return paging.Page[T]{}, fmt.Errorf("failed to decode list payload: %w", err)
		}
	}

	if env.Pagination == nil {
		return paging.SinglePage(items, pageSize), nil
	}

	meta := env.Pagination
	size := meta.PerPage
	if size == 0 {
		size = pageSize
	}
	return paging.Page[T]{
		Items:       items,
		CurrentPage: meta.CurrentPage,
		TotalPages:  meta.TotalPages,
		TotalCount:  meta.Total,
		PageSize:    size,
		HasMore:     meta.HasMore,
	}, nil
}
