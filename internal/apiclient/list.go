package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prohmpiriya/ecom-storefront/pkg/response"
)

// DecodeList accepts either a bare JSON array or a paginated page object
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var page response.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return []T{}, nil
	}
	return page.Items, nil
}

// GetList fetches path and decodes its data as a list
func GetList[T any](ctx context.Context, r Requester, path string) ([]T, error) {
	var raw json.RawMessage
	if err := r.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	items, err := DecodeList[T](raw)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, Method: http.MethodGet, Path: path, Err: fmt.Errorf("decode list: %w", err)}
	}
	return items, nil
}
