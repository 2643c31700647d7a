// Package catalog is the read-mostly client for the upstream medicine
// catalog: listings, detail, search and saved presets.
package catalog

import (
	"context"
	"fmt"
	"net/url"

	"cura-service/internal/upstream"
)

type Conf struct {
	client *upstream.Client
}

func NewConf(client *upstream.Client) (*Conf, error) {
	if client == nil {
		return nil, fmt.Errorf("upstream client is nil")
	}
	return &Conf{client: client}, nil
}

func (c *Conf) ListMedicines(ctx context.Context) ([]Medicine, error) {
	var resp struct {
		Success bool       `json:"success"`
		Data    []Medicine `json:"data"`
		Message string     `json:"message"`
	}
	if err := c.client.Get(ctx, "/medicines", &resp); err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to list medicines", resp.Message)
	}
	return resp.Data, nil
}

func (c *Conf) GetMedicine(ctx context.Context, id string) (*Medicine, error) {
	if id == "" {
		return nil, fmt.Errorf("medicine id is empty")
	}
	var resp struct {
		Success bool     `json:"success"`
		Data    Medicine `json:"data"`
		Message string   `json:"message"`
	}
	if err := c.client.Get(ctx, "/medicines/"+url.PathEscape(id), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch medicine %s: %w", id, err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to fetch medicine", resp.Message)
	}
	return &resp.Data, nil
}

// Search queries the catalog; the upstream returns matches under a
// dedicated "medicines" key rather than "data".
func (c *Conf) Search(ctx context.Context, query string) ([]Medicine, error) {
	var resp struct {
		Success   bool       `json:"success"`
		Medicines []Medicine `json:"medicines"`
		Message   string     `json:"message"`
	}
	path := "/medicines/search?q=" + url.QueryEscape(query)
	if err := c.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to search medicines: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to search medicines", resp.Message)
	}
	return resp.Medicines, nil
}

func (c *Conf) ListPresets(ctx context.Context) ([]Preset, error) {
	var resp struct {
		Success bool     `json:"success"`
		Presets []Preset `json:"presets"`
		Message string   `json:"message"`
	}
	if err := c.client.Get(ctx, "/medicines/presets", &resp); err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to list presets", resp.Message)
	}
	return resp.Presets, nil
}

func (c *Conf) CreatePreset(ctx context.Context, preset Preset) (*Preset, error) {
	var resp struct {
		Success bool    `json:"success"`
		Preset  Preset  `json:"preset"`
		Message string  `json:"message"`
	}
	if err := c.client.Post(ctx, "/medicines/presets", preset, &resp); err != nil {
		return nil, fmt.Errorf("failed to create preset: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to create preset", resp.Message)
	}
	return &resp.Preset, nil
}

func (c *Conf) DeletePreset(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("preset id is empty")
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.client.Delete(ctx, "/medicines/presets/"+url.PathEscape(id), &resp); err != nil {
		return fmt.Errorf("failed to delete preset %s: %w", id, err)
	}
	if !resp.Success {
		return upstream.Failure("failed to delete preset", resp.Message)
	}
	return nil
}
