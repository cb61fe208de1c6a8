package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const unknownProvider = "unknown"

// Directory is the selectable model list presented to the user.
type Directory struct {
	// Choices are the selector labels in display order.
	Choices []string
	// Default is the label of the backend's default model, or "".
	Default string
	// Groups maps each provider to its model names.
	Groups map[string][]string
}

// Empty reports whether there is nothing to select.
func (d Directory) Empty() bool {
	return len(d.Choices) == 0
}

// FetchModels returns the backend's model directory. Failures are logged and
// produce an empty Directory; callers show a disabled selector in that case.
func (c *Client) FetchModels(ctx context.Context) Directory {
	resp, err := c.getModels(ctx)
	if err != nil {
		c.localLogger.Errorf("model directory unavailable: %v", err)
		return Directory{}
	}

	dir := BuildDirectory(resp, c.labels)
	c.localLogger.Infof("fetched %d models, default %q", len(dir.Choices), dir.Default)
	return dir
}

func (c *Client) getModels(ctx context.Context) (ModelsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.directoryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GetModelsURL(), nil)
	if err != nil {
		return ModelsResponse{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ModelsResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ModelsResponse{}, errors.New("failed to fetch models: " + resp.Status)
	}

	var response ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return ModelsResponse{}, err
	}
	return response, nil
}

// BuildDirectory groups the listing by provider, keeping providers in order of
// first appearance and models in listing order within each provider.
func BuildDirectory(resp ModelsResponse, style LabelStyle) Directory {
	groups := make(map[string][]string)
	var providers []string
	for _, m := range resp.Models {
		if m.Name == "" {
			continue
		}
		provider := m.ModelType
		if provider == "" {
			provider = unknownProvider
		}
		if _, ok := groups[provider]; !ok {
			providers = append(providers, provider)
		}
		groups[provider] = append(groups[provider], m.Name)
	}

	dir := Directory{Groups: groups}
	for _, provider := range providers {
		for _, name := range groups[provider] {
			label := name
			if style == LabelGrouped {
				label = provider + ":" + name
			}
			dir.Choices = append(dir.Choices, label)
			if dir.Default == "" && resp.DefaultModel != "" && name == resp.DefaultModel {
				dir.Default = label
			}
		}
	}
	return dir
}

// ModelName converts a selector label back to the name the backend expects.
func ModelName(label string, style LabelStyle) string {
	if style != LabelGrouped {
		return label
	}
	if _, name, ok := strings.Cut(label, ":"); ok {
		return name
	}
	return label
}
