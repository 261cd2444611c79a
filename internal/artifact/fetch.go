package artifact

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// Fetch downloads the artifact name relative to baseURL, which may carry a
// deployment base path ("https://example.github.io/docs").
func Fetch(ctx context.Context, client *http.Client, baseURL, name string) ([]models.SearchDocument, error) {
	if client == nil {
		client = http.DefaultClient
	}
	target, err := resolve(baseURL, name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	return Decode(resp.Body)
}

func resolve(baseURL, name string) (string, error) {
	if name == "" {
		name = DefaultName
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(name, "/")
	return base.String(), nil
}
