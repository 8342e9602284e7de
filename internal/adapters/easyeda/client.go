package easyeda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIBase = "https://easyeda.com/api"

// Client fetches component footprint payloads from the EasyEDA API.
// Each fetch is three requests: the product lookup resolves the
// component UUID, the component detail resolves the package UUID, and
// the package fetch returns the footprint payload.
type Client struct {
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a client against the public EasyEDA API.
func NewClient() *Client {
	return &Client{
		apiBase: defaultAPIBase,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NormalizeLCSCID trims, uppercases, and ensures the C prefix on an
// LCSC part number ("c60490" and "60490" both become "C60490").
func NormalizeLCSCID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id != "" && !strings.HasPrefix(id, "C") {
		id = "C" + id
	}
	return id
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
}

// Fetch retrieves the footprint payload for one LCSC part number.
func (c *Client) Fetch(ctx context.Context, lcscID string) (*Component, error) {
	lcscID = NormalizeLCSCID(lcscID)
	if lcscID == "" {
		return nil, fmt.Errorf("empty LCSC part number")
	}

	// Step 1: product lookup gives the component UUID and title.
	var product struct {
		UUID  string `json:"uuid"`
		Title string `json:"title"`
	}
	url := fmt.Sprintf("%s/products/%s/components", c.apiBase, lcscID)
	if err := c.getResult(ctx, url, &product); err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", lcscID, err)
	}
	if product.UUID == "" {
		return nil, fmt.Errorf("no component UUID for %s", lcscID)
	}
	title := product.Title
	if title == "" {
		title = "Component " + lcscID
	}

	// Step 2: component detail gives the package UUID.
	var component struct {
		PackageDetail struct {
			UUID string `json:"uuid"`
		} `json:"packageDetail"`
	}
	url = fmt.Sprintf("%s/components/%s", c.apiBase, product.UUID)
	if err := c.getResult(ctx, url, &component); err != nil {
		return nil, fmt.Errorf("failed to fetch component detail for %s: %w", lcscID, err)
	}
	if component.PackageDetail.UUID == "" {
		return nil, fmt.Errorf("no package detail for %s", lcscID)
	}

	// Step 3: the package record is the footprint payload.
	var payload json.RawMessage
	url = fmt.Sprintf("%s/components/%s", c.apiBase, component.PackageDetail.UUID)
	if err := c.getResult(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch package data for %s: %w", lcscID, err)
	}

	return &Component{
		LCSCID:  lcscID,
		Title:   title,
		Payload: payload,
	}, nil
}

// getResult performs one GET and decodes the envelope's result field
// into out.
func (c *Client) getResult(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	if !envelope.Success {
		return fmt.Errorf("API reported failure")
	}
	if len(envelope.Result) == 0 {
		return fmt.Errorf("empty result")
	}
	return json.Unmarshal(envelope.Result, out)
}
