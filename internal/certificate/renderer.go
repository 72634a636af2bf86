package certificate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kycflow/internal/model"
)

const dateLayout = "02 January 2006"

type Config struct {
	BaseURL    string
	APIKey     string
	TemplateID string
	Timeout    time.Duration
}

// Client renders certificates through a template-to-PDF service
type Client struct {
	config Config
	http   *http.Client
}

func New(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{config: config, http: &http.Client{Timeout: config.Timeout}}
}

type templateData struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Message  string `json:"message"`
	Approved bool   `json:"approved"`
	Rejected bool   `json:"rejected"`
	CaseID   string `json:"case_id"`
}

type renderRequest struct {
	TemplateID string       `json:"template_id"`
	Data       templateData `json:"data"`
}

type renderResponse struct {
	PDFURL string `json:"pdf_url"`
	Error  string `json:"error,omitempty"`
}

// Render fills the certificate template and returns the PDF location
func (c *Client) Render(ctx context.Context, data model.CertificateData) (string, error) {
	payload, err := json.Marshal(renderRequest{
		TemplateID: c.config.TemplateID,
		Data: templateData{
			Name:     data.Name,
			Date:     data.Date.Format(dateLayout),
			Email:    data.Email,
			Address:  data.Address,
			Message:  data.Message,
			Approved: data.Stamp == model.StampApproved,
			Rejected: data.Stamp == model.StampRejected,
			CaseID:   data.CaseID,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.config.BaseURL, "/")+"/render", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("renderer request failed: %w", err)
	}
	defer resp.Body.Close()

	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("renderer returned %d: invalid body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("renderer returned %d: %s", resp.StatusCode, out.Error)
	}
	if out.PDFURL == "" {
		return "", fmt.Errorf("renderer returned no pdf url")
	}
	return out.PDFURL, nil
}

// Fetch downloads a rendered PDF. The caller closes the body.
func (c *Client) Fetch(ctx context.Context, pdfURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pdf download failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("pdf download returned %d", resp.StatusCode)
	}
	return resp.Body, nil
}
