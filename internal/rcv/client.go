package rcv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// PeriodLayout is the layout of register periods ("2024-03").
	PeriodLayout = "2006-01"

	stateRegistered = "REGISTRO"
)

// Credentials are the SII credentials used to read a taxpayer's register.
// They are forwarded per request and never stored.
type Credentials struct {
	RUT      string `json:"rut"`
	Password string `json:"clave"`
}

// ClientConfig configures the SII gateway client
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client reads the purchase and sales register through the SII API gateway
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient creates a new gateway client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

type authBody struct {
	Auth struct {
		Pass Credentials `json:"pass"`
	} `json:"auth"`
}

func newAuthBody(creds Credentials) authBody {
	var b authBody
	b.Auth.Pass = creds
	return b
}

// TaxSituation returns the public tax situation of a RUT
func (c *Client) TaxSituation(ctx context.Context, rut string) (*TaxSituation, error) {
	var out TaxSituation
	path := fmt.Sprintf("/api/v1/sii/contribuyentes/situacion_tributaria/tercero/%s?formato=json", FormatRUT(rut))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurchaseSummary returns the purchase register summary for a period
func (c *Client) PurchaseSummary(ctx context.Context, receiver, period string, creds Credentials) (*Summary, error) {
	var out Summary
	path := fmt.Sprintf("/api/v1/sii/rcv/compras/resumen/%s/%s/%s", FormatRUT(receiver), period, stateRegistered)
	if err := c.do(ctx, http.MethodPost, path, newAuthBody(creds), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurchaseDetail returns the purchase documents of one DTE type
func (c *Client) PurchaseDetail(ctx context.Context, receiver, period string, dteType int, creds Credentials) ([]Document, error) {
	var out DetailResponse
	path := fmt.Sprintf("/api/v1/sii/rcv/compras/detalle/%s/%s/%d/%s", FormatRUT(receiver), period, dteType, stateRegistered)
	if err := c.do(ctx, http.MethodPost, path, newAuthBody(creds), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SalesSummary returns the sales register summary for a period
func (c *Client) SalesSummary(ctx context.Context, issuer, period string, creds Credentials) (*Summary, error) {
	var out Summary
	path := fmt.Sprintf("/api/v1/sii/rcv/ventas/resumen/%s/%s", FormatRUT(issuer), period)
	if err := c.do(ctx, http.MethodPost, path, newAuthBody(creds), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SalesDetail returns the sales documents of one DTE type
func (c *Client) SalesDetail(ctx context.Context, issuer, period string, dteType int, creds Credentials) ([]Document, error) {
	var out DetailResponse
	path := fmt.Sprintf("/api/v1/sii/rcv/ventas/detalle/%s/%s/%d", FormatRUT(issuer), period, dteType)
	if err := c.do(ctx, http.MethodPost, path, newAuthBody(creds), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Extract pulls the tax situation, both summaries and the per-type detail of a
// company. An empty period means the current month. When a summary is not
// available for the period the previous month is tried. Individual failures
// are logged and skipped; only a missing token is an error.
func (c *Client) Extract(ctx context.Context, companyRUT string, creds Credentials, period string) (*Extraction, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	if period == "" {
		period = c.now().Format(PeriodLayout)
	}
	previous := PreviousPeriod(period)

	result := &Extraction{
		PurchaseDetail: []Document{},
		SalesDetail:    []Document{},
	}

	situation, err := c.TaxSituation(ctx, companyRUT)
	if err != nil {
		c.logger.Warn("Tax situation unavailable", zap.String("rut", companyRUT), zap.Error(err))
	} else {
		result.TaxSituation = situation
	}

	result.PurchaseSummary = c.summaryWithFallback(ctx, "purchases", period, previous, func(p string) (*Summary, error) {
		return c.PurchaseSummary(ctx, companyRUT, p, creds)
	})
	result.SalesSummary = c.summaryWithFallback(ctx, "sales", period, previous, func(p string) (*Summary, error) {
		return c.SalesSummary(ctx, companyRUT, p, creds)
	})

	if s := result.PurchaseSummary; s != nil {
		p := periodOr(s.Period, period)
		for _, line := range s.Lines {
			if line.Count <= 0 {
				continue
			}
			docs, err := c.PurchaseDetail(ctx, companyRUT, p, line.Type, creds)
			if err != nil {
				c.logger.Warn("Purchase detail unavailable", zap.Int("dte", line.Type), zap.Error(err))
				continue
			}
			result.PurchaseDetail = append(result.PurchaseDetail, docs...)
		}
	}

	if s := result.SalesSummary; s != nil {
		p := periodOr(s.Period, period)
		for _, line := range s.Lines {
			if line.Count <= 0 {
				continue
			}
			docs, err := c.SalesDetail(ctx, companyRUT, p, line.Type, creds)
			if err != nil {
				c.logger.Warn("Sales detail unavailable", zap.Int("dte", line.Type), zap.Error(err))
				continue
			}
			result.SalesDetail = append(result.SalesDetail, docs...)
		}
	}

	c.logger.Info("RCV extraction finished",
		zap.String("rut", companyRUT),
		zap.String("period", period),
		zap.Int("purchase_documents", len(result.PurchaseDetail)),
		zap.Int("sales_documents", len(result.SalesDetail)))

	return result, nil
}

func (c *Client) summaryWithFallback(ctx context.Context, book, period, previous string, fetch func(string) (*Summary, error)) *Summary {
	summary, err := fetch(period)
	if err == nil {
		return summary
	}
	c.logger.Warn("Summary unavailable for period, trying previous",
		zap.String("book", book), zap.String("period", period), zap.Error(err))

	summary, err = fetch(previous)
	if err != nil {
		c.logger.Warn("Summary unavailable for previous period",
			zap.String("book", book), zap.String("period", previous), zap.Error(err))
		return nil
	}
	return summary
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gateway error %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

// PreviousPeriod returns the month before period. Unparseable periods are
// returned unchanged.
func PreviousPeriod(period string) string {
	t, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return period
	}
	return t.AddDate(0, -1, 0).Format(PeriodLayout)
}

func periodOr(p, fallback string) string {
	if p != "" {
		return p
	}
	return fallback
}
