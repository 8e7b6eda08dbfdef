package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

const defaultHTTPTimeout = 5 * time.Second

var defaultClient = &fasthttp.Client{Name: "finrechner"}

// HTTPPriceService fetches prices from GET {BaseURL}/prices/{ticker}?from=&to=,
// which answers {"prices": {"2006-01-02": 123.4, ...}}
type HTTPPriceService struct {
	BaseURL string
	Client  *fasthttp.Client
	Timeout time.Duration
}

type pricesResponse struct {
	Prices map[string]float64 `json:"prices"`
}

// NewHTTPPriceService creates a client for the price service at baseURL
func NewHTTPPriceService(baseURL string) *HTTPPriceService {
	return &HTTPPriceService{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &fasthttp.Client{
			Name:                "finrechner",
			MaxConnsPerHost:     16,
			MaxIdleConnDuration: 30 * time.Second,
		},
		Timeout: defaultHTTPTimeout,
	}
}

// Prices implements PriceService
func (s *HTTPPriceService) Prices(ctx context.Context, ticker string, from, to time.Time) (map[time.Time]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", from.Format(DateLayout))
	}
	if !to.IsZero() {
		query.Set("to", to.Format(DateLayout))
	}
	uri := s.BaseURL + "/prices/" + url.PathEscape(ticker)
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(s.timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client().DoDeadline(req, resp, deadline); err != nil {
		return nil, unavailable(ticker, "requesting prices", err)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return nil, unavailable(ticker, fmt.Sprintf("price service answered %d", status), nil)
	}

	var body pricesResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, unavailable(ticker, "decoding prices", err)
	}

	prices := make(map[time.Time]float64, len(body.Prices))
	for date, closing := range body.Prices {
		day, err := time.Parse(DateLayout, date)
		if err != nil {
			return nil, unavailable(ticker, "decoding prices", err)
		}
		if inRange(day, from, to) {
			prices[day] = closing
		}
	}
	return prices, nil
}

func (s *HTTPPriceService) client() *fasthttp.Client {
	if s.Client == nil {
		return defaultClient
	}
	return s.Client
}

func (s *HTTPPriceService) timeout() time.Duration {
	if s.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return s.Timeout
}
