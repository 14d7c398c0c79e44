package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// PageFetcher retrieves a page and returns its parsed HTML document.
type PageFetcher interface {
	FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// NewPageFetcher builds the fetcher selected by config.FetchMode.
func NewPageFetcher(config shared.ServiceConfig) PageFetcher {
	if config.FetchMode == shared.FetchModeBrowser {
		return NewBrowserPageFetcher(config)
	}
	return NewHTTPPageFetcher(config)
}

// HTTPPageFetcher downloads pages over plain HTTP and decodes the legacy
// EUC-KR body before handing it to goquery.
type HTTPPageFetcher struct {
	httpClient         *http.Client
	httpClientFactory  *shared.HTTPClientFactory
	requestRateLimiter *shared.HTTPRequestRateLimiter
	bodyEncoding       encoding.Encoding
	maxRetryAttempts   int
	httpMetrics        *shared.HTTPMetrics
	logMetrics         bool
}

// NewHTTPPageFetcher creates an HTTP fetcher from the service configuration
func NewHTTPPageFetcher(config shared.ServiceConfig) *HTTPPageFetcher {
	httpClientFactory := shared.NewHTTPClientFactory(config.HTTPRequestTimeout)

	fetcher := &HTTPPageFetcher{
		httpClient:         httpClientFactory.CreateOptimizedHTTPClient(config.HTTPRequestTimeout),
		httpClientFactory:  httpClientFactory,
		requestRateLimiter: shared.NewHTTPRequestRateLimiter(config.RequestRateLimit),
		bodyEncoding:       korean.EUCKR,
		maxRetryAttempts:   config.MaxRetryAttempts,
		httpMetrics:        shared.NewHTTPMetrics(),
		logMetrics:         config.EnableMetrics,
	}

	logrus.WithFields(logrus.Fields{
		"component":    "HTTPPageFetcher",
		"http_timeout": config.HTTPRequestTimeout,
		"rate_limit":   config.RequestRateLimit,
		"max_retries":  config.MaxRetryAttempts,
	}).Debug("HTTP page fetcher initialized")

	return fetcher
}

// FetchDocument downloads pageURL and parses the EUC-KR decoded body
func (f *HTTPPageFetcher) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	startTime := time.Now()
	logger := logrus.WithFields(logrus.Fields{
		"component": "HTTPPageFetcher",
		"method":    "FetchDocument",
		"url":       pageURL,
	})

	f.requestRateLimiter.EnforceRateLimit()

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryNetwork, "REQUEST_BUILD_FAILED",
			"failed to create HTTP request", "HTTPPageFetcher", "FetchDocument", false, err)
	}
	shared.SetBrowserLikeHeaders(httpRequest, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	httpResponse, err := shared.ExecuteHTTPRequestWithRetry(ctx, f.httpClient, httpRequest, f.maxRetryAttempts)
	if err != nil {
		f.httpMetrics.RecordHTTPRequest(false, 0, time.Since(startTime), "network")
		return nil, shared.NewServiceError(shared.ErrorCategoryNetwork, "PAGE_FETCH_FAILED",
			fmt.Sprintf("failed to fetch %s", pageURL), "HTTPPageFetcher", "FetchDocument", true, err)
	}
	defer httpResponse.Body.Close()

	decodedBody := transform.NewReader(httpResponse.Body, f.bodyEncoding.NewDecoder())
	document, err := goquery.NewDocumentFromReader(decodedBody)
	if err != nil {
		f.httpMetrics.RecordHTTPRequest(false, httpResponse.StatusCode, time.Since(startTime), "parse")
		return nil, shared.NewServiceError(shared.ErrorCategoryMarkup, "HTML_PARSE_FAILED",
			"failed to parse HTML document", "HTTPPageFetcher", "FetchDocument", false, err)
	}

	f.httpMetrics.RecordHTTPRequest(true, httpResponse.StatusCode, time.Since(startTime), "")
	logger.WithField("elapsed", time.Since(startTime)).Debug("Fetched and parsed page")

	return document, nil
}

// Cleanup releases pooled connections and logs the fetch counters when metrics are enabled
func (f *HTTPPageFetcher) Cleanup() {
	f.httpClientFactory.CleanupAllClients()
	if f.logMetrics {
		f.httpMetrics.LogHTTPSummary()
	}
}

// BrowserPageFetcher renders pages in headless Chrome and parses the live DOM.
// The browser already decodes the legacy charset, so no transcoding is needed.
type BrowserPageFetcher struct {
	timeout            time.Duration
	requestRateLimiter *shared.HTTPRequestRateLimiter
	allocatorOptions   []chromedp.ExecAllocatorOption
}

// NewBrowserPageFetcher creates a headless-browser fetcher
func NewBrowserPageFetcher(config shared.ServiceConfig) *BrowserPageFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent(shared.BrowserUserAgent),
	)

	return &BrowserPageFetcher{
		timeout:            config.HTTPRequestTimeout,
		requestRateLimiter: shared.NewHTTPRequestRateLimiter(config.RequestRateLimit),
		allocatorOptions:   opts,
	}
}

// FetchDocument navigates to pageURL and parses the rendered document
func (f *BrowserPageFetcher) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "BrowserPageFetcher",
		"method":    "FetchDocument",
		"url":       pageURL,
	})

	f.requestRateLimiter.EnforceRateLimit()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	var outerHTML string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &outerHTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryNetwork, "BROWSER_FETCH_FAILED",
			fmt.Sprintf("failed to render %s", pageURL), "BrowserPageFetcher", "FetchDocument", true, err)
	}

	document, err := goquery.NewDocumentFromReader(strings.NewReader(outerHTML))
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryMarkup, "HTML_PARSE_FAILED",
			"failed to parse rendered document", "BrowserPageFetcher", "FetchDocument", false, err)
	}

	logger.Debug("Rendered and parsed page")
	return document, nil
}
