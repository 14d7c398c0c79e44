package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// ErrLatestRoundNotFound is returned when the landing page has no usable draw counter.
var ErrLatestRoundNotFound = errors.New("latest draw number element not found on landing page")

const latestRoundSelector = "strong#lottoDrwNo"

// LatestRoundReader reads the current draw index from the dhlottery landing page
type LatestRoundReader struct {
	config             shared.ServiceConfig
	requestRateLimiter *shared.HTTPRequestRateLimiter
}

// NewLatestRoundReader creates a reader for the configured base URL
func NewLatestRoundReader(config shared.ServiceConfig) *LatestRoundReader {
	return &LatestRoundReader{
		config:             config,
		requestRateLimiter: shared.NewHTTPRequestRateLimiter(config.RequestRateLimit),
	}
}

// ReadLatestRound fetches the landing page and parses strong#lottoDrwNo.
// Every failure is returned as a categorized ServiceError.
func (r *LatestRoundReader) ReadLatestRound(ctx context.Context) (int, error) {
	landingURL := r.config.LandingPageURL()
	logger := logrus.WithFields(logrus.Fields{
		"component": "LatestRoundReader",
		"method":    "ReadLatestRound",
		"url":       landingURL,
	})

	collector := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(shared.BrowserUserAgent),
	)
	collector.SetRequestTimeout(r.config.HTTPRequestTimeout)

	collector.OnRequest(func(req *colly.Request) {
		req.ResponseCharacterEncoding = "euc-kr"
		req.Headers.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8")
		logger.Debug("Requesting landing page")
	})

	var (
		counterText  string
		counterFound bool
	)
	collector.OnHTML(latestRoundSelector, func(e *colly.HTMLElement) {
		if counterFound {
			return
		}
		counterFound = true
		counterText = strings.TrimSpace(e.Text)
	})

	r.requestRateLimiter.EnforceRateLimit()

	if err := collector.Visit(landingURL); err != nil {
		serviceErr := shared.NewServiceError(shared.ErrorCategoryNetwork, "LANDING_FETCH_FAILED",
			"failed to fetch landing page", "LatestRoundReader", "ReadLatestRound", true, err)
		serviceErr.LogError()
		return 0, serviceErr
	}
	collector.Wait()

	if !counterFound {
		serviceErr := shared.NewServiceError(shared.ErrorCategoryMarkup, "LATEST_ROUND_MISSING",
			fmt.Sprintf("%s not present", latestRoundSelector), "LatestRoundReader", "ReadLatestRound", false, ErrLatestRoundNotFound)
		serviceErr.LogError()
		return 0, serviceErr
	}

	latestRound, err := strconv.Atoi(counterText)
	if err != nil {
		serviceErr := shared.NewServiceError(shared.ErrorCategoryFormat, "LATEST_ROUND_NOT_NUMERIC",
			fmt.Sprintf("draw counter %q is not an integer", counterText), "LatestRoundReader", "ReadLatestRound", false, err)
		serviceErr.LogError()
		return 0, serviceErr
	}

	logger.WithField("latest_round", latestRound).Info("Read latest draw number")
	return latestRound, nil
}
