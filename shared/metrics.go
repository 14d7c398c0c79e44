package shared

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceMetrics tracks performance and success metrics for services
type ServiceMetrics struct {
	ServiceName           string        `json:"service_name"`
	TotalRequests         int64         `json:"total_requests"`
	SuccessfulRequests    int64         `json:"successful_requests"`
	FailedRequests        int64         `json:"failed_requests"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	MinProcessingTime     time.Duration `json:"min_processing_time"`
	MaxProcessingTime     time.Duration `json:"max_processing_time"`
	LastUpdated           time.Time     `json:"last_updated"`
	mutex                 sync.RWMutex
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		ServiceName: serviceName,
		LastUpdated: time.Now(),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRequests++
	m.TotalProcessingTime += processingTime
	m.AverageProcessingTime = time.Duration(int64(m.TotalProcessingTime) / m.TotalRequests)

	if m.MinProcessingTime == 0 || processingTime < m.MinProcessingTime {
		m.MinProcessingTime = processingTime
	}
	if processingTime > m.MaxProcessingTime {
		m.MaxProcessingTime = processingTime
	}

	if success {
		m.SuccessfulRequests++
	} else {
		m.FailedRequests++
	}

	m.LastUpdated = time.Now()
}

// GetSuccessRate returns the success rate as a percentage
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalRequests == 0 {
		return 0.0
	}

	return float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100.0
}

// LogSummary logs a metrics summary
func (m *ServiceMetrics) LogSummary() {
	successRate := m.GetSuccessRate()

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	logrus.WithFields(logrus.Fields{
		"service_name":            m.ServiceName,
		"total_requests":          m.TotalRequests,
		"successful_requests":     m.SuccessfulRequests,
		"failed_requests":         m.FailedRequests,
		"success_rate":            successRate,
		"average_processing_time": m.AverageProcessingTime,
		"min_processing_time":     m.MinProcessingTime,
		"max_processing_time":     m.MaxProcessingTime,
	}).Info("Service metrics summary")
}

// HTTPMetrics tracks page fetch results
type HTTPMetrics struct {
	TotalRequests       int64            `json:"total_requests"`
	SuccessfulRequests  int64            `json:"successful_requests"`
	FailedRequests      int64            `json:"failed_requests"`
	TotalResponseTime   time.Duration    `json:"total_response_time"`
	AverageResponseTime time.Duration    `json:"average_response_time"`
	StatusCodeCounts    map[int]int64    `json:"status_code_counts"`
	ErrorCounts         map[string]int64 `json:"error_counts"`
	mutex               sync.RWMutex
}

// NewHTTPMetrics creates a new HTTP metrics tracker
func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		StatusCodeCounts: make(map[int]int64),
		ErrorCounts:      make(map[string]int64),
	}
}

// RecordHTTPRequest records an HTTP request with its result
func (hm *HTTPMetrics) RecordHTTPRequest(success bool, statusCode int, responseTime time.Duration, errorType string) {
	hm.mutex.Lock()
	defer hm.mutex.Unlock()

	hm.TotalRequests++
	hm.TotalResponseTime += responseTime
	hm.AverageResponseTime = time.Duration(int64(hm.TotalResponseTime) / hm.TotalRequests)

	if success {
		hm.SuccessfulRequests++
	} else {
		hm.FailedRequests++
	}

	if statusCode != 0 {
		hm.StatusCodeCounts[statusCode]++
	}

	if errorType != "" {
		hm.ErrorCounts[errorType]++
	}
}

// LogHTTPSummary logs HTTP metrics
func (hm *HTTPMetrics) LogHTTPSummary() {
	hm.mutex.RLock()
	defer hm.mutex.RUnlock()

	logrus.WithFields(logrus.Fields{
		"total_requests":        hm.TotalRequests,
		"successful_requests":   hm.SuccessfulRequests,
		"failed_requests":       hm.FailedRequests,
		"average_response_time": hm.AverageResponseTime,
		"status_code_counts":    hm.StatusCodeCounts,
		"error_counts":          hm.ErrorCounts,
	}).Info("HTTP metrics summary")
}

// ExtractionMetrics counts, per record field, how often extraction fell back to the default
type ExtractionMetrics struct {
	DrawsAttempted  int            `json:"draws_attempted"`
	DrawsComplete   int            `json:"draws_complete"`
	FetchErrors     int            `json:"fetch_errors"`
	RecoveredPanics int            `json:"recovered_panics"`
	FieldFallbacks  map[string]int `json:"field_fallbacks"`
	mutex           sync.RWMutex
}

// NewExtractionMetrics creates a new extraction metrics tracker
func NewExtractionMetrics() *ExtractionMetrics {
	return &ExtractionMetrics{
		FieldFallbacks: make(map[string]int),
	}
}

// RecordDraw records the outcome of one draw extraction
func (m *ExtractionMetrics) RecordDraw(failedFields []string, fetchFailed bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.DrawsAttempted++
	if fetchFailed {
		m.FetchErrors++
	}
	if len(failedFields) == 0 && !fetchFailed {
		m.DrawsComplete++
	}
	for _, field := range failedFields {
		m.FieldFallbacks[field]++
	}
}

// RecordPanic records a parsing panic that was recovered at the top level
func (m *ExtractionMetrics) RecordPanic() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.RecoveredPanics++
}

// FallbackCount returns how many draws fell back on the given field
func (m *ExtractionMetrics) FallbackCount(field string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.FieldFallbacks[field]
}

// GetCompletenessRate returns the share of draws extracted without any fallback
func (m *ExtractionMetrics) GetCompletenessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.DrawsAttempted == 0 {
		return 0.0
	}

	return float64(m.DrawsComplete) / float64(m.DrawsAttempted) * 100.0
}

// LogSummary logs an extraction metrics summary
func (m *ExtractionMetrics) LogSummary() {
	completenessRate := m.GetCompletenessRate()

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	fields := make([]string, 0, len(m.FieldFallbacks))
	for field := range m.FieldFallbacks {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	logrus.WithFields(logrus.Fields{
		"draws_attempted":   m.DrawsAttempted,
		"draws_complete":    m.DrawsComplete,
		"completeness_rate": completenessRate,
		"fetch_errors":      m.FetchErrors,
		"recovered_panics":  m.RecoveredPanics,
		"fallback_fields":   fields,
		"field_fallbacks":   m.FieldFallbacks,
	}).Info("Draw extraction metrics summary")
}
