package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/sirupsen/logrus"
)

// DrawSink persists one draw record and returns where it was written.
// Writing the same draw_no again replaces the earlier record.
type DrawSink interface {
	SaveDraw(ctx context.Context, record models.DrawRecord) (string, error)
}

// DrawIngestionService extracts a draw and writes it to the configured sink
type DrawIngestionService struct {
	extractor         *DrawExtractor
	sink              DrawSink
	extractionMetrics *shared.ExtractionMetrics
	serviceMetrics    *shared.ServiceMetrics
	output            io.Writer
}

// NewDrawIngestionService creates the ingestion pipeline for one sink
func NewDrawIngestionService(extractor *DrawExtractor, sink DrawSink) *DrawIngestionService {
	return &DrawIngestionService{
		extractor:         extractor,
		sink:              sink,
		extractionMetrics: shared.NewExtractionMetrics(),
		serviceMetrics:    shared.NewServiceMetrics("DrawIngestionService"),
		output:            os.Stdout,
	}
}

// SetOutput redirects the user-facing success lines
func (s *DrawIngestionService) SetOutput(w io.Writer) {
	s.output = w
}

// IngestDraw extracts drawNo and writes the record even when every field fell
// back to its default. A cancelled ctx skips the write so an interrupted run
// never replaces a stored record; that and sink failures are returned as errors.
func (s *DrawIngestionService) IngestDraw(ctx context.Context, drawNo int) (models.DrawRecord, *models.ExtractionReport, error) {
	startTime := time.Now()
	logger := logrus.WithFields(logrus.Fields{
		"component": "DrawIngestionService",
		"method":    "IngestDraw",
		"draw_no":   drawNo,
	})

	record, report := s.extractor.Extract(ctx, drawNo)
	if err := ctx.Err(); err != nil {
		logger.WithError(err).Warn("Extraction interrupted, leaving stored record untouched")
		return record, report, fmt.Errorf("draw %d not written: %w", drawNo, err)
	}

	s.extractionMetrics.RecordDraw(report.FailedFields, report.FetchError != "")
	if report.Panicked() {
		s.extractionMetrics.RecordPanic()
	}

	switch {
	case report.FetchError != "":
		fmt.Fprintf(s.output, "오류: 파싱 중 예외 발생 - %s\n", report.FetchError)
	case report.Panicked():
		fmt.Fprintf(s.output, "오류: 파싱 중 예외 발생 - %s\n", report.ParseError)
	}

	if report.HasFallbacks() {
		logger.WithFields(logrus.Fields{
			"failed_fields": report.FailedFields,
			"fetch_error":   report.FetchError,
			"parse_error":   report.ParseError,
			"completeness":  report.Completeness(),
		}).Warn("Draw record contains default values")
	}

	location, err := s.sink.SaveDraw(ctx, record)
	if err != nil {
		s.serviceMetrics.RecordRequest(false, time.Since(startTime))
		logger.WithError(err).Error("Failed to save draw record")
		fmt.Fprintf(s.output, "오류: 파일 저장 중 예외 발생 - %v\n", err)
		return record, report, err
	}

	s.serviceMetrics.RecordRequest(true, time.Since(startTime))
	fmt.Fprintf(s.output, "성공: %d회차 데이터가 '%s' 파일에 저장되었습니다.\n", drawNo, location)

	return record, report, nil
}

// ExtractionMetrics returns the per-field fallback counters
func (s *DrawIngestionService) ExtractionMetrics() *shared.ExtractionMetrics {
	return s.extractionMetrics
}

// LogSummary logs the accumulated metrics
func (s *DrawIngestionService) LogSummary() {
	s.serviceMetrics.LogSummary()
	s.extractionMetrics.LogSummary()
}
