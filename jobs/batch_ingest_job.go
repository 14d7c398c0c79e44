package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/services"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LatestRoundReader reports the most recent published draw number
type LatestRoundReader interface {
	ReadLatestRound(ctx context.Context) (int, error)
}

// DrawIngester extracts and persists a single draw
type DrawIngester interface {
	IngestDraw(ctx context.Context, drawNo int) (models.DrawRecord, *models.ExtractionReport, error)
}

// BatchRange bounds a batch run. Zero values mean 1 and the latest draw.
type BatchRange struct {
	From int
	To   int
}

// BatchSummary is the outcome of one batch run
type BatchSummary struct {
	RunID                string        `json:"run_id"`
	From                 int           `json:"from"`
	To                   int           `json:"to"`
	LatestRound          int           `json:"latest_round"`
	RecordsWritten       int           `json:"records_written"`
	SinkFailures         int           `json:"sink_failures"`
	RecordsWithFallbacks int           `json:"records_with_fallbacks"`
	Interrupted          bool          `json:"interrupted"`
	Duration             time.Duration `json:"duration"`
}

// BatchIngestJob walks draw numbers sequentially from the first to the latest draw
type BatchIngestJob struct {
	RoundReader LatestRoundReader
	Ingester    DrawIngester
	Output      io.Writer
}

func NewBatchIngestJob(roundReader LatestRoundReader, ingester DrawIngester) *BatchIngestJob {
	return &BatchIngestJob{
		RoundReader: roundReader,
		Ingester:    ingester,
		Output:      os.Stdout,
	}
}

// Run reads the latest draw number once and ingests every draw in range.
// A failed latest lookup stops the run before any draw is fetched; a failed
// draw never stops it.
func (j *BatchIngestJob) Run(ctx context.Context, bounds BatchRange) (*BatchSummary, error) {
	startTime := time.Now()
	summary := &BatchSummary{RunID: uuid.New().String()}
	logger := logrus.WithFields(logrus.Fields{
		"component": "BatchIngestJob",
		"run_id":    summary.RunID,
	})

	logger.Info("Starting batch draw ingestion")

	latestRound, err := j.RoundReader.ReadLatestRound(ctx)
	if err != nil {
		fmt.Fprintln(j.Output, DescribeLatestRoundError(err))
		fmt.Fprintln(j.Output, "최신 회차 번호를 가져오지 못했습니다. 종료합니다.")
		return summary, err
	}
	summary.LatestRound = latestRound

	from, to, err := resolveRange(bounds, latestRound)
	if err != nil {
		return summary, err
	}
	summary.From, summary.To = from, to

	fmt.Fprintf(j.Output, "%d부터 %d회차까지 파싱을 시작합니다.\n", from, to)

	var sampleErrors []error
	for drawNo := from; drawNo <= to; drawNo++ {
		if ctx.Err() != nil {
			summary.Interrupted = true
			logger.WithField("next_draw", drawNo).Warn("Batch interrupted")
			break
		}

		fmt.Fprintf(j.Output, "%d회차 파싱 중...\n", drawNo)

		_, report, err := j.Ingester.IngestDraw(ctx, drawNo)
		if err != nil && ctx.Err() != nil {
			summary.Interrupted = true
			logger.WithField("draw_no", drawNo).Warn("Batch interrupted during draw, draw not written")
			break
		}
		if report != nil && report.HasFallbacks() {
			summary.RecordsWithFallbacks++
		}
		if err != nil {
			summary.SinkFailures++
			sampleErrors = append(sampleErrors, fmt.Errorf("draw %d: %w", drawNo, err))
			logger.WithError(err).WithField("draw_no", drawNo).Error("Draw ingestion failed, continuing")
			continue
		}
		summary.RecordsWritten++
	}

	summary.Duration = time.Since(startTime)

	if !summary.Interrupted {
		fmt.Fprintln(j.Output, "모든 회차 파싱 완료.")
	}

	logFields := logrus.Fields{
		"from":                   summary.From,
		"to":                     summary.To,
		"records_written":        summary.RecordsWritten,
		"sink_failures":          summary.SinkFailures,
		"records_with_fallbacks": summary.RecordsWithFallbacks,
		"duration":               summary.Duration,
	}
	if summary.SinkFailures > 0 {
		logger.WithFields(logFields).Warn(shared.BuildBatchProcessingErrorSummary(summary.RecordsWritten, summary.SinkFailures, sampleErrors))
	} else {
		logger.WithFields(logFields).Info("Batch draw ingestion completed")
	}

	if summary.Interrupted {
		return summary, ctx.Err()
	}
	return summary, nil
}

func resolveRange(bounds BatchRange, latestRound int) (int, int, error) {
	from := bounds.From
	if from <= 0 {
		from = 1
	}

	to := bounds.To
	if to <= 0 {
		to = latestRound
	}
	if to > latestRound {
		logrus.WithFields(logrus.Fields{
			"requested_to": to,
			"latest_round": latestRound,
		}).Warn("Requested range ends after the latest draw, clamping")
		to = latestRound
	}

	if from > to {
		return 0, 0, shared.NewServiceError(shared.ErrorCategoryConfiguration, "INVALID_BATCH_RANGE",
			fmt.Sprintf("range start %d is after range end %d", from, to), "BatchIngestJob", "Run", false, nil)
	}
	return from, to, nil
}

// DescribeLatestRoundError renders a latest-lookup failure as the user-facing diagnostic line
func DescribeLatestRoundError(err error) string {
	switch {
	case errors.Is(err, services.ErrLatestRoundNotFound):
		return "오류: 메인 페이지에서 'lottoDrwNo' 태그를 찾을 수 없습니다."
	case shared.CategoryOf(err) == shared.ErrorCategoryNetwork:
		return fmt.Sprintf("오류: 웹 페이지 요청 중 네트워크 문제 발생: %v", err)
	default:
		return fmt.Sprintf("오류: 최신 회차 번호 추출 중 예기치 않은 오류 발생: %v", err)
	}
}
