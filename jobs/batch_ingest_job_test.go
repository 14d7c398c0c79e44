package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/services"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoundReader struct {
	latest int
	err    error
}

func (r stubRoundReader) ReadLatestRound(_ context.Context) (int, error) {
	return r.latest, r.err
}

type stubIngester struct {
	calls       []int
	failing     map[int]bool
	fallbacks   map[int]bool
	cancelAfter int
	cancelFunc  context.CancelFunc
	// cancelMidDraw makes the cancelling call fail the way an interrupted fetch does
	cancelMidDraw bool
}

func (s *stubIngester) IngestDraw(ctx context.Context, drawNo int) (models.DrawRecord, *models.ExtractionReport, error) {
	s.calls = append(s.calls, drawNo)
	if s.cancelFunc != nil && len(s.calls) == s.cancelAfter {
		s.cancelFunc()
		if s.cancelMidDraw {
			return models.NewDrawRecord(drawNo), &models.ExtractionReport{DrawNo: drawNo}, fmt.Errorf("draw %d not written: %w", drawNo, ctx.Err())
		}
	}

	report := &models.ExtractionReport{DrawNo: drawNo}
	if s.fallbacks[drawNo] {
		report.RecordFallback("bonus_number")
	}
	if s.failing[drawNo] {
		return models.NewDrawRecord(drawNo), report, errors.New("sink unavailable")
	}
	return models.NewDrawRecord(drawNo), report, nil
}

func newTestBatchJob(reader LatestRoundReader, ingester DrawIngester) (*BatchIngestJob, *bytes.Buffer) {
	job := NewBatchIngestJob(reader, ingester)
	output := &bytes.Buffer{}
	job.Output = output
	return job, output
}

func TestBatchIngestsEveryDrawInOrder(t *testing.T) {
	ingester := &stubIngester{}
	job, output := newTestBatchJob(stubRoundReader{latest: 3}, ingester)

	summary, err := job.Run(context.Background(), BatchRange{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, ingester.calls)
	assert.Equal(t, 3, summary.RecordsWritten)
	assert.Equal(t, 3, summary.LatestRound)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t,
		"1부터 3회차까지 파싱을 시작합니다.\n"+
			"1회차 파싱 중...\n"+
			"2회차 파싱 중...\n"+
			"3회차 파싱 중...\n"+
			"모든 회차 파싱 완료.\n",
		output.String())
}

func TestBatchReaderFailureMakesNoExtractionCalls(t *testing.T) {
	readerErr := shared.NewServiceError(shared.ErrorCategoryMarkup, "LATEST_ROUND_MISSING", "missing",
		"LatestRoundReader", "ReadLatestRound", false, services.ErrLatestRoundNotFound)
	ingester := &stubIngester{}
	job, output := newTestBatchJob(stubRoundReader{err: readerErr}, ingester)

	_, err := job.Run(context.Background(), BatchRange{})
	require.Error(t, err)

	assert.Empty(t, ingester.calls)
	assert.Equal(t,
		"오류: 메인 페이지에서 'lottoDrwNo' 태그를 찾을 수 없습니다.\n"+
			"최신 회차 번호를 가져오지 못했습니다. 종료합니다.\n",
		output.String())
}

func TestBatchContinuesPastFailedDraws(t *testing.T) {
	ingester := &stubIngester{
		failing:   map[int]bool{2: true, 4: true},
		fallbacks: map[int]bool{2: true, 5: true},
	}
	job, output := newTestBatchJob(stubRoundReader{latest: 5}, ingester)

	summary, err := job.Run(context.Background(), BatchRange{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ingester.calls)
	assert.Equal(t, 3, summary.RecordsWritten)
	assert.Equal(t, 2, summary.SinkFailures)
	assert.Equal(t, 2, summary.RecordsWithFallbacks)
	assert.True(t, strings.HasSuffix(output.String(), "모든 회차 파싱 완료.\n"))
}

func TestBatchRespectsBounds(t *testing.T) {
	cases := []struct {
		bounds   BatchRange
		expected []int
	}{
		{BatchRange{From: 4}, []int{4, 5, 6}},
		{BatchRange{To: 2}, []int{1, 2}},
		{BatchRange{From: 5, To: 99}, []int{5, 6}},
		{BatchRange{From: -3, To: 1}, []int{1}},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d-%d", tc.bounds.From, tc.bounds.To), func(t *testing.T) {
			ingester := &stubIngester{}
			job, _ := newTestBatchJob(stubRoundReader{latest: 6}, ingester)

			_, err := job.Run(context.Background(), tc.bounds)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ingester.calls)
		})
	}
}

func TestBatchRejectsInvertedRange(t *testing.T) {
	ingester := &stubIngester{}
	job, _ := newTestBatchJob(stubRoundReader{latest: 6}, ingester)

	_, err := job.Run(context.Background(), BatchRange{From: 5, To: 3})
	require.Error(t, err)
	assert.Equal(t, shared.ErrorCategoryConfiguration, shared.CategoryOf(err))
	assert.Empty(t, ingester.calls)
}

func TestBatchStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ingester := &stubIngester{cancelAfter: 2, cancelFunc: cancel}
	job, output := newTestBatchJob(stubRoundReader{latest: 10}, ingester)

	summary, err := job.Run(ctx, BatchRange{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, []int{1, 2}, ingester.calls)
	assert.NotContains(t, output.String(), "모든 회차 파싱 완료.")
}

func TestDescribeLatestRoundError(t *testing.T) {
	networkErr := shared.NewServiceError(shared.ErrorCategoryNetwork, "LANDING_FETCH_FAILED", "failed",
		"LatestRoundReader", "ReadLatestRound", true, errors.New("connection refused"))

	assert.True(t, strings.HasPrefix(DescribeLatestRoundError(networkErr), "오류: 웹 페이지 요청 중 네트워크 문제 발생: "))
	assert.True(t, strings.HasPrefix(DescribeLatestRoundError(errors.New("boom")), "오류: 최신 회차 번호 추출 중 예기치 않은 오류 발생: "))
}

func TestBatchCancelledMidDrawIsNotASinkFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ingester := &stubIngester{cancelAfter: 2, cancelFunc: cancel, cancelMidDraw: true}
	job, output := newTestBatchJob(stubRoundReader{latest: 5}, ingester)

	summary, err := job.Run(ctx, BatchRange{})
	assert.True(t, errors.Is(err, context.Canceled))

	assert.Equal(t, []int{1, 2}, ingester.calls)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, 1, summary.RecordsWritten)
	assert.Equal(t, 0, summary.SinkFailures)
	assert.NotContains(t, output.String(), "모든 회차 파싱 완료.")
}
