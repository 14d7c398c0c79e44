package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	saved []models.DrawRecord
	err   error
}

func (s *recordingSink) SaveDraw(_ context.Context, record models.DrawRecord) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, record)
	return "memory", nil
}

func TestIngestDrawWritesToFileStore(t *testing.T) {
	fake := newFakeDhlottery(t)
	fake.drawPages[1124] = wellFormedDrawPage
	store := newTestFileStore(t)

	service := NewDrawIngestionService(newTestExtractor(fake), store)
	output := &bytes.Buffer{}
	service.SetOutput(output)

	record, report, err := service.IngestDraw(context.Background(), 1124)
	require.NoError(t, err)
	assert.Len(t, record.WinningNumbers, 6)
	assert.False(t, report.HasFallbacks())

	path := store.DrawPath(1124)
	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "성공: 1124회차 데이터가 '"+path+"' 파일에 저장되었습니다.\n", output.String())
}

func TestIngestDrawWritesDefaultsWhenFetchFails(t *testing.T) {
	fake := newFakeDhlottery(t)
	fake.failingDraws[77] = true
	sink := &recordingSink{}

	service := NewDrawIngestionService(newTestExtractor(fake), sink)
	output := &bytes.Buffer{}
	service.SetOutput(output)

	_, report, err := service.IngestDraw(context.Background(), 77)
	require.NoError(t, err)
	assert.Contains(t, output.String(), "오류: 파싱 중 예외 발생 - ")
	assert.Contains(t, output.String(), "성공: 77회차 데이터가 'memory' 파일에 저장되었습니다.\n")

	assert.True(t, report.HasFallbacks())
	require.Len(t, sink.saved, 1)
	assert.Equal(t, models.NewDrawRecord(77), sink.saved[0])

	metrics := service.ExtractionMetrics()
	assert.Equal(t, 1, metrics.FetchErrors)
	assert.Equal(t, 1, metrics.FallbackCount(FieldWinningNumbers))
	assert.Equal(t, 0.0, metrics.GetCompletenessRate())
}

func TestIngestDrawReturnsSinkError(t *testing.T) {
	fake := newFakeDhlottery(t)
	fake.drawPages[2] = wellFormedDrawPage
	sinkErr := errors.New("disk full")

	service := NewDrawIngestionService(newTestExtractor(fake), &recordingSink{err: sinkErr})
	output := &bytes.Buffer{}
	service.SetOutput(output)

	_, _, err := service.IngestDraw(context.Background(), 2)
	assert.True(t, errors.Is(err, sinkErr))
	assert.Equal(t, "오류: 파일 저장 중 예외 발생 - disk full\n", output.String())
}

func TestIngestDrawPanicSavesPartialRecord(t *testing.T) {
	extractor := NewDrawExtractor(documentFetcher{parseTestDocument(t, wellFormedDrawPage)}, fakeConfigWithoutServer())
	extractor.fieldParsers[2] = func(*goquery.Document, *goquery.Selection, *models.DrawRecord) {
		panic("index out of range")
	}
	sink := &recordingSink{}

	service := NewDrawIngestionService(extractor, sink)
	output := &bytes.Buffer{}
	service.SetOutput(output)

	_, report, err := service.IngestDraw(context.Background(), 1124)
	require.NoError(t, err)
	assert.True(t, report.Panicked())

	require.Len(t, sink.saved, 1)
	saved := sink.saved[0]
	require.NotNil(t, saved.DrawDate)
	assert.Equal(t, "2024-06-15", *saved.DrawDate)
	assert.Equal(t, []int{3, 8, 17, 30, 33, 34}, saved.WinningNumbers)
	assert.Equal(t, 28, saved.BonusNumber)
	assert.Empty(t, saved.RankDetails)

	metrics := service.ExtractionMetrics()
	assert.Equal(t, 1, metrics.RecoveredPanics)
	assert.Equal(t, 0, metrics.FetchErrors)
	assert.Contains(t, output.String(), "오류: 파싱 중 예외 발생 - index out of range\n")
}

// cancellingFetcher cancels the run while the page is in flight
type cancellingFetcher struct {
	cancel context.CancelFunc
}

func (f cancellingFetcher) FetchDocument(ctx context.Context, _ string) (*goquery.Document, error) {
	f.cancel()
	return nil, ctx.Err()
}

func TestIngestDrawCancelledKeepsStoredRecord(t *testing.T) {
	fake := newFakeDhlottery(t)
	fake.drawPages[1124] = wellFormedDrawPage
	store := newTestFileStore(t)

	first := NewDrawIngestionService(newTestExtractor(fake), store)
	first.SetOutput(&bytes.Buffer{})
	_, _, err := first.IngestDraw(context.Background(), 1124)
	require.NoError(t, err)

	before, err := os.ReadFile(store.DrawPath(1124))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupted := NewDrawIngestionService(NewDrawExtractor(cancellingFetcher{cancel: cancel}, fakeConfigWithoutServer()), store)
	output := &bytes.Buffer{}
	interrupted.SetOutput(output)

	_, _, err = interrupted.IngestDraw(ctx, 1124)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, output.String())
	assert.Equal(t, 0, interrupted.ExtractionMetrics().DrawsAttempted)

	after, err := os.ReadFile(store.DrawPath(1124))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}
