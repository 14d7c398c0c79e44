package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileDrawStore {
	root := t.TempDir()
	return NewFileDrawStore(shared.StorageConfig{
		DrawDir:  filepath.Join(root, "draw_no"),
		RoundDir: filepath.Join(root, "round_no"),
	})
}

func sampleDrawRecord(drawNo int) models.DrawRecord {
	drawDate := "2024-06-15"
	record := models.NewDrawRecord(drawNo)
	record.DrawDate = &drawDate
	record.WinningNumbers = []int{3, 8, 17, 30, 33, 34}
	record.BonusNumber = 28
	record.RankDetails = []models.RankDetail{{
		Rank:             1,
		TotalPrizeAmount: 25194785252,
		NumWinners:       12,
		PrizePerGame:     2099565438,
		WinningCriteria:  "당첨번호 6개 숫자일치",
	}}
	record.Note = "자동 8 수동 4 <판매점>"
	record.MiscInfo.TotalSalesAmount = 118008123000
	return record
}

func TestSaveDrawIsByteStableOnOverwrite(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	path, err := store.SaveDraw(ctx, sampleDrawRecord(1124))
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = store.SaveDraw(ctx, sampleDrawRecord(1124))
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "1124.json", filepath.Base(path))
}

func TestSaveDrawFormatting(t *testing.T) {
	store := newTestFileStore(t)

	path, err := store.SaveDraw(context.Background(), sampleDrawRecord(1124))
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.True(t, strings.HasPrefix(text, "{\n    \"draw_no\": 1124,\n"))
	assert.Contains(t, text, "\"winning_criteria\": \"당첨번호 6개 숫자일치\"")
	assert.Contains(t, text, "<판매점>")
	assert.Contains(t, text, "\"payment_deadline\": \"정보 없음\"")
	assert.False(t, strings.HasSuffix(text, "\n"))
}

func TestSaveDrawWritesDefaultRecord(t *testing.T) {
	store := newTestFileStore(t)

	path, err := store.SaveDraw(context.Background(), models.NewDrawRecord(9))
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), "\"draw_date\": null")
	assert.Contains(t, string(content), "\"winning_numbers\": []")
}

func TestGetDrawRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	record := sampleDrawRecord(1124)

	_, err := store.SaveDraw(ctx, record)
	require.NoError(t, err)

	loaded, err := store.GetDraw(ctx, 1124)
	require.NoError(t, err)
	assert.Equal(t, record, *loaded)

	_, err = store.GetDraw(ctx, 1)
	assert.True(t, errors.Is(err, shared.ErrDrawNotFound))
}

func TestListDrawNumbers(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	numbers, err := store.ListDrawNumbers(ctx)
	require.NoError(t, err)
	assert.Empty(t, numbers)

	for _, drawNo := range []int{12, 3, 100} {
		_, err := store.SaveDraw(ctx, models.NewDrawRecord(drawNo))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(store.drawDir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.drawDir, "draft.json"), []byte("{}"), 0o644))

	numbers, err = store.ListDrawNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 12, 100}, numbers)
}

func TestLatestRoundFile(t *testing.T) {
	store := newTestFileStore(t)

	_, err := store.LoadLatestRound()
	assert.True(t, errors.Is(err, shared.ErrDrawNotFound))

	path, err := store.SaveLatestRound(1124)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"latest_round_no\": 1124\n}", string(content))

	latest, err := store.LoadLatestRound()
	require.NoError(t, err)
	assert.Equal(t, 1124, latest)
}
