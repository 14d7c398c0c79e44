package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/sirupsen/logrus"
)

// Field names used in extraction reports and metrics.
const (
	FieldDrawDate         = "draw_date"
	FieldWinningNumbers   = "winning_numbers"
	FieldBonusNumber      = "bonus_number"
	FieldRankDetails      = "rank_details"
	FieldNote             = "note"
	FieldPaymentDeadline  = "payment_deadline"
	FieldTotalSalesAmount = "total_sales_amount"
)

const (
	paymentDeadlineLabel  = "당첨금 지급기한"
	totalSalesAmountLabel = "총판매금액"
	noteFragmentSeparator = " / "
	minRankColumns        = 5
	noteColumnIndex       = 5
)

// fieldParser fills one group of record fields from the result page.
type fieldParser func(document *goquery.Document, winResult *goquery.Selection, record *models.DrawRecord)

// DrawExtractor turns a dhlottery draw result page into a DrawRecord
type DrawExtractor struct {
	fetcher        PageFetcher
	config         shared.ServiceConfig
	utilityService *UtilityService
	fieldParsers   []fieldParser
}

// NewDrawExtractor creates an extractor that fetches pages through fetcher
func NewDrawExtractor(fetcher PageFetcher, config shared.ServiceConfig) *DrawExtractor {
	e := &DrawExtractor{
		fetcher:        fetcher,
		config:         config,
		utilityService: NewUtilityService(),
	}
	// page order: date, balls, rank table, misc list
	e.fieldParsers = []fieldParser{
		e.applyDrawDate,
		e.applyNumbers,
		e.applyRankTable,
		e.applyMiscInfo,
	}
	return e
}

// Extract fetches draw drawNo and parses it. It never fails: fetch errors
// and parsing panics are logged and the record keeps whatever was populated
// before the failure. The report lists the fields that fell back to defaults;
// a fetch error lands in FetchError and a recovered panic in ParseError.
func (e *DrawExtractor) Extract(ctx context.Context, drawNo int) (record models.DrawRecord, report *models.ExtractionReport) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "DrawExtractor",
		"method":    "Extract",
		"draw_no":   drawNo,
	})

	record = models.NewDrawRecord(drawNo)
	report = &models.ExtractionReport{DrawNo: drawNo}

	document, err := e.fetcher.FetchDocument(ctx, e.config.DrawResultURL(drawNo))
	if err != nil {
		logger.WithError(err).Error("Failed to fetch draw page")
		report.FetchError = err.Error()
		e.finalizeReport(&record, report)
		return record, report
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.WithField("panic", recovered).Error("Recovered from panic while parsing draw page")
			report.ParseError = fmt.Sprintf("%v", recovered)
			e.finalizeReport(&record, report)
		}
	}()

	e.parseDocument(document, &record)
	e.finalizeReport(&record, report)

	logger.WithFields(logrus.Fields{
		"winning_numbers": len(record.WinningNumbers),
		"rank_rows":       len(record.RankDetails),
		"failed_fields":   report.FailedFields,
	}).Debug("Parsed draw page")

	return record, report
}

// ExtractFromDocument parses an already loaded page without any network access.
func (e *DrawExtractor) ExtractFromDocument(drawNo int, document *goquery.Document) models.DrawRecord {
	record := models.NewDrawRecord(drawNo)
	e.parseDocument(document, &record)
	return record
}

// parseDocument writes into record field by field, so a panic part-way
// leaves earlier fields populated.
func (e *DrawExtractor) parseDocument(document *goquery.Document, record *models.DrawRecord) {
	winResult := document.Find("div.win_result").First()
	if winResult.Length() == 0 {
		return
	}

	for _, parse := range e.fieldParsers {
		parse(document, winResult, record)
	}
}

func (e *DrawExtractor) applyDrawDate(_ *goquery.Document, winResult *goquery.Selection, record *models.DrawRecord) {
	if drawDate, ok := e.parseDrawDate(winResult); ok {
		record.DrawDate = &drawDate
	}
}

func (e *DrawExtractor) applyNumbers(_ *goquery.Document, winResult *goquery.Selection, record *models.DrawRecord) {
	record.WinningNumbers = e.parseWinningNumbers(winResult)
	record.BonusNumber = e.parseBonusNumber(winResult)
}

func (e *DrawExtractor) applyRankTable(document *goquery.Document, _ *goquery.Selection, record *models.DrawRecord) {
	table := document.Find("table.tbl_data.tbl_data_col").First()
	if table.Length() == 0 {
		return
	}
	rankDetails, noteFragments := e.parseRankTable(table)
	record.RankDetails = rankDetails
	record.Note = e.utilityService.CleanNoteText(strings.Join(noteFragments, noteFragmentSeparator))
}

func (e *DrawExtractor) applyMiscInfo(document *goquery.Document, _ *goquery.Selection, record *models.DrawRecord) {
	e.parseMiscInfo(document, &record.MiscInfo)
}

// parseDrawDate reads "(YYYY년 MM월 DD일 추첨)" from the heading and lets a
// p.desc carrying the same marker override it. Text without the marker is
// ignored, and an empty result means no date.
func (e *DrawExtractor) parseDrawDate(winResult *goquery.Selection) (string, bool) {
	var rawDate string

	if heading := winResult.Find("h4").First(); heading.Length() > 0 {
		text := strings.TrimSpace(heading.Text())
		if strings.Contains(text, "(") && strings.Contains(text, "추첨)") {
			text = text[strings.LastIndex(text, "(")+1:]
			rawDate = strings.TrimSpace(strings.ReplaceAll(text, "추첨)", ""))
		}
	}

	if desc := winResult.Find("p.desc").First(); desc.Length() > 0 {
		text := strings.TrimSpace(desc.Text())
		if strings.Contains(text, "추첨)") {
			text = strings.ReplaceAll(text, "(", "")
			rawDate = strings.TrimSpace(strings.ReplaceAll(text, " 추첨)", ""))
		}
	}

	if rawDate == "" {
		return "", false
	}
	return e.utilityService.ParseKoreanDateToISO(rawDate), true
}

func (e *DrawExtractor) parseWinningNumbers(winResult *goquery.Selection) []int {
	numbers := []int{}
	winResult.Find("div.num.win span.ball_645").Each(func(_ int, ball *goquery.Selection) {
		if value, ok := e.utilityService.ParseBallNumber(ball.Text()); ok {
			numbers = append(numbers, value)
		}
	})
	return numbers
}

func (e *DrawExtractor) parseBonusNumber(winResult *goquery.Selection) int {
	ball := winResult.Find("div.num.bonus span.ball_645").First()
	if ball.Length() == 0 {
		return 0
	}
	value, _ := e.utilityService.ParseBallNumber(ball.Text())
	return value
}

// parseRankTable skips the header row and any row with fewer than five cells.
// A non-empty sixth cell contributes a note fragment.
func (e *DrawExtractor) parseRankTable(table *goquery.Selection) ([]models.RankDetail, []string) {
	rankDetails := []models.RankDetail{}
	var noteFragments []string

	table.Find("tr").Each(func(rowIndex int, row *goquery.Selection) {
		if rowIndex == 0 {
			return
		}

		cells := row.Find("td")
		if cells.Length() < minRankColumns {
			return
		}

		cellText := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		rankDetails = append(rankDetails, models.RankDetail{
			Rank:             e.utilityService.ParseRank(cellText(0)),
			TotalPrizeAmount: e.utilityService.ParseAmount(cellText(1)),
			NumWinners:       e.utilityService.ParseCount(cellText(2)),
			PrizePerGame:     e.utilityService.ParseAmount(cellText(3)),
			WinningCriteria:  cellText(4),
		})

		if cells.Length() > noteColumnIndex {
			if fragment := cellText(noteColumnIndex); fragment != "" {
				noteFragments = append(noteFragments, fragment)
			}
		}
	})

	return rankDetails, noteFragments
}

func (e *DrawExtractor) parseMiscInfo(document *goquery.Document, misc *models.MiscInfo) {
	document.Find("ul.list_text_common").First().Find("li").Each(func(_ int, item *goquery.Selection) {
		text := strings.TrimSpace(item.Text())

		switch {
		case strings.Contains(text, paymentDeadlineLabel):
			misc.PaymentDeadline = strings.TrimSpace(strings.ReplaceAll(text, paymentDeadlineLabel+" :", ""))

		case strings.Contains(text, totalSalesAmountLabel):
			amountText := strings.ReplaceAll(text, totalSalesAmountLabel+" :", "")
			if strong := item.Find("strong").First(); strong.Length() > 0 {
				amountText = strong.Text()
			}
			misc.TotalSalesAmount = e.utilityService.ParseAmount(amountText)
		}
	})
}

// finalizeReport classifies each field as extracted or fallen back by
// comparing it with the default value.
func (e *DrawExtractor) finalizeReport(record *models.DrawRecord, report *models.ExtractionReport) {
	report.ExtractedFields = nil
	report.FailedFields = nil

	track := func(field string, extracted bool) {
		if extracted {
			report.RecordExtracted(field)
		} else {
			report.RecordFallback(field)
		}
	}

	track(FieldDrawDate, record.DrawDate != nil)
	track(FieldWinningNumbers, len(record.WinningNumbers) > 0)
	track(FieldBonusNumber, record.BonusNumber != 0)
	track(FieldRankDetails, len(record.RankDetails) > 0)
	track(FieldNote, record.Note != "")
	track(FieldPaymentDeadline, record.MiscInfo.PaymentDeadline != models.DefaultPaymentDeadline)
	track(FieldTotalSalesAmount, record.MiscInfo.TotalSalesAmount != 0)
}
