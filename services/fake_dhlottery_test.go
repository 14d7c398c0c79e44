package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fenilmodi00/lotto-backend/shared"
	"golang.org/x/text/encoding/korean"
)

const wellFormedDrawPage = `<html><head><meta charset="euc-kr"><title>로또6/45 당첨결과</title></head>
<body>
<div class="win_result">
  <h4><strong>1124회</strong> 당첨결과</h4>
  <p class="desc">(2024년 06월 15일 추첨)</p>
  <div class="nums">
    <div class="num win">
      <strong>당첨번호</strong>
      <p>
        <span class="ball_645 lrg ball1">3</span>
        <span class="ball_645 lrg ball1">8</span>
        <span class="ball_645 lrg ball2">17</span>
        <span class="ball_645 lrg ball3">30</span>
        <span class="ball_645 lrg ball4">33</span>
        <span class="ball_645 lrg ball4">34</span>
      </p>
    </div>
    <div class="num bonus">
      <strong>보너스</strong>
      <p><span class="ball_645 lrg ball5">28</span></p>
    </div>
  </div>
</div>
<table class="tbl_data tbl_data_col">
  <thead>
    <tr><th>순위</th><th>등위별 총 당첨금액</th><th>당첨게임 수</th><th>1게임당 당첨금액</th><th>당첨기준</th><th>비고</th></tr>
  </thead>
  <tbody>
    <tr><td>1등</td><td><strong>25,194,785,252원</strong></td><td>12</td><td>2,099,565,438원</td><td>당첨번호 6개 숫자일치</td><td>자동 8
      수동 4</td></tr>
    <tr><td>2등</td><td>4,199,130,928원</td><td>69</td><td>60,856,970원</td><td>당첨번호 5개 숫자일치<br>+보너스 숫자일치</td><td></td></tr>
    <tr><td>3등</td><td>4,199,131,650원</td><td>2,850</td><td>1,473,379원</td><td>당첨번호 5개 숫자일치</td><td></td></tr>
    <tr><td>4등</td><td>7,279,935,000원</td><td>145,599</td><td>50,000원</td><td>당첨번호 4개 숫자일치</td><td></td></tr>
    <tr><td>5등</td><td>12,190,000,000원</td><td>2,438,000</td><td>5,000원</td><td>당첨번호 3개 숫자일치</td><td></td></tr>
    <tr><td colspan="4">당첨금 지급 안내</td></tr>
  </tbody>
</table>
<ul class="list_text_common">
  <li>당첨금 지급기한 : 지급개시일로부터 1년 (휴일인 경우 익영업일)</li>
  <li>총판매금액 : <strong>118,008,123,000원</strong></li>
</ul>
</body></html>`

const headingOnlyDrawPage = `<html><body>
<div class="win_result">
  <h4>제 1회 (2002년 12월 07일 추첨)</h4>
  <div class="num win"><p><span class="ball_645">10</span><span class="ball_645">23</span></p></div>
  <div class="num bonus"><p><span class="ball_645">-</span></p></div>
</div>
</body></html>`

const pageWithoutResult = `<html><body><div class="content">점검 중입니다</div></body></html>`

// fakeDhlottery serves EUC-KR encoded landing and draw pages.
type fakeDhlottery struct {
	server       *httptest.Server
	landingPage  string
	drawPages    map[int]string
	failingDraws map[int]bool
	drawRequests int64
}

func newFakeDhlottery(t *testing.T) *fakeDhlottery {
	t.Helper()

	fake := &fakeDhlottery{
		landingPage:  landingPageWithRound("1124"),
		drawPages:    map[int]string{},
		failingDraws: map[int]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/common.do", func(w http.ResponseWriter, r *http.Request) {
		writeEUCKR(t, w, fake.landingPage)
	})
	mux.HandleFunc("/gameResult.do", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fake.drawRequests, 1)

		drawNo, err := strconv.Atoi(r.URL.Query().Get("drwNo"))
		if err != nil || fake.failingDraws[drawNo] {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		page, ok := fake.drawPages[drawNo]
		if !ok {
			page = pageWithoutResult
		}
		writeEUCKR(t, w, page)
	})

	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeDhlottery) serviceConfig() shared.ServiceConfig {
	return shared.ServiceConfig{
		BaseURL:            f.server.URL,
		HTTPRequestTimeout: 5 * time.Second,
		FetchMode:          shared.FetchModeHTTP,
	}
}

func (f *fakeDhlottery) requestCount() int64 {
	return atomic.LoadInt64(&f.drawRequests)
}

func landingPageWithRound(roundText string) string {
	return fmt.Sprintf(`<html><body><div class="win_num"><h3>당첨번호</h3><strong id="lottoDrwNo">%s</strong>회</div></body></html>`, roundText)
}

func writeEUCKR(t *testing.T, w http.ResponseWriter, page string) {
	encoded, err := korean.EUCKR.NewEncoder().String(page)
	if err != nil {
		t.Errorf("encode page: %v", err)
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=euc-kr")
	_, _ = w.Write([]byte(encoded))
}

func fakeConfigWithoutServer() shared.ServiceConfig {
	return shared.ServiceConfig{
		BaseURL:            "http://127.0.0.1:1",
		HTTPRequestTimeout: time.Second,
		FetchMode:          shared.FetchModeHTTP,
	}
}
