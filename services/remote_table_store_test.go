package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	selectQuery string
	header      http.Header
	body        []byte
}

func newTestRemoteStore(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*RemoteTableStore, *bytes.Buffer, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			selectQuery: r.URL.Query().Get("select"),
			header:      r.Header.Clone(),
			body:        body,
		})
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	store := NewRemoteTableStore(
		shared.RemoteConfig{URL: server.URL + "/", Key: "anon-key"},
		shared.ServiceConfig{HTTPRequestTimeout: 5 * time.Second},
	)
	output := &bytes.Buffer{}
	store.SetOutput(output)
	return store, output, &requests
}

func writeJSONResponse(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestGetTableData(t *testing.T) {
	store, output, requests := newTestRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, `[{"round": 1124, "note": "자동 8 수동 4"}]`)
	})

	rows, err := store.GetTableData(context.Background(), "lottos")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1124), rows[0]["round"])
	assert.Empty(t, output.String())

	require.Len(t, *requests, 1)
	request := (*requests)[0]
	assert.Equal(t, http.MethodGet, request.method)
	assert.Equal(t, "/rest/v1/lottos", request.path)
	assert.Equal(t, "*", request.selectQuery)
	assert.Equal(t, "anon-key", request.header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", request.header.Get("Authorization"))
}

func TestGetTableDataEmpty(t *testing.T) {
	store, output, _ := newTestRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, `[]`)
	})

	rows, err := store.GetTableData(context.Background(), "lottos")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Equal(t, "'lottos' 테이블에서 데이터를 불러올 수 없습니다.\n", output.String())
}

func TestGetTableDataRejected(t *testing.T) {
	store, _, _ := newTestRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusUnauthorized, `{"message": "Invalid API key"}`)
	})

	_, err := store.GetTableData(context.Background(), "lottos")
	require.Error(t, err)
	assert.Equal(t, shared.ErrorCategoryStorage, shared.CategoryOf(err))
}

func TestInsertTableData(t *testing.T) {
	store, output, requests := newTestRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusCreated, `[{"id": 1, "round": 1124}]`)
	})

	rows, err := store.InsertTableData(context.Background(), "lottos", models.TableRow{"round": 1124, "note": "테스트"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, output.String())

	request := (*requests)[0]
	assert.Equal(t, http.MethodPost, request.method)
	assert.Equal(t, "return=representation", request.header.Get("Prefer"))

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(request.body, &sent))
	assert.Equal(t, "테스트", sent["note"])
}

func TestInsertTableDataEmptyResult(t *testing.T) {
	store, output, _ := newTestRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusCreated, `[]`)
	})

	rows, err := store.InsertTableData(context.Background(), "lottos", models.TableRow{"round": 1})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, "'lottos' 테이블에 데이터 추가에 실패했습니다.\n", output.String())
}

func TestRemoteDrawSinkSendsTableRow(t *testing.T) {
	store, _, requests := newTestRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusCreated, `[{"round": 1124}]`)
	})

	location, err := NewRemoteDrawSink(store).SaveDraw(context.Background(), sampleDrawRecord(1124))
	require.NoError(t, err)
	assert.Equal(t, "lottos:round=1124", location)

	request := (*requests)[0]
	assert.Equal(t, "/rest/v1/lottos", request.path)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(request.body, &sent))
	assert.Equal(t, float64(1124), sent["round"])
	assert.Equal(t, "2024-06-15", sent["draw_date"])
	assert.Equal(t, "정보 없음", sent["payment_deadline"])
	assert.Equal(t, float64(28), sent["bonus_number"])
	assert.Len(t, sent["winning_numbers"], 6)
}

func TestRemoteDrawSinkFailsOnEmptyInsert(t *testing.T) {
	store, _, _ := newTestRemoteStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusCreated, `[]`)
	})

	_, err := NewRemoteDrawSink(store).SaveDraw(context.Background(), sampleDrawRecord(1124))
	require.Error(t, err)
	assert.Equal(t, shared.ErrorCategoryStorage, shared.CategoryOf(err))
}
