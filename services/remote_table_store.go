package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fenilmodi00/lotto-backend/models"
	"github.com/fenilmodi00/lotto-backend/shared"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const restPathPrefix = "/rest/v1/"

// RemoteTableStore reads and inserts rows in a hosted PostgREST table store.
type RemoteTableStore struct {
	client *resty.Client
	output io.Writer
}

// NewRemoteTableStore creates a store client from validated credentials.
// Use config.LoadRemoteStoreConfig to obtain them.
func NewRemoteTableStore(remote shared.RemoteConfig, service shared.ServiceConfig) *RemoteTableStore {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(remote.URL, "/"))
	client.SetHeader("apikey", remote.Key)
	client.SetAuthToken(remote.Key)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(service.HTTPRequestTimeout)
	client.SetRetryCount(service.MaxRetryAttempts)

	return &RemoteTableStore{
		client: client,
		output: os.Stdout,
	}
}

// SetOutput redirects the user-facing diagnostics
func (s *RemoteTableStore) SetOutput(w io.Writer) {
	s.output = w
}

// GetTableData selects every row of table. An empty table yields an empty slice.
func (s *RemoteTableStore) GetTableData(ctx context.Context, table string) ([]models.TableRow, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "RemoteTableStore",
		"method":    "GetTableData",
		"table":     table,
	})

	var rows []models.TableRow
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get(restPathPrefix + table)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryNetwork, "REMOTE_SELECT_FAILED",
			fmt.Sprintf("failed to select from %s", table), "RemoteTableStore", "GetTableData", true, err)
	}

	logger.WithFields(logrus.Fields{
		"status_code": res.StatusCode(),
		"body":        res.String(),
	}).Info("Raw response")

	if res.IsError() {
		return nil, shared.NewServiceError(shared.ErrorCategoryStorage, "REMOTE_SELECT_REJECTED",
			fmt.Sprintf("select from %s returned HTTP %d", table, res.StatusCode()), "RemoteTableStore", "GetTableData", false, nil).
			WithDetails(res.String())
	}

	if len(rows) == 0 {
		fmt.Fprintf(s.output, "'%s' 테이블에서 데이터를 불러올 수 없습니다.\n", table)
		return []models.TableRow{}, nil
	}
	return rows, nil
}

// InsertTableData inserts one row and returns the stored representation.
// A rejected or empty insert yields an empty slice after printing a diagnostic.
func (s *RemoteTableStore) InsertTableData(ctx context.Context, table string, row models.TableRow) ([]models.TableRow, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "RemoteTableStore",
		"method":    "InsertTableData",
		"table":     table,
	})

	var rows []models.TableRow
	res, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetBody(row).
		SetResult(&rows).
		Post(restPathPrefix + table)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryNetwork, "REMOTE_INSERT_FAILED",
			fmt.Sprintf("failed to insert into %s", table), "RemoteTableStore", "InsertTableData", true, err)
	}

	logger.WithFields(logrus.Fields{
		"status_code": res.StatusCode(),
		"body":        res.String(),
	}).Info("Insert response")

	if res.IsError() {
		fmt.Fprintf(s.output, "'%s' 테이블에 데이터 추가에 실패했습니다.\n", table)
		return nil, shared.NewServiceError(shared.ErrorCategoryStorage, "REMOTE_INSERT_REJECTED",
			fmt.Sprintf("insert into %s returned HTTP %d", table, res.StatusCode()), "RemoteTableStore", "InsertTableData", false, nil).
			WithDetails(res.String())
	}

	if len(rows) == 0 {
		fmt.Fprintf(s.output, "'%s' 테이블에 데이터 추가에 실패했습니다.\n", table)
		return []models.TableRow{}, nil
	}
	return rows, nil
}

// RemoteDrawSink inserts draw records into the remote lottos table
type RemoteDrawSink struct {
	store *RemoteTableStore
	table string
}

// NewRemoteDrawSink wraps store as a draw sink
func NewRemoteDrawSink(store *RemoteTableStore) *RemoteDrawSink {
	return &RemoteDrawSink{store: store, table: models.DrawTableName}
}

// SaveDraw inserts the record as one row
func (s *RemoteDrawSink) SaveDraw(ctx context.Context, record models.DrawRecord) (string, error) {
	rows, err := s.store.InsertTableData(ctx, s.table, record.ToTableRow())
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", shared.NewServiceError(shared.ErrorCategoryStorage, "REMOTE_INSERT_EMPTY",
			fmt.Sprintf("insert of draw %d returned no rows", record.DrawNo), "RemoteDrawSink", "SaveDraw", false, nil)
	}
	return fmt.Sprintf("%s:round=%d", s.table, record.DrawNo), nil
}
