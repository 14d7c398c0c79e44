package jobs

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LatestRoundWriter persists the latest draw number and returns its location
type LatestRoundWriter interface {
	SaveLatestRound(latestRound int) (string, error)
}

// LatestRoundJob looks up the latest draw number and records it
type LatestRoundJob struct {
	RoundReader LatestRoundReader
	Writer      LatestRoundWriter
	Output      io.Writer
}

func NewLatestRoundJob(roundReader LatestRoundReader, writer LatestRoundWriter) *LatestRoundJob {
	return &LatestRoundJob{
		RoundReader: roundReader,
		Writer:      writer,
		Output:      os.Stdout,
	}
}

// Run writes latest_round_no.json only when the lookup succeeds.
func (j *LatestRoundJob) Run(ctx context.Context) (int, error) {
	logger := logrus.WithField("component", "LatestRoundJob")

	latestRound, err := j.RoundReader.ReadLatestRound(ctx)
	if err != nil {
		fmt.Fprintln(j.Output, DescribeLatestRoundError(err))
		return 0, err
	}

	fmt.Fprintf(j.Output, "%d\n", latestRound)

	path, err := j.Writer.SaveLatestRound(latestRound)
	if err != nil {
		fmt.Fprintf(j.Output, "오류: 파일 저장 중 예외 발생 - %v\n", err)
		return latestRound, err
	}

	fmt.Fprintf(j.Output, "성공: %d회차 데이터가 '%s' 파일에 저장되었습니다.\n", latestRound, path)
	logger.WithFields(logrus.Fields{
		"latest_round": latestRound,
		"path":         path,
	}).Info("Latest draw number recorded")

	return latestRound, nil
}
