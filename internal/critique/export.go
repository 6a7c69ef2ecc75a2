package critique

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/logger"
	"github.com/csheth/critic/internal/perspective"
)

// ReportFilename is the name every downloaded report is saved under.
const ReportFilename = "CriticalThinkingReport.pdf"

// Saver materializes a downloaded report and returns where it went.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// ExportJob renders the result set that was current when it began.
type ExportJob struct {
	ID           string
	AnswerLength perspective.AnswerLength

	session *Session
	results *ResultSet
	started time.Time
}

// Export downloads the current result set as a PDF report. Without a result
// set it returns ErrNoResult and while another export runs it returns
// ErrExportInFlight; neither sends a request or changes state.
func (s *Session) Export(ctx context.Context) (string, error) {
	job, err := s.BeginExport()
	if err != nil {
		return "", err
	}
	return job.Run(ctx)
}

// BeginExport enters Exporting with a snapshot of the current result set.
func (s *Session) BeginExport() (*ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.results == nil {
		return nil, ErrNoResult
	}
	if s.exporting {
		return nil, ErrExportInFlight
	}
	job := &ExportJob{
		ID:           s.newID(),
		AnswerLength: s.input.AnswerLength,
		session:      s,
		results:      s.results,
		started:      time.Now(),
	}
	s.exporting = true
	s.exportID = job.ID
	s.exportErr = ""
	s.log.InfoWithFields("exporting report", []logger.Field{
		logger.F("export", job.ID),
		logger.F("attempt", job.results.AttemptID()),
	})
	return job, nil
}

// Run calls the report service and saves the file exactly once on success.
func (job *ExportJob) Run(ctx context.Context) (path string, err error) {
	s := job.session
	defer func() {
		if r := recover(); r != nil {
			path, err = "", &ExportError{Message: MsgReportDownload, Err: fmt.Errorf("panic: %v", r)}
		}
		s.endExport(job, path, err)
	}()

	report, err := s.client.GenerateReport(ctx, api.ReportRequest{
		Analysis:     job.results.Wire(),
		AnswerLength: string(job.AnswerLength),
	})
	if err != nil {
		return "", &ExportError{Message: exportMessage(err), Err: err}
	}
	if report.Filename != "" && report.Filename != ReportFilename {
		s.log.Debug("service suggested %q; saving as %s", report.Filename, ReportFilename)
	}
	if s.saver == nil {
		return "", &ExportError{Message: MsgReportDownload, Err: errors.New("no report destination configured")}
	}
	path, err = s.saver.Save(ReportFilename, report.Data)
	if err != nil {
		return "", &ExportError{Message: MsgReportDownload, Err: err}
	}
	return path, nil
}

func (s *Session) endExport(job *ExportJob, path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exportID != job.ID {
		return
	}
	s.exporting = false
	fields := []logger.Field{logger.F("export", job.ID), logger.Duration(time.Since(job.started))}
	if err != nil {
		s.exportErr = UserMessage(err)
		s.log.WarnWithFields("export failed: %s", append(fields, logger.Error(err)), s.exportErr)
		return
	}
	s.lastReport = path
	s.log.InfoWithFields("report saved", append(fields, logger.F("path", path)))
}

// exportMessage covers failures of the report service call. Saving the
// returned bytes fails with MsgReportDownload instead.
func exportMessage(err error) string {
	if detail := api.DetailOf(err); detail != "" {
		return detail
	}
	return MsgReportFailed
}
