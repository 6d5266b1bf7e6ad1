package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "chitfund/internal/adapters/email"
	"chitfund/internal/application/projections"
)

// Report delivery channels, used as metric labels.
const (
	ChannelEmail   = "email"
	ChannelArchive = "archive"
)

// Report errors
var (
	ErrNoReportRecipients = errors.New("no report recipients configured")
	ErrArchiveDisabled    = errors.New("report archive is not configured")
)

// ReportArchiver stores a rendered report.
type ReportArchiver interface {
	Archive(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Enabled() bool
}

// ReportRecorder counts report deliveries.
type ReportRecorder interface {
	RecordReport(channel string, ok bool)
}

// ReportInput carries input for the report orchestrators.
type ReportInput struct {
	GeneratedAt time.Time
	Location    *time.Location
}

// SendReportDeps holds dependencies for SendReport.
type SendReportDeps struct {
	ListStore   projections.ListStore
	MemberStore projections.MemberStore
	Sender      emailAdapter.Sender
	From        string
	To          []string
	Recorder    ReportRecorder
}

// SendReportResult carries the provider's receipt.
type SendReportResult struct {
	MessageID  string
	Recipients int
}

// ExecuteSendReport renders the summary and emails it with the Markdown source attached.
// PRE: at least one recipient is configured
// POST: Returns the provider error unchanged on failure
func ExecuteSendReport(ctx context.Context, input ReportInput, deps SendReportDeps) (SendReportResult, error) {
	if len(deps.To) == 0 {
		return SendReportResult{}, ErrNoReportRecipients
	}
	summary, err := reportSummary(ctx, input, deps.ListStore, deps.MemberStore)
	if err != nil {
		return SendReportResult{}, err
	}

	res, err := deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:       deps.To,
		From:     deps.From,
		Subject:  "Chit fund summary " + input.GeneratedAt.Format("2006-01-02"),
		HTML:     summary.HTML,
		Text:     summary.Markdown,
		Category: "report",
		Attachments: []emailAdapter.Attachment{
			{Filename: reportKey(input.GeneratedAt), Content: []byte(summary.Markdown)},
		},
	})
	recordReport(deps.Recorder, ChannelEmail, err == nil)
	if err != nil {
		slog.Error("report_send_failed", "recipients", len(deps.To), "error", err)
		return SendReportResult{}, fmt.Errorf("send report: %w", err)
	}
	slog.Info("report_sent", "message_id", res.MessageID, "recipients", len(deps.To))
	return SendReportResult{MessageID: res.MessageID, Recipients: len(deps.To)}, nil
}

// ArchiveReportDeps holds dependencies for ArchiveReport.
type ArchiveReportDeps struct {
	ListStore   projections.ListStore
	MemberStore projections.MemberStore
	Archiver    ReportArchiver
	Recorder    ReportRecorder
}

// ArchiveReportResult carries where the report was stored.
type ArchiveReportResult struct {
	Location string
}

// ExecuteArchiveReport renders the summary and uploads its Markdown.
// PRE: the archiver is enabled
func ExecuteArchiveReport(ctx context.Context, input ReportInput, deps ArchiveReportDeps) (ArchiveReportResult, error) {
	if deps.Archiver == nil || !deps.Archiver.Enabled() {
		return ArchiveReportResult{}, ErrArchiveDisabled
	}
	summary, err := reportSummary(ctx, input, deps.ListStore, deps.MemberStore)
	if err != nil {
		return ArchiveReportResult{}, err
	}
	loc, err := deps.Archiver.Archive(ctx, reportKey(input.GeneratedAt), []byte(summary.Markdown), "text/markdown; charset=utf-8")
	recordReport(deps.Recorder, ChannelArchive, err == nil)
	if err != nil {
		slog.Error("report_archive_failed", "error", err)
		return ArchiveReportResult{}, fmt.Errorf("archive report: %w", err)
	}
	slog.Info("report_archived", "location", loc)
	return ArchiveReportResult{Location: loc}, nil
}

func reportSummary(ctx context.Context, input ReportInput, lists projections.ListStore, members projections.MemberStore) (projections.GetReportSummaryResult, error) {
	return projections.QueryGetReportSummary(ctx,
		projections.GetReportSummaryQuery{GeneratedAt: input.GeneratedAt, Location: input.Location},
		projections.GetReportSummaryDeps{ListStore: lists, MemberStore: members})
}

// reportKey names a report file by its UTC generation time.
func reportKey(at time.Time) string {
	return "summary-" + at.UTC().Format("20060102T150405Z") + ".md"
}

func recordReport(r ReportRecorder, channel string, ok bool) {
	if r != nil {
		r.RecordReport(channel, ok)
	}
}
