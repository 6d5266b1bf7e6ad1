package projections

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// UnassignedLabel groups members whose scheme id matches no list.
const UnassignedLabel = "Unassigned"

// reportRenderer converts report Markdown to HTML. Raw HTML in the input is
// escaped because WithUnsafe is not set.
var reportRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

// GetReportSummaryQuery carries query parameters.
type GetReportSummaryQuery struct {
	GeneratedAt time.Time
	Location    *time.Location
}

// ListCount is the member tally of one list.
type ListCount struct {
	ListID  string
	Title   string
	Members int
	Prized  int
}

// GetReportSummaryResult carries the query result.
type GetReportSummaryResult struct {
	Lists    int
	Members  int
	Active   int
	Prized   int
	PerList  []ListCount
	Markdown string
	HTML     string
}

// GetReportSummaryDeps holds dependencies for GetReportSummary.
type GetReportSummaryDeps struct {
	ListStore   ListStore
	MemberStore MemberStore
}

// QueryGetReportSummary tallies members per list and renders the summary.
// POST: PerList follows the list order (newest first) with the unassigned
// bucket last when non-empty
func QueryGetReportSummary(ctx context.Context, query GetReportSummaryQuery, deps GetReportSummaryDeps) (GetReportSummaryResult, error) {
	lists := deps.ListStore.List(ctx)
	members := deps.MemberStore.List(ctx)

	res := GetReportSummaryResult{Lists: len(lists), Members: len(members)}
	index := make(map[string]int, len(lists))
	for _, l := range lists {
		index[l.ID] = len(res.PerList)
		res.PerList = append(res.PerList, ListCount{ListID: l.ID, Title: l.DisplayTitle()})
	}

	unassigned := ListCount{Title: UnassignedLabel}
	for _, m := range members {
		if m.HasPrized {
			res.Prized++
		} else {
			res.Active++
		}
		bucket := &unassigned
		if i, ok := index[m.SchemeID]; ok {
			bucket = &res.PerList[i]
		}
		bucket.Members++
		if m.HasPrized {
			bucket.Prized++
		}
	}
	if unassigned.Members > 0 {
		res.PerList = append(res.PerList, unassigned)
	}

	res.Markdown = reportMarkdown(res, query)
	html, err := RenderMarkdown(res.Markdown)
	if err != nil {
		return GetReportSummaryResult{}, err
	}
	res.HTML = html
	return res, nil
}

func reportMarkdown(res GetReportSummaryResult, query GetReportSummaryQuery) string {
	var b strings.Builder
	b.WriteString("# Chit fund summary\n\n")
	if !query.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated %s\n\n", formatCreated(query.GeneratedAt, query.Location))
	}
	b.WriteString("| Lists | Members | Active | Prized |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n\n", res.Lists, res.Members, res.Active, res.Prized)

	b.WriteString("## Members per list\n\n")
	if len(res.PerList) == 0 {
		b.WriteString("No lists yet.\n")
		return b.String()
	}
	b.WriteString("| List | Members | Prized |\n|---|---:|---:|\n")
	for _, c := range res.PerList {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", escapeCell(c.Title), c.Members, c.Prized)
	}
	return b.String()
}

// escapeCell keeps user titles from breaking the table or injecting markup.
func escapeCell(s string) string {
	r := strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// RenderMarkdown converts Markdown to HTML.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := reportRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
