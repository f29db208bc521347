package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/handletrace/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.InvestigationReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeDiscoveries(md, report)
	w.writeClusters(md, report)
	w.writeMetrics(md, report)
	w.writeNotes(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.InvestigationReport) {
	md.H1("Handle Trace Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed Handle", "`" + report.SeedHandle + "`"},
			{"Investigation ID", "`" + report.ID + "`"},
			{"Started", report.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Candidates Generated", strconv.Itoa(report.CandidatesGenerated)},
			{"Probes Issued", strconv.Itoa(report.ProbesIssued)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.InvestigationReport) string {
	switch report.Status {
	case string(model.StatusFinalized):
		return "✅ Finalized"
	case string(model.StatusFailed):
		return "❌ Failed"
	default:
		return "⏳ " + report.Status
	}
}

// writeDiscoveries writes the confirmed accounts table.
func (w *MarkdownWriter) writeDiscoveries(md *markdown.Markdown, report *model.InvestigationReport) {
	md.H2("Discovered Accounts")
	md.PlainText("")

	if len(report.Discoveries) == 0 {
		md.PlainText("No accounts confirmed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Discoveries))
	for _, d := range report.Discoveries {
		handle := "`" + d.Handle + "`"
		if d.ProfileURL != "" {
			handle = fmt.Sprintf("[`%s`](%s)", d.Handle, d.ProfileURL)
		}
		rows = append(rows, []string{
			d.Platform,
			handle,
			fmt.Sprintf("%.2f", d.Confidence),
			d.Method,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Handle", "Confidence", "Method"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, report)
}

// writePieChart writes a mermaid pie chart of discoveries per platform.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.InvestigationReport) {
	perPlatform := make(map[string]uint64)
	order := make([]string, 0)
	for _, d := range report.Discoveries {
		if _, seen := perPlatform[d.Platform]; !seen {
			order = append(order, d.Platform)
		}
		perPlatform[d.Platform]++
	}
	if len(order) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Accounts per Platform"),
		piechart.WithShowData(true),
	)
	for _, platform := range order {
		chart.LabelAndIntValue(platform, perPlatform[platform])
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeClusters writes the identity cluster section with an alert that
// scales with the strongest cluster confidence.
func (w *MarkdownWriter) writeClusters(md *markdown.Markdown, report *model.InvestigationReport) {
	md.H2("Identity Clusters")
	md.PlainText("")

	if len(report.Clusters) == 0 {
		md.Note("No account pairs crossed the correlation threshold.")
		md.PlainText("")
		return
	}

	var strongest float64
	for _, c := range report.Clusters {
		if c.Confidence > strongest {
			strongest = c.Confidence
		}

		md.PlainText(fmt.Sprintf("### Cluster %d (confidence %.2f)", c.ID, c.Confidence))
		md.PlainText("")
		md.BulletList(c.Accounts...)
		md.PlainText("")
		if len(c.Evidence) > 0 {
			md.PlainText("Supporting evidence:")
			md.PlainText("")
			md.BulletList(c.Evidence...)
			md.PlainText("")
		}
	}

	switch {
	case strongest >= 0.9:
		md.Cautionf(
			"Very high confidence linkage: %d cluster(s), strongest at %.2f. These accounts almost certainly share an owner.",
			len(report.Clusters), strongest,
		)
	case strongest >= 0.8:
		md.Warningf(
			"Strong linkage detected: %d cluster(s), strongest at %.2f.",
			len(report.Clusters), strongest,
		)
	default:
		md.Importantf(
			"%d cluster(s) crossed the correlation threshold. Review the supporting evidence before drawing conclusions.",
			len(report.Clusters),
		)
	}
	md.PlainText("")
}

// writeMetrics writes the aggregate confidence metrics table.
func (w *MarkdownWriter) writeMetrics(md *markdown.Markdown, report *model.InvestigationReport) {
	md.H2("Confidence Metrics")
	md.PlainText("")

	m := report.Metrics
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Mean discovery confidence", fmt.Sprintf("%.2f", m.MeanDiscoveryConfidence)},
			{"Verification rate", fmt.Sprintf("%.1f%%", m.VerificationRate*100)},
			{"Mean correlation confidence", fmt.Sprintf("%.2f", m.MeanCorrelationConfidence)},
			{"Platform coverage", fmt.Sprintf("%.1f%%", m.PlatformCoverage*100)},
		},
	})
	md.PlainText("")
}

// writeNotes writes run degradation notes, if any.
func (w *MarkdownWriter) writeNotes(md *markdown.Markdown, report *model.InvestigationReport) {
	if len(report.Notes) == 0 {
		return
	}

	md.H2("Notes")
	md.PlainText("")
	md.BulletList(report.Notes...)
	md.PlainText("")
	if hasInconclusiveNote(report.Notes) {
		md.Warning("Some platforms could not be probed conclusively; absence of a discovery there is not evidence of absence.")
		md.PlainText("")
	}
}

func hasInconclusiveNote(notes []string) bool {
	for _, n := range notes {
		if strings.Contains(n, "inconclusive") {
			return true
		}
	}
	return false
}
