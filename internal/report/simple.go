package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/handletrace/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables per-discovery evidence in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-discovery evidence.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.InvestigationReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeDiscoveries(&sb, report)
	w.writeClusters(&sb, report)
	w.writeMetrics(&sb, report)
	w.writeNotes(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.InvestigationReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       HANDLE TRACE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed Handle:    %s\n", report.SeedHandle))
	sb.WriteString(fmt.Sprintf("Investigation:  %s\n", report.ID))
	sb.WriteString(fmt.Sprintf("Started:        %s\n", report.StartTime.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Candidates:     %d\n", report.CandidatesGenerated))
	sb.WriteString(fmt.Sprintf("Probes Issued:  %d\n", report.ProbesIssued))
	sb.WriteString(fmt.Sprintf("Status:         %s\n", strings.ToUpper(report.Status)))
	sb.WriteString("\n")
}

// writeDiscoveries writes the confirmed accounts section.
func (w *SimpleWriter) writeDiscoveries(sb *strings.Builder, report *model.InvestigationReport) {
	if len(report.Discoveries) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DISCOVERED ACCOUNTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Discoveries) == 0 {
		sb.WriteString("  No accounts confirmed\n")
	}
	for _, d := range report.Discoveries {
		sb.WriteString(fmt.Sprintf("  [+] %s/%s (confidence %.2f, %s)\n",
			d.Platform, d.Handle, d.Confidence, d.Method))
		if d.ProfileURL != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", d.ProfileURL))
		}
		if w.verbose {
			for _, ev := range d.Evidence {
				sb.WriteString(fmt.Sprintf("      - %s: %s\n", ev.SourceName, ev.Description))
			}
		}
	}
	sb.WriteString("\n")
}

// writeClusters writes the identity cluster section.
func (w *SimpleWriter) writeClusters(sb *strings.Builder, report *model.InvestigationReport) {
	if len(report.Clusters) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("IDENTITY CLUSTERS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Clusters) == 0 {
		sb.WriteString("  No account pairs crossed the correlation threshold\n")
	}
	for _, c := range report.Clusters {
		sb.WriteString(fmt.Sprintf("  Cluster %d (confidence %.2f):\n", c.ID, c.Confidence))
		for _, account := range c.Accounts {
			sb.WriteString(fmt.Sprintf("    * %s\n", account))
		}
		if w.verbose {
			for _, ev := range c.Evidence {
				sb.WriteString(fmt.Sprintf("    - %s\n", ev))
			}
		}
	}
	sb.WriteString("\n")
}

// writeMetrics writes the aggregate confidence metrics section.
func (w *SimpleWriter) writeMetrics(sb *strings.Builder, report *model.InvestigationReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CONFIDENCE METRICS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	m := report.Metrics
	sb.WriteString(fmt.Sprintf("  Mean discovery confidence:   %.2f\n", m.MeanDiscoveryConfidence))
	sb.WriteString(fmt.Sprintf("  Verification rate:           %.1f%%\n", m.VerificationRate*100))
	sb.WriteString(fmt.Sprintf("  Mean correlation confidence: %.2f\n", m.MeanCorrelationConfidence))
	sb.WriteString(fmt.Sprintf("  Platform coverage:           %.1f%%\n", m.PlatformCoverage*100))
	sb.WriteString("\n")
}

// writeNotes writes run degradation notes.
func (w *SimpleWriter) writeNotes(sb *strings.Builder, report *model.InvestigationReport) {
	if len(report.Notes) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("NOTES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, note := range report.Notes {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", note))
	}
	sb.WriteString("\n")
}
