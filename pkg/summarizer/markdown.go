package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion sets the version printed in the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Lane Crop Summary"))

	b.WriteString("| | |\n|---|---|\n")
	row := func(label, value string) {
		fmt.Fprintf(&b, "| %s | %s |\n", t(label), escape(value))
	}

	if s.RunID != "" {
		row("Run ID", s.RunID)
	}
	if s.Status != "" {
		row("Status", t(s.Status))
	}
	row("Input", s.Input.Path)
	if s.Input.Duration < 0 {
		row("Source Duration", t("Unknown"))
	} else {
		row("Source Duration", formatSeconds(s.Input.Duration))
	}
	if s.Input.Width > 0 {
		row("Source Geometry", strings.TrimSpace(fmt.Sprintf("%dx%d %s", s.Input.Width, s.Input.Height, s.Input.PixelFormat)))
	}
	row("Window", fmt.Sprintf("%s + %s", formatSeconds(s.Window.From), formatSeconds(s.Window.Duration)))

	st := s.Settings
	if st.TargetWidth > 0 {
		row("Lane Size", fmt.Sprintf("%dx%d", st.TargetWidth, st.TargetHeight))
	}
	if st.FrameRate > 0 {
		codec := st.Codec
		if codec == "" {
			codec = "h264"
		}
		if st.Preset != "" {
			codec += " (" + st.Preset + ")"
		}
		row("Encoder", fmt.Sprintf("%s, %d fps, %d bps", codec, st.FrameRate, st.Bitrate))
	}
	row("Expansion", fmt.Sprintf("%.2f / %.2f / %.2f", st.ExtLeft, st.ExtRight, st.ExtTop))
	if st.MaxLanes > 0 {
		row("Max Lanes", fmt.Sprintf("%d", st.MaxLanes))
	}

	p := s.Processing
	row("Frames Decoded", fmt.Sprintf("%d", p.FramesDecoded))
	row("Frames Skipped", fmt.Sprintf("%d", p.FramesSkipped))
	row("Frames Routed", fmt.Sprintf("%d", p.FramesRouted))
	if p.Elapsed > 0 {
		row("Elapsed", formatSeconds(p.Elapsed.Seconds()))
	}

	fmt.Fprintf(&b, "\n## %s\n\n", t("Lanes"))
	if len(s.Lanes) == 0 {
		fmt.Fprintf(&b, "%s\n", t("No lanes were produced."))
	} else {
		fmt.Fprintf(&b, "| # | %s | %s | %s | %s | %s | %s | %s |\n",
			t("Lane"), t("Status"), t("Region"), t("Crop"), t("Frames"), t("Duration"), t("Size"))
		b.WriteString("|---|---|---|---|---|---:|---:|---:|\n")
		for _, l := range s.Lanes {
			status := t(l.Status)
			if l.Error != "" {
				status += ": " + l.Error
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %d | %s | %s |\n",
				l.Index, escape(l.Name), escape(status), l.Region, l.Crop,
				l.Frames, formatSeconds(l.Duration), formatBytes(l.Bytes))
		}
	}

	b.WriteString("\n---\n\n")
	generated := s.GeneratedAt.Format(time.RFC3339)
	if f.version != "" {
		fmt.Fprintf(&b, "%s %s · lanecrop %s\n", t("Generated at"), generated, f.version)
	} else {
		fmt.Fprintf(&b, "%s %s · lanecrop\n", t("Generated at"), generated)
	}

	return b.String()
}

var _ Formatter = (*MarkdownFormatter)(nil)

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func formatSeconds(sec float64) string {
	return fmt.Sprintf("%.2f s", sec)
}

// formatBytes renders a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < 2; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
