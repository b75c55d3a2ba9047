package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ashivadi/open-interpreter/internal/config"
	"github.com/ashivadi/open-interpreter/internal/preflight"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styleKey    = lipgloss.NewStyle().Bold(true).Width(14)
	styleValue  = lipgloss.NewStyle()
	styleSource = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBox    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
)

// Summary is the printable view of negotiated settings. The API key is
// always redacted.
type Summary struct {
	Mode        string   `yaml:"mode"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	GGUFQuality *float64 `yaml:"gguf_quality,omitempty"`
	AutoRun     bool     `yaml:"auto_run"`
	ConfigPath  string   `yaml:"config_path,omitempty"`

	sources map[string]config.ValueSource
}

// NewSummary captures cfg after negotiation.
func NewSummary(cfg config.RuntimeConfig, meta config.Metadata) Summary {
	exec := cfg.Execution
	summary := Summary{
		Mode:        "remote",
		Model:       exec.Model,
		APIKey:      "not set",
		GGUFQuality: exec.GGUFQuality,
		AutoRun:     exec.AutoRun,
		ConfigPath:  meta.ConfigPath(),
		sources:     map[string]config.ValueSource{},
	}
	if exec.Local {
		summary.Mode = "local"
	}
	if key := strings.TrimSpace(exec.APIKey); key != "" {
		summary.APIKey = preflight.Redact(key)
	}
	for _, field := range []string{"local", "model", "api_key", "gguf_quality", "auto_run"} {
		summary.sources[field] = meta.Source(field)
	}
	return summary
}

// RenderSummary draws the negotiated settings as a bordered key/value table.
func RenderSummary(cfg config.RuntimeConfig, meta config.Metadata) string {
	s := NewSummary(cfg, meta)

	quality := "default"
	if s.GGUFQuality != nil {
		quality = strconv.FormatFloat(*s.GGUFQuality, 'f', -1, 64)
	}
	configPath := s.ConfigPath
	if configPath == "" {
		configPath = "none"
	}

	rows := []string{
		summaryRow("Mode", s.Mode, s.sources["local"]),
		summaryRow("Model", s.Model, s.sources["model"]),
		summaryRow("API key", s.APIKey, s.sources["api_key"]),
		summaryRow("GGUF quality", quality, s.sources["gguf_quality"]),
		summaryRow("Auto run", strconv.FormatBool(s.AutoRun), s.sources["auto_run"]),
		summaryRow("Config file", configPath, ""),
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		styleTitle.Render("Open Interpreter settings"),
		"",
		strings.Join(rows, "\n"),
	)
	return styleBox.Render(body)
}

func summaryRow(key, value string, source config.ValueSource) string {
	row := styleKey.Render(key) + styleValue.Render(value)
	if source != "" {
		row += " " + styleSource.Render(fmt.Sprintf("(%s)", source))
	}
	return row
}

// SummaryYAML encodes the negotiated settings for scripts.
func SummaryYAML(cfg config.RuntimeConfig, meta config.Metadata) ([]byte, error) {
	data, err := yaml.Marshal(NewSummary(cfg, meta))
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return data, nil
}

// FitSummary clips rendered summary rows to the terminal behind w so the
// bordered table does not wrap. Non-terminal writers get the text unchanged.
func FitSummary(summary string, w io.Writer) string {
	return clipLines(summary, detectOutputWidth(w))
}

// clipLines truncates every line wider than width display cells. Escape
// sequences are not counted.
func clipLines(text string, width int) string {
	if width <= 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for line := range strings.Lines(text) {
		row, newline := strings.CutSuffix(line, "\n")
		if ansi.StringWidth(row) > width {
			row = ansi.Truncate(row, width, "…")
		}
		b.WriteString(row)
		if newline {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
