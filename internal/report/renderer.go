package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"dca-sim/internal/config"
)

// Renderer 将 markdown 报告渲染为终端输出。
type Renderer struct {
	style string
	width int
}

// NewRenderer 根据报告配置创建渲染器。style 为 "raw" 时原样输出 markdown。
func NewRenderer(cfg config.ReportConfig) *Renderer {
	style := strings.ToLower(strings.TrimSpace(cfg.Style))
	if style == "" {
		style = "auto"
	}
	width := cfg.Width
	if width <= 0 {
		width = 100
	}
	return &Renderer{style: style, width: width}
}

// Render 渲染 markdown 文本。
func (r *Renderer) Render(markdown string) (string, error) {
	if r.style == "raw" {
		return markdown, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(r.width)}
	if r.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("report: 创建渲染器失败: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("report: 渲染失败: %w", err)
	}
	return out, nil
}
