package utils

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	ansiBold      = "\033[1m"
	ansiUnderline = "\033[4m"
	ansiReset     = "\033[0m"
)

var (
	boldPattern      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	underlinePattern = regexp.MustCompile(`_(.*?)_`)
)

// ANSIカラー番号
const (
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
)

// Formatter は端末向けの文字列装飾を行います。
// 出力先が端末でない場合、色と太字は自動的に無効になります。
type Formatter struct {
	renderer        *lipgloss.Renderer
	disableMarkdown bool
}

// NewFormatter は出力先に合わせたFormatterを作成します
func NewFormatter(out io.Writer, disableMarkdown bool) *Formatter {
	return &Formatter{
		renderer:        lipgloss.NewRenderer(out),
		disableMarkdown: disableMarkdown,
	}
}

// Embiggen は **太字** と _下線_ を端末のエスケープシーケンスに変換します
func (f *Formatter) Embiggen(s string) string {
	if f.disableMarkdown {
		return s
	}
	s = boldPattern.ReplaceAllString(s, ansiBold+"${1}"+ansiReset)
	return underlinePattern.ReplaceAllString(s, ansiUnderline+"${1}"+ansiReset)
}

// ColorizeStatus はストーリーの状態に応じて色を付けます
func (f *Formatter) ColorizeStatus(state string) string {
	var color lipgloss.Color
	switch state {
	case "rejected":
		color = colorRed
	case "accepted":
		color = colorGreen
	case "delivered":
		color = colorCyan
	case "finished":
		color = colorYellow
	case "started":
		color = colorMagenta
	default:
		return state
	}
	return f.renderer.NewStyle().Foreground(color).Render(state)
}

// Bold は文字列を太字にします
func (f *Formatter) Bold(s string) string {
	return f.renderer.NewStyle().Bold(true).Render(s)
}

// Red は文字列を赤色にします
func (f *Formatter) Red(s string) string {
	return f.renderer.NewStyle().Foreground(colorRed).Render(s)
}

// Yellow は文字列を黄色にします
func (f *Formatter) Yellow(s string) string {
	if s == "" {
		return s
	}
	return f.renderer.NewStyle().Foreground(colorYellow).Render(s)
}

// Wrap は文字列を width 桁で折り返し、各行の先頭に offset 個の空白を付けます。
// width を超える単語はそのまま残ります。
func Wrap(s string, width, offset int) string {
	if width <= 0 {
		return s
	}
	pattern := regexp.MustCompile(fmt.Sprintf(`(.{1,%d})(\s+|$)`, width))
	return pattern.ReplaceAllString(s, strings.Repeat(" ", offset)+"${1}\n")
}
