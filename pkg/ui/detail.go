package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// DetailModel is the scrollable side panel for node details, icon panels
// and the trail summary. Content is Markdown rendered with glamour.
type DetailModel struct {
	theme    Theme
	viewport viewport.Model
	renderer *glamour.TermRenderer

	title    string
	markdown string
	node     *trail.Node
	width    int
	height   int
}

func NewDetailModel(theme Theme) DetailModel {
	d := DetailModel{
		theme:    theme,
		viewport: viewport.New(40, 20),
	}
	d.renderer = newMarkdownRenderer(40)
	return d
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-2, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

// SetSize resizes the panel. The renderer is rebuilt for the new wrap width.
func (d *DetailModel) SetSize(width, height int) {
	if width == d.width && height == d.height {
		return
	}
	d.width, d.height = width, height
	inner := max(width-4, 10)
	d.viewport.Width = inner
	d.viewport.Height = max(height-3, 3)
	d.renderer = newMarkdownRenderer(inner)
	d.render()
}

// Show replaces the panel content. node is what the panel describes, or nil.
func (d *DetailModel) Show(title, markdown string, node *trail.Node) {
	d.title = title
	d.markdown = markdown
	d.node = node
	d.render()
	d.viewport.GotoTop()
}

// Node returns the node the panel describes.
func (d *DetailModel) Node() *trail.Node {
	return d.node
}

// Title returns the panel heading.
func (d *DetailModel) Title() string {
	return d.title
}

// Markdown returns the unrendered content, for copying.
func (d *DetailModel) Markdown() string {
	return d.markdown
}

func (d *DetailModel) render() {
	content := d.markdown
	if d.renderer != nil {
		if out, err := d.renderer.Render(d.markdown); err == nil {
			content = strings.TrimSpace(out)
		}
	}
	d.viewport.SetContent(content)
}

func (d DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

func (d DetailModel) View() string {
	th := d.theme
	header := th.Renderer.NewStyle().Bold(true).Foreground(th.Primary).Render(d.title)
	body := header + "\n" + d.viewport.View()
	return th.panel(body, d.width, d.height, true)
}
