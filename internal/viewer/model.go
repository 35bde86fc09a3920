// Package viewer is the bubbletea model behind cmd/drapeview. It renders a
// scene.Scene into half-block terminal cells and orbits the camera from the
// keyboard.
package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/drape/scene"
)

// Camera steps per key press.
const (
	orbitStep = 0.1
	zoomStep  = 1.15
)

const (
	headerHeight = 1
	footerHeight = 2
	cachedFrames = 64
)

// Model is the viewer state.
type Model struct {
	scene *scene.Scene
	title string

	width  int
	height int

	keys   keyMap
	help   help.Model
	frames *frameCache

	frame  string
	status string
	err    error
}

// New returns a model showing s. The caller keeps ownership of s.
func New(s *scene.Scene, title string) Model {
	return Model{
		scene:  s,
		title:  title,
		keys:   defaultKeyMap(),
		help:   help.New(),
		frames: newFrameCache(cachedFrames),
		status: "drapeview ready",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.render()
	case tea.KeyMsg:
		cam := m.scene.Camera
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Left):
			cam.Rotate(-orbitStep, 0)
			m.status = m.cameraSummary()
		case key.Matches(msg, m.keys.Right):
			cam.Rotate(orbitStep, 0)
			m.status = m.cameraSummary()
		case key.Matches(msg, m.keys.Up):
			cam.Rotate(0, orbitStep)
			m.status = m.cameraSummary()
		case key.Matches(msg, m.keys.Down):
			cam.Rotate(0, -orbitStep)
			m.status = m.cameraSummary()
		case key.Matches(msg, m.keys.ZoomIn):
			cam.Zoom(1 / zoomStep)
			m.status = m.cameraSummary()
		case key.Matches(msg, m.keys.ZoomOut):
			cam.Zoom(zoomStep)
			m.status = m.cameraSummary()
		case key.Matches(msg, m.keys.Toggle):
			for i := range m.scene.Layers {
				m.scene.ToggleLayer(i)
			}
			m.status = "layers: " + m.layerSummary()
		case key.Matches(msg, m.keys.Layer):
			i := int(msg.String()[0] - '1')
			if i >= len(m.scene.Layers) {
				m.status = fmt.Sprintf("no layer %d", i+1)
				return m, nil
			}
			m.scene.ToggleLayer(i)
			m.status = "layers: " + m.layerSummary()
		default:
			return m, nil
		}
		m.render()
	}
	return m, nil
}

func (m Model) layerSummary() string {
	parts := make([]string, len(m.scene.Layers))
	for i, l := range m.scene.Layers {
		mark := "off"
		if l.Visible {
			mark = "on"
		}
		parts[i] = fmt.Sprintf("%d:%s=%s", i+1, l.Name, mark)
	}
	return strings.Join(parts, " ")
}

// canvasSize returns the frame size in cells.
func (m Model) canvasSize() (cols, rows int) {
	return max(m.width, 1), max(m.height-headerHeight-footerHeight, 1)
}

// render redraws the frame. Each cell holds two vertically stacked pixels,
// which keeps pixels roughly square in common terminal fonts.
func (m *Model) render() {
	if m.width == 0 || m.height == 0 {
		return
	}
	cols, rows := m.canvasSize()
	k := keyOf(m.scene, cols, rows)
	if frame, ok := m.frames.get(k); ok {
		m.frame, m.err = frame, nil
		return
	}
	img, err := m.scene.Render(cols, rows*2, 1)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.frame = HalfBlocks(img)
	m.frames.put(k, m.frame)
}

func (m Model) cameraSummary() string {
	cam := m.scene.Camera
	return fmt.Sprintf("yaw %.2f  pitch %.2f  distance %.1f", cam.Yaw, cam.Pitch, cam.Distance)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := titleStyle.Render(" drapeview ─ " + m.title + " ")
	header = lipgloss.NewStyle().Width(m.width).Render(header)

	status := dimStyle.Render(m.status)
	if m.err != nil {
		status = errStyle.Render("render error: " + m.err.Error())
	}
	footer := lipgloss.JoinVertical(lipgloss.Left, status, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.frame, footer)
}
