// Package terminal renders a development preview of the kiosk display in the
// terminal. It implements display.Surface so the runtime can be exercised
// without a browser front-end attached.
package terminal

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/uninav/wayfinder/internal/geo"
	"github.com/uninav/wayfinder/pkg/core"
	"github.com/uninav/wayfinder/pkg/streaming"
)

// Surface draws visible floor runs as scaled line art, one pane per run
// slot, with the reveal marker and transition anchors overlaid.
type Surface struct {
	mu      sync.Mutex
	screen  tcell.Screen
	route   *streaming.RoutePayload
	frame   *streaming.FramePayload
	attract bool
	offline bool
	notice  string
}

// New initializes a tcell screen.
func New() (*Surface, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal screen: %w", err)
	}
	return &Surface{screen: screen}, nil
}

// Present decodes the envelope and redraws the preview.
func (s *Surface) Present(env streaming.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch env.Type {
	case streaming.TypeRoute:
		var p streaming.RoutePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decoding route payload: %w", err)
		}
		s.route = &p
		s.frame = nil
		s.notice = ""
	case streaming.TypeFrame:
		var p streaming.FramePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decoding frame payload: %w", err)
		}
		s.frame = &p
	case streaming.TypeAttract:
		var p streaming.AttractPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decoding attract payload: %w", err)
		}
		s.attract = p.Active
	case streaming.TypeOffline:
		var p streaming.OfflinePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decoding offline payload: %w", err)
		}
		s.offline = p.Offline
	case streaming.TypeNoRoute:
		var p streaming.NoRoutePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decoding no-route payload: %w", err)
		}
		s.notice = p.Message
	case streaming.TypeReset:
		s.route = nil
		s.frame = nil
		s.notice = ""
	}

	s.draw()
	return nil
}

// Close releases the terminal.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Fini()
	return nil
}

func (s *Surface) draw() {
	s.screen.Clear()
	width, height := s.screen.Size()

	if s.attract {
		s.drawCentered(width/2, height/2, "Touch to start", tcell.StyleDefault.Bold(true))
		s.screen.Show()
		return
	}

	if s.route != nil && s.frame != nil {
		panes := len(s.frame.Runs)
		if panes > 0 {
			paneWidth := width / panes
			for slot, rf := range s.frame.Runs {
				s.drawRun(slot*paneWidth, 0, paneWidth, height-1, rf)
			}
		}
	}

	status := ""
	if s.route != nil {
		status = "→ " + s.route.Destination
	}
	if s.notice != "" {
		status = s.notice
	}
	if s.offline {
		status += "  [offline]"
	}
	s.drawText(0, height-1, status, tcell.StyleDefault.Dim(true))
	s.screen.Show()
}

// drawRun scales one floor run into its pane and plots steps revealed so far.
func (s *Surface) drawRun(x, y, width, height int, rf streaming.RunFrame) {
	if s.route == nil || rf.Index >= len(s.route.Runs) || width < 4 || height < 4 {
		return
	}
	info := s.route.Runs[rf.Index]
	steps := info.Steps
	if len(steps) == 0 {
		return
	}

	minX, minY, maxX, maxY := bounds(steps)
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	project := func(p core.Position2D) (int, int) {
		px := x + 1 + int((p.X-minX)/spanX*float64(width-3))
		py := y + 1 + int((p.Y-minY)/spanY*float64(height-3))
		return px, py
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	if rf.State == "pending" {
		style = tcell.StyleDefault.Dim(true)
	}

	poly := make(core.Polyline, len(steps))
	for i, st := range steps {
		poly[i] = st.Position()
	}
	walked := 0.0
	for i, st := range steps {
		if i > 0 {
			walked += geo.Length(core.Polyline{poly[i-1], poly[i]})
		}
		if walked > rf.Progress {
			break
		}
		px, py := project(st.Position())
		s.screen.SetContent(px, py, '·', nil, style)
	}

	if rf.Marker != nil {
		px, py := project(*rf.Marker)
		s.screen.SetContent(px, py, '@', nil, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	}

	s.drawText(x+1, y, fmt.Sprintf("floor %s (%s)", rf.FloorID, rf.State), tcell.StyleDefault)
}

func bounds(steps []core.PathStep) (minX, minY, maxX, maxY float64) {
	minX, minY = steps[0].X, steps[0].Y
	maxX, maxY = steps[0].X, steps[0].Y
	for _, st := range steps[1:] {
		if st.X < minX {
			minX = st.X
		}
		if st.Y < minY {
			minY = st.Y
		}
		if st.X > maxX {
			maxX = st.X
		}
		if st.Y > maxY {
			maxY = st.Y
		}
	}
	return minX, minY, maxX, maxY
}

func (s *Surface) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		s.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (s *Surface) drawCentered(cx, cy int, text string, style tcell.Style) {
	s.drawText(cx-len(text)/2, cy, text, style)
}
