package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/lazypower/affect/internal/engine"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of emotions and desires",
	Long:  "Follow the server's snapshot stream in the terminal. Press q or Esc to quit.",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

// streamURL turns the http(s) server URL into the websocket stream URL.
func streamURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimSuffix(base, "/") + "/api/stream"
}

func runWatch(cmd *cobra.Command, args []string) error {
	url := streamURL(newClient().URL())
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	defer conn.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	done := make(chan struct{})
	defer close(done)

	snaps := make(chan engine.Snapshot, 8)
	streamErr := make(chan error, 1)
	go readSnapshots(conn, snaps, streamErr, done)

	eventChan := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	var last engine.Snapshot
	status := "waiting for first tick"
	redraw := time.NewTicker(time.Second)
	defer redraw.Stop()

	draw := func() {
		w, h := screen.Size()
		screen.Clear()
		for y, l := range watchLines(last, url, status, w) {
			if y >= h {
				break
			}
			drawLine(screen, y, l)
		}
		screen.Show()
	}
	draw()

	for {
		select {
		case snap := <-snaps:
			last = snap
			status = ""
			draw()
		case err := <-streamErr:
			return fmt.Errorf("stream closed: %w", err)
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
				draw()
			}
		case <-redraw.C:
			draw()
		}
	}
}

// readSnapshots forwards decoded stream messages to snaps until the
// connection fails or done is closed. errs must be buffered.
func readSnapshots(conn *websocket.Conn, snaps chan<- engine.Snapshot, errs chan<- error, done <-chan struct{}) {
	for {
		var snap engine.Snapshot
		_, data, err := conn.ReadMessage()
		if err != nil {
			errs <- err
			return
		}
		if json.Unmarshal(data, &snap) != nil {
			continue
		}
		select {
		case snaps <- snap:
		case <-done:
			return
		}
	}
}

// watchLine is one rendered row; value >= 0 marks an intensity row whose
// bar gets colored.
type watchLine struct {
	text  string
	value float64
}

func watchLines(snap engine.Snapshot, url, status string, width int) []watchLine {
	header := fmt.Sprintf("affect  %s  tick %d", url, snap.Seq)
	if !snap.At.IsZero() {
		header += "  " + humanize.Time(snap.At)
	}
	lines := []watchLine{{text: header, value: -1}, {value: -1}}
	if status != "" {
		lines = append(lines, watchLine{text: status, value: -1})
		return lines
	}

	nameWidth := 0
	for _, e := range snap.Emotions {
		nameWidth = max(nameWidth, len(e.Name))
	}
	for _, e := range snap.Emotions {
		lines = append(lines, watchLine{
			text:  fmt.Sprintf("%-*s %s %.3f", nameWidth, e.Name, bar(e.Value), e.Value),
			value: e.Value,
		})
	}

	if len(snap.Desires) > 0 {
		lines = append(lines, watchLine{value: -1}, watchLine{text: "desires", value: -1})
		for _, d := range snap.Desires {
			lines = append(lines, watchLine{
				text:  fmt.Sprintf("  %-20s %s", d.Name, d.Mode),
				value: -1,
			})
		}
	}

	for i := range lines {
		if r := []rune(lines[i].text); len(r) > width && width > 0 {
			lines[i].text = string(r[:width])
		}
	}
	return lines
}

func intensityStyle(v float64) tcell.Style {
	switch {
	case v >= 0.66:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case v >= 0.33:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
}

func drawLine(screen tcell.Screen, y int, l watchLine) {
	style := tcell.StyleDefault
	if l.value >= 0 {
		style = intensityStyle(l.value)
	}
	for x, r := range []rune(l.text) {
		screen.SetContent(x, y, r, nil, style)
	}
}
