// Package tui renders the property panel on a terminal with tcell.
package tui

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ColorStep is how far Left/Right move a colour channel.
const ColorStep float32 = 0.05

type actionKind uint8

const (
	actionNone actionKind = iota
	actionAdjust
	actionToggle
	actionNextComponent
	actionInsert
	actionBackspace
)

type action struct {
	kind actionKind
	sign float64
	r    rune
}

type row struct {
	text   string
	indent int
	style  tcell.Style
}

// Widgets is an immediate-mode widget set where every widget is one text row.
// Key input is queued by HandleKey and applied to the focused row while the
// next frame is drawn.
type Widgets struct {
	screen tcell.Screen

	rows      []row
	indent    int
	path      []string
	open      map[string]bool
	focus     int
	component int
	pending   action
}

func NewWidgets(screen tcell.Screen) *Widgets {
	return &Widgets{
		screen: screen,
		open:   make(map[string]bool),
	}
}

// BeginFrame starts collecting rows for a new frame.
func (w *Widgets) BeginFrame() {
	w.rows = w.rows[:0]
	w.indent = 0
	w.path = w.path[:0]
}

// EndFrame drops unconsumed input and paints the collected rows.
func (w *Widgets) EndFrame() {
	w.pending = action{}
	if w.focus >= len(w.rows) {
		w.focus = len(w.rows) - 1
	}
	if w.focus < 0 {
		w.focus = 0
	}
	w.render()
}

// Lines returns the rows of the last frame as plain text.
func (w *Widgets) Lines() []string {
	lines := make([]string, len(w.rows))
	for i, r := range w.rows {
		if r.text != "" {
			lines[i] = strings.Repeat("  ", r.indent) + r.text
		}
	}
	return lines
}

// Focus is the index of the focused row.
func (w *Widgets) Focus() int {
	return w.focus
}

// HandleKey queues the effect of a key press. It reports whether the key asks
// to quit.
func (w *Widgets) HandleKey(ev *tcell.EventKey) bool {
	return w.handleKey(ev.Key(), ev.Rune(), ev.Modifiers())
}

func (w *Widgets) handleKey(key tcell.Key, r rune, _ tcell.ModMask) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		w.moveFocus(-1)
	case tcell.KeyDown:
		w.moveFocus(1)
	case tcell.KeyLeft:
		w.pending = action{kind: actionAdjust, sign: -1}
	case tcell.KeyRight:
		w.pending = action{kind: actionAdjust, sign: 1}
	case tcell.KeyTab:
		w.pending = action{kind: actionNextComponent}
	case tcell.KeyEnter:
		w.pending = action{kind: actionToggle}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		w.pending = action{kind: actionBackspace}
	case tcell.KeyRune:
		if r == ' ' {
			w.pending = action{kind: actionToggle}
		} else {
			w.pending = action{kind: actionInsert, r: r}
		}
	}
	return false
}

func (w *Widgets) moveFocus(delta int) {
	w.focus += delta
	if w.focus < 0 {
		w.focus = 0
	}
	if n := len(w.rows); n > 0 && w.focus >= n {
		w.focus = n - 1
	}
	w.component = 0
}

// next adds a row and returns the action aimed at it, if any.
func (w *Widgets) next(text string, style tcell.Style) (int, action) {
	idx := len(w.rows)
	w.rows = append(w.rows, row{text: text, indent: w.indent, style: style})
	if idx != w.focus {
		return idx, action{}
	}
	return idx, w.pending
}

func (w *Widgets) setText(idx int, text string) {
	w.rows[idx].text = text
}

func (w *Widgets) DragNumber(label string, v *float64, speed float32) bool {
	idx, act := w.next("", tcell.StyleDefault)
	changed := false
	if act.kind == actionAdjust {
		*v += act.sign * float64(speed)
		changed = true
	}
	w.setText(idx, label+": "+formatFloat(*v))
	return changed
}

func (w *Widgets) DragFloatN(label string, v []float32, speed float32) bool {
	idx, act := w.next("", tcell.StyleDefault)
	changed := false
	if act.kind == actionNextComponent {
		w.component++
	}
	c := w.component % max(len(v), 1)
	if act.kind == actionAdjust && len(v) > 0 {
		v[c] += float32(act.sign) * speed
		changed = true
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = formatFloat(float64(f))
	}
	w.setText(idx, label+": "+joinVector(parts, c, idx == w.focus))
	return changed
}

func (w *Widgets) DragIntN(label string, v []int32, speed float32) bool {
	idx, act := w.next("", tcell.StyleDefault)
	changed := false
	if act.kind == actionNextComponent {
		w.component++
	}
	c := w.component % max(len(v), 1)
	if act.kind == actionAdjust && len(v) > 0 {
		v[c] += int32(act.sign) * int32(max(speed, 1))
		changed = true
	}
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(int(n))
	}
	w.setText(idx, label+": "+joinVector(parts, c, idx == w.focus))
	return changed
}

func (w *Widgets) Checkbox(label string, v *bool) bool {
	idx, act := w.next("", tcell.StyleDefault)
	changed := false
	if act.kind == actionToggle {
		*v = !*v
		changed = true
	}
	mark := "[ ] "
	if *v {
		mark = "[x] "
	}
	w.setText(idx, mark+label)
	return changed
}

func (w *Widgets) InputText(label string, v *string, maxLen int) bool {
	idx, act := w.next("", tcell.StyleDefault)
	changed := false
	switch act.kind {
	case actionInsert:
		if maxLen <= 0 || len(*v)+len(string(act.r)) < maxLen {
			*v += string(act.r)
			changed = true
		}
	case actionBackspace:
		if r := []rune(*v); len(r) > 0 {
			*v = string(r[:len(r)-1])
			changed = true
		}
	}
	cursor := ""
	if idx == w.focus {
		cursor = "_"
	}
	w.setText(idx, label+": "+strconv.Quote(*v)+cursor)
	return changed
}

func (w *Widgets) ColorEdit3(label string, c *[3]float32) bool {
	idx, act := w.next("", tcell.StyleDefault)
	changed := false
	if act.kind == actionNextComponent {
		w.component++
	}
	ch := w.component % len(c)
	if act.kind == actionAdjust {
		c[ch] = min(max(c[ch]+float32(act.sign)*ColorStep, 0), 1)
		changed = true
	}
	parts := make([]string, len(c))
	for i, f := range c {
		parts[i] = strconv.Itoa(int(f*255 + 0.5))
	}
	w.setText(idx, label+": #"+joinVector(parts, ch, idx == w.focus))
	return changed
}

func (w *Widgets) Combo(label string, current *int, options []string) bool {
	idx, act := w.next("", tcell.StyleDefault)
	changed := false
	if n := len(options); n > 0 {
		switch act.kind {
		case actionAdjust:
			*current = ((*current+int(act.sign))%n + n) % n
			changed = true
		case actionToggle:
			*current = (*current + 1) % n
			changed = true
		}
	}
	value := "?"
	if *current >= 0 && *current < len(options) {
		value = options[*current]
	}
	w.setText(idx, label+": < "+value+" >")
	return changed
}

// CollapsingHeader starts a top-level section. Sections start open.
func (w *Widgets) CollapsingHeader(label string) bool {
	w.indent = 0
	w.path = append(w.path[:0], label)
	open := w.node(label, tcell.StyleDefault.Bold(true))
	w.indent = 1
	return open
}

// TreeNode opens a nested section; TreePop must follow when it returns true.
func (w *Widgets) TreeNode(label string) bool {
	w.path = append(w.path, label)
	if !w.node(label, tcell.StyleDefault) {
		w.path = w.path[:len(w.path)-1]
		return false
	}
	w.indent++
	return true
}

func (w *Widgets) TreePop() {
	if w.indent > 1 {
		w.indent--
	}
	if len(w.path) > 1 {
		w.path = w.path[:len(w.path)-1]
	}
}

func (w *Widgets) node(label string, style tcell.Style) bool {
	key := strings.Join(w.path, "/")
	idx, act := w.next("", style)
	closed := w.open[key]
	if act.kind == actionToggle {
		closed = !closed
		w.open[key] = closed
	}
	mark := "v "
	if closed {
		mark = "> "
	}
	w.setText(idx, mark+label)
	return !closed
}

func (w *Widgets) Text(text string) {
	w.next(text, tcell.StyleDefault.Dim(true))
}

func (w *Widgets) Separator() {
	w.next("", tcell.StyleDefault)
}

func (w *Widgets) render() {
	if w.screen == nil {
		return
	}
	w.screen.Clear()
	_, height := w.screen.Size()

	top := 0
	if height > 0 && w.focus >= height {
		top = w.focus - height + 1
	}
	for y, i := 0, top; i < len(w.rows) && (height <= 0 || y < height); y, i = y+1, i+1 {
		r := w.rows[i]
		style := r.style
		if i == w.focus {
			style = style.Reverse(true)
		}
		drawString(w.screen, 2*r.indent, y, r.text, style)
	}
	w.screen.Show()
}

func drawString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func joinVector(parts []string, active int, focused bool) string {
	if focused && active < len(parts) {
		parts[active] = "<" + parts[active] + ">"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
