package chart

import (
	"sync"

	"github.com/dnldd/stocks/shared"
)

// Hover represents the points under the pointer. Second is set while dragging and
// holds the point the drag started on.
type Hover struct {
	First  *shared.DataPoint
	Second *shared.DataPoint
}

// PointerConfig represents the configuration of a pointer.
type PointerConfig struct {
	// LineWidth is the stroke width of the plotted series.
	LineWidth float64
	// NotifyHover relays hovered points.
	NotifyHover func(hover Hover)
}

// Pointer tracks pointer hover and drag state over a chart.
type Pointer struct {
	cfg        *PointerConfig
	data       *shared.TickerData
	width      float64
	height     float64
	cursorX    float64
	cursorY    float64
	dragStartX float64
	hovering   bool
	dragging   bool
	mtx        sync.Mutex
}

// NewPointer initializes a new pointer.
func NewPointer(cfg *PointerConfig) *Pointer {
	return &Pointer{cfg: cfg}
}

// notify relays the provided hover state.
func (p *Pointer) notify(hover Hover) {
	if p.cfg.NotifyHover != nil {
		p.cfg.NotifyHover(hover)
	}
}

// SetData sets the data being pointed at.
func (p *Pointer) SetData(data *shared.TickerData) {
	p.mtx.Lock()
	p.data = data
	p.mtx.Unlock()
}

// SetSize sets the chart dimensions.
func (p *Pointer) SetSize(width float64, height float64) {
	p.mtx.Lock()
	p.width = width
	p.height = height
	p.mtx.Unlock()
}

// inHoverArea checks whether the provided position is within the hover area.
func (p *Pointer) inHoverArea(x float64, y float64) bool {
	return x >= 0 && x <= HoverWidth(p.data, p.width) && y >= 0 && y <= p.height
}

// pointAt returns the point at the provided x position.
func (p *Pointer) pointAt(x float64) *shared.DataPoint {
	return PointAt(p.data, p.width, x)
}

// Enter handles the pointer entering the chart.
func (p *Pointer) Enter(x float64, y float64) {
	p.mtx.Lock()
	p.cursorX, p.cursorY = x, y
	p.hovering = p.inHoverArea(x, y)
	p.mtx.Unlock()
}

// Motion handles pointer movement over the chart. A drag keeps hovering even outside
// the hover area.
func (p *Pointer) Motion(x float64, y float64) {
	p.mtx.Lock()
	p.cursorX, p.cursorY = x, y
	p.hovering = p.dragging || p.inHoverArea(x, y)

	var hover Hover
	switch {
	case p.dragging:
		hover = Hover{First: p.pointAt(x), Second: p.pointAt(p.dragStartX)}
	case p.hovering:
		hover = Hover{First: p.pointAt(x)}
	}
	p.mtx.Unlock()

	p.notify(hover)
}

// Leave handles the pointer leaving the chart. It is ignored while dragging.
func (p *Pointer) Leave() {
	p.mtx.Lock()
	if p.dragging {
		p.mtx.Unlock()
		return
	}
	p.hovering = false
	p.mtx.Unlock()

	p.notify(Hover{})
}

// Press starts a drag at the provided position.
func (p *Pointer) Press(x float64, y float64) {
	p.mtx.Lock()
	p.cursorX, p.cursorY = x, y
	p.dragStartX = x
	p.dragging = true
	p.hovering = p.inHoverArea(x, y)
	p.mtx.Unlock()
}

// Release ends a drag at the provided position and reports the point under it.
func (p *Pointer) Release(x float64, y float64) {
	p.mtx.Lock()
	p.cursorX, p.cursorY = x, y
	p.dragging = false
	p.hovering = p.inHoverArea(x, y)
	var hover Hover
	if p.hovering {
		hover = Hover{First: p.pointAt(p.cursorX)}
	}
	p.mtx.Unlock()

	p.notify(hover)
}

// Dragging checks whether a drag is in progress.
func (p *Pointer) Dragging() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.dragging
}

// Hovering checks whether the pointer is within the hover area.
func (p *Pointer) Hovering() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.hovering
}

// Selection returns the range selected by the current drag.
func (p *Pointer) Selection() (Selection, bool) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if !p.dragging {
		return Selection{}, false
	}

	return NewSelection(p.data, p.width, p.cfg.LineWidth, p.dragStartX, p.cursorX)
}

// HoverIndex returns the index of the hovered point.
func (p *Pointer) HoverIndex() (int, bool) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if !p.hovering {
		return 0, false
	}

	return IndexAt(p.data, p.width, p.cursorX)
}
