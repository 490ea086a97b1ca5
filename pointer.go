package thicket

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultDragDeadZone = 4.0 // pixels

// MouseButton identifies the button held during a pointer interaction.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// PointerEvent identifies a pointer callback.
type PointerEvent uint8

const (
	PointerDown PointerEvent = iota
	PointerUp
	PointerEnter
	PointerLeave
	PointerMove
	PointerClick
	PointerDragStart
	PointerDrag
	PointerDragEnd
	numPointerEvents
)

var pointerEventNames = [numPointerEvents]string{
	"down", "up", "enter", "leave", "move", "click", "drag_start", "drag", "drag_end",
}

func (e PointerEvent) String() string {
	if e < numPointerEvents {
		return pointerEventNames[e]
	}
	return "unknown"
}

// PointerContext is passed to pointer callbacks. Node is the topmost enabled
// node under the pointer, or the nil id when nothing is hit. For drags, Node
// is the node the press started on.
type PointerContext struct {
	Event  PointerEvent
	Node   NodeID
	X, Y   float64
	Button MouseButton

	// Drag only.
	StartX, StartY float64
	DeltaX, DeltaY float64
}

type pointerCallback struct {
	id uint32
	fn func(PointerContext)
}

type pointerRegistry struct {
	handlers [numPointerEvents][]pointerCallback
	nextID   uint32
}

// CallbackHandle allows removing a registered pointer callback.
type CallbackHandle struct {
	id    uint32
	reg   *pointerRegistry
	event PointerEvent
}

// Remove unregisters the callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	hs := h.reg.handlers[h.event]
	for i, c := range hs {
		if c.id == h.id {
			h.reg.handlers[h.event] = append(hs[:i], hs[i+1:]...)
			return
		}
	}
}

// OnPointer registers fn for a pointer event. Hit testing uses the state of
// the last Resolve, so nodes created this frame are not hit until resolved.
func (s *Scene) OnPointer(event PointerEvent, fn func(PointerContext)) CallbackHandle {
	reg := &s.pointer.registry
	reg.nextID++
	reg.handlers[event] = append(reg.handlers[event], pointerCallback{id: reg.nextID, fn: fn})
	return CallbackHandle{id: reg.nextID, reg: reg, event: event}
}

// SetDragDeadZone sets the distance in pixels the pointer must travel with a
// button held before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) { s.pointer.deadZone = pixels }

type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
}

// pointerState is the state machine of the single mouse pointer.
type pointerState struct {
	registry pointerRegistry
	deadZone float64
	injected []syntheticPointerEvent

	down           bool
	dragging       bool
	button         MouseButton
	startX, startY float64
	lastX, lastY   float64
	hit            NodeID
	hover          NodeID
}

// InjectPress queues a left-button press at (x, y). Each Update consumes one
// queued event instead of reading the mouse.
func (s *Scene) InjectPress(x, y float64) {
	s.pointer.injected = append(s.pointer.injected, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a pointer move with the button held.
func (s *Scene) InjectMove(x, y float64) {
	s.pointer.injected = append(s.pointer.injected, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectRelease queues a button release at (x, y).
func (s *Scene) InjectRelease(x, y float64) {
	s.pointer.injected = append(s.pointer.injected, syntheticPointerEvent{x: x, y: y})
}

// InjectClick queues a press and a release at the same point. Consumes two
// updates.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 interpolated moves and
// a release at (toX, toY).
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	frames = max(frames, 2)
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// processInput feeds one injected event, or the real mouse, through the
// pointer state machine.
func (s *Scene) processInput() {
	p := &s.pointer
	if len(p.injected) > 0 {
		evt := p.injected[0]
		copy(p.injected, p.injected[1:])
		p.injected = p.injected[:len(p.injected)-1]
		s.processPointer(evt.x, evt.y, evt.pressed, MouseButtonLeft)
		return
	}

	mx, my := ebiten.CursorPosition()
	var pressed bool
	var button MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		pressed, button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		pressed, button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		pressed, button = true, MouseButtonMiddle
	}
	s.processPointer(float64(mx), float64(my), pressed, button)
}

func (s *Scene) processPointer(x, y float64, pressed bool, button MouseButton) {
	p := &s.pointer
	target, _ := s.HitTest(x, y)

	if target != p.hover {
		if !p.hover.IsNil() && s.Alive(p.hover) {
			s.firePointer(PointerContext{Event: PointerLeave, Node: p.hover, X: x, Y: y, Button: button})
		}
		if !target.IsNil() {
			s.firePointer(PointerContext{Event: PointerEnter, Node: target, X: x, Y: y, Button: button})
		}
		p.hover = target
	}

	switch {
	case pressed && !p.down:
		p.down, p.dragging = true, false
		p.button = button
		p.startX, p.startY = x, y
		p.lastX, p.lastY = x, y
		p.hit = target
		s.firePointer(PointerContext{Event: PointerDown, Node: target, X: x, Y: y, Button: button})

	case !pressed && p.down:
		if p.dragging {
			s.fireDrag(PointerDragEnd, x, y, x-p.lastX, y-p.lastY)
		} else if !p.hit.IsNil() && p.hit == target {
			s.firePointer(PointerContext{Event: PointerClick, Node: target, X: x, Y: y, Button: p.button})
		}
		s.firePointer(PointerContext{Event: PointerUp, Node: target, X: x, Y: y, Button: p.button})
		p.down, p.dragging = false, false
		p.hit = NodeID{}

	case pressed && p.down:
		if x == p.lastX && y == p.lastY {
			break
		}
		if !p.dragging && math.Hypot(x-p.startX, y-p.startY) > p.deadZone {
			p.dragging = true
			s.fireDrag(PointerDragStart, x, y, x-p.startX, y-p.startY)
		}
		if p.dragging {
			s.fireDrag(PointerDrag, x, y, x-p.lastX, y-p.lastY)
		}
		p.lastX, p.lastY = x, y

	default:
		if x != p.lastX || y != p.lastY {
			s.firePointer(PointerContext{Event: PointerMove, Node: target, X: x, Y: y, Button: button})
			p.lastX, p.lastY = x, y
		}
	}
}

func (s *Scene) fireDrag(event PointerEvent, x, y, dx, dy float64) {
	p := &s.pointer
	s.firePointer(PointerContext{
		Event: event, Node: p.hit, X: x, Y: y, Button: p.button,
		StartX: p.startX, StartY: p.startY, DeltaX: dx, DeltaY: dy,
	})
}

func (s *Scene) firePointer(ctx PointerContext) {
	for _, c := range s.pointer.registry.handlers[ctx.Event] {
		c.fn(ctx)
	}
}
