package system

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"golang.org/x/image/font/basicfont"
)

const DefaultToastDuration = 2.5

// HUDSystem shows the pickup prompt at the crosshair and a short toast when
// something is collected. It must run after PickupSystem in the same
// scheduler so it sees that frame's events.
type HUDSystem struct {
	ToastDuration float64

	prompt     string
	toast      string
	toastTimer float64

	ui         *ebitenui.UI
	promptText *widget.Text
	toastText  *widget.Text
	crosshair  *widget.Text
}

func NewHUDSystem() *HUDSystem {
	s := &HUDSystem{ToastDuration: DefaultToastDuration}
	s.buildUI()
	return s
}

func (s *HUDSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	for _, evt := range w.Events().Drain() {
		if evt.Type != ecs.EventPickupCollected {
			continue
		}
		if data, ok := evt.Data.(ecs.PickupCollectedEvent); ok {
			s.toast = data.Message
			s.toastTimer = s.ToastDuration
		}
	}
	if s.toastTimer > 0 {
		s.toastTimer -= w.DeltaTime()
		if s.toastTimer <= 0 {
			s.toastTimer = 0
			s.toast = ""
		}
	}

	s.prompt = ""
	if e, ok := w.First(component.PromptComponent.Kind()); ok {
		if p, ok := ecs.Get(w, e, component.PromptComponent); ok && p.Visible {
			s.prompt = p.Text
		}
	}

	if s.ui == nil {
		return
	}
	s.promptText.Label = s.prompt
	s.toastText.Label = s.toast
	s.ui.Update()
}

func (s *HUDSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if s.ui == nil || screen == nil {
		return
	}
	s.ui.Draw(screen)
}

// Prompt is the prompt text currently shown, empty when hidden.
func (s *HUDSystem) Prompt() string { return s.prompt }

// Toast is the pickup message currently shown, empty when none.
func (s *HUDSystem) Toast() string { return s.toast }

func (s *HUDSystem) buildUI() {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	s.crosshair = widget.NewText(
		widget.TextOpts.Text("+", &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
			HorizontalPosition: widget.AnchorLayoutPositionCenter,
			VerticalPosition:   widget.AnchorLayoutPositionCenter,
		})),
	)
	s.promptText = widget.NewText(
		widget.TextOpts.Text("", &face, white),
		widget.TextOpts.Position(widget.TextPositionCenter, widget.TextPositionCenter),
	)
	s.toastText = widget.NewText(
		widget.TextOpts.Text("", &face, color.NRGBA{R: 0xe8, G: 0xdc, B: 0xa0, A: 0xff}),
		widget.TextOpts.Position(widget.TextPositionCenter, widget.TextPositionCenter),
	)

	column := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Bottom: 96}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionEnd,
			}),
		),
	)
	column.AddChild(s.promptText)
	column.AddChild(s.toastText)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(s.crosshair)
	root.AddChild(column)

	s.ui = &ebitenui.UI{Container: root}
}
