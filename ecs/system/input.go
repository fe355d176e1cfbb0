package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
)

const (
	stickDeadzone    = 0.2
	mouseLookScale   = 0.1
	gamepadLookScale = 4.0
)

// InputSource is polled once per frame for the player's intent.
type InputSource interface {
	Poll() component.Input
}

type InputSystem struct {
	source InputSource
}

// NewInputSystem reads from source, or from the keyboard, mouse and first
// gamepad when source is nil.
func NewInputSystem(source InputSource) *InputSystem {
	if source == nil {
		source = &EbitenInput{}
	}
	return &InputSystem{source: source}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	snapshot := i.source.Poll()
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		*input = snapshot
	})
}

// EbitenInput polls ebiten's keyboard, captured mouse and gamepad state.
type EbitenInput struct {
	lastX, lastY int
	primed       bool
}

func (in *EbitenInput) Poll() component.Input {
	var out component.Input

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		out.MoveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		out.MoveX += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		out.MoveY += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		out.MoveY -= 1
	}
	out.Run = ebiten.IsKeyPressed(ebiten.KeyShiftLeft)
	out.Crouch = ebiten.IsKeyPressed(ebiten.KeyC) || ebiten.IsKeyPressed(ebiten.KeyControlLeft)
	out.InteractPressed = inpututil.IsKeyJustPressed(ebiten.KeyE)

	x, y := ebiten.CursorPosition()
	if in.primed && ebiten.CursorMode() == ebiten.CursorModeCaptured {
		out.LookX = float64(x-in.lastX) * mouseLookScale
		out.LookY = -float64(y-in.lastY) * mouseLookScale
	}
	in.lastX, in.lastY, in.primed = x, y, true

	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			out.MoveX = lx
			out.MoveY = -ly
		}

		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if math.Hypot(rx, ry) > stickDeadzone {
			out.LookX += rx * gamepadLookScale
			out.LookY -= ry * gamepadLookScale
		}

		out.Run = out.Run || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftStick)
		out.Crouch = out.Crouch || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight)
		out.InteractPressed = out.InteractPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
	}

	return out
}
