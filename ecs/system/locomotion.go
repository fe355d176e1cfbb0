package system

import (
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/locomotion"
	"go.uber.org/zap"
)

type locomotionBinding struct {
	ctrl     *locomotion.Controller
	revision int
}

// LocomotionSystem runs a locomotion.Controller for every player entity.
// Controllers are built once per entity and reconfigured in place after a
// tuning reload; an entity whose collaborators cannot be resolved is marked disabled and
// left alone.
type LocomotionSystem struct {
	logger   *zap.Logger
	bindings map[ecs.Entity]*locomotionBinding
}

func NewLocomotionSystem(logger *zap.Logger) *LocomotionSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocomotionSystem{
		logger:   logger,
		bindings: make(map[ecs.Entity]*locomotionBinding),
	}
}

func (s *LocomotionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	for _, e := range w.Query(component.PlayerTagComponent.Kind(), component.LocomotionComponent.Kind()) {
		loco, ok := ecs.Ref(w, e, component.LocomotionComponent)
		if !ok || loco.Disabled {
			continue
		}

		binding := s.bindings[e]
		switch {
		case binding == nil:
			ctrl, err := s.build(w, e, loco.Config)
			if err != nil {
				s.disable(loco, e, err)
				continue
			}
			binding = &locomotionBinding{ctrl: ctrl, revision: loco.Revision}
			s.bindings[e] = binding
			s.logger.Debug("locomotion controller built", zap.Stringer("entity", e), zap.Int("revision", loco.Revision))
		case binding.revision != loco.Revision:
			if err := binding.ctrl.Reconfigure(loco.Config); err != nil {
				// The binding stays so a later fix reconfigures the same controller.
				s.disable(loco, e, err)
				s.bindings[e] = binding
				continue
			}
			binding.revision = loco.Revision
			s.logger.Debug("locomotion controller reconfigured", zap.Stringer("entity", e), zap.Int("revision", loco.Revision))
		}

		input, _ := ecs.Get(w, e, component.InputComponent)
		binding.ctrl.Step(locomotion.Input{
			Move:   locomotion.Vec2{X: input.MoveX, Y: input.MoveY},
			Look:   locomotion.Vec2{X: input.LookX, Y: input.LookY},
			Run:    input.Run,
			Crouch: input.Crouch,
		}, dt)

		st := binding.ctrl.State()
		loco.Stance = st.Stance
		loco.VerticalVelocity = st.VerticalVelocity
		loco.IdleElapsed = st.IdleElapsed
	}

	for e := range s.bindings {
		if !w.IsAlive(e) {
			delete(s.bindings, e)
		}
	}
}

func (s *LocomotionSystem) disable(loco *component.Locomotion, e ecs.Entity, err error) {
	loco.Disabled = true
	loco.Err = err.Error()
	delete(s.bindings, e)
	s.logger.Error("locomotion disabled", zap.Stringer("entity", e), zap.Error(err))
}

// Controller returns the controller bound to e, if any.
func (s *LocomotionSystem) Controller(e ecs.Entity) (*locomotion.Controller, bool) {
	b, ok := s.bindings[e]
	if !ok {
		return nil, false
	}
	return b.ctrl, true
}

func (s *LocomotionSystem) build(w *ecs.World, e ecs.Entity, cfg locomotion.Config) (*locomotion.Controller, error) {
	var (
		mover locomotion.Mover
		cam   locomotion.Camera
		anim  locomotion.AnimationSink
	)

	t, okT := ecs.Ref(w, e, component.TransformComponent)
	body, okB := ecs.Ref(w, e, component.CharacterBodyComponent)
	if okT && okB {
		if capsule := w.PhysicsWorld().NewCapsuleBody(t, body); capsule != nil {
			mover = capsule
		}
	}
	if rig, ok := ecs.Ref(w, e, component.CameraRigComponent); ok {
		cam = &cameraRigHandle{rig: rig}
	}
	if animator, ok := ecs.Ref(w, e, component.AnimatorComponent); ok {
		anim = &animatorHandle{animator: animator}
	}

	return locomotion.New(cfg, mover, cam, anim)
}

type cameraRigHandle struct {
	rig *component.CameraRig
}

func (c *cameraRigHandle) LocalOffset() locomotion.PivotOffset {
	return locomotion.PivotOffset{Y: c.rig.OffsetY, Z: c.rig.OffsetZ}
}

func (c *cameraRigHandle) SetLocalOffset(o locomotion.PivotOffset) {
	c.rig.OffsetY = o.Y
	c.rig.OffsetZ = o.Z
}

func (c *cameraRigHandle) SetLocalRotation(pitch, yaw, roll float64) {
	c.rig.Pitch = pitch
	c.rig.Yaw = yaw
	c.rig.Roll = roll
}

type animatorHandle struct {
	animator *component.Animator
}

func (a *animatorHandle) SetFloat(name string, v float64) {
	if a.animator.Floats == nil {
		a.animator.Floats = map[string]float64{}
	}
	a.animator.Floats[name] = v
}

func (a *animatorHandle) SetBool(name string, v bool) {
	if a.animator.Bools == nil {
		a.animator.Bools = map[string]bool{}
	}
	a.animator.Bools[name] = v
}
