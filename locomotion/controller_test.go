package locomotion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const eps = 1e-9

type fakeMover struct {
	height, centerY float64
	yaw             float64
	grounded        bool
	floorY          float64
	y               float64
	moves           []Vec3
}

func (m *fakeMover) Move(d Vec3) {
	m.moves = append(m.moves, d)
	m.y += d.Y
	if d.Y < 0 && m.y <= m.floorY {
		m.y = m.floorY
		m.grounded = true
	} else if d.Y != 0 {
		m.grounded = false
	}
}

func (m *fakeMover) Grounded() bool              { return m.grounded }
func (m *fakeMover) Yaw() float64                { return m.yaw }
func (m *fakeMover) SetYaw(deg float64)          { m.yaw = deg }
func (m *fakeMover) Capsule() (float64, float64) { return m.height, m.centerY }
func (m *fakeMover) SetCapsule(h, c float64)     { m.height, m.centerY = h, c }

type fakeCamera struct {
	offset PivotOffset
	pitch  float64
	sets   int
}

func (c *fakeCamera) LocalOffset() PivotOffset     { return c.offset }
func (c *fakeCamera) SetLocalOffset(o PivotOffset) { c.offset = o }
func (c *fakeCamera) SetLocalRotation(p, _, _ float64) {
	c.pitch = p
	c.sets++
}

type fakeAnim struct {
	floats map[string]float64
	bools  map[string]bool
}

func newFakeAnim() *fakeAnim {
	return &fakeAnim{floats: map[string]float64{}, bools: map[string]bool{}}
}

func (a *fakeAnim) SetFloat(name string, v float64) { a.floats[name] = v }
func (a *fakeAnim) SetBool(name string, v bool)     { a.bools[name] = v }

type rig struct {
	mover *fakeMover
	cam   *fakeCamera
	anim  *fakeAnim
	ctrl  *Controller
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{
		mover: &fakeMover{height: 2, centerY: 1, grounded: true},
		cam:   &fakeCamera{offset: PivotOffset{Y: 1.6}},
		anim:  newFakeAnim(),
	}
	ctrl, err := New(cfg, r.mover, r.cam, r.anim)
	require.NoError(t, err)
	r.ctrl = ctrl
	return r
}

func TestNewRequiresCollaborators(t *testing.T) {
	cfg := DefaultConfig()
	m := &fakeMover{height: 2, centerY: 1}
	cam := &fakeCamera{}
	anim := newFakeAnim()

	_, err := New(cfg, nil, cam, anim)
	require.ErrorIs(t, err, ErrMissingMover)
	_, err = New(cfg, m, nil, anim)
	require.ErrorIs(t, err, ErrMissingCamera)
	_, err = New(cfg, m, cam, nil)
	require.ErrorIs(t, err, ErrMissingAnimator)

	bad := cfg
	bad.Gravity = 9.81
	_, err = New(bad, m, cam, anim)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestUnsetTargetsFallBackToObservedValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StandCameraOffset = nil
	cfg.StandHeight = 0
	r := &rig{
		mover: &fakeMover{height: 1.8, centerY: 0.9, grounded: true},
		cam:   &fakeCamera{offset: PivotOffset{Y: 1.5, Z: 0.05}},
		anim:  newFakeAnim(),
	}
	ctrl, err := New(cfg, r.mover, r.cam, r.anim)
	require.NoError(t, err)

	// Crouch then stand back up; standing targets are the observed start values.
	for i := 0; i < 60; i++ {
		ctrl.Step(Input{Crouch: true}, 1.0/60)
	}
	for i := 0; i < 120; i++ {
		ctrl.Step(Input{}, 1.0/60)
	}
	st := ctrl.State()
	require.InDelta(t, 1.8, st.CapsuleHeight, eps)
	require.InDelta(t, 1.5, st.CameraOffset.Y, eps)
	require.InDelta(t, 0.05, st.CameraOffset.Z, eps)
}

func TestGroundBiasReset(t *testing.T) {
	cases := []struct {
		name string
		dt   float64
	}{
		{"zero_dt", 0},
		{"frame", 1.0 / 60},
		{"long_frame", 0.25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, DefaultConfig())
			r.ctrl.state.VerticalVelocity = -42
			r.mover.grounded = true

			r.ctrl.integrateVertical(c.dt)

			want := DefaultGroundBias + r.ctrl.cfg.Gravity*c.dt
			require.InDelta(t, want, r.ctrl.State().VerticalVelocity, eps)
		})
	}
}

func TestGravityAccumulatesWhileAirborne(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.mover.grounded = false
	r.mover.floorY = -1000
	r.mover.y = 10

	dt := 0.1
	r.ctrl.Step(Input{}, dt)
	r.ctrl.Step(Input{}, dt)
	require.InDelta(t, 2*r.ctrl.cfg.Gravity*dt, r.ctrl.State().VerticalVelocity, eps)
}

func TestZeroVelocityIsNotReset(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.mover.grounded = true

	r.ctrl.integrateVertical(0.1)
	require.InDelta(t, r.ctrl.cfg.Gravity*0.1, r.ctrl.State().VerticalVelocity, eps)
}

func TestMoveOrderAndSpeedPrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name   string
		in     Input
		speed  float64
		stance Stance
	}{
		{"walk", Input{Move: Vec2{Y: 1}}, cfg.WalkSpeed, Standing},
		{"run", Input{Move: Vec2{Y: 1}, Run: true}, cfg.RunSpeed, Standing},
		{"crouch", Input{Move: Vec2{Y: 1}, Crouch: true}, cfg.CrouchSpeed, Crouching},
		{"crouch_beats_run", Input{Move: Vec2{Y: 1}, Run: true, Crouch: true}, cfg.CrouchSpeed, Crouching},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, cfg)
			r.ctrl.Step(c.in, 0.5)

			require.Len(t, r.mover.moves, 2)
			h, v := r.mover.moves[0], r.mover.moves[1]
			require.Zero(t, h.Y)
			require.Zero(t, v.X)
			require.Zero(t, v.Z)
			require.InDelta(t, c.speed*0.5, h.Z, eps)
			require.Equal(t, c.stance, r.ctrl.State().Stance)
		})
	}
}

func TestDiagonalInputIsNormalised(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.ctrl.Step(Input{Move: Vec2{X: 1, Y: 1}}, 1)

	h := r.mover.moves[0]
	require.InDelta(t, r.ctrl.cfg.WalkSpeed, math.Hypot(h.X, h.Z), 1e-9)
}

func TestHorizontalMoveFollowsBodyYaw(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.mover.yaw = 90

	r.ctrl.Step(Input{Move: Vec2{Y: 1}}, 1)
	h := r.mover.moves[0]
	require.InDelta(t, r.ctrl.cfg.WalkSpeed, h.X, 1e-9)
	require.InDelta(t, 0, h.Z, 1e-9)

	r.mover.moves = nil
	r.ctrl.Step(Input{Move: Vec2{X: 1}}, 1)
	h = r.mover.moves[0]
	require.InDelta(t, 0, h.X, 1e-9)
	require.InDelta(t, -r.ctrl.cfg.WalkSpeed, h.Z, 1e-9)
}

func TestCrouchScenarioHeightClampsAtTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StandHeight = 2.0
	cfg.CrouchHeight = 1.4
	cfg.HeightRate = 12
	r := newRig(t, cfg)

	dt := 1.0 / 100
	elapsed := 0.0
	reachedAt := -1.0
	for elapsed < 3 {
		r.ctrl.Step(Input{Crouch: true}, dt)
		elapsed += dt
		h := r.ctrl.State().CapsuleHeight
		require.GreaterOrEqual(t, h, 1.4-eps)
		if reachedAt < 0 && math.Abs(h-1.4) < eps {
			reachedAt = elapsed
		}
	}
	require.Greater(t, reachedAt, 0.0)
	require.LessOrEqual(t, reachedAt, 0.05+dt+eps)
	require.InDelta(t, 1.4, r.ctrl.State().CapsuleHeight, eps)
}

func TestCapsuleBottomIsInvariant(t *testing.T) {
	sequences := []struct {
		name   string
		rate   float64
		dts    []float64
		crouch []bool
	}{
		{"slow_rate", 0.5, []float64{0.1, 0.3, 0.016, 1, 0.2, 0}, []bool{true, true, false, true, false, false}},
		{"fast_rate", 40, []float64{0.016, 0.016, 0.5, 0.016}, []bool{true, false, true, false}},
		{"flip_every_frame", 12, []float64{0.02, 0.03, 0.01, 0.07, 0.02, 0.2}, []bool{true, false, true, false, true, false}},
	}
	for _, s := range sequences {
		t.Run(s.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.HeightRate = s.rate
			r := newRig(t, cfg)
			bottom := r.ctrl.State().CapsuleBottom()
			for i, dt := range s.dts {
				r.ctrl.Step(Input{Crouch: s.crouch[i]}, dt)
				require.InDelta(t, bottom, r.ctrl.State().CapsuleBottom(), 1e-9)
				h, c := r.mover.Capsule()
				require.InDelta(t, bottom, c-h/2, 1e-9)
			}
		})
	}
}

func TestCameraOffsetNeverSnaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CameraRate = 2
	r := newRig(t, cfg)
	start := r.ctrl.State().CameraOffset

	dt := 0.05
	r.ctrl.Step(Input{Crouch: true}, dt)
	off := r.ctrl.State().CameraOffset
	moved := math.Hypot(off.Y-start.Y, off.Z-start.Z)
	require.InDelta(t, cfg.CameraRate*dt, moved, 1e-9)
	require.Equal(t, off, r.cam.offset)
}

func TestPitchClampedPerStance(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name   string
		look   Vec2
		sens   float64
		crouch bool
		want   float64
	}{
		{"look_down_clamps_at_90", Vec2{Y: -1000}, 1, false, MaxPitch},
		{"look_up_standing", Vec2{Y: 1000}, 1, false, cfg.StandMinPitch},
		{"look_up_crouching", Vec2{Y: 1000}, 1, true, cfg.CrouchMinPitch},
		{"small_delta", Vec2{Y: 2}, 2.5, false, -5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := cfg
			cfg.Sensitivity = c.sens
			r := newRig(t, cfg)
			r.ctrl.Step(Input{Look: c.look, Crouch: c.crouch}, 1.0/60)
			require.InDelta(t, c.want, r.ctrl.State().Pitch, eps)
			require.InDelta(t, c.want, r.cam.pitch, eps)
		})
	}
}

func TestPitchStaysInRangeForArbitraryInput(t *testing.T) {
	r := newRig(t, DefaultConfig())
	deltas := []float64{13, -400, 0.5, 77, -3, 1e6, -1e6, 0, 12.25}
	for i, d := range deltas {
		crouch := i%2 == 0
		r.ctrl.Step(Input{Look: Vec2{Y: d}, Crouch: crouch}, 1.0/60)
		p := r.ctrl.State().Pitch
		lo := r.ctrl.cfg.minPitch(r.ctrl.State().Stance)
		require.GreaterOrEqual(t, p, lo)
		require.LessOrEqual(t, p, MaxPitch)
	}
}

func TestYawAccumulatesAndWraps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sensitivity = 1
	r := newRig(t, cfg)

	r.ctrl.Step(Input{Look: Vec2{X: 350}}, 0)
	r.ctrl.Step(Input{Look: Vec2{X: 20}}, 0)
	require.InDelta(t, 10, r.mover.yaw, eps)

	r.ctrl.Step(Input{Look: Vec2{X: -30}}, 0)
	require.InDelta(t, 340, r.mover.yaw, eps)
	require.Equal(t, 3, r.cam.sets)
}

func TestAnimationRateIsBounded(t *testing.T) {
	r := newRig(t, DefaultConfig())
	inputs := []Input{
		{Move: Vec2{Y: 1}, Run: true},
		{},
		{Move: Vec2{X: 0.3}},
		{Move: Vec2{Y: 1}, Crouch: true},
		{Move: Vec2{X: -1, Y: 1}, Run: true},
	}
	dts := []float64{0.016, 0.5, 0.033, 0.001, 0.1}
	prev := r.ctrl.State().AnimSpeed
	for i, in := range inputs {
		r.ctrl.Step(in, dts[i])
		cur := r.ctrl.State().AnimSpeed
		require.LessOrEqual(t, math.Abs(cur-prev), DefaultAnimRate*dts[i]+eps)
		require.GreaterOrEqual(t, cur, 0.0)
		require.LessOrEqual(t, cur, 2.0)
		prev = cur
	}
}

func TestRunScenarioReachesTwoMonotonically(t *testing.T) {
	r := newRig(t, DefaultConfig())
	dt := 1.0 / 120
	prev := 0.0
	reached := -1.0
	for i := 1; i <= 120; i++ {
		r.ctrl.Step(Input{Move: Vec2{Y: 1}, Run: true}, dt)
		cur := r.ctrl.State().AnimSpeed
		require.GreaterOrEqual(t, cur, prev)
		if reached < 0 && math.Abs(cur-2) < eps {
			reached = float64(i) * dt
		}
		prev = cur
	}
	require.Greater(t, reached, 0.0)
	require.LessOrEqual(t, reached, 2/DefaultAnimRate+dt)
	require.InDelta(t, 2.0, r.anim.floats[ParamSpeed], eps)
}

func TestAnimationTargets(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want float64
	}{
		{"idle", Input{}, 0},
		{"walk_half", Input{Move: Vec2{Y: 0.5}}, 0.5},
		{"walk_full", Input{Move: Vec2{X: 1}}, 1},
		{"run_half", Input{Move: Vec2{Y: 0.5}, Run: true}, 1.5},
		{"run_still", Input{Run: true}, 0},
		{"crouch", Input{Move: Vec2{Y: 1}, Crouch: true}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, DefaultConfig())
			for i := 0; i < 100; i++ {
				r.ctrl.Step(c.in, 0.05)
			}
			require.InDelta(t, c.want, r.ctrl.State().AnimSpeed, eps)
			require.Equal(t, c.in.Crouch, r.anim.bools[ParamCrouching])
		})
	}
}

func TestIdleScenarioFlipsOnce(t *testing.T) {
	r := newRig(t, DefaultConfig())
	dt := 0.1
	elapsed := 0.0
	flips := 0
	prev := false
	for i := 0; i < 201; i++ {
		before := elapsed
		r.ctrl.Step(Input{}, dt)
		elapsed += dt
		idle := r.ctrl.State().Idle
		if idle != prev {
			flips++
			require.GreaterOrEqual(t, elapsed, DefaultIdleThreshold)
			require.Less(t, before, DefaultIdleThreshold)
		}
		require.Equal(t, idle, r.anim.bools[ParamIdle])
		prev = idle
	}
	require.Equal(t, 1, flips)
	require.True(t, prev)

	r.ctrl.Step(Input{Move: Vec2{X: 0.01}}, dt)
	require.False(t, r.ctrl.State().Idle)
	require.Zero(t, r.ctrl.State().IdleElapsed)
	require.False(t, r.anim.bools[ParamIdle])
}

func TestLookOnlyFramesCountAsIdle(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.ctrl.Step(Input{Look: Vec2{X: 5, Y: 5}, Run: true}, 1)
	require.InDelta(t, 1, r.ctrl.State().IdleElapsed, eps)
}

func TestNegativeDeltaIsClampedToZero(t *testing.T) {
	r := newRig(t, DefaultConfig())
	before := r.ctrl.State()

	r.ctrl.Step(Input{Move: Vec2{Y: 1}, Crouch: true}, -1)
	r.ctrl.Step(Input{Move: Vec2{Y: 1}, Crouch: true}, math.NaN())

	after := r.ctrl.State()
	require.Equal(t, before.CapsuleHeight, after.CapsuleHeight)
	require.Equal(t, before.CameraOffset, after.CameraOffset)
	require.Zero(t, after.AnimSpeed)
	for _, m := range r.mover.moves {
		require.Zero(t, m.X)
		require.Zero(t, m.Z)
	}
}

func TestReconfigureKeepsObservedTargetsAndState(t *testing.T) {
	r := newRig(t, DefaultConfig())
	const dt = 1.0 / 60

	r.ctrl.Step(Input{Look: Vec2{Y: -5}, Crouch: true}, dt)
	for i := 0; i < 120; i++ {
		r.ctrl.Step(Input{Crouch: true}, dt)
	}
	require.InDelta(t, 1.0, r.cam.offset.Y, eps)
	before := r.ctrl.State()

	cfg := DefaultConfig()
	cfg.WalkSpeed = 4
	require.NoError(t, r.ctrl.Reconfigure(cfg))
	require.Equal(t, before, r.ctrl.State())
	require.Equal(t, 4.0, r.ctrl.Config().WalkSpeed)

	for i := 0; i < 240; i++ {
		r.ctrl.Step(Input{}, dt)
	}
	require.InDelta(t, 1.6, r.cam.offset.Y, eps, "standing target is the offset seen at construction")
	require.InDelta(t, 0.0, r.cam.offset.Z, eps)
	require.InDelta(t, 10.0, r.cam.pitch, eps)
}

func TestReconfigureRejectsInvalidConfig(t *testing.T) {
	r := newRig(t, DefaultConfig())
	cfg := DefaultConfig()
	cfg.Gravity = 5

	err := r.ctrl.Reconfigure(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Equal(t, DefaultConfig().Gravity, r.ctrl.Config().Gravity)
}
