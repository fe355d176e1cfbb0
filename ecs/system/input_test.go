package system

import (
	"testing"

	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/stretchr/testify/require"
)

type scriptedInput struct {
	frames []component.Input
	polls  int
}

func (s *scriptedInput) Poll() component.Input {
	defer func() { s.polls++ }()
	if s.polls >= len(s.frames) {
		return component.Input{}
	}
	return s.frames[s.polls]
}

func TestInputSystemCopiesSnapshot(t *testing.T) {
	w := ecs.NewWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()
	other := w.CreateEntity()
	require.NoError(t, ecs.Add(w, a, component.InputComponent, component.Input{}))
	require.NoError(t, ecs.Add(w, b, component.InputComponent, component.Input{Run: true}))
	require.NoError(t, ecs.Add(w, other, component.TransformComponent, component.Transform{}))

	src := &scriptedInput{frames: []component.Input{
		{MoveY: 1, LookX: 2.5, Crouch: true, InteractPressed: true},
		{},
	}}
	s := NewInputSystem(src)

	s.Update(w)
	for _, e := range []ecs.Entity{a, b} {
		got, _ := ecs.Get(w, e, component.InputComponent)
		require.Equal(t, src.frames[0], got)
	}
	require.False(t, ecs.Has(w, other, component.InputComponent))

	s.Update(w)
	got, _ := ecs.Get(w, a, component.InputComponent)
	require.Equal(t, component.Input{}, got)
	require.Equal(t, 2, src.polls)
}

func TestInputSystemDefaultsToEbiten(t *testing.T) {
	s := NewInputSystem(nil)
	_, ok := s.source.(*EbitenInput)
	require.True(t, ok)
}
