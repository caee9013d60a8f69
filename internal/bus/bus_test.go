// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/stretchr/testify/require"
)

// recorder logs every bus event in order
type recorder struct {
	events   []string
	miso     []byte
	failAt   int // transfer number (1-based) that fails, 0 = never
	sent     []byte
	transfer int
}

func (r *recorder) Init() error     { r.events = append(r.events, "init"); return nil }
func (r *recorder) Select() error   { r.events = append(r.events, "select"); return nil }
func (r *recorder) Deselect() error { r.events = append(r.events, "deselect"); return nil }
func (r *recorder) Begin() error    { r.events = append(r.events, "begin"); return nil }

func (r *recorder) Transfer(b byte) (byte, error) {
	r.transfer++
	r.events = append(r.events, "transfer")
	r.sent = append(r.sent, b)
	if r.transfer == r.failAt {
		return 0, errors.New("bus fault")
	}
	return r.miso[r.transfer-1], nil
}

func TestSPI_Init(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, NewSPI(rec, rec, 0).Init())
	require.Equal(t, []string{"init", "deselect", "begin"}, rec.events)
}

func TestSPI_ReadFrameBracket(t *testing.T) {
	rec := &recorder{miso: []byte{1, 2, 3, 4, 5, 6}}
	f, err := NewSPI(rec, rec, 0).ReadFrame(context.Background())
	require.NoError(t, err)
	require.Equal(t, rls.Frame{1, 2, 3, 4, 5, 6}, f)
	require.Equal(t, []string{
		"select",
		"transfer", "transfer", "transfer", "transfer", "transfer", "transfer",
		"deselect",
	}, rec.events)
	require.Equal(t, make([]byte, rls.FrameSize), rec.sent)
}

func TestSPI_ReadFrameDeselectsOnError(t *testing.T) {
	rec := &recorder{miso: make([]byte, 6), failAt: 3}
	_, err := NewSPI(rec, rec, DefaultCSSetup).ReadFrame(context.Background())
	require.Error(t, err)
	require.Equal(t, "deselect", rec.events[len(rec.events)-1])
	require.Equal(t, 3, rec.transfer)
}

func TestSPI_ReadFrameCancelled(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSPI(rec, rec, 0).ReadFrame(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, rec.events)
}

func TestSimulator_ThroughEncoder(t *testing.T) {
	sim := NewSimulator(SimulatorConfig{Resolution: rls.Resolution17, Step: 1 << 14, Seed: 1})
	enc := rls.NewEncoder(NewSPI(sim, sim, 0))
	require.NoError(t, enc.Begin(rls.Resolution17))

	ctx := context.Background()
	for i := 0; i < 16; i++ {
		r, err := enc.ReadAngle(ctx)
		require.NoError(t, err)
		require.True(t, enc.CRCValid())
		require.GreaterOrEqual(t, r.Degrees, 0.0)
		require.Less(t, r.Degrees, 360.0)
	}

	// 16 steps of 1/8 turn = two revolutions
	_, turns := sim.Position()
	require.Equal(t, uint16(2), turns)
	require.Equal(t, 16, sim.Selects)
	require.Equal(t, 16, sim.Deselects)
	require.Equal(t, 16*rls.FrameSize, sim.Transfers)

	mt, err := enc.ReadMultiturn(ctx)
	require.NoError(t, err)
	require.Equal(t, uint16(2), mt)
}

func TestSimulator_Faults(t *testing.T) {
	sim := NewSimulator(SimulatorConfig{Step: 100, CRCErrorRate: 1, Seed: 7})
	enc := rls.NewEncoder(NewSPI(sim, sim, 0))
	require.NoError(t, enc.Begin(rls.Resolution18))

	_, err := enc.ReadAngle(context.Background())
	require.True(t, rls.IsInvalidAngle(err))
	require.False(t, enc.CRCValid())

	sim = NewSimulator(SimulatorConfig{Step: 100, StaleRate: 1, Seed: 7})
	enc = rls.NewEncoder(NewSPI(sim, sim, 0))
	require.NoError(t, enc.Begin(rls.Resolution18))

	_, err = enc.ReadAngle(context.Background())
	require.True(t, rls.IsInvalidAngle(err))
	require.True(t, enc.CRCValid())
}

func TestSimulator_TransferRequiresSelect(t *testing.T) {
	sim := NewSimulator(SimulatorConfig{})
	_, err := sim.Transfer(0)
	require.ErrorIs(t, err, ErrNotSelected)

	require.NoError(t, sim.Select())
	require.Error(t, sim.Select())
}
