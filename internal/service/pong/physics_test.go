package pong

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
)

func TestStepAdvancesBallBySpeedMultiplier(t *testing.T) {
	f := NewField()
	f.SpeedMultiplier = 2

	next, scorer := Step(f, fixedRand(0.5), 60)

	assert.Equal(t, NoGoal, scorer)
	assert.InDelta(t, 360, next.Ball.X, 1e-9)
	assert.InDelta(t, 210, next.Ball.Y, 1e-9)
}

func TestStepReflectsOffTopAndBottom(t *testing.T) {
	f := NewField()
	f.Ball = game.Ball{X: 350, Y: 392, VX: 5, VY: 5}
	next, _ := Step(f, fixedRand(0.5), 60)
	assert.Equal(t, -5.0, next.Ball.VY)

	f.Ball = game.Ball{X: 350, Y: 8, VX: 5, VY: -5}
	next, _ = Step(f, fixedRand(0.5), 60)
	assert.Equal(t, 5.0, next.Ball.VY)
}

func TestStepPaddleCollisions(t *testing.T) {
	tests := []struct {
		name   string
		ball   game.Ball
		paddle [2]float64
		wantVX float64
	}{
		{"left paddle hit", game.Ball{X: 30, Y: 200, VX: -5, VY: 0}, [2]float64{160, 0}, 5},
		{"left paddle miss", game.Ball{X: 30, Y: 300, VX: -5, VY: 0}, [2]float64{0, 0}, -5},
		{"right paddle hit", game.Ball{X: 670, Y: 200, VX: 5, VY: 0}, [2]float64{0, 160}, -5},
		{"right paddle miss", game.Ball{X: 670, Y: 100, VX: 5, VY: 0}, [2]float64{0, 300}, 5},
		{"left paddle keeps outward velocity", game.Ball{X: 25, Y: 200, VX: 5, VY: 0}, [2]float64{160, 0}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField()
			f.Ball = tt.ball
			f.Paddles = tt.paddle
			next, scorer := Step(f, fixedRand(0.5), 60)
			assert.Equal(t, NoGoal, scorer)
			assert.Equal(t, tt.wantVX, next.Ball.VX)
		})
	}
}

func TestStepGoalScoresAndResets(t *testing.T) {
	f := NewField()
	f.Ball = game.Ball{X: 3, Y: 200, VX: -5, VY: 5}
	f.Paddles = [2]float64{0, 0}
	f.SpeedMultiplier = 1.5

	next, scorer := Step(f, fixedRand(0.9, 0.1), 60)

	require.Equal(t, 1, scorer)
	assert.Equal(t, [2]int{0, 1}, next.Scores)
	assert.Equal(t, game.Ball{X: 350, Y: 200, VX: 5, VY: -5}, next.Ball)
	assert.Equal(t, 1.0, next.SpeedMultiplier)
	assert.Equal(t, 60, next.Freeze)

	f = NewField()
	f.Ball = game.Ball{X: 697, Y: 200, VX: 5, VY: 5}
	f.Paddles = [2]float64{0, 0}
	next, scorer = Step(f, fixedRand(0.1), 60)
	require.Equal(t, 0, scorer)
	assert.Equal(t, [2]int{1, 0}, next.Scores)
}

func TestStepHoldsBallDuringGoalFreeze(t *testing.T) {
	f := NewField()
	f.Freeze = 2

	next, _ := Step(f, fixedRand(0.5), 60)
	assert.Equal(t, f.Ball, next.Ball)
	assert.Equal(t, 1, next.Freeze)

	next, _ = Step(next, fixedRand(0.5), 60)
	assert.Equal(t, 0, next.Freeze)

	next, _ = Step(next, fixedRand(0.5), 60)
	assert.NotEqual(t, f.Ball, next.Ball)
}

func TestServeUsesIndependentSigns(t *testing.T) {
	seen := map[[2]float64]bool{}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		b := Serve(rng)
		assert.Equal(t, 350.0, b.X)
		assert.Equal(t, 200.0, b.Y)
		seen[[2]float64{b.VX, b.VY}] = true
	}
	assert.Len(t, seen, 4)
}

func TestEscalateGrowsOnePercent(t *testing.T) {
	f := Escalate(Escalate(NewField()))
	assert.InDelta(t, 1.0201, f.SpeedMultiplier, 1e-12)
}

func TestTouchingWall(t *testing.T) {
	tests := []struct {
		x    float64
		want bool
	}{
		{5, true},
		{9.99, true},
		{10, false},
		{350, false},
		{690, false},
		{690.5, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TouchingWall(game.Ball{X: tt.x, Y: 200}), "x=%v", tt.x)
	}
}

func TestAIRallyKeepsPaddlesAndBallInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	ctl := NewController(rng)
	f := NewField()
	var vel [2]float64

	for tick := 0; tick < 20000; tick++ {
		if tick%60 == 0 {
			f = Escalate(f)
		}
		for i := 0; i < 2; i++ {
			f.Paddles[i], vel[i] = ctl.Steer(i, f.Paddles[i], vel[i], f.Ball, f.SpeedMultiplier)
		}
		f, _ = Step(f, rng, 60)

		for i := 0; i < 2; i++ {
			require.GreaterOrEqual(t, f.Paddles[i], 0.0)
			require.LessOrEqual(t, f.Paddles[i], PaddleMaxY)
		}
		require.GreaterOrEqual(t, f.Ball.X, 0.0)
		require.LessOrEqual(t, f.Ball.X, WorldWidth)
	}
}

func TestMirrorFlipsForSecondSlot(t *testing.T) {
	f := NewField()
	f.Ball = game.Ball{X: 120, Y: 310, VX: -4, VY: 3}
	f.Paddles = [2]float64{12, 250}
	f.Scores = [2]int{4, 7}

	left := Mirror(f, 0)
	right := Mirror(f, 1)

	assert.Equal(t, game.State{Ball: f.Ball, MyPaddle: 12, OpponentPaddle: 250, Scores: [2]int{4, 7}}, left)
	assert.Equal(t, WorldWidth-left.Ball.X, right.Ball.X)
	assert.Equal(t, -left.Ball.VX, right.Ball.VX)
	assert.Equal(t, left.Ball.Y, right.Ball.Y)
	assert.Equal(t, left.Ball.VY, right.Ball.VY)
	assert.Equal(t, [2]int{7, 4}, right.Scores)
	assert.Equal(t, 250.0, right.MyPaddle)
	assert.Equal(t, 12.0, right.OpponentPaddle)
}

func TestClampPaddle(t *testing.T) {
	assert.Equal(t, 0.0, ClampPaddle(-15))
	assert.Equal(t, 120.5, ClampPaddle(120.5))
	assert.Equal(t, PaddleMaxY, ClampPaddle(PaddleMaxY+1))
}
