package pong

import (
	"math"

	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
)

// World geometry in server units.
const (
	WorldWidth   = 700.0
	WorldHeight  = 400.0
	BallRadius   = 10.0
	PaddleHeight = 80.0
	PaddleMaxY   = WorldHeight - PaddleHeight

	LeftPaddleFace  = 22.0
	RightPaddleFace = WorldWidth - LeftPaddleFace

	ServeSpeed  = 5.0
	SpeedGrowth = 1.01
)

// NoGoal is returned by Step when neither slot scored.
const NoGoal = -1

// Rand is the randomness source used for serves and AI jitter.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Field is the complete physical state of a match.
type Field struct {
	Ball            game.Ball
	Paddles         [2]float64
	Scores          [2]int
	SpeedMultiplier float64
	// Freeze counts the remaining ticks the ball is held after a goal.
	Freeze int
}

// NewField returns the kick-off state: ball centred moving down-right.
func NewField() Field {
	return Field{
		Ball:            game.Ball{X: WorldWidth / 2, Y: WorldHeight / 2, VX: ServeSpeed, VY: ServeSpeed},
		Paddles:         [2]float64{200, 200},
		SpeedMultiplier: 1,
	}
}

// Step advances the field by one tick and reports which slot scored, or
// NoGoal. freezeTicks is how long the ball is held after a goal.
func Step(f Field, rng Rand, freezeTicks int) (Field, int) {
	if f.Freeze > 0 {
		f.Freeze--
		return f, NoGoal
	}

	b := f.Ball
	b.X += b.VX * f.SpeedMultiplier
	b.Y += b.VY * f.SpeedMultiplier

	if b.Y-BallRadius < 0 || b.Y+BallRadius > WorldHeight {
		b.VY = -b.VY
	}

	if b.X-BallRadius < LeftPaddleFace && onPaddle(b.Y, f.Paddles[0]) {
		b.VX = math.Abs(b.VX)
	}
	if b.X+BallRadius > RightPaddleFace && onPaddle(b.Y, f.Paddles[1]) {
		b.VX = -math.Abs(b.VX)
	}

	f.Ball = b

	scorer := NoGoal
	switch {
	case b.X < 0:
		scorer = 1
	case b.X > WorldWidth:
		scorer = 0
	}
	if scorer != NoGoal {
		f.Scores[scorer]++
		f.Ball = Serve(rng)
		f.SpeedMultiplier = 1
		f.Freeze = freezeTicks
	}

	return f, scorer
}

// Serve places the ball at the centre with a random diagonal velocity.
func Serve(rng Rand) game.Ball {
	return game.Ball{
		X:  WorldWidth / 2,
		Y:  WorldHeight / 2,
		VX: randomSign(rng) * ServeSpeed,
		VY: randomSign(rng) * ServeSpeed,
	}
}

// Escalate applies one second of speed growth.
func Escalate(f Field) Field {
	f.SpeedMultiplier *= SpeedGrowth
	return f
}

// TouchingWall reports whether the ball is within its radius of the left or
// right boundary.
func TouchingWall(b game.Ball) bool {
	return b.X-BallRadius < 0 || b.X+BallRadius > WorldWidth
}

// ClampPaddle keeps a paddle offset inside the playfield.
func ClampPaddle(y float64) float64 {
	return clamp(y, 0, PaddleMaxY)
}

func onPaddle(ballY, paddleY float64) bool {
	return ballY >= paddleY && ballY <= paddleY+PaddleHeight
}

func randomSign(rng Rand) float64 {
	if rng.Float64() > 0.5 {
		return 1
	}
	return -1
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
