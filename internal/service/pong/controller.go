package pong

import "github.com/zhouzirui/pong-duel/backend/internal/model/game"

// Tuning for the AI paddle.
const (
	aiGain          = 0.3
	aiMaxAccel      = 1.2
	aiMaxSpeed      = 15.0
	aiDampDefend    = 0.85
	aiDampRetreat   = 0.9
	aiJitter        = 10.0
	aiNeutralTarget = 160.0
	aiRetreatScale  = 0.5
)

// Controller steers a paddle on behalf of a disconnected player.
type Controller struct {
	rng Rand
}

// NewController returns a controller drawing tracking jitter from rng.
func NewController(rng Rand) Controller {
	return Controller{rng: rng}
}

// Steer computes the next paddle offset and velocity for slot. The velocity
// is an accumulator that must be fed back on the following tick.
func (c Controller) Steer(slot int, paddle, velocity float64, ball game.Ball, speed float64) (float64, float64) {
	center := paddle + PaddleHeight/2

	approaching := (slot == 0 && ball.VX < 0) || (slot == 1 && ball.VX > 0)
	if !approaching {
		accel := clamp((aiNeutralTarget-center)*aiGain, -aiMaxAccel/2, aiMaxAccel/2)
		velocity = clamp(velocity+accel, -aiMaxSpeed/2, aiMaxSpeed/2)
		velocity *= aiDampRetreat
		return ClampPaddle(paddle + velocity*speed*aiRetreatScale), velocity
	}

	target := ball.Y + (c.rng.Float64()*2*aiJitter - aiJitter)
	accel := clamp((target-center)*aiGain, -aiMaxAccel, aiMaxAccel)
	velocity = clamp(velocity+accel, -aiMaxSpeed, aiMaxSpeed)
	velocity *= aiDampDefend
	return ClampPaddle(paddle + velocity*speed), velocity
}
