package pong

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
)

func TestControllerDefendsTowardBall(t *testing.T) {
	ctl := NewController(fixedRand(0.5))
	ball := game.Ball{X: 300, Y: 300, VX: -5, VY: 0}

	paddle, vel := ctl.Steer(0, 0, 0, ball, 1)

	assert.InDelta(t, 1.2*0.85, vel, 1e-9)
	assert.InDelta(t, 1.2*0.85, paddle, 1e-9)
}

func TestControllerAppliesJitterToTarget(t *testing.T) {
	// paddle centre 240, ball at 240, jitter +10 and -10 at the extremes
	ball := game.Ball{X: 300, Y: 240, VX: 5, VY: 0}

	_, up := NewController(fixedRand(1)).Steer(1, 200, 0, ball, 1)
	_, down := NewController(fixedRand(0)).Steer(1, 200, 0, ball, 1)

	assert.InDelta(t, 1.2*0.85, up, 1e-9)
	assert.InDelta(t, -1.2*0.85, down, 1e-9)
}

func TestControllerRetreatsToCentreAtHalfPace(t *testing.T) {
	ctl := NewController(fixedRand(0.5))
	ball := game.Ball{X: 300, Y: 20, VX: 5, VY: 0}

	paddle, vel := ctl.Steer(0, 0, 0, ball, 2)

	assert.InDelta(t, 0.6*0.9, vel, 1e-9)
	assert.InDelta(t, 0.6*0.9*2*0.5, paddle, 1e-9)
}

func TestControllerClampsVelocity(t *testing.T) {
	ctl := NewController(fixedRand(0.5))

	_, vel := ctl.Steer(0, 0, 100, game.Ball{Y: 390, VX: -5}, 1)
	assert.InDelta(t, 15*0.85, vel, 1e-9)

	_, vel = ctl.Steer(0, 300, -100, game.Ball{Y: 0, VX: 5}, 1)
	assert.InDelta(t, -7.5*0.9, vel, 1e-9)
}

func TestControllerClampsPaddle(t *testing.T) {
	ctl := NewController(fixedRand(0.5))

	paddle, _ := ctl.Steer(1, 319, 15, game.Ball{Y: 400, VX: 5}, 3)
	assert.Equal(t, PaddleMaxY, paddle)

	paddle, _ = ctl.Steer(1, 1, -15, game.Ball{Y: 0, VX: 5}, 3)
	assert.Equal(t, 0.0, paddle)
}
