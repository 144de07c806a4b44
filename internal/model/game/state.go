package game

// Ball is the ball's position and per-tick velocity.
type Ball struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// State is the per-player view pushed every tick. The recipient always sees
// itself as the left paddle with its own score first.
type State struct {
	Ball           Ball    `json:"ball"`
	MyPaddle       float64 `json:"myPaddle"`
	OpponentPaddle float64 `json:"opponentPaddle"`
	Scores         [2]int  `json:"scores"`
}

// RoomSummary is the operator view of a live session.
type RoomSummary struct {
	ID              string    `json:"id"`
	Phase           string    `json:"phase"`
	Scores          [2]int    `json:"scores"`
	AIActive        [2]bool   `json:"aiActive"`
	SpeedMultiplier float64   `json:"speedMultiplier"`
	Players         [2]string `json:"players"`
}
