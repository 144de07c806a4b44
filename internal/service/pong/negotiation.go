package pong

import "time"

// Phase is the pause/resume state of a session.
type Phase int

const (
	PhaseRunning Phase = iota
	PhasePauseRequested
	PhasePaused
	PhaseResumeRequested
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePauseRequested:
		return "pause_requested"
	case PhasePaused:
		return "paused"
	case PhaseResumeRequested:
		return "resume_requested"
	default:
		return "unknown"
	}
}

// Frozen reports whether the ball and paddles are held still.
func (p Phase) Frozen() bool {
	return p == PhasePaused || p == PhaseResumeRequested
}

// Round identifies which vote a tally or expiry refers to.
type Round int

const (
	RoundPause Round = iota + 1
	RoundResume
)

func (r Round) String() string {
	if r == RoundResume {
		return "Resume"
	}
	return "Pause"
}

// Outcome is the result of casting a vote.
type Outcome int

const (
	// OutcomeIgnored means the vote was not valid in the current phase.
	OutcomeIgnored Outcome = iota
	// OutcomePartial means the round is waiting for the other slot.
	OutcomePartial
	// OutcomeSatisfied means the round completed and the phase advanced.
	OutcomeSatisfied
)

// Tally describes a cast vote.
type Tally struct {
	Outcome Outcome
	Votes   int
	Needed  int
	Solo    bool
}

// CountdownFrom is the first value announced when resuming.
const CountdownFrom = 3

// Negotiator is the per-session vote and countdown state machine. It is not
// safe for concurrent use; the owning session serializes access.
type Negotiator struct {
	voteTimeout   time.Duration
	countdownStep time.Duration

	phase       Phase
	pauseVotes  [2]bool
	resumeVotes [2]bool
	deadline    time.Time

	counting  bool
	countdown int
	nextStep  time.Time
}

// NewNegotiator returns a negotiator in PhaseRunning.
func NewNegotiator(voteTimeout, countdownStep time.Duration) *Negotiator {
	return &Negotiator{
		voteTimeout:   voteTimeout,
		countdownStep: countdownStep,
	}
}

// Phase returns the current phase.
func (n *Negotiator) Phase() Phase { return n.phase }

// Votes returns the flags of a round.
func (n *Negotiator) Votes(r Round) [2]bool {
	if r == RoundResume {
		return n.resumeVotes
	}
	return n.pauseVotes
}

// Deadline returns the expiry of the open round, zero when none is armed.
func (n *Negotiator) Deadline() time.Time { return n.deadline }

// CastPause records a pause vote for slot. solo is true when the other slot
// is AI-controlled.
func (n *Negotiator) CastPause(slot int, solo bool, now time.Time) Tally {
	if n.phase != PhaseRunning {
		return Tally{}
	}
	return n.cast(&n.pauseVotes, slot, solo, now, PhasePauseRequested)
}

// CastResume records a resume vote for slot.
func (n *Negotiator) CastResume(slot int, solo bool, now time.Time) Tally {
	if n.phase != PhasePaused {
		return Tally{}
	}
	return n.cast(&n.resumeVotes, slot, solo, now, PhaseResumeRequested)
}

func (n *Negotiator) cast(votes *[2]bool, slot int, solo bool, now time.Time, next Phase) Tally {
	votes[slot] = true

	if solo {
		n.satisfy(votes, next)
		return Tally{Outcome: OutcomeSatisfied, Votes: 1, Needed: 1, Solo: true}
	}

	if votes[0] && votes[1] {
		n.satisfy(votes, next)
		return Tally{Outcome: OutcomeSatisfied, Votes: 2, Needed: 2}
	}

	n.deadline = now.Add(n.voteTimeout)
	return Tally{Outcome: OutcomePartial, Votes: 1, Needed: 2}
}

func (n *Negotiator) satisfy(votes *[2]bool, next Phase) {
	*votes = [2]bool{}
	n.deadline = time.Time{}
	n.phase = next
}

// Expire clears the open round once its deadline has passed. The phase is
// left unchanged.
func (n *Negotiator) Expire(now time.Time) (Round, bool) {
	if n.deadline.IsZero() || now.Before(n.deadline) {
		return 0, false
	}
	n.deadline = time.Time{}

	switch n.phase {
	case PhaseRunning:
		n.pauseVotes = [2]bool{}
		return RoundPause, true
	case PhasePaused:
		n.resumeVotes = [2]bool{}
		return RoundResume, true
	}
	return 0, false
}

// PauseIfAtWall completes a requested pause once the ball touches the left or
// right boundary.
func (n *Negotiator) PauseIfAtWall(atWall bool) bool {
	if n.phase != PhasePauseRequested || !atWall {
		return false
	}
	n.phase = PhasePaused
	n.pauseVotes = [2]bool{}
	return true
}

// Forfeit resolves a round left hanging by the departure of leaving: if the
// remaining slot had already voted, the round is satisfied on its behalf.
func (n *Negotiator) Forfeit(leaving int) (Round, bool) {
	other := 1 - leaving
	switch {
	case n.phase == PhaseRunning && n.pauseVotes[other]:
		n.satisfy(&n.pauseVotes, PhasePauseRequested)
		return RoundPause, true
	case n.phase == PhasePaused && n.resumeVotes[other]:
		n.satisfy(&n.resumeVotes, PhaseResumeRequested)
		return RoundResume, true
	}
	return 0, false
}

// Countdown drives the resume countdown. It returns the value to announce
// (3, 2, 1), zero when nothing is due, and resumed once the step after the
// final value has elapsed.
func (n *Negotiator) Countdown(now time.Time) (value int, resumed bool) {
	if n.phase != PhaseResumeRequested {
		return 0, false
	}

	if !n.counting {
		n.counting = true
		n.countdown = CountdownFrom
		n.nextStep = now.Add(n.countdownStep)
		return n.countdown, false
	}

	if now.Before(n.nextStep) {
		return 0, false
	}
	n.nextStep = now.Add(n.countdownStep)

	n.countdown--
	if n.countdown > 0 {
		return n.countdown, false
	}

	n.phase = PhaseRunning
	n.counting = false
	n.resumeVotes = [2]bool{}
	return 0, true
}

// Counting reports whether a countdown is in flight.
func (n *Negotiator) Counting() bool { return n.counting }
