package server

import (
	"sync"
	"time"
)

const (
	statusWaiting    = "waiting"
	statusInProgress = "in_progress"
	statusFinished   = "finished"
)

const (
	roundActive    = "active"
	roundVoting    = "voting"
	roundCompleted = "completed"
)

type GameSummary struct {
	Code    string
	Status  string
	Players int
}

type Game struct {
	mu sync.Mutex

	ID           string
	DBID         uint
	Code         string
	HostID       string
	Status       string
	CurrentRound int
	MaxRounds    int
	HandSize     int
	MinPlayers   int
	MaxPlayers   int
	Language     string
	CreatedAt    time.Time
	StartedAt    time.Time
	FinishedAt   time.Time
	Players      []Player
	Rounds       []RoundState
}

type Player struct {
	ID          string
	DBID        uint
	Name        string
	Score       int
	IsHost      bool
	IsConnected bool
	Hand        []Card
	JoinedAt    time.Time
}

// RoundState keeps the authoritative submission and vote sets for one round.
// EligibleIDs is the set of connected players captured when the round opened;
// its size is the completion threshold for both submissions and votes and
// never changes afterwards, even across disconnects.
type RoundState struct {
	ID          string
	DBID        uint
	Number      int
	PromptText  string
	Status      string
	EligibleIDs []string
	Submissions []SubmissionEntry
	Votes       []VoteEntry
	WinnerID    string
}

type SubmissionEntry struct {
	ID        string
	DBID      uint
	PlayerID  string
	Card      Card
	CreatedAt time.Time
}

type VoteEntry struct {
	VoterID      string
	SubmissionID string
	CreatedAt    time.Time
}

type Card struct {
	ID       string
	Content  string
	Language string
}
