package server

import (
	"sort"
	"strings"
	"sync"
	"time"

	"memematch/internal/config"

	"github.com/google/uuid"
)

// Store is the session registry. The registry mutex only guards the code map;
// each Game carries its own mutex, so actions on one session serialize against
// each other without contending with any other session.
type Store struct {
	mu    sync.Mutex
	games map[string]*Game
}

func NewStore() *Store {
	return &Store{
		games: make(map[string]*Game),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateGame registers a new session with the given host as its sole player.
// Codes are sampled until one is free among currently active sessions; the
// check and the insert happen under the same lock, so two concurrent creates
// can never share a code.
func (s *Store) CreateGame(hostID, hostName string, cfg config.Config) *Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := newJoinCode()
	for {
		if _, taken := s.games[code]; !taken {
			break
		}
		code = newJoinCode()
	}

	now := timeNowUTC()
	game := &Game{
		ID:         uuid.NewString(),
		Code:       code,
		HostID:     hostID,
		Status:     statusWaiting,
		MaxRounds:  cfg.MaxRounds,
		HandSize:   cfg.HandSize,
		MinPlayers: cfg.MinPlayers,
		MaxPlayers: cfg.MaxPlayers,
		Language:   cfg.PromptLanguage,
		CreatedAt:  now,
		Players: []Player{{
			ID:          hostID,
			Name:        hostName,
			IsHost:      true,
			IsConnected: true,
			JoinedAt:    now,
		}},
	}
	s.games[code] = game
	return game
}

func (s *Store) lookup(code string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[normalizeCode(code)]
	return game, ok
}

func (s *Store) GetGame(code string) (*Game, bool) {
	return s.lookup(code)
}

// UpdateGame runs update under the session's own mutex. A non-nil error from
// update leaves the game unchanged from the caller's point of view: updates
// must not mutate before their last failable check.
func (s *Store) UpdateGame(code string, update func(game *Game) error) (*Game, error) {
	game, ok := s.lookup(code)
	if !ok {
		return nil, ErrGameNotFound
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	if err := update(game); err != nil {
		return nil, err
	}
	return game, nil
}

// AddPlayer appends a non-host player to a waiting session.
func (s *Store) AddPlayer(code, playerID, name string) (*Game, *Player, error) {
	game, ok := s.lookup(code)
	if !ok {
		return nil, nil, ErrGameNotFound
	}
	game.mu.Lock()
	defer game.mu.Unlock()

	if game.Status != statusWaiting {
		return nil, nil, ErrAlreadyStarted
	}
	if len(game.Players) >= game.MaxPlayers {
		return nil, nil, ErrGameFull
	}
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return nil, nil, ErrAlreadyJoined
		}
	}

	game.Players = append(game.Players, Player{
		ID:          playerID,
		Name:        name,
		IsConnected: true,
		JoinedAt:    timeNowUTC(),
	})
	return game, &game.Players[len(game.Players)-1], nil
}

// RemoveGame drops an abandoned session from the registry.
func (s *Store) RemoveGame(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, normalizeCode(code))
}

func (s *Store) ListGameSummaries() []GameSummary {
	s.mu.Lock()
	games := make([]*Game, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, game)
	}
	s.mu.Unlock()

	list := make([]GameSummary, 0, len(games))
	for _, game := range games {
		game.mu.Lock()
		list = append(list, GameSummary{
			Code:    game.Code,
			Status:  game.Status,
			Players: len(game.Players),
		})
		game.mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Code < list[j].Code
	})
	return list
}

func findPlayer(game *Game, playerID string) (*Player, bool) {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return &game.Players[i], true
		}
	}
	return nil, false
}

func connectedCount(game *Game) int {
	count := 0
	for i := range game.Players {
		if game.Players[i].IsConnected {
			count++
		}
	}
	return count
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
