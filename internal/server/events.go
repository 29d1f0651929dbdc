package server

import "encoding/json"

// Server-to-client event names. This set is closed: every broadcast carries
// one of these tags and exactly one payload schema.
const (
	eventPlayerJoined  = "player_joined"
	eventPlayerLeft    = "player_left"
	eventGameStarted   = "game_started"
	eventNewRound      = "new_round"
	eventCardSubmitted = "card_submitted"
	eventVotingStarted = "voting_started"
	eventVoteUpdate    = "vote_update"
	eventRoundEnded    = "round_ended"
	eventGameEnded     = "game_ended"
	eventError         = "error"
)

// Client-to-server action names carried over the websocket.
const (
	actionStart  = "start"
	actionSubmit = "submit"
	actionVote   = "vote"
)

type eventMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type clientMessage struct {
	Type    string          `json:"type" validate:"required,oneof=start submit vote"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	RoundID string `json:"round_id" validate:"required"`
	CardID  string `json:"card_id" validate:"required"`
}

type votePayload struct {
	RoundID      string `json:"round_id" validate:"required"`
	SubmissionID string `json:"submission_id" validate:"required"`
}

type playerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	IsHost      bool   `json:"is_host"`
	IsConnected bool   `json:"is_connected"`
}

type cardInfo struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type roundInfo struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Prompt string `json:"prompt"`
}

type rosterPayload struct {
	PlayerID string       `json:"player_id"`
	Players  []playerInfo `json:"players"`
}

type gameStartedPayload struct {
	Code  string                `json:"code"`
	Round roundInfo             `json:"round"`
	Hands map[string][]cardInfo `json:"hands"`
}

type newRoundPayload struct {
	Round roundInfo             `json:"round"`
	Hands map[string][]cardInfo `json:"hands"`
}

type submitProgressPayload struct {
	RoundID   string `json:"round_id"`
	PlayerID  string `json:"player_id"`
	Submitted int    `json:"submitted"`
	Total     int    `json:"total"`
}

type submissionInfo struct {
	ID         string   `json:"id"`
	Card       cardInfo `json:"card"`
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name"`
}

type votingStartedPayload struct {
	RoundID     string           `json:"round_id"`
	Submissions []submissionInfo `json:"submissions"`
}

type voteUpdatePayload struct {
	RoundID string         `json:"round_id"`
	Counts  map[string]int `json:"counts"`
	Voted   int            `json:"voted"`
	Total   int            `json:"total"`
}

type roundEndedPayload struct {
	RoundID        string         `json:"round_id"`
	WinnerPlayerID string         `json:"winner_player_id"`
	Counts         map[string]int `json:"counts"`
	Scores         []playerInfo   `json:"scores"`
}

type gameEndedPayload struct {
	ChampionID string       `json:"champion_id"`
	Ranking    []playerInfo `json:"ranking"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func playerInfos(game *Game) []playerInfo {
	players := make([]playerInfo, 0, len(game.Players))
	for _, player := range game.Players {
		players = append(players, playerInfo{
			ID:          player.ID,
			Name:        player.Name,
			Score:       player.Score,
			IsHost:      player.IsHost,
			IsConnected: player.IsConnected,
		})
	}
	return players
}

func cardInfos(cards []Card) []cardInfo {
	infos := make([]cardInfo, 0, len(cards))
	for _, card := range cards {
		infos = append(infos, cardInfo{ID: card.ID, Content: card.Content})
	}
	return infos
}

func submissionInfos(game *Game, round *RoundState) []submissionInfo {
	infos := make([]submissionInfo, 0, len(round.Submissions))
	for _, submission := range round.Submissions {
		name := ""
		if player, ok := findPlayer(game, submission.PlayerID); ok {
			name = player.Name
		}
		infos = append(infos, submissionInfo{
			ID:         submission.ID,
			Card:       cardInfo{ID: submission.Card.ID, Content: submission.Card.Content},
			PlayerID:   submission.PlayerID,
			PlayerName: name,
		})
	}
	return infos
}

func roundInfoOf(round *RoundState) roundInfo {
	return roundInfo{
		ID:     round.ID,
		Number: round.Number,
		Prompt: round.PromptText,
	}
}
