package server

import (
	"encoding/json"
	"errors"
	"time"

	"memematch/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// The registry is the source of truth while a session is live; Postgres is a
// write-behind mirror plus the append-only event log. Every persist method is
// a no-op without a database connection.
//
// Persist methods run after the UpdateGame closure that produced the change,
// so they re-take the session mutex themselves: they read roster and round
// state and fill in DBIDs, which must not race a concurrent update. Methods
// with a Locked suffix assume the caller already holds it.

func (s *Server) persistGame(game *Game) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	record := db.Game{
		Code:         game.Code,
		HostPlayerID: game.HostID,
		Status:       game.Status,
		MaxRounds:    game.MaxRounds,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	game.DBID = record.ID
	return s.recordEventLocked(game, "game_created", map[string]any{
		"code":    game.Code,
		"host_id": game.HostID,
	})
}

func (s *Server) persistPlayer(game *Game, player *Player) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	return s.persistPlayerLocked(game, player)
}

func (s *Server) persistPlayerLocked(game *Game, player *Player) error {
	if player.DBID != 0 {
		return nil
	}
	if err := s.ensureGameDBIDLocked(game); err != nil {
		return err
	}
	if game.DBID == 0 {
		return ErrGameNotFound
	}
	record := db.Player{
		GameID:      game.DBID,
		UserID:      player.ID,
		DisplayName: player.Name,
		IsHost:      player.IsHost,
		IsConnected: player.IsConnected,
		JoinedAt:    player.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findPlayerDBID(game.DBID, player.ID)
			if lookupErr == nil && existing != 0 {
				player.DBID = existing
				return nil
			}
		}
		return err
	}
	player.DBID = record.ID
	return s.recordEventLocked(game, "player_joined", map[string]any{
		"player_id": player.ID,
		"name":      player.Name,
	})
}

func (s *Server) persistGameStarted(game *Game) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	if err := s.ensureGameDBIDLocked(game); err != nil {
		return err
	}
	if game.DBID == 0 {
		return ErrGameNotFound
	}
	startedAt := game.StartedAt
	updates := map[string]any{
		"status":        game.Status,
		"current_round": game.CurrentRound,
		"started_at":    &startedAt,
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistCurrentRoundLocked(game)
}

func (s *Server) persistCurrentRound(game *Game) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	return s.persistCurrentRoundLocked(game)
}

// persistCurrentRoundLocked mirrors the newest in-memory round to its own row.
func (s *Server) persistCurrentRoundLocked(game *Game) error {
	round := currentRound(game)
	if round == nil || round.DBID != 0 {
		return nil
	}
	if err := s.ensureGameDBIDLocked(game); err != nil {
		return err
	}
	if game.DBID == 0 {
		return ErrGameNotFound
	}
	record := db.Round{
		GameID:     game.DBID,
		Number:     round.Number,
		PromptText: round.PromptText,
		Status:     round.Status,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	round.DBID = record.ID
	if round.Number > 1 {
		return s.db.Model(&db.Game{}).Where("id = ?", game.DBID).
			Update("current_round", round.Number).Error
	}
	return nil
}

func (s *Server) persistSubmission(game *Game, roundID string, entry SubmissionEntry) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	round := roundByID(game, roundID)
	if round == nil {
		return ErrRoundNotFound
	}
	if round.DBID == 0 {
		if err := s.persistCurrentRoundLocked(game); err != nil {
			return err
		}
	}
	player, ok := findPlayer(game, entry.PlayerID)
	if !ok || player.DBID == 0 {
		return ErrPlayerNotFound
	}
	record := db.Submission{
		PublicID:  entry.ID,
		RoundID:   round.DBID,
		PlayerID:  player.DBID,
		CardID:    entry.Card.ID,
		CreatedAt: entry.CreatedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	for i := range round.Submissions {
		if round.Submissions[i].ID == entry.ID {
			round.Submissions[i].DBID = record.ID
		}
	}
	return s.recordEventLocked(game, "card_submitted", map[string]any{
		"round_id":      roundID,
		"player_id":     entry.PlayerID,
		"submission_id": entry.ID,
	})
}

func (s *Server) persistVote(game *Game, roundID string, vote VoteEntry) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	round := roundByID(game, roundID)
	if round == nil || round.DBID == 0 {
		return ErrRoundNotFound
	}
	voter, ok := findPlayer(game, vote.VoterID)
	if !ok || voter.DBID == 0 {
		return ErrPlayerNotFound
	}
	submissionDBID := uint(0)
	for _, submission := range round.Submissions {
		if submission.ID == vote.SubmissionID {
			submissionDBID = submission.DBID
			break
		}
	}
	if submissionDBID == 0 {
		var record db.Submission
		if err := s.db.Where("public_id = ?", vote.SubmissionID).First(&record).Error; err != nil {
			return err
		}
		submissionDBID = record.ID
	}
	record := db.Vote{
		RoundID:      round.DBID,
		VoterID:      voter.DBID,
		SubmissionID: submissionDBID,
		CreatedAt:    vote.CreatedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return s.recordEventLocked(game, "vote_cast", map[string]any{
		"round_id":      roundID,
		"voter_id":      vote.VoterID,
		"submission_id": vote.SubmissionID,
	})
}

func (s *Server) persistRoundResult(game *Game, ended roundEndedPayload) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	round := roundByID(game, ended.RoundID)
	if round == nil || round.DBID == 0 {
		return ErrRoundNotFound
	}
	now := timeNowUTC()
	updates := map[string]any{
		"status":   round.Status,
		"ended_at": &now,
	}
	if winner, ok := findPlayer(game, ended.WinnerPlayerID); ok && winner.DBID != 0 {
		updates["winner_player_id"] = &winner.DBID
		if err := s.db.Model(&db.Player{}).Where("id = ?", winner.DBID).
			Update("score", winner.Score).Error; err != nil {
			return err
		}
	}
	return s.db.Model(&db.Round{}).Where("id = ?", round.DBID).Updates(updates).Error
}

func (s *Server) persistGameFinished(game *Game, final gameEndedPayload) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	if err := s.ensureGameDBIDLocked(game); err != nil {
		return err
	}
	if game.DBID == 0 {
		return ErrGameNotFound
	}
	finishedAt := game.FinishedAt
	updates := map[string]any{
		"status":      game.Status,
		"finished_at": &finishedAt,
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(updates).Error; err != nil {
		return err
	}

	championDBID := uint(0)
	if champ, ok := findPlayer(game, final.ChampionID); ok {
		championDBID = champ.DBID
	}
	duration := 0
	if !game.StartedAt.IsZero() {
		duration = int(game.FinishedAt.Sub(game.StartedAt) / time.Minute)
	}
	history := db.GameHistory{
		GameID:          game.DBID,
		ChampionID:      championDBID,
		TotalPlayers:    len(game.Players),
		TotalRounds:     game.CurrentRound,
		DurationMinutes: duration,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&history).Error; err != nil {
		return err
	}
	return nil
}

func (s *Server) persistConnection(game *Game, playerID string, connected bool) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	player, ok := findPlayer(game, playerID)
	if !ok {
		return ErrPlayerNotFound
	}
	if player.DBID == 0 {
		if err := s.persistPlayerLocked(game, player); err != nil {
			return err
		}
	}
	return s.db.Model(&db.Player{}).Where("id = ?", player.DBID).
		Update("is_connected", connected).Error
}

func (s *Server) recordEvent(game *Game, eventType string, payload any) error {
	if s.db == nil {
		return nil
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	return s.recordEventLocked(game, eventType, payload)
}

// recordEventLocked appends one row to the session's event log. Accepts either
// a typed payload struct or a map; both end up as JSONB.
func (s *Server) recordEventLocked(game *Game, eventType string, payload any) error {
	if err := s.ensureGameDBIDLocked(game); err != nil {
		return err
	}
	if game.DBID == 0 {
		return ErrGameNotFound
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		GameID:  game.DBID,
		RoundID: currentRoundDBID(game),
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	return s.db.Create(&event).Error
}

func currentRoundDBID(game *Game) *uint {
	round := currentRound(game)
	if round == nil || round.DBID == 0 {
		return nil
	}
	id := round.DBID
	return &id
}

func (s *Server) ensureGameDBIDLocked(game *Game) error {
	if s.db == nil || game.DBID != 0 {
		return nil
	}
	var record db.Game
	if err := s.db.Where("code = ?", game.Code).First(&record).Error; err != nil {
		return nil
	}
	game.DBID = record.ID
	return nil
}

// gameDBID resolves the session's database row id under the session mutex.
func (s *Server) gameDBID(game *Game) uint {
	game.mu.Lock()
	defer game.mu.Unlock()
	_ = s.ensureGameDBIDLocked(game)
	return game.DBID
}

func (s *Server) findPlayerDBID(gameDBID uint, userID string) (uint, error) {
	var record db.Player
	if err := s.db.Where("game_id = ? AND user_id = ?", gameDBID, userID).First(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func roundByID(game *Game, id string) *RoundState {
	for i := range game.Rounds {
		if game.Rounds[i].ID == id {
			return &game.Rounds[i]
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
