package server

// snapshot builds the full read view of a session for late joiners and
// reconnects. Built under the session mutex so it never shows a half-applied
// action.
func snapshot(game *Game) map[string]any {
	payload := map[string]any{
		"code":          game.Code,
		"status":        game.Status,
		"host_id":       game.HostID,
		"current_round": game.CurrentRound,
		"max_rounds":    game.MaxRounds,
		"players":       playerInfos(game),
		"created_at":    game.CreatedAt,
	}
	if !game.StartedAt.IsZero() {
		payload["started_at"] = game.StartedAt
	}
	if !game.FinishedAt.IsZero() {
		payload["finished_at"] = game.FinishedAt
	}
	round := currentRound(game)
	if round == nil {
		return payload
	}

	roundView := map[string]any{
		"id":        round.ID,
		"number":    round.Number,
		"prompt":    round.PromptText,
		"status":    round.Status,
		"submitted": len(round.Submissions),
		"voted":     len(round.Votes),
		"total":     len(round.EligibleIDs),
	}
	// card contents stay hidden until everyone has submitted
	if round.Status != roundActive {
		roundView["submissions"] = submissionInfos(game, round)
		roundView["counts"] = tallyVotes(round)
	}
	if round.WinnerID != "" {
		roundView["winner_player_id"] = round.WinnerID
	}
	payload["round"] = roundView
	return payload
}

func (s *Server) snapshotOf(code string) (map[string]any, error) {
	var view map[string]any
	_, err := s.store.UpdateGame(code, func(g *Game) error {
		view = snapshot(g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
