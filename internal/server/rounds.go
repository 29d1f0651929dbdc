package server

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// startGame moves a waiting session into its first round. Only the host may
// start, and at least MinPlayers players must be connected at that moment.
func (s *Server) startGame(code, playerID string) error {
	var started gameStartedPayload
	game, err := s.store.UpdateGame(code, func(g *Game) error {
		if g.Status == statusFinished {
			return ErrGameFinished
		}
		if g.Status != statusWaiting {
			return ErrAlreadyStarted
		}
		if g.HostID != playerID {
			return ErrNotHost
		}
		if connectedCount(g) < g.MinPlayers {
			return ErrNotEnoughPlayers
		}
		if err := s.openRound(g, 1); err != nil {
			return err
		}
		g.Status = statusInProgress
		g.StartedAt = timeNowUTC()
		started = gameStartedPayload{
			Code:  g.Code,
			Round: roundInfoOf(currentRound(g)),
			Hands: handsOf(g, currentRound(g)),
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("game started code=%s host=%s players=%d", game.Code, playerID, len(started.Hands))
	if err := s.persistGameStarted(game); err != nil {
		log.Printf("persist game start failed code=%s err=%v", game.Code, err)
	}
	s.recordEvent(game, eventGameStarted, started)
	s.broadcast(code, eventGameStarted, started)
	return nil
}

// openRound deals fresh hands to every connected player, draws a prompt, and
// appends the new round. The connected set it captures in EligibleIDs is the
// completion threshold for the whole round. Draws are collected before any
// game state changes so a catalog failure leaves the session untouched.
func (s *Server) openRound(g *Game, number int) error {
	prompt, err := s.catalog.DrawPrompt(g.Language)
	if err != nil {
		return err
	}

	hands := make(map[string][]Card)
	eligible := make([]string, 0, len(g.Players))
	for i := range g.Players {
		if !g.Players[i].IsConnected {
			continue
		}
		hand, err := s.catalog.DrawCards(g.HandSize, g.Language)
		if err != nil {
			return err
		}
		hands[g.Players[i].ID] = hand
		eligible = append(eligible, g.Players[i].ID)
	}
	if len(eligible) == 0 {
		return ErrNotEnoughPlayers
	}

	for i := range g.Players {
		if hand, ok := hands[g.Players[i].ID]; ok {
			g.Players[i].Hand = hand
		}
	}
	g.Rounds = append(g.Rounds, RoundState{
		ID:          uuid.NewString(),
		Number:      number,
		PromptText:  prompt,
		Status:      roundActive,
		EligibleIDs: eligible,
	})
	g.CurrentRound = number
	return nil
}

func currentRound(g *Game) *RoundState {
	if len(g.Rounds) == 0 {
		return nil
	}
	return &g.Rounds[len(g.Rounds)-1]
}

// eligibleInRound reports whether the player was in the round-start snapshot.
// Players who joined or reconnected after the round opened are not part of the
// threshold and may not act in it, even if they still hold cards from an
// earlier round.
func eligibleInRound(round *RoundState, playerID string) bool {
	for _, id := range round.EligibleIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

func handsOf(g *Game, round *RoundState) map[string][]cardInfo {
	hands := make(map[string][]cardInfo, len(round.EligibleIDs))
	for _, id := range round.EligibleIDs {
		if player, ok := findPlayer(g, id); ok {
			hands[id] = cardInfos(player.Hand)
		}
	}
	return hands
}

// submitCard records a player's card for the current round. The duplicate
// check, the hand check, the append, and the threshold comparison all happen
// inside one update, so concurrent submissions cannot double-count or
// double-transition.
func (s *Server) submitCard(code, playerID string, req submitPayload) error {
	var (
		entry        SubmissionEntry
		progress     submitProgressPayload
		voting       votingStartedPayload
		transitioned bool
	)
	game, err := s.store.UpdateGame(code, func(g *Game) error {
		if g.Status == statusFinished {
			return ErrGameFinished
		}
		round := currentRound(g)
		if round == nil || round.ID != req.RoundID {
			return ErrRoundNotFound
		}
		if round.Status != roundActive {
			return ErrWrongRoundStatus
		}
		player, ok := findPlayer(g, playerID)
		if !ok {
			return ErrPlayerNotFound
		}
		if !eligibleInRound(round, playerID) {
			return ErrNotEligible
		}
		for _, submission := range round.Submissions {
			if submission.PlayerID == playerID {
				return ErrAlreadySubmitted
			}
		}
		held := -1
		for i, card := range player.Hand {
			if card.ID == req.CardID {
				held = i
				break
			}
		}
		if held < 0 {
			return ErrCardNotHeld
		}

		entry = SubmissionEntry{
			ID:        uuid.NewString(),
			PlayerID:  playerID,
			Card:      player.Hand[held],
			CreatedAt: timeNowUTC(),
		}
		player.Hand = append(player.Hand[:held], player.Hand[held+1:]...)
		round.Submissions = append(round.Submissions, entry)

		progress = submitProgressPayload{
			RoundID:   round.ID,
			PlayerID:  playerID,
			Submitted: len(round.Submissions),
			Total:     len(round.EligibleIDs),
		}
		if len(round.Submissions) >= len(round.EligibleIDs) {
			round.Status = roundVoting
			voting = votingStartedPayload{
				RoundID:     round.ID,
				Submissions: submissionInfos(g, round),
			}
			transitioned = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("card submitted code=%s player=%s round=%s", game.Code, playerID, req.RoundID)
	if err := s.persistSubmission(game, req.RoundID, entry); err != nil {
		log.Printf("persist submission failed code=%s err=%v", game.Code, err)
	}
	s.broadcast(code, eventCardSubmitted, progress)
	if transitioned {
		s.recordEvent(game, eventVotingStarted, voting)
		s.broadcast(code, eventVotingStarted, voting)
	}
	return nil
}

// castVote records one vote, recomputes the tally from the vote set, and when
// the last eligible voter has voted resolves the round in the same update.
func (s *Server) castVote(code, playerID string, req votePayload) error {
	var (
		vote     VoteEntry
		update   voteUpdatePayload
		ended    roundEndedPayload
		final    gameEndedPayload
		resolved bool
		finished bool
		number   int
	)
	game, err := s.store.UpdateGame(code, func(g *Game) error {
		if g.Status == statusFinished {
			return ErrGameFinished
		}
		round := currentRound(g)
		if round == nil || round.ID != req.RoundID {
			return ErrRoundNotFound
		}
		if round.Status != roundVoting {
			return ErrWrongRoundStatus
		}
		if _, ok := findPlayer(g, playerID); !ok {
			return ErrPlayerNotFound
		}
		if !eligibleInRound(round, playerID) {
			return ErrNotEligible
		}
		for _, existing := range round.Votes {
			if existing.VoterID == playerID {
				return ErrAlreadyVoted
			}
		}
		var target *SubmissionEntry
		for i := range round.Submissions {
			if round.Submissions[i].ID == req.SubmissionID {
				target = &round.Submissions[i]
				break
			}
		}
		if target == nil {
			return ErrSubmissionNotFound
		}
		if target.PlayerID == playerID {
			return ErrSelfVote
		}

		vote = VoteEntry{
			VoterID:      playerID,
			SubmissionID: req.SubmissionID,
			CreatedAt:    timeNowUTC(),
		}
		round.Votes = append(round.Votes, vote)

		update = voteUpdatePayload{
			RoundID: round.ID,
			Counts:  tallyVotes(round),
			Voted:   len(round.Votes),
			Total:   len(round.EligibleIDs),
		}
		if len(round.Votes) >= len(round.EligibleIDs) {
			ended = s.resolveRound(g, round)
			resolved = true
			number = round.Number
			if round.Number >= g.MaxRounds {
				final = finishGame(g)
				finished = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("vote cast code=%s voter=%s round=%s", game.Code, playerID, req.RoundID)
	if err := s.persistVote(game, req.RoundID, vote); err != nil {
		log.Printf("persist vote failed code=%s err=%v", game.Code, err)
	}
	if !resolved {
		s.broadcast(code, eventVoteUpdate, update)
		return nil
	}

	if err := s.persistRoundResult(game, ended); err != nil {
		log.Printf("persist round result failed code=%s err=%v", game.Code, err)
	}
	s.recordEvent(game, eventRoundEnded, ended)
	s.broadcast(code, eventRoundEnded, ended)

	if finished {
		s.cancelTimer(code)
		log.Printf("game ended code=%s champion=%s rounds=%d", game.Code, final.ChampionID, number)
		if err := s.persistGameFinished(game, final); err != nil {
			log.Printf("persist game finish failed code=%s err=%v", game.Code, err)
		}
		s.recordEvent(game, eventGameEnded, final)
		s.broadcast(code, eventGameEnded, final)
		return nil
	}
	s.scheduleNextRound(code, number)
	return nil
}

// resolveRound closes a voting round: pick the winner, bump the score, mark
// the round completed. Runs under the session mutex.
func (s *Server) resolveRound(g *Game, round *RoundState) roundEndedPayload {
	winner, counts, _ := winningSubmission(round)
	round.Status = roundCompleted
	round.WinnerID = winner.PlayerID
	if player, ok := findPlayer(g, winner.PlayerID); ok {
		player.Score++
	}
	return roundEndedPayload{
		RoundID:        round.ID,
		WinnerPlayerID: winner.PlayerID,
		Counts:         counts,
		Scores:         playerInfos(g),
	}
}

func finishGame(g *Game) gameEndedPayload {
	g.Status = statusFinished
	g.FinishedAt = timeNowUTC()
	champ, _ := champion(g)
	ranking := playerInfos(g)
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	return gameEndedPayload{ChampionID: champ.ID, Ranking: ranking}
}

// advanceRound opens the next round when the between-rounds timer fires. The
// completed-round number guards against stale timers: if the session moved on
// or ended in the meantime the timer is a no-op. Catalog hiccups are retried
// a few times before giving up on the session.
func (s *Server) advanceRound(code string, completed int) {
	var opened newRoundPayload
	for attempt := 0; ; attempt++ {
		game, err := s.store.UpdateGame(code, func(g *Game) error {
			if g.Status != statusInProgress {
				return ErrGameFinished
			}
			if g.CurrentRound != completed {
				return ErrRoundNotFound
			}
			round := currentRound(g)
			if round == nil || round.Status != roundCompleted {
				return ErrWrongRoundStatus
			}
			if err := s.openRound(g, completed+1); err != nil {
				return err
			}
			opened = newRoundPayload{
				Round: roundInfoOf(currentRound(g)),
				Hands: handsOf(g, currentRound(g)),
			}
			return nil
		})
		if err == nil {
			if err := s.persistCurrentRound(game); err != nil {
				log.Printf("persist round failed code=%s err=%v", game.Code, err)
			}
			s.recordEvent(game, eventNewRound, opened)
			s.broadcast(code, eventNewRound, opened)
			return
		}
		if errors.Is(err, ErrCatalogUnavailable) && attempt < 2 {
			log.Printf("round advance retry code=%s attempt=%d err=%v", code, attempt+1, err)
			time.Sleep(time.Second)
			continue
		}
		if !errors.Is(err, ErrCatalogUnavailable) {
			// stale timer, or the session ended while waiting
			return
		}
		log.Printf("round advance gave up code=%s err=%v", code, err)
		return
	}
}
