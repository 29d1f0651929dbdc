package server

// tallyVotes recomputes per-submission vote counts from the full vote set.
// It is recalculated from source data on every call; there are no running
// counters to fall out of sync.
func tallyVotes(round *RoundState) map[string]int {
	counts := make(map[string]int, len(round.Submissions))
	for _, submission := range round.Submissions {
		counts[submission.ID] = 0
	}
	for _, vote := range round.Votes {
		if _, ok := counts[vote.SubmissionID]; ok {
			counts[vote.SubmissionID]++
		}
	}
	return counts
}

// winningSubmission picks the submission with the strictly greatest vote
// count. Ties break to the earliest-created submission: the submissions slice
// is append-only in creation order, so the first maximum wins.
func winningSubmission(round *RoundState) (SubmissionEntry, map[string]int, bool) {
	counts := tallyVotes(round)
	if len(round.Submissions) == 0 {
		return SubmissionEntry{}, counts, false
	}
	winner := round.Submissions[0]
	for _, submission := range round.Submissions[1:] {
		if counts[submission.ID] > counts[winner.ID] {
			winner = submission
		}
	}
	return winner, counts, true
}

// champion returns the player with the highest score. Ties break to the
// earliest join; the players slice is ordered by join time.
func champion(game *Game) (Player, bool) {
	if len(game.Players) == 0 {
		return Player{}, false
	}
	best := game.Players[0]
	for _, player := range game.Players[1:] {
		if player.Score > best.Score {
			best = player
		}
	}
	return best, true
}
