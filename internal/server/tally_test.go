package server

import (
	"testing"
	"time"
)

func roundWithSubmissions(ids ...string) *RoundState {
	round := &RoundState{ID: "r1", Number: 1, Status: roundVoting}
	base := time.Now().UTC()
	for i, id := range ids {
		round.Submissions = append(round.Submissions, SubmissionEntry{
			ID:        id,
			PlayerID:  "p-" + id,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		})
	}
	return round
}

func TestTallyVotesRecountsFromVoteSet(t *testing.T) {
	round := roundWithSubmissions("s1", "s2")
	round.Votes = []VoteEntry{
		{VoterID: "v1", SubmissionID: "s1"},
		{VoterID: "v2", SubmissionID: "s1"},
		{VoterID: "v3", SubmissionID: "s2"},
		{VoterID: "v4", SubmissionID: "ghost"},
	}

	counts := tallyVotes(round)
	if counts["s1"] != 2 || counts["s2"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if _, ok := counts["ghost"]; ok {
		t.Fatalf("vote for unknown submission must not create a count entry")
	}
}

func TestWinningSubmissionTieBreaksToEarliest(t *testing.T) {
	round := roundWithSubmissions("s1", "s2", "s3")
	round.Votes = []VoteEntry{
		{VoterID: "v1", SubmissionID: "s2"},
		{VoterID: "v2", SubmissionID: "s3"},
	}

	winner, counts, ok := winningSubmission(round)
	if !ok {
		t.Fatalf("expected a winner")
	}
	if winner.ID != "s2" {
		t.Fatalf("tie must break to earliest submission, got %s", winner.ID)
	}
	if counts["s2"] != 1 || counts["s3"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestWinningSubmissionEmptyRound(t *testing.T) {
	round := &RoundState{ID: "r1", Number: 1, Status: roundVoting}
	if _, _, ok := winningSubmission(round); ok {
		t.Fatalf("expected no winner without submissions")
	}
}

func TestChampionTieBreaksToEarliestJoin(t *testing.T) {
	game := &Game{
		Players: []Player{
			{ID: "p1", Name: "Ada", Score: 2},
			{ID: "p2", Name: "Ben", Score: 3},
			{ID: "p3", Name: "Cem", Score: 3},
		},
	}
	champ, ok := champion(game)
	if !ok {
		t.Fatalf("expected a champion")
	}
	if champ.ID != "p2" {
		t.Fatalf("tie must break to earliest-joined player, got %s", champ.ID)
	}
}

func TestWinningSubmissionIgnoresVoteArrivalOrder(t *testing.T) {
	votes := []VoteEntry{
		{VoterID: "v1", SubmissionID: "s1"},
		{VoterID: "v2", SubmissionID: "s3"},
		{VoterID: "v3", SubmissionID: "s1"},
		{VoterID: "v4", SubmissionID: "s2"},
	}
	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
	}
	for _, order := range orders {
		round := roundWithSubmissions("s1", "s2", "s3")
		for _, i := range order {
			round.Votes = append(round.Votes, votes[i])
		}
		winner, _, ok := winningSubmission(round)
		if !ok || winner.ID != "s1" {
			t.Fatalf("winner depends on vote order %v: got %v", order, winner.ID)
		}
	}
}

func TestChampionEmptyRoster(t *testing.T) {
	if _, ok := champion(&Game{}); ok {
		t.Fatalf("expected no champion for empty roster")
	}
}
