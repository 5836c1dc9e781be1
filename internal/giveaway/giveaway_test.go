package giveaway_test

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/comment-giveaway-api/internal/giveaway"
	"github.com/comment-giveaway-api/internal/models"
)

func makeParticipants(count int) []models.Participant {
	participants := make([]models.Participant, 0, count)
	for i := 0; i < count; i++ {
		participants = append(participants, models.Participant{
			CommentID: fmt.Sprintf("c%04d", i),
			UserID:    fmt.Sprintf("u%04d", i),
			Username:  fmt.Sprintf("user%04d", i),
		})
	}
	return participants
}

func makeInput(participants []models.Participant, opts giveaway.Options) *giveaway.Input {
	return &giveaway.Input{
		MediaID:          "17900000000000001",
		PostCreatedAtISO: "2024-02-20T09:00:00+0000",
		CommentsCount:    len(participants),
		GiveawayDateISO:  "2024-03-01T18:00:00+0000",
		Participants:     participants,
		Options:          opts,
	}
}

func TestFilterParticipants_SortsByCommentID(t *testing.T) {
	participants := []models.Participant{
		{CommentID: "c3", UserID: "u3"},
		{CommentID: "c1", UserID: "u1"},
		{CommentID: "c2", UserID: "u2"},
	}

	filtered := giveaway.FilterParticipants(participants, false)

	if len(filtered) != 3 {
		t.Fatalf("Expected 3 participants, got %d", len(filtered))
	}
	if !sort.SliceIsSorted(filtered, func(i, j int) bool {
		return filtered[i].CommentID < filtered[j].CommentID
	}) {
		t.Errorf("Expected output sorted by comment id, got %v", filtered)
	}

	// Input order must not matter
	reversed := []models.Participant{participants[2], participants[0], participants[1]}
	again := giveaway.FilterParticipants(reversed, false)
	for i := range filtered {
		if filtered[i] != again[i] {
			t.Errorf("Filter is order-dependent at %d: %v vs %v", i, filtered[i], again[i])
		}
	}
}

func TestFilterParticipants_UniqueUsersKeepsEarliestComment(t *testing.T) {
	participants := []models.Participant{
		{CommentID: "c5", UserID: "alice"},
		{CommentID: "c2", UserID: "bob"},
		{CommentID: "c1", UserID: "alice"},
		{CommentID: "c4", UserID: "alice"},
		{CommentID: "c3", UserID: "carol"},
	}

	filtered := giveaway.FilterParticipants(participants, true)

	if len(filtered) != 3 {
		t.Fatalf("Expected one entry per distinct user (3), got %d", len(filtered))
	}
	byUser := make(map[string]string)
	for _, p := range filtered {
		byUser[p.UserID] = p.CommentID
	}
	if byUser["alice"] != "c1" {
		t.Errorf("Expected alice to keep c1 (smallest comment id), got %s", byUser["alice"])
	}
	if byUser["bob"] != "c2" || byUser["carol"] != "c3" {
		t.Errorf("Unexpected retained comments: %v", byUser)
	}
}

func TestBuildParticipantsHash(t *testing.T) {
	a := makeParticipants(10)
	hashA := giveaway.BuildParticipantsHash(a)
	hashB := giveaway.BuildParticipantsHash(makeParticipants(10))
	if hashA != hashB {
		t.Error("Same participant list should produce the same hash")
	}
	if len(hashA) != 64 || strings.ToLower(hashA) != hashA {
		t.Errorf("Expected lowercase hex sha256, got %q", hashA)
	}

	// Changing membership changes the hash
	if giveaway.BuildParticipantsHash(makeParticipants(9)) == hashA {
		t.Error("Different membership should change the hash")
	}

	// Changing order changes the hash
	swapped := makeParticipants(10)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if giveaway.BuildParticipantsHash(swapped) == hashA {
		t.Error("Different order should change the hash")
	}
}

func TestBuildSeedInput_DistinguishesSlotAndAttempt(t *testing.T) {
	in := makeInput(makeParticipants(5), giveaway.Options{WinnerCount: 1})
	hash := giveaway.BuildParticipantsHash(in.Participants)

	base := giveaway.BuildSeedInput(in, hash, 1, 1)
	if giveaway.BuildSeedInput(in, hash, 2, 1) == base {
		t.Error("Different winner number should change the seed input")
	}
	if giveaway.BuildSeedInput(in, hash, 1, 2) == base {
		t.Error("Different attempt should change the seed input")
	}

	if giveaway.BuildSeedHash(giveaway.BuildSeedInput(in, hash, 1, 2)) == giveaway.BuildSeedHash(base) {
		t.Error("Different seed inputs should produce different seed hashes")
	}

	// Every public fact must be embedded
	for _, field := range []string{in.MediaID, in.PostCreatedAtISO, in.GiveawayDateISO, hash} {
		if !strings.Contains(base, field) {
			t.Errorf("Seed input should embed %q, got %q", field, base)
		}
	}
}

func TestSelectWinnerIndex_Range(t *testing.T) {
	for n := 1; n <= 50; n++ {
		for draw := 0; draw < 20; draw++ {
			hash := giveaway.BuildSeedHash(fmt.Sprintf("seed-%d-%d", n, draw))
			index, err := giveaway.SelectWinnerIndex(hash, n)
			if err != nil {
				t.Fatalf("SelectWinnerIndex failed: %v", err)
			}
			if index < 0 || index >= n {
				t.Fatalf("Index %d out of range [0, %d)", index, n)
			}
			if n == 1 && index != 0 {
				t.Fatalf("n=1 must always select index 0, got %d", index)
			}
		}
	}
}

func TestSelectWinnerIndex_Deterministic(t *testing.T) {
	hash := giveaway.BuildSeedHash("fixed seed")
	first, err := giveaway.SelectWinnerIndex(hash, 1000)
	if err != nil {
		t.Fatalf("SelectWinnerIndex failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := giveaway.SelectWinnerIndex(hash, 1000)
		if again != first {
			t.Fatalf("Same hash produced different indexes: %d vs %d", first, again)
		}
	}
}

func TestSelectWinnerIndex_RejectsBadInput(t *testing.T) {
	if _, err := giveaway.SelectWinnerIndex(giveaway.BuildSeedHash("x"), 0); err == nil {
		t.Error("Expected error for zero participant count")
	}
	if _, err := giveaway.SelectWinnerIndex("not-hex", 10); err == nil {
		t.Error("Expected error for non-hex seed hash")
	}
	if _, err := giveaway.SelectWinnerIndex("abcd", 10); err == nil {
		t.Error("Expected error for short seed hash")
	}
}

func TestRun_Deterministic(t *testing.T) {
	in := makeInput(makeParticipants(200), giveaway.Options{
		WinnerCount:   5,
		UniqueUsers:   true,
		UniqueWinners: true,
	})

	first, err := giveaway.Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	firstJSON, _ := json.Marshal(first)

	for i := 0; i < 5; i++ {
		again, err := giveaway.Run(in)
		if err != nil {
			t.Fatalf("Run failed on repeat: %v", err)
		}
		againJSON, _ := json.Marshal(again)
		if string(firstJSON) != string(againJSON) {
			t.Fatal("Identical inputs must produce byte-identical results")
		}
	}
}

func TestRun_ResultShape(t *testing.T) {
	in := makeInput(makeParticipants(50), giveaway.Options{WinnerCount: 3})

	result, err := giveaway.Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FilteredParticipantCount != 50 {
		t.Errorf("Expected filtered count 50, got %d", result.FilteredParticipantCount)
	}
	if result.ParticipantsHash == "" {
		t.Error("Expected participants hash to be set")
	}
	active := result.ActiveWinners()
	if len(active) != 3 {
		t.Fatalf("Expected 3 active winners, got %d", len(active))
	}
	for i, w := range active {
		if w.WinnerNumber != i+1 {
			t.Errorf("Active winner %d has slot %d", i, w.WinnerNumber)
		}
		if w.SeedInput == "" || w.SeedHash == "" {
			t.Error("Every winner must expose its seed audit trail")
		}
		if w.WinnerIndex < 0 || w.WinnerIndex >= 50 {
			t.Errorf("Winner index %d out of range", w.WinnerIndex)
		}
		if result.Winners[0].WinnerNumber > w.WinnerNumber {
			t.Error("Winners must be ordered by (winner_number, attempt)")
		}
	}
}

func TestRun_UniqueWinners(t *testing.T) {
	// Few users, many comments each: collisions are certain with enough slots
	var participants []models.Participant
	for i := 0; i < 40; i++ {
		participants = append(participants, models.Participant{
			CommentID: fmt.Sprintf("c%04d", i),
			UserID:    fmt.Sprintf("u%d", i%8),
			Username:  fmt.Sprintf("user%d", i%8),
		})
	}

	in := makeInput(participants, giveaway.Options{
		WinnerCount:   6,
		UniqueUsers:   false,
		UniqueWinners: true,
	})

	result, err := giveaway.Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, w := range result.ActiveWinners() {
		if seen[w.Participant.UserID] {
			t.Fatalf("User %s won twice with unique winners enabled", w.Participant.UserID)
		}
		seen[w.Participant.UserID] = true
	}
	if len(seen) != 6 {
		t.Errorf("Expected 6 distinct winning users, got %d", len(seen))
	}

	// Deprecated draws keep their audit trail and precede the active draw
	// of the same slot
	for i := 1; i < len(result.Winners); i++ {
		prev, cur := result.Winners[i-1], result.Winners[i]
		if prev.WinnerNumber > cur.WinnerNumber {
			t.Error("Winners out of slot order")
		}
		if prev.WinnerNumber == cur.WinnerNumber && prev.Attempt >= cur.Attempt {
			t.Error("Winners out of attempt order within a slot")
		}
	}
	for _, w := range result.Winners {
		if w.Status == giveaway.WinnerStatusDeprecated && w.SeedHash == "" {
			t.Error("Deprecated draws must keep their seed audit trail")
		}
	}
}

func TestRun_EmptyParticipants(t *testing.T) {
	in := makeInput(nil, giveaway.Options{WinnerCount: 1})
	if _, err := giveaway.Run(in); err == nil {
		t.Error("Expected error for empty participant set")
	}
}

func TestRun_WinnerCountExceedsParticipants(t *testing.T) {
	in := makeInput(makeParticipants(2), giveaway.Options{WinnerCount: 5})
	_, err := giveaway.Run(in)
	if err == nil {
		t.Fatal("Expected error when requesting 5 winners from 2 participants")
	}
	if !strings.Contains(err.Error(), "5") || !strings.Contains(err.Error(), "2") {
		t.Errorf("Error should name both counts: %v", err)
	}
}

func TestRun_WinnerCountBelowOne(t *testing.T) {
	in := makeInput(makeParticipants(5), giveaway.Options{WinnerCount: 0})
	if _, err := giveaway.Run(in); err == nil {
		t.Error("Expected error for winner count below 1")
	}
}

func TestRun_ChangingDateChangesOutcome(t *testing.T) {
	participants := makeParticipants(500)
	a := makeInput(participants, giveaway.Options{WinnerCount: 1})
	b := makeInput(participants, giveaway.Options{WinnerCount: 1})
	b.GiveawayDateISO = "2024-03-02T18:00:00+0000"

	resultA, err := giveaway.Run(a)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	resultB, err := giveaway.Run(b)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if resultA.Winners[0].SeedHash == resultB.Winners[0].SeedHash {
		t.Error("Different giveaway dates must produce different seed hashes")
	}
}
