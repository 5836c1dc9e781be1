// Package giveaway implements the deterministic winner selection engine.
// Every run is a pure function of its Input: identical inputs yield
// byte-identical results, and every intermediate value (participants hash,
// seed input, seed hash, winner index) is exposed so a third party can
// re-derive the draw.
package giveaway

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/comment-giveaway-api/internal/models"
	"golang.org/x/crypto/chacha20"
)

// maxAttempts bounds re-draws per winner slot when unique winners are
// requested. Unreachable when winnerCount <= filtered participant count,
// but required as a defensive ceiling against pathological inputs.
const maxAttempts = 100

const seedDelimiter = "|"

// Options control filtering and winner uniqueness
type Options struct {
	WinnerCount   int  `json:"winner_count"`
	UniqueUsers   bool `json:"unique_users"`
	UniqueWinners bool `json:"unique_winners"`
}

// Input is the complete, frozen input of one draw. Callers wanting
// third-party re-verification must persist it verbatim, in particular
// GiveawayDateISO must not be recomputed between runs.
type Input struct {
	MediaID          string               `json:"media_id"`
	PostCreatedAtISO string               `json:"post_created_at"`
	CommentsCount    int                  `json:"comments_count"`
	GiveawayDateISO  string               `json:"giveaway_date"`
	Participants     []models.Participant `json:"participants"`
	Options          Options              `json:"options"`
}

// WinnerStatus marks a draw as counting or as an audited near-miss
type WinnerStatus string

const (
	WinnerStatusActive     WinnerStatus = "active"
	WinnerStatusDeprecated WinnerStatus = "deprecated"
)

// Winner is one draw, active or deprecated, with its full audit trail
type Winner struct {
	WinnerNumber int                `json:"winner_number"`
	Attempt      int                `json:"attempt"`
	Status       WinnerStatus       `json:"status"`
	SeedInput    string             `json:"seed_input"`
	SeedHash     string             `json:"seed_hash"`
	WinnerIndex  int                `json:"winner_index"`
	Participant  models.Participant `json:"participant"`
}

// Result is the fully derived, reproducible outcome of a draw
type Result struct {
	ParticipantsHash         string   `json:"participants_hash"`
	FilteredParticipantCount int      `json:"filtered_participant_count"`
	Winners                  []Winner `json:"winners"`
}

// ActiveWinners returns only the draws that count
func (r *Result) ActiveWinners() []Winner {
	var active []Winner
	for _, w := range r.Winners {
		if w.Status == WinnerStatusActive {
			active = append(active, w)
		}
	}
	return active
}

// FilterParticipants canonicalizes the participant set: with uniqueUsers
// each user keeps only their lexicographically smallest comment id (their
// earliest comment), and the output is always sorted ascending by comment
// id so ingestion order cannot leak into the draw.
func FilterParticipants(participants []models.Participant, uniqueUsers bool) []models.Participant {
	var filtered []models.Participant

	if uniqueUsers {
		earliest := make(map[string]models.Participant, len(participants))
		for _, p := range participants {
			held, ok := earliest[p.UserID]
			if !ok || p.CommentID < held.CommentID {
				earliest[p.UserID] = p
			}
		}
		filtered = make([]models.Participant, 0, len(earliest))
		for _, p := range earliest {
			filtered = append(filtered, p)
		}
	} else {
		filtered = make([]models.Participant, len(participants))
		copy(filtered, participants)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CommentID < filtered[j].CommentID
	})
	return filtered
}

// BuildParticipantsHash fingerprints the filtered, sorted participant set:
// SHA-256 over the newline-joined comment ids, lowercase hex.
func BuildParticipantsHash(filtered []models.Participant) string {
	ids := make([]string, 0, len(filtered))
	for _, p := range filtered {
		ids = append(ids, p.CommentID)
	}
	sum := sha256.Sum256([]byte(strings.Join(ids, "\n")))
	return hex.EncodeToString(sum[:])
}

// BuildSeedInput joins the public facts of one draw attempt into the
// human-auditable seed string
func BuildSeedInput(in *Input, participantsHash string, winnerNumber, attempt int) string {
	return strings.Join([]string{
		in.MediaID,
		in.PostCreatedAtISO,
		strconv.Itoa(in.CommentsCount),
		in.GiveawayDateISO,
		participantsHash,
		strconv.Itoa(winnerNumber),
		strconv.Itoa(attempt),
	}, seedDelimiter)
}

// BuildSeedHash is the SHA-256 hex digest of the seed input, the audit
// artifact a verifier recomputes and compares
func BuildSeedHash(seedInput string) string {
	sum := sha256.Sum256([]byte(seedInput))
	return hex.EncodeToString(sum[:])
}

// SelectWinnerIndex derives a uniform index in [0, participantCount) from
// the seed hash. The hash keys a ChaCha20 cipher with a zero nonce (the
// key is already single-use and fully entropic); 8 bytes of keystream are
// read as a big-endian uint64 and reduced modulo participantCount, so the
// reduction happens from the full 2^64 range rather than from a short
// digest prefix.
func SelectWinnerIndex(seedHash string, participantCount int) (int, error) {
	if participantCount <= 0 {
		return 0, fmt.Errorf("participant count must be positive, got %d", participantCount)
	}

	key, err := hex.DecodeString(seedHash)
	if err != nil {
		return 0, fmt.Errorf("seed hash is not valid hex: %w", err)
	}
	if len(key) != chacha20.KeySize {
		return 0, fmt.Errorf("seed hash must decode to %d bytes, got %d", chacha20.KeySize, len(key))
	}

	cipher, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSize))
	if err != nil {
		return 0, err
	}

	var stream [8]byte
	cipher.XORKeyStream(stream[:], stream[:])
	return int(binary.BigEndian.Uint64(stream[:]) % uint64(participantCount)), nil
}

// Run executes one complete draw. No wall clock, no ambient randomness,
// no I/O: everything derives from the Input.
func Run(in *Input) (*Result, error) {
	filtered := FilterParticipants(in.Participants, in.Options.UniqueUsers)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no participants available after filtering")
	}
	if in.Options.WinnerCount < 1 {
		return nil, fmt.Errorf("winner count must be at least 1, got %d", in.Options.WinnerCount)
	}
	if in.Options.WinnerCount > len(filtered) {
		return nil, fmt.Errorf("cannot select %d winners from %d participants", in.Options.WinnerCount, len(filtered))
	}

	participantsHash := BuildParticipantsHash(filtered)
	claimed := make(map[string]bool, in.Options.WinnerCount)
	result := &Result{
		ParticipantsHash:         participantsHash,
		FilteredParticipantCount: len(filtered),
	}

	for slot := 1; slot <= in.Options.WinnerCount; slot++ {
		resolved := false
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			seedInput := BuildSeedInput(in, participantsHash, slot, attempt)
			seedHash := BuildSeedHash(seedInput)
			index, err := SelectWinnerIndex(seedHash, len(filtered))
			if err != nil {
				return nil, err
			}

			winner := Winner{
				WinnerNumber: slot,
				Attempt:      attempt,
				SeedInput:    seedInput,
				SeedHash:     seedHash,
				WinnerIndex:  index,
				Participant:  filtered[index],
			}

			if in.Options.UniqueWinners && claimed[winner.Participant.UserID] {
				// Near-miss: kept for audit, re-drawn with the next attempt
				winner.Status = WinnerStatusDeprecated
				result.Winners = append(result.Winners, winner)
				continue
			}

			winner.Status = WinnerStatusActive
			claimed[winner.Participant.UserID] = true
			result.Winners = append(result.Winners, winner)
			resolved = true
			break
		}
		if !resolved {
			return nil, fmt.Errorf("could not resolve winner %d within %d attempts", slot, maxAttempts)
		}
	}

	return result, nil
}
