package domain

// Cell addresses one grid position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Placement records a word and the straight-line run that hides it.
// The run from Start to End, read from the grid, reproduces Word exactly.
type Placement struct {
	Word  string `json:"word"`
	Start Cell   `json:"start_index"`
	End   Cell   `json:"end_index"`
}

// SolutionSet holds every placement of a session. It lives only in the
// ephemeral store and is never sent to clients; clients see WordsToFind.
type SolutionSet struct {
	Solutions []Placement `json:"solutions"`
}

// Words returns the plain word list of the solution set.
func (s SolutionSet) Words() []string {
	words := make([]string, 0, len(s.Solutions))
	for _, sol := range s.Solutions {
		words = append(words, sol.Word)
	}
	return words
}

// GameState is the live, per-session state in the ephemeral store.
// It exists from session creation until finalize deletes it.
type GameState struct {
	Theme           string                 `json:"theme"`
	Grid            [][]string             `json:"grid_data"`
	WordsToFind     []string               `json:"words_to_find"`
	WordsFound      map[string][]Placement `json:"words_found"`
	RealtimeScore   map[string]int         `json:"realtime_score"`
	DurationSeconds int                    `json:"duration_seconds"`
	Status          SessionStatus          `json:"status"`
	// StartedAt is set when the room enters game_in_progress so that a
	// reconnecting player gets remaining time even if the room was rebuilt.
	StartedAt int64 `json:"started_at,omitempty"`
}

// TotalFound counts found words across both players.
func (s *GameState) TotalFound() int {
	n := 0
	for _, placements := range s.WordsFound {
		n += len(placements)
	}
	return n
}

// WordAlreadyFound reports whether either player already scored the word.
func (s *GameState) WordAlreadyFound(word string) bool {
	for _, placements := range s.WordsFound {
		for _, p := range placements {
			if p.Word == word {
				return true
			}
		}
	}
	return false
}
