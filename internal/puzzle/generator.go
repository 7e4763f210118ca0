package puzzle

import (
	"math/rand"
	"strings"

	"wordsearch_arena/internal/domain"
)

const emptyCell = "."

// direction vectors: the 4 axis directions plus the 4 diagonals.
var directions = [8][2]int{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Generator places words from a themed list into an NxN letter grid.
//
// Words that cannot be placed after exhausting every (position, direction)
// pair are dropped from the output: a smaller puzzle beats a failed one, so
// callers must not assume every input word appears in the result.
type Generator struct {
	size int
	rng  *rand.Rand
}

// NewGenerator builds a generator for size x size grids. rng may be nil,
// in which case placement is not reproducible.
func NewGenerator(size int, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Generator{size: size, rng: rng}
}

// Generate returns the filled grid and the placement of every word that fit.
// Every cell of the returned grid is non-empty.
func (g *Generator) Generate(words []string) ([][]string, domain.SolutionSet) {
	grid := make([][]string, g.size)
	for r := range grid {
		grid[r] = make([]string, g.size)
		for c := range grid[r] {
			grid[r][c] = emptyCell
		}
	}

	upper := make([]string, len(words))
	for i, w := range words {
		upper[i] = strings.ToUpper(strings.TrimSpace(w))
	}
	g.rng.Shuffle(len(upper), func(i, j int) {
		upper[i], upper[j] = upper[j], upper[i]
	})

	cells := make([]domain.Cell, 0, g.size*g.size)
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			cells = append(cells, domain.Cell{Row: r, Col: c})
		}
	}

	var solutions []domain.Placement
	for _, word := range upper {
		// cells hold one letter each, so word length is counted in runes
		letters := []rune(word)
		if len(letters) == 0 || len(letters) > g.size {
			continue
		}

		g.rng.Shuffle(len(cells), func(i, j int) {
			cells[i], cells[j] = cells[j], cells[i]
		})
		dirs := directions
		g.rng.Shuffle(len(dirs), func(i, j int) {
			dirs[i], dirs[j] = dirs[j], dirs[i]
		})

		if placement, ok := g.placeWord(grid, word, letters, cells, dirs); ok {
			solutions = append(solutions, placement)
		}
	}

	// fill the holes with random letters
	for r := range grid {
		for c := range grid[r] {
			if grid[r][c] == emptyCell {
				grid[r][c] = string(rune('A' + g.rng.Intn(26)))
			}
		}
	}

	return grid, domain.SolutionSet{Solutions: solutions}
}

// placeWord tries every shuffled (start, direction) pair and writes the word
// into the grid on first fit, one rune per cell.
func (g *Generator) placeWord(grid [][]string, word string, letters []rune, cells []domain.Cell, dirs [8][2]int) (domain.Placement, bool) {
	for _, start := range cells {
		for _, dir := range dirs {
			if !g.fits(grid, letters, start, dir) {
				continue
			}

			for i, letter := range letters {
				r := start.Row + i*dir[0]
				c := start.Col + i*dir[1]
				grid[r][c] = string(letter)
			}

			end := endCell(len(letters), start, dir)
			return domain.Placement{Word: word, Start: start, End: end}, true
		}
	}
	return domain.Placement{}, false
}

// fits reports whether the word stays in bounds and only overlaps cells that
// are empty or already hold the same letter.
func (g *Generator) fits(grid [][]string, letters []rune, start domain.Cell, dir [2]int) bool {
	end := endCell(len(letters), start, dir)
	if end.Row < 0 || end.Row >= g.size || end.Col < 0 || end.Col >= g.size {
		return false
	}

	for i, letter := range letters {
		r := start.Row + i*dir[0]
		c := start.Col + i*dir[1]
		if grid[r][c] != emptyCell && grid[r][c] != string(letter) {
			return false
		}
	}
	return true
}

func endCell(letterCount int, start domain.Cell, dir [2]int) domain.Cell {
	last := letterCount - 1
	return domain.Cell{
		Row: start.Row + last*dir[0],
		Col: start.Col + last*dir[1],
	}
}
