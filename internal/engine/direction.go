package engine

import (
	"errors"
	"strings"
	"unicode/utf8"

	"wordsearch_arena/internal/domain"
)

// Direction of a selection in the grid.
type Direction string

const (
	DirSingleLetter    Direction = "single_letter"
	DirHorizontalRight Direction = "horizontal_right" // reading direction
	DirHorizontalLeft  Direction = "horizontal_left"
	DirVerticalDown    Direction = "vertical_down"
	DirVerticalUp      Direction = "vertical_up"
	DirDiagonalDownR   Direction = "diagonal_down_right"
	DirDiagonalDownL   Direction = "diagonal_down_left"
	DirDiagonalUpR     Direction = "diagonal_up_right"
	DirDiagonalUpL     Direction = "diagonal_up_left"
)

// Base points per direction, easiest to hardest. Harder reading directions
// pay more; a single letter pays nothing.
var directionPoints = map[Direction]int{
	DirSingleLetter:    0,
	DirHorizontalRight: 5,
	DirHorizontalLeft:  8,
	DirVerticalDown:    10,
	DirVerticalUp:      12,
	DirDiagonalDownR:   15,
	DirDiagonalDownL:   18,
	DirDiagonalUpR:     18,
	DirDiagonalUpL:     20,
}

const (
	lengthBonusThreshold = 5
	lengthBonusPerLetter = 2
)

var errNotColinear = errors.New("selection is not colinear")

// PointsDetail is the per-word score breakdown sent back to clients.
type PointsDetail struct {
	BasePoints  int       `json:"base_points"`
	LengthBonus int       `json:"length_bonus"`
	TotalPoints int       `json:"total_points"`
	Direction   Direction `json:"direction"`
	WordLength  int       `json:"word_length"`
}

// determineDirection classifies the run from start to end.
func determineDirection(start, end domain.Cell) Direction {
	dr := end.Row - start.Row
	dc := end.Col - start.Col

	switch {
	case dr == 0 && dc == 0:
		return DirSingleLetter
	case dr == 0 && dc > 0:
		return DirHorizontalRight
	case dr == 0:
		return DirHorizontalLeft
	case dc == 0 && dr > 0:
		return DirVerticalDown
	case dc == 0:
		return DirVerticalUp
	case dr > 0 && dc > 0:
		return DirDiagonalDownR
	case dr > 0:
		return DirDiagonalDownL
	case dc > 0:
		return DirDiagonalUpR
	default:
		return DirDiagonalUpL
	}
}

// scoreWord computes base points by direction plus the length bonus
// (+2 per letter beyond 5). Length is counted in runes, one grid cell each.
func scoreWord(word string, dir Direction) PointsDetail {
	base := directionPoints[dir]
	n := utf8.RuneCountInString(word)

	bonus := 0
	if n > lengthBonusThreshold {
		bonus = (n - lengthBonusThreshold) * lengthBonusPerLetter
	}

	return PointsDetail{
		BasePoints:  base,
		LengthBonus: bonus,
		TotalPoints: base + bonus,
		Direction:   dir,
		WordLength:  n,
	}
}

// lineStep returns the unit step and step count between two cells, rejecting
// selections that are not one of the 8 straight directions.
func lineStep(start, end domain.Cell) (dr, dc, steps int, err error) {
	deltaR := end.Row - start.Row
	deltaC := end.Col - start.Col
	absR := abs(deltaR)
	absC := abs(deltaC)

	if !(absR == 0 || absC == 0 || absR == absC) {
		return 0, 0, 0, errNotColinear
	}

	steps = max(absR, absC)
	dr = sign(deltaR)
	dc = sign(deltaC)
	return dr, dc, steps, nil
}

// reconstructWord reads the straight line from start to end off the grid.
// The client must prove knowledge of the actual letters: the reconstructed
// word, not the claimed one, is what gets validated.
func reconstructWord(grid [][]string, start, end domain.Cell) (string, error) {
	if len(grid) == 0 {
		return "", errors.New("empty grid")
	}

	dr, dc, steps, err := lineStep(start, end)
	if err != nil {
		return "", err
	}

	rows, cols := len(grid), len(grid[0])
	var b strings.Builder
	for i := 0; i <= steps; i++ {
		r := start.Row + i*dr
		c := start.Col + i*dc
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return "", errors.New("selection out of grid bounds")
		}
		b.WriteString(grid[r][c])
	}

	return strings.ToUpper(b.String()), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
