package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoWordList = errors.New("no word list available")

type WordListRepository struct {
	db *pgxpool.Pool
}

func NewWordListRepository(db *pgxpool.Pool) *WordListRepository {
	return &WordListRepository{db: db}
}

// RandomTheme picks one themed word list for a new puzzle.
func (r *WordListRepository) RandomTheme(ctx context.Context) (string, []string, error) {
	var (
		theme     string
		wordsJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT theme, words FROM word_lists ORDER BY random() LIMIT 1`,
	).Scan(&theme, &wordsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrNoWordList
		}
		return "", nil, err
	}

	var words []string
	if err := json.Unmarshal(wordsJSON, &words); err != nil {
		return "", nil, fmt.Errorf("decode word list %q: %w", theme, err)
	}
	if len(words) == 0 {
		return "", nil, ErrNoWordList
	}
	return theme, words, nil
}

func (r *WordListRepository) GetByTheme(ctx context.Context, theme string) ([]string, error) {
	var wordsJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT words FROM word_lists WHERE theme = $1`,
		theme,
	).Scan(&wordsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoWordList
		}
		return nil, err
	}

	var words []string
	if err := json.Unmarshal(wordsJSON, &words); err != nil {
		return nil, fmt.Errorf("decode word list %q: %w", theme, err)
	}
	return words, nil
}
