package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"ScreeningScanner/internal/domain"
	"ScreeningScanner/internal/ports"
)

// PostgresRepository persists normalized screening schedules into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ScreeningRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveMovies upserts each movie for the mall and replaces its screening
// rows with the freshly fetched set.
func (r *PostgresRepository) SaveMovies(ctx context.Context, mall string, movies []domain.MovieRecord) error {
	if r.db == nil || len(movies) == 0 {
		return nil
	}

	for _, movie := range movies {
		movieID, err := r.upsertMovie(ctx, mall, movie)
		if err != nil {
			return fmt.Errorf("upsert movie %s: %w", movie.Title, err)
		}

		if err := r.replaceScreenings(ctx, movieID, movie.ScreeningTimes); err != nil {
			return fmt.Errorf("save screenings for %s: %w", movie.Title, err)
		}
	}

	return nil
}

func (r *PostgresRepository) upsertMovie(ctx context.Context, mall string, movie domain.MovieRecord) (int64, error) {
	query, args, err := r.builder.
		Insert("movies").
		Columns("mall", "title", "rating").
		Values(mall, movie.Title, nullable(movie.Rating)).
		Suffix(`ON CONFLICT (mall, title) DO UPDATE
		        SET rating = EXCLUDED.rating, updated_at = NOW()
		        RETURNING id`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *PostgresRepository) replaceScreenings(ctx context.Context, movieID int64, times []domain.ScreeningTime) error {
	del, delArgs, err := r.builder.
		Delete("screening_times").
		Where(sq.Eq{"movie_id": movieID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("clear screenings: %w", err)
	}

	if len(times) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("screening_times").
		Columns("movie_id", "cinema", "screening_at", "format", "tickets")

	for _, st := range times {
		tickets, err := json.Marshal(st.Tickets)
		if err != nil {
			return fmt.Errorf("encode tickets: %w", err)
		}
		insert = insert.Values(movieID, string(st.Cinema), st.Time, nullable(st.Format), tickets)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
