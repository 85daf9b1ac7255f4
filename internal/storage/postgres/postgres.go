package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookshelf/internal/config"
	"bookshelf/internal/models"
	"bookshelf/internal/storage"
	"bookshelf/internal/storage/postgres/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	if err := runMigrations(ctx, dsn); err != nil {
		return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

// runMigrations applies the embedded goose migrations through a short-lived
// database/sql handle; the pgx pool is opened afterwards.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func (r *PostgresRepo) SaveUser(ctx context.Context, name, email string, passHash []byte) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, name, email, string(passHash)).Scan(&id)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1;
	`

	row := r.pool.QueryRow(ctx, query, email)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PassHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, err
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1;
	`

	row := r.pool.QueryRow(ctx, query, id)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PassHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, err
}

func (r *PostgresRepo) SaveBook(ctx context.Context, b models.Book) (models.Book, error) {
	const op = "storage.postgres.SaveBook"

	query := `
		INSERT INTO books (user_id, title, author, genre, rating, note, link)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at;
	`

	err := r.pool.QueryRow(ctx, query,
		b.UserID, b.Title, b.Author, b.Genre, b.Rating, b.Note, b.Link,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return models.Book{}, fmt.Errorf("%s: failed to save book: %w", op, err)
	}

	return b, nil
}

func (r *PostgresRepo) BookByID(ctx context.Context, id int64) (models.Book, error) {
	query := `
		SELECT id, user_id, title, author, genre, rating, note, link, created_at, updated_at
		FROM books
		WHERE id = $1;
	`

	row := r.pool.QueryRow(ctx, query, id)

	var b models.Book
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&b.Author,
		&b.Genre,
		&b.Rating,
		&b.Note,
		&b.Link,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Book{}, storage.ErrBookNotFound
	}

	return b, err
}

// Books lists records matching the filter, newest first. The owner predicate
// is always part of the query, so cross-user rows never leave the database.
func (r *PostgresRepo) Books(ctx context.Context, filter models.BookFilter) ([]models.Book, error) {
	const op = "storage.postgres.Books"

	query := `
		SELECT id, user_id, title, author, genre, rating, note, link, created_at, updated_at
		FROM books
		WHERE user_id = $1
	`

	args := []any{filter.OwnerID}

	if filter.Genre != "" {
		args = append(args, filter.Genre)
		query += fmt.Sprintf(" AND genre = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if filter.BookID != 0 {
		args = append(args, filter.BookID)
		query += fmt.Sprintf(" AND id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC;"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query books: %w", op, err)
	}
	defer rows.Close()

	books := []models.Book{}

	for rows.Next() {
		var b models.Book

		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.Title,
			&b.Author,
			&b.Genre,
			&b.Rating,
			&b.Note,
			&b.Link,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan book: %w", op, err)
		}

		books = append(books, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return books, nil
}

// UpdateBook writes the full mutable field set of b. The owner column is
// never part of the SET clause.
func (r *PostgresRepo) UpdateBook(ctx context.Context, b models.Book) (models.Book, error) {
	const op = "storage.postgres.UpdateBook"

	query := `
		UPDATE books
		SET title = $1, author = $2, genre = $3, rating = $4, note = $5, link = $6, updated_at = now()
		WHERE id = $7
		RETURNING id, user_id, title, author, genre, rating, note, link, created_at, updated_at;
	`

	row := r.pool.QueryRow(ctx, query,
		b.Title, b.Author, b.Genre, b.Rating, b.Note, b.Link, b.ID,
	)

	var updated models.Book
	err := row.Scan(
		&updated.ID,
		&updated.UserID,
		&updated.Title,
		&updated.Author,
		&updated.Genre,
		&updated.Rating,
		&updated.Note,
		&updated.Link,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Book{}, storage.ErrBookNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("%s: failed to update book: %w", op, err)
	}

	return updated, nil
}

func (r *PostgresRepo) DeleteBook(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteBook"

	query := `DELETE FROM books WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete book: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrBookNotFound
	}

	return nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
