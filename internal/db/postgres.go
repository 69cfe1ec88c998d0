package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"photo-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Photos keep their comments in a JSONB array so an append stays a single
// UPDATE, same as a $push.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	first_name  TEXT NOT NULL DEFAULT '',
	last_name   TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	occupation  TEXT NOT NULL DEFAULT '',
	login_name  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS photos (
	id        TEXT PRIMARY KEY,
	user_id   TEXT NOT NULL,
	file_name TEXT NOT NULL,
	date_time TIMESTAMPTZ NOT NULL,
	comments  JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE INDEX IF NOT EXISTS photos_user_id_idx ON photos (user_id);
`

const photoColumns = `id, user_id, file_name, date_time, comments`

type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a pool and creates the tables if missing
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create schema: %w", err)
	}

	log.Println("Connected to PostgreSQL")
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	u := models.User{ID: oid}
	query := `SELECT first_name, last_name, location, description, occupation, login_name FROM users WHERE id = $1`
	err = s.pool.QueryRow(ctx, query, oid.Hex()).Scan(&u.FirstName, &u.LastName, &u.Location, &u.Description, &u.Occupation, &u.LoginName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Postgres) FindPhotosByUser(ctx context.Context, userID string) ([]models.Photo, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+photoColumns+` FROM photos WHERE user_id = $1 ORDER BY date_time, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

func (s *Postgres) FindPhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	if !ValidID(id) {
		return nil, nil
	}
	p, err := scanPhoto(s.pool.QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, NormalizeID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (s *Postgres) InsertUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	query := `INSERT INTO users (id, first_name, last_name, location, description, occupation, login_name) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.pool.Exec(ctx, query, u.ID.Hex(), u.FirstName, u.LastName, u.Location, u.Description, u.Occupation, u.LoginName)
	return err
}

func (s *Postgres) InsertPhoto(ctx context.Context, p *models.Photo) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	comments, err := json.Marshal(p.Comments)
	if err != nil {
		return err
	}
	query := `INSERT INTO photos (id, user_id, file_name, date_time, comments) VALUES ($1, $2, $3, $4, $5::jsonb)`
	_, err = s.pool.Exec(ctx, query, p.ID.Hex(), p.UserID, p.FileName, p.DateTime, string(comments))
	return err
}

func (s *Postgres) AppendComment(ctx context.Context, photoID string, c models.Comment) (*models.Photo, error) {
	if !ValidID(photoID) {
		return nil, ErrNotFound
	}
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	query := `UPDATE photos SET comments = comments || jsonb_build_array($2::jsonb) WHERE id = $1 RETURNING ` + photoColumns
	p, err := scanPhoto(s.pool.QueryRow(ctx, query, NormalizeID(photoID), string(raw)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Postgres) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var (
		id       string
		comments []byte
		p        models.Photo
	)
	if err := row.Scan(&id, &p.UserID, &p.FileName, &p.DateTime, &comments); err != nil {
		return nil, err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt photo id %q: %w", id, err)
	}
	p.ID = oid
	if err := json.Unmarshal(comments, &p.Comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return &p, nil
}
