package postgres_storage

import (
	"database/sql"

	_ "github.com/lib/pq"

	"insta_saver_bot/internal/pkg/users/domain"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (p *PostgresStorage) InitSchema() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS bot_users (
			user_id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_seen TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bot_admin (
			id INT PRIMARY KEY,
			admin_id BIGINT NOT NULL
		);
	`)
	return err
}

func (p *PostgresStorage) RecordUser(rec domain.UserRecord) error {
	_, err := p.db.Exec(`
		INSERT INTO bot_users (user_id, username, first_name, last_seen)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE
		SET last_seen=$4
	`, rec.UserID, rec.Username, rec.FirstName, rec.Timestamp)
	return err
}

func (p *PostgresStorage) ListUsers() ([]domain.UserRecord, error) {
	rows, err := p.db.Query(`
		SELECT user_id, username, first_name, last_seen
		FROM bot_users
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.UserRecord
	for rows.Next() {
		var rec domain.UserRecord
		if err := rows.Scan(&rec.UserID, &rec.Username, &rec.FirstName, &rec.Timestamp); err != nil {
			return nil, err
		}
		users = append(users, rec)
	}
	return users, rows.Err()
}

func (p *PostgresStorage) GetAdmin() (int64, error) {
	row := p.db.QueryRow(`SELECT admin_id FROM bot_admin WHERE id=1`)

	var adminID int64
	err := row.Scan(&adminID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return adminID, nil
}

// SetAdmin inserts the single admin row; the unique key makes the
// first writer win even across concurrent processes.
func (p *PostgresStorage) SetAdmin(userID int64) error {
	_, err := p.db.Exec(`
		INSERT INTO bot_admin (id, admin_id)
		VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING
	`, userID)
	return err
}
