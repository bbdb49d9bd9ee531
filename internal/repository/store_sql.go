package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mgacha-dashboard/internal/model"
)

// Dialect names accepted by SQLStore.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// SQLStore implements GachaStore on a relational mirror of the gacha collections.
// The tables carry the document fields one to one; log details are stored as JSON text.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

func newSQLStore(db *sql.DB, dialect string) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect}
	if err := s.createTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// createTables creates the mirror tables if they are missing.
func (s *SQLStore) createTables(ctx context.Context) error {
	id := "TEXT"
	ts := "TIMESTAMP"
	switch s.dialect {
	case DialectMySQL:
		id = "VARCHAR(64)"
		ts = "DATETIME(6)"
	case DialectSQLite:
		ts = "DATETIME"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + id + ` PRIMARY KEY,
			twitch_name VARCHAR(255) NOT NULL,
			twitch_id VARCHAR(64) NOT NULL,
			tokens BIGINT NOT NULL DEFAULT 0,
			total_unique_cards BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS cards (
			id ` + id + ` PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			rarity VARCHAR(32) NOT NULL,
			image_url TEXT,
			number INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS inventory (
			seq INTEGER NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			card_id VARCHAR(64) NOT NULL,
			quantity INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS log_history (
			id ` + id + ` PRIMARY KEY,
			twitch_id VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			timestamp ` + ts + ` NOT NULL,
			details TEXT
		)`,
	}
	if s.dialect != DialectMySQL {
		stmts = append(stmts,
			`CREATE INDEX IF NOT EXISTS idx_inventory_user ON inventory(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_log_twitch ON log_history(twitch_id, timestamp)`,
		)
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind converts ? placeholders to the dialect's form.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const userColumns = `id, twitch_name, twitch_id, tokens, total_unique_cards`

func (s *SQLStore) queryUsers(ctx context.Context, query string, args ...interface{}) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.TwitchName, &u.TwitchID, &u.Tokens, &u.TotalUniqueCards); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// TopUsers returns the leaderboard head.
func (s *SQLStore) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	return s.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY total_unique_cards DESC, id ASC LIMIT ?`, limit)
}

// ListUsers returns all users ordered by display name.
func (s *SQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY twitch_name ASC`)
}

// FindUserByName finds a user by Twitch display name.
func (s *SQLStore) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE twitch_name = ? LIMIT 1`), name).
		Scan(&u.ID, &u.TwitchName, &u.TwitchID, &u.Tokens, &u.TotalUniqueCards)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", name, err)
	}
	return &u, nil
}

// InventoryByUser returns a user's inventory in insertion order.
func (s *SQLStore) InventoryByUser(ctx context.Context, userID string) ([]model.InventoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT user_id, card_id, quantity FROM inventory WHERE user_id = ? ORDER BY seq ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	entries := []model.InventoryEntry{}
	for rows.Next() {
		var e model.InventoryEntry
		var quantity sql.NullInt64
		if err := rows.Scan(&e.UserID, &e.CardID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		e.Quantity = 1
		if quantity.Valid {
			e.Quantity = int(quantity.Int64)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const cardColumns = `id, name, rarity, image_url, number`

func scanCard(scan func(dest ...interface{}) error) (model.Card, error) {
	var c model.Card
	var image sql.NullString
	err := scan(&c.ID, &c.Name, &c.Rarity, &image, &c.Number)
	c.ImageURL = image.String
	return c, err
}

// FindCard finds a card definition by identifier.
func (s *SQLStore) FindCard(ctx context.Context, cardID string) (*model.Card, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+cardColumns+` FROM cards WHERE id = ?`), cardID)
	c, err := scanCard(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", cardID, err)
	}
	return &c, nil
}

// ListCards returns all card definitions ordered by number.
func (s *SQLStore) ListCards(ctx context.Context) ([]model.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY number ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		c, err := scanCard(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// LogsByTwitchID returns a user's action log, newest first.
func (s *SQLStore) LogsByTwitchID(ctx context.Context, twitchID string) ([]model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, twitch_id, action, timestamp, details FROM log_history
			WHERE twitch_id = ? ORDER BY timestamp DESC, id DESC`), twitchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query log history: %w", err)
	}
	defer rows.Close()

	entries := []model.LogEntry{}
	for rows.Next() {
		var e model.LogEntry
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.TwitchID, &e.Action, &e.Timestamp, &details); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, fmt.Errorf("failed to decode details of log %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetStats returns row counts per table.
func (s *SQLStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})
	stats["status"] = "connected"
	stats["dialect"] = s.dialect

	for _, table := range []string{UsersCollection, InventoryCollection, CardsCollection, LogCollection} {
		var count int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return stats, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}

// Ping verifies the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ GachaStore = (*SQLStore)(nil)
