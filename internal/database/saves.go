package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"zet/internal/game"
)

// ErrSaveNotFound is returned when a save does not exist.
var ErrSaveNotFound = errors.New("save not found")

// ErrSaveExists is returned when creating a save under a taken name.
var ErrSaveExists = errors.New("save already exists")

// SaveInfo is a save listing entry.
type SaveInfo struct {
	Name      string
	Board     string
	Thread    int
	Players   int
	UpdatedAt time.Time
}

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

func encodeState(state *game.GameState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return encoder.EncodeAll(data, nil), nil
}

func decodeState(blob []byte) (*game.GameState, error) {
	data, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress state: %w", err)
	}
	state := game.NewGame("")
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

// CreateSave stores a new save, failing if the name is taken.
func (db *DB) CreateSave(name string, state *game.GameState) error {
	blob, err := encodeState(state)
	if err != nil {
		return err
	}

	res, err := db.conn.Exec(`
		INSERT INTO saves (name, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, blob, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create save: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSaveExists
	}
	return nil
}

// StoreSave writes the state under name, replacing any previous one.
func (db *DB) StoreSave(name string, state *game.GameState) error {
	blob, err := encodeState(state)
	if err != nil {
		return err
	}

	return db.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO saves (name, state, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				state = excluded.state,
				updated_at = excluded.updated_at
		`, name, blob, time.Now())
		if err != nil {
			return fmt.Errorf("failed to store save: %w", err)
		}
		return nil
	})
}

// LoadSave reads the state stored under name.
func (db *DB) LoadSave(name string) (*game.GameState, error) {
	var blob []byte
	err := db.conn.QueryRow(`SELECT state FROM saves WHERE name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaveNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeState(blob)
}

// SaveExists reports whether a save with the name exists.
func (db *DB) SaveExists(name string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM saves WHERE name = ?`, name).Scan(&count)
	return count > 0, err
}

// DeleteSave removes a save and its report history.
func (db *DB) DeleteSave(name string) error {
	return db.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM saves WHERE name = ?`, name)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrSaveNotFound
		}
		_, err = tx.Exec(`DELETE FROM reports WHERE save_name = ?`, name)
		return err
	})
}

// ListSaves returns every save ordered by name.
func (db *DB) ListSaves() ([]*SaveInfo, error) {
	rows, err := db.conn.Query(`SELECT name, state, updated_at FROM saves ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saves []*SaveInfo
	for rows.Next() {
		var blob []byte
		info := &SaveInfo{}
		if err := rows.Scan(&info.Name, &blob, &info.UpdatedAt); err != nil {
			return nil, err
		}
		state, err := decodeState(blob)
		if err != nil {
			return nil, fmt.Errorf("save %s: %w", info.Name, err)
		}
		info.Board = state.Board
		info.Thread = state.Thread
		info.Players = len(state.Players)
		saves = append(saves, info)
	}
	return saves, rows.Err()
}
