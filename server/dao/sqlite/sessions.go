package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dekarrin/lens/server/dao"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
)

// SessionsDB is a dao.SessionRepository backed by a sqlite table. The model
// JSON is wrapped in a REZI-encoded envelope before being base64'd into the
// TEXT column, the same double-encoding the rest of the pack uses for opaque
// blob columns.
type SessionsDB struct {
	db *sql.DB
}

func NewSessionsDBConn(file string) (*SessionsDB, error) {
	repo := &SessionsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

func (repo *SessionsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL PRIMARY KEY,
		lens_name TEXT NOT NULL,
		original_text TEXT NOT NULL,
		model TEXT NOT NULL,
		created INTEGER NOT NULL,
		updated INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *SessionsDB) Create(ctx context.Context, s dao.Session) (dao.Session, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Session{}, fmt.Errorf("could not generate ID: %w", err)
	}
	now := time.Now()

	encModel := encodeModel(s.ModelJSON)

	stmt, err := repo.db.Prepare(`INSERT INTO sessions (id, lens_name, original_text, model, created, updated) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	_, err = stmt.ExecContext(ctx, newUUID.String(), s.LensName, s.OriginalText, encModel, now.Unix(), now.Unix())
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *SessionsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	s := dao.Session{ID: id}
	var lensName, origText, encModel string
	var created, updated int64

	row := repo.db.QueryRowContext(ctx, `SELECT lens_name, original_text, model, created, updated FROM sessions WHERE id = ?;`,
		id.String(),
	)
	err := row.Scan(&lensName, &origText, &encModel, &created, &updated)
	if err != nil {
		return s, wrapDBError(err)
	}

	s.LensName = lensName
	s.OriginalText = origText
	s.Created = time.Unix(created, 0)
	s.Updated = time.Unix(updated, 0)

	s.ModelJSON, err = decodeModel(encModel)
	if err != nil {
		return s, fmt.Errorf("stored model for %s is invalid: %w", id, err)
	}

	return s, nil
}

func (repo *SessionsDB) GetAll(ctx context.Context) ([]dao.Session, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, lens_name, original_text, model, created, updated FROM sessions;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Session

	for rows.Next() {
		var idStr, lensName, origText, encModel string
		var created, updated int64
		if err := rows.Scan(&idStr, &lensName, &origText, &encModel, &created, &updated); err != nil {
			return nil, wrapDBError(err)
		}

		s := dao.Session{LensName: lensName, OriginalText: origText}
		s.ID, err = uuid.Parse(idStr)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid", idStr)
		}
		s.ModelJSON, err = decodeModel(encModel)
		if err != nil {
			return all, fmt.Errorf("stored model for %s is invalid: %w", idStr, err)
		}
		s.Created = time.Unix(created, 0)
		s.Updated = time.Unix(updated, 0)

		all = append(all, s)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *SessionsDB) Update(ctx context.Context, id uuid.UUID, s dao.Session) (dao.Session, error) {
	now := time.Now()
	encModel := encodeModel(s.ModelJSON)

	res, err := repo.db.ExecContext(ctx, `UPDATE sessions SET lens_name=?, original_text=?, model=?, updated=? WHERE id=?;`,
		s.LensName, s.OriginalText, encModel, now.Unix(), id.String(),
	)
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Session{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Session{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, id)
}

func (repo *SessionsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Session, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *SessionsDB) Close() error {
	return nil
}

func encodeModel(modelJSON []byte) string {
	enc := rezi.EncBinary(modelJSON)
	return base64.StdEncoding.EncodeToString(enc)
}

func decodeModel(enc string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, err
	}

	var modelJSON []byte
	n, err := rezi.DecBinary(raw, &modelJSON)
	if err != nil {
		return nil, fmt.Errorf("REZI decode: %w", err)
	}
	if n != len(raw) {
		return nil, fmt.Errorf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(raw))
	}

	return modelJSON, nil
}
