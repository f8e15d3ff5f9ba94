package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sqlite builds statements quoted for the SQLite dialect.
var sqlite = entsql.Dialect(dialect.SQLite)

// sessionRepo implements SessionRepo with ent's SQL builder over database/sql.
type sessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

func newSessionRepo(db *sql.DB) *sessionRepo {
	return &sessionRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var sessionColumns = []string{
	colID, colUserID, colNativeLang, colLearningLang, colLevel, colStartTime, colEndTime,
}

var mistakeColumns = []string{
	colID, colSessionID, colMistakeText, colCorrection, colMistakeType, colTimestamp,
}

func (r *sessionRepo) CreateSession(ctx context.Context, userID, native, learning, level string) (int64, error) {
	query, args := sqlite.Insert(sessionsTable).
		Columns(colUserID, colNativeLang, colLearningLang, colLevel, colStartTime).
		Values(userID, native, learning, level, r.now()).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr("create session", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("create session", fmt.Errorf("last insert id: %w", err))
	}
	return id, nil
}

func (r *sessionRepo) RecordMistake(ctx context.Context, sessionID int64, original, correction, mistakeType string) error {
	query, args := sqlite.Insert(mistakesTable).
		Columns(colSessionID, colMistakeText, colCorrection, colMistakeType, colTimestamp).
		Values(sessionID, original, correction, mistakeType, r.now()).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return storageErr("record mistake", err)
	}
	return nil
}

func (r *sessionRepo) EndSession(ctx context.Context, sessionID int64) error {
	query, args := sqlite.Update(sessionsTable).
		Set(colEndTime, r.now()).
		Where(entsql.EQ(colID, sessionID)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return storageErr("end session", err)
	}
	return nil
}

func (r *sessionRepo) GetSessionMistakes(ctx context.Context, sessionID int64) ([]MistakeRecord, error) {
	t := sqlite.Table(mistakesTable)
	query, args := sqlite.Select(mistakeColumns...).
		From(t).
		Where(entsql.EQ(colSessionID, sessionID)).
		OrderBy(entsql.Asc(colID)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("get session mistakes", err)
	}
	defer rows.Close()

	var out []MistakeRecord
	for rows.Next() {
		var m MistakeRecord
		if err := rows.Scan(&m.ID, &m.SessionID, &m.MistakeText, &m.Correction, &m.MistakeType, &m.Timestamp); err != nil {
			return nil, storageErr("get session mistakes", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get session mistakes", err)
	}
	return out, nil
}

func (r *sessionRepo) GetSession(ctx context.Context, sessionID int64) (*SessionRecord, error) {
	query, args := sqlite.Select(sessionColumns...).
		From(sqlite.Table(sessionsTable)).
		Where(entsql.EQ(colID, sessionID)).
		Query()

	rec, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get session", err)
	}
	return rec, nil
}

func (r *sessionRepo) ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	sel := sqlite.Select(sessionColumns...).
		From(sqlite.Table(sessionsTable)).
		OrderBy(entsql.Desc(colID))
	if opts.UserID != "" {
		sel.Where(entsql.EQ(colUserID, opts.UserID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list sessions", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, storageErr("list sessions", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list sessions", err)
	}
	return out, nil
}

func (r *sessionRepo) CountMistakes(ctx context.Context, sessionID int64) ([]TypeCount, error) {
	query, args := sqlite.Select(colMistakeType, entsql.As(entsql.Count("*"), "n")).
		From(sqlite.Table(mistakesTable)).
		Where(entsql.EQ(colSessionID, sessionID)).
		GroupBy(colMistakeType).
		OrderBy(entsql.Desc("n"), entsql.Asc(colMistakeType)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("count mistakes", err)
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.MistakeType, &tc.Count); err != nil {
			return nil, storageErr("count mistakes", err)
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("count mistakes", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var (
		rec SessionRecord
		end sql.NullTime
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.NativeLanguage, &rec.LearningLanguage,
		&rec.ProficiencyLevel, &rec.StartTime, &end)
	if err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		rec.EndTime = &t
	}
	return &rec, nil
}
