package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"BioSentinel/internal/model"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecasts (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			person        TEXT NOT NULL,
			birthdate     TEXT NOT NULL,
			start_date    TEXT NOT NULL,
			end_date      TEXT NOT NULL,
			source        TEXT,
			today_date    TEXT,
			physical      REAL,
			emotional     REAL,
			intellectual  REAL,
			average       REAL,
			tier_label    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_person_ts ON forecasts(person, timestamp)`,

		`CREATE TABLE IF NOT EXISTS deliveries (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			person    TEXT,
			kind      TEXT,
			ok        INTEGER,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_ts ON deliveries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordForecast(evt *ForecastEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var todayDate sql.NullString
	var p, e, i, avg sql.NullFloat64
	if evt.Today != nil {
		todayDate = sql.NullString{String: evt.Today.Date.String(), Valid: true}
		p = sql.NullFloat64{Float64: evt.Today.Physical, Valid: true}
		e = sql.NullFloat64{Float64: evt.Today.Emotional, Valid: true}
		i = sql.NullFloat64{Float64: evt.Today.Intellectual, Valid: true}
		avg = sql.NullFloat64{Float64: evt.Today.Average, Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO forecasts
		(timestamp, person, birthdate, start_date, end_date, source,
		 today_date, physical, emotional, intellectual, average, tier_label)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Person, evt.Birthdate.String(),
		evt.Start.String(), evt.End.String(), evt.Source,
		todayDate, p, e, i, avg, evt.TierLabel,
	)
	return err
}

func (r *SQLiteRecorder) RecordDelivery(evt *DeliveryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO deliveries
		(timestamp, person, kind, ok, error)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Person, evt.Kind, evt.OK, evt.Error,
	)
	return err
}

// RecentForecasts returns the newest forecasts for a person, newest first.
func (r *SQLiteRecorder) RecentForecasts(person string, limit int) ([]ForecastEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, person, birthdate, start_date, end_date, source,
		today_date, physical, emotional, intellectual, average, tier_label
		FROM forecasts WHERE person = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, person, limit)
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	var out []ForecastEvent
	for rows.Next() {
		var (
			ts                      int64
			birth, start, end       string
			evt                     ForecastEvent
			todayDate, source, tier sql.NullString
			phys, emo, intel, avg   sql.NullFloat64
		)
		if err := rows.Scan(&ts, &evt.Person, &birth, &start, &end, &source,
			&todayDate, &phys, &emo, &intel, &avg, &tier); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		evt.RecordedAt = time.Unix(ts, 0)
		evt.Source = source.String
		evt.TierLabel = tier.String
		if evt.Birthdate, err = model.ParseDate(birth); err != nil {
			return nil, err
		}
		if evt.Start, err = model.ParseDate(start); err != nil {
			return nil, err
		}
		if evt.End, err = model.ParseDate(end); err != nil {
			return nil, err
		}
		if todayDate.Valid {
			d, err := model.ParseDate(todayDate.String)
			if err != nil {
				return nil, err
			}
			evt.Today = &model.DailyReading{
				Date: d, Physical: phys.Float64, Emotional: emo.Float64,
				Intellectual: intel.Float64, Average: avg.Float64,
			}
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
