package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/codebyNJ/Justifyai/internal/domain"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

const imagesSubdir = "images"

// RunRecord is one row of the run index.
type RunRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Status     string    `json:"status"`
	ImageCount int       `json:"imageCount"`
	ProofCount int       `json:"proofCount"`
	ResultPath string    `json:"resultPath"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store writes pipeline outputs under a base directory and records each run
// in the index. The index db may be nil, in which case only files are kept.
type Store struct {
	dir string
	db  *DB
	log *logging.Logger
}

// NewStore creates the output directory tree and returns a store rooted there.
func NewStore(dir string, db *DB, log *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, imagesSubdir), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Store{dir: dir, db: db, log: log.Sub("artifacts")}, nil
}

// Dir returns the base output directory.
func (s *Store) Dir() string { return s.dir }

// SaveImage writes image bytes for one generation slot and returns the
// filename relative to the output directory.
func (s *Store) SaveImage(ts int64, slot int, model string, data []byte) (string, error) {
	name := fmt.Sprintf("generated_image_%d_%d_%s.png", ts, slot, model)
	rel := filepath.Join(imagesSubdir, name)
	if err := os.WriteFile(filepath.Join(s.dir, rel), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	s.log.Debug().Str("file", rel).Int("bytes", len(data)).Msg("image saved")
	return rel, nil
}

// SaveErrorNote records why a generation slot produced no image and returns
// the note's path relative to the output directory.
func (s *Store) SaveErrorNote(ts int64, slot int, note string) (string, error) {
	name := fmt.Sprintf("error_image_%d_%d.txt", ts, slot)
	rel := filepath.Join(imagesSubdir, name)
	if err := os.WriteFile(filepath.Join(s.dir, rel), []byte(note), 0o644); err != nil {
		return "", fmt.Errorf("writing error note: %w", err)
	}
	return rel, nil
}

// SaveResult persists the full result record as JSON and indexes the run.
// Returns the result file's path.
func (s *Store) SaveResult(ctx context.Context, result domain.ProcessingResult) (string, error) {
	name := fmt.Sprintf("processing_results_%s_%d.json", result.SessionID, result.Timestamp.Unix())
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}

	if s.db != nil {
		if err := s.indexRun(ctx, result, path); err != nil {
			// The file on disk is the source of truth; a failed index
			// write should not fail the pipeline.
			s.log.Warn().Err(err).Msg("run index write failed")
		}
	}

	s.log.Info().Str("file", name).Str("sessionId", result.SessionID).Msg("result saved")
	return path, nil
}

func (s *Store) indexRun(ctx context.Context, result domain.ProcessingResult, path string) error {
	imageCount := 0
	for _, img := range result.Images {
		if !img.Failed() {
			imageCount++
		}
	}

	_, err := s.db.sql.ExecContext(ctx, `
		INSERT INTO runs (id, session_id, status, image_count, proof_count, result_path, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		result.SessionID,
		result.Status,
		imageCount,
		len(result.Proof),
		path,
		result.Error,
		result.Timestamp.UTC().Format(time.RFC3339),
	)
	return err
}

// Recent returns the newest runs from the index, up to limit. With no index
// configured it returns an empty list.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if s.db == nil {
		return []RunRecord{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.sql.QueryContext(ctx, `
		SELECT id, session_id, status, image_count, proof_count, result_path, error, created_at
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	records := []RunRecord{}
	for rows.Next() {
		var r RunRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Status, &r.ImageCount, &r.ProofCount, &r.ResultPath, &r.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}
