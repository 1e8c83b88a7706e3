// Package store persists uploads and readiness reports in a bbolt
// key-value database.
package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/cgast/getsready/pkg/invoice"
	"github.com/cgast/getsready/pkg/report"
)

// Bucket names. Pre-created on open.
const (
	bucketUploads = "uploads"
	bucketReports = "reports"
)

// ErrNotFound signals that a record does not exist. It is distinct
// from I/O failures so callers can answer 404 vs 500.
var ErrNotFound = errors.New("record not found")

// Upload is a persisted row set plus its submission context.
type Upload struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	Country    string        `json:"country"`
	ERP        string        `json:"erp"`
	RowsParsed int           `json:"rows_parsed"`
	Rows       []invoice.Row `json:"rows"`
}

// ReportRecord is a persisted readiness report. The report is written
// exactly once, after it is fully assembled in memory.
type ReportRecord struct {
	ID            string        `json:"id"`
	UploadID      string        `json:"upload_id"`
	ScoresOverall int           `json:"scores_overall"`
	CreatedAt     time.Time     `json:"created_at"`
	Report        report.Report `json:"report"`
}

// ReportSummary is a report listing entry joined with its upload's
// context fields.
type ReportSummary struct {
	ID           string    `json:"id"`
	OverallScore int       `json:"overallScore"`
	CreatedAt    time.Time `json:"createdAt"`
	Country      string    `json:"country"`
	ERP          string    `json:"erp"`
}

// Store is a bbolt-backed persistence layer.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the database at the given path and pre-creates
// the buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketUploads, bucketReports} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveUpload persists an upload record keyed by its ID.
func (s *Store) SaveUpload(u Upload) error {
	return s.put(bucketUploads, u.ID, u)
}

// GetUpload fetches an upload by ID. Returns ErrNotFound when absent.
func (s *Store) GetUpload(id string) (Upload, error) {
	var u Upload
	if err := s.get(bucketUploads, id, &u); err != nil {
		return Upload{}, err
	}
	return u, nil
}

// SaveReport persists a report record keyed by its ID.
func (s *Store) SaveReport(rec ReportRecord) error {
	return s.put(bucketReports, rec.ID, rec)
}

// GetReport fetches a stored report by ID. Returns ErrNotFound when
// absent.
func (s *Store) GetReport(id string) (report.Report, error) {
	var rec ReportRecord
	if err := s.get(bucketReports, id, &rec); err != nil {
		return report.Report{}, err
	}
	return rec.Report, nil
}

// ListRecentReports returns up to limit report summaries, newest
// first, joined with each upload's country and ERP.
func (s *Store) ListRecentReports(limit int) ([]ReportSummary, error) {
	var records []ReportRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketReports))
		if b == nil {
			return fmt.Errorf("bucket not found: %s", bucketReports)
		}
		return b.ForEach(func(k, v []byte) error {
			var rec ReportRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal report %s: %w", string(k), err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	summaries := make([]ReportSummary, 0, len(records))
	for _, rec := range records {
		summary := ReportSummary{
			ID:           rec.ID,
			OverallScore: rec.ScoresOverall,
			CreatedAt:    rec.CreatedAt,
			Country:      "Unknown",
			ERP:          "Unknown",
		}
		if u, err := s.GetUpload(rec.UploadID); err == nil {
			summary.Country = u.Country
			summary.ERP = u.ERP
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(bucket, key string, value any) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket not found: %s", bucket)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		return b.Put([]byte(key), data)
	})
}

func (s *Store) get(bucket, key string, out any) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket not found: %s", bucket)
		}
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal %s/%s: %w", bucket, key, err)
		}
		return nil
	})
}
