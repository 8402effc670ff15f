package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/gosimple/slug"

	"meet-registration-portal/models"
)

// Store is the portal's local cache: per-team draft lists, submitted lists
// and pending-write queues, plus the delete-request log, each persisted as
// its own JSON file. A missing file is an empty list; a corrupt file is
// treated as empty and logged, never fatal — losing the cache must not take
// the portal down.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open prepares the data directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(kind, teamID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", kind, slug.Make(teamID)))
}

func (s *Store) deleteReqPath() string {
	return filepath.Join(s.dir, "delete_requests.json")
}

// loadList reads a JSON array file into out, tolerating absence and rot.
func loadList(path string, out any) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ [STORE] Read %s failed, treating as empty: %v", path, err)
		}
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("⚠️ [STORE] Corrupt cache file %s, treating as empty: %v", path, err)
	}
}

func saveList(path string, in any) {
	raw, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		log.Printf("❌ [STORE] Marshal for %s failed: %v", path, err)
		return
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		log.Printf("❌ [STORE] Write %s failed: %v", path, err)
	}
}

// LoadDrafts returns the team's draft slots.
func (s *Store) LoadDrafts(teamID string) []models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.Participant
	loadList(s.path("draft", teamID), &rows)
	return rows
}

// SaveDrafts replaces the team's draft slots.
func (s *Store) SaveDrafts(teamID string, rows []models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saveList(s.path("draft", teamID), rows)
}

// LoadSubmitted returns the team's cached submitted rows.
func (s *Store) LoadSubmitted(teamID string) []models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.Participant
	loadList(s.path("submitted", teamID), &rows)
	return rows
}

// SaveSubmitted replaces the team's cached submitted rows.
func (s *Store) SaveSubmitted(teamID string, rows []models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saveList(s.path("submitted", teamID), rows)
}

// AppendDeleteRequest records a deletion petition in the local log. The log
// survives regardless of whether the matching remote write ever lands.
func (s *Store) AppendDeleteRequest(req models.DeleteRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reqs []models.DeleteRequest
	loadList(s.deleteReqPath(), &reqs)
	reqs = append(reqs, req)
	saveList(s.deleteReqPath(), reqs)
}

// LoadDeleteRequests returns the full delete-request log.
func (s *Store) LoadDeleteRequests() []models.DeleteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reqs []models.DeleteRequest
	loadList(s.deleteReqPath(), &reqs)
	return reqs
}

// ResolveDeleteRequest marks a logged request approved or rejected.
func (s *Store) ResolveDeleteRequest(reqID, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reqs []models.DeleteRequest
	loadList(s.deleteReqPath(), &reqs)
	for i := range reqs {
		if reqs[i].ReqID == reqID {
			reqs[i].Status = status
			saveList(s.deleteReqPath(), reqs)
			return true
		}
	}
	return false
}
