// Package store implements the job posting store, the single authority over
// the durable collection of postings. The collection lives in one named
// storage slot as a JSON array, read and rewritten wholesale on every
// mutation. There is no change feed; consumers re-fetch after mutations.
package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/careerhub/jobboard/app/store/enums"
)

// ErrNotFound returned by Get, Update and Archive for unknown posting ids
var ErrNotFound = errors.New("job not found")

// Job is a single posting record as persisted in the slot
type Job struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Department   string        `json:"department"`
	Location     string        `json:"location"`
	Type         enums.JobType `json:"type"`
	Description  string        `json:"description"`
	Requirements []string      `json:"requirements"`
	SalaryRange  string        `json:"salaryRange,omitempty"`
	Status       enums.Status  `json:"status"`
	CreatedAt    int64         `json:"createdAt"` // milliseconds since epoch, set once
	UpdatedAt    int64         `json:"updatedAt"` // milliseconds since epoch, bumped on every mutation
}

// JobInput is the create payload, a Job without identity and timestamps
type JobInput struct {
	Title        string        `json:"title"`
	Department   string        `json:"department"`
	Location     string        `json:"location"`
	Type         enums.JobType `json:"type"`
	Description  string        `json:"description"`
	Requirements []string      `json:"requirements"`
	SalaryRange  string        `json:"salaryRange,omitempty"`
	Status       enums.Status  `json:"status"`
}

// Patch is a partial update, nil fields are left untouched. Identity and
// timestamps are deliberately not representable here, Update owns them.
type Patch struct {
	Title        *string        `json:"title"`
	Department   *string        `json:"department"`
	Location     *string        `json:"location"`
	Type         *enums.JobType `json:"type"`
	Description  *string        `json:"description"`
	Requirements *[]string      `json:"requirements"`
	SalaryRange  *string        `json:"salaryRange"`
	Status       *enums.Status  `json:"status"`
}

// Slot is the storage port the store persists through. Load reports
// ok=false when the slot was never written, which is distinct from a
// present-but-empty payload.
type Slot interface {
	Load() (data []byte, ok bool, err error)
	Save(data []byte) error
	Clear() error
}

// Store owns the posting collection in a single storage slot
type Store struct {
	slot  Slot
	now   func() time.Time
	newID func() string
}

// New makes a store over the given storage slot
func New(slot Slot) *Store {
	return &Store{slot: slot, now: time.Now, newID: newJobID}
}

// List returns the full collection, most recently created first. On the
// very first call against an absent slot it writes the fixed seed set, so
// first-run behavior is deterministic. A corrupt payload is an error, not
// a reason to re-seed.
func (s *Store) List() ([]Job, error) {
	data, ok, err := s.slot.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}

	if !ok {
		seeded := s.seed()
		payload, err := json.Marshal(seeded)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal seed data: %w", err)
		}
		if err := s.slot.Save(payload); err != nil {
			return nil, fmt.Errorf("failed to write seed data: %w", err)
		}
		log.Printf("[INFO] seeded slot with %d postings", len(seeded))
		return seeded, nil
	}

	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("corrupt slot payload: %w", err)
	}
	return jobs, nil
}

// Get returns the posting with the given id or ErrNotFound
func (s *Store) Get(id string) (Job, error) {
	jobs, err := s.List()
	if err != nil {
		return Job{}, err
	}
	for _, job := range jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create assigns a fresh id and timestamps, prepends the new posting to the
// collection and persists it. The caller's input is not modified.
func (s *Store) Create(input JobInput) (Job, error) {
	jobs, err := s.List()
	if err != nil {
		return Job{}, err
	}

	ts := s.now().UnixMilli()
	job := Job{
		ID:           s.newID(),
		Title:        input.Title,
		Department:   input.Department,
		Location:     input.Location,
		Type:         input.Type,
		Description:  input.Description,
		Requirements: append([]string(nil), input.Requirements...),
		SalaryRange:  input.SalaryRange,
		Status:       input.Status,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	updated := append([]Job{job}, jobs...)
	if err := s.persist(updated); err != nil {
		return Job{}, err
	}
	log.Printf("[INFO] created posting %s (%s)", job.ID, job.Title)
	return job, nil
}

// Update shallow-merges the patch over the stored posting, bumps updatedAt
// and persists. The record keeps its position in the collection. Returns
// ErrNotFound for unknown ids, a silent no-op would hide data loss.
func (s *Store) Update(id string, patch Patch) (Job, error) {
	jobs, err := s.List()
	if err != nil {
		return Job{}, err
	}

	idx := -1
	for i, job := range jobs {
		if job.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	job := jobs[idx]
	if patch.Title != nil {
		job.Title = *patch.Title
	}
	if patch.Department != nil {
		job.Department = *patch.Department
	}
	if patch.Location != nil {
		job.Location = *patch.Location
	}
	if patch.Type != nil {
		job.Type = *patch.Type
	}
	if patch.Description != nil {
		job.Description = *patch.Description
	}
	if patch.Requirements != nil {
		job.Requirements = append([]string(nil), *patch.Requirements...)
	}
	if patch.SalaryRange != nil {
		job.SalaryRange = *patch.SalaryRange
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}

	// updatedAt has to move forward even when the wall clock didn't,
	// successive updates within the same millisecond are common in tests
	ts := s.now().UnixMilli()
	if ts <= job.UpdatedAt {
		ts = job.UpdatedAt + 1
	}
	job.UpdatedAt = ts

	jobs[idx] = job
	if err := s.persist(jobs); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Archive transitions the posting to the archived state, a shortcut for
// Update with a status-only patch
func (s *Store) Archive(id string) (Job, error) {
	archived := enums.StatusArchived
	return s.Update(id, Patch{Status: &archived})
}

// Delete removes the posting from the collection. Deleting an unknown id is
// a silent no-op.
func (s *Store) Delete(id string) error {
	jobs, err := s.List()
	if err != nil {
		return err
	}

	updated := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if job.ID != id {
			updated = append(updated, job)
		}
	}
	if len(updated) == len(jobs) {
		return nil // nothing removed, not an error
	}
	return s.persist(updated)
}

// Export serializes the full collection to pretty-printed JSON and returns
// it with a dated backup filename
func (s *Store) Export() (data []byte, filename string, err error) {
	jobs, err := s.List()
	if err != nil {
		return nil, "", err
	}
	data, err = json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal export: %w", err)
	}
	filename = fmt.Sprintf("internal_jobs_backup_%s.json", s.now().Format("2006-01-02"))
	return data, filename, nil
}

// Import replaces the collection with a previously exported backup after
// validating its shape
func (s *Store) Import(data []byte) error {
	if err := Verify(data); err != nil {
		return fmt.Errorf("backup rejected: %w", err)
	}
	if err := s.slot.Save(data); err != nil {
		return fmt.Errorf("failed to save imported backup: %w", err)
	}
	log.Printf("[INFO] imported backup, %d bytes", len(data))
	return nil
}

// Reset clears the slot entirely, the next List re-seeds
func (s *Store) Reset() error {
	if err := s.slot.Clear(); err != nil {
		return fmt.Errorf("failed to clear slot: %w", err)
	}
	log.Printf("[INFO] slot cleared")
	return nil
}

// persist writes the whole collection back to the slot
func (s *Store) persist(jobs []Job) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("failed to marshal postings: %w", err)
	}
	if err := s.slot.Save(data); err != nil {
		return fmt.Errorf("failed to save postings: %w", err)
	}
	return nil
}

// seed returns the fixed first-run posting set
func (s *Store) seed() []Job {
	now := s.now().UnixMilli()
	const day = int64(24 * time.Hour / time.Millisecond)
	return []Job{
		{
			ID:         "1",
			Title:      "Senior Frontend Engineer",
			Department: "Engineering",
			Location:   "Bangkok Office",
			Type:       enums.TypeFullTime,
			Description: "We are looking for a React expert to lead our internal " +
				"tools team.",
			Requirements: []string{"5+ years React", "TypeScript mastery", "Strong UI/UX skills"},
			SalaryRange:  "100k - 150k THB",
			Status:       enums.StatusOpen,
			CreatedAt:    now - 5*day,
			UpdatedAt:    now - 5*day,
		},
		{
			ID:         "2",
			Title:      "Product Designer",
			Department: "Design",
			Location:   "Remote",
			Type:       enums.TypeFullTime,
			Description: "Join us to redefine the user experience of our " +
				"enterprise platform.",
			Requirements: []string{"Figma expert", "Design systems experience", "User research skills"},
			SalaryRange:  "80k - 120k THB",
			Status:       enums.StatusOpen,
			CreatedAt:    now - 2*day,
			UpdatedAt:    now - 2*day,
		},
	}
}

// id alphabet matches the original base36 ids, prefixed for readability
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newJobID makes a random id like "job_k3f9x2m1q"
func newJobID() string {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the platform is broken beyond recovery
		panic(fmt.Sprintf("random source unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return "job_" + string(buf)
}
