package store

//go:generate go run ./internal/schema schema.json

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed schema.json
var embeddedSchemaData []byte

// Verify validates an exported backup payload before it can replace the
// slot contents. The payload must be a JSON array of complete posting
// records with unique ids and ordered timestamps.
func Verify(data []byte) error {
	// parse embedded schema
	var schema map[string]interface{}
	if err := json.Unmarshal(embeddedSchemaData, &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// enum values are checked during decoding by the enums types
	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return fmt.Errorf("payload is not a posting array: %w", err)
	}

	if err := validateRequiredFields(jobs); err != nil {
		return fmt.Errorf("backup validation failed: %w", err)
	}
	return nil
}

// validateRequiredFields performs structural validation of decoded postings
func validateRequiredFields(jobs []Job) error {
	seen := make(map[string]struct{}, len(jobs))
	for i, job := range jobs {
		if job.ID == "" {
			return fmt.Errorf("posting %d: id is required", i+1)
		}
		if _, ok := seen[job.ID]; ok {
			return fmt.Errorf("posting %d: duplicate id %q", i+1, job.ID)
		}
		seen[job.ID] = struct{}{}

		if job.Title == "" {
			return fmt.Errorf("posting %d (%s): title is required", i+1, job.ID)
		}
		if job.Department == "" {
			return fmt.Errorf("posting %d (%s): department is required", i+1, job.ID)
		}
		if job.Location == "" {
			return fmt.Errorf("posting %d (%s): location is required", i+1, job.ID)
		}
		if job.CreatedAt <= 0 {
			return fmt.Errorf("posting %d (%s): createdAt is required", i+1, job.ID)
		}
		if job.UpdatedAt < job.CreatedAt {
			return fmt.Errorf("posting %d (%s): updatedAt %d before createdAt %d",
				i+1, job.ID, job.UpdatedAt, job.CreatedAt)
		}
	}
	return nil
}
