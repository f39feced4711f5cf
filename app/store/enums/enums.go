// Package enums provides closed enumeration types for job postings.
//
// Both Status and JobType marshal to the exact string literals used in the
// persisted JSON layout ("OPEN", "Full-time", ...), so records round-trip
// through export and import without loss.
package enums

import "fmt"

// Status represents the lifecycle state of a job posting.
type Status int

// supported posting states
const (
	StatusOpen Status = iota
	StatusClosed
	StatusArchived
)

// String returns the wire representation of the status
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusClosed:
		return "CLOSED"
	case StatusArchived:
		return "ARCHIVED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus converts a wire string to Status
func ParseStatus(v string) (Status, error) {
	switch v {
	case "OPEN":
		return StatusOpen, nil
	case "CLOSED":
		return StatusClosed, nil
	case "ARCHIVED":
		return StatusArchived, nil
	default:
		return StatusOpen, fmt.Errorf("invalid status %q", v)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusOpen, StatusClosed, StatusArchived:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("invalid status value %d", int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// JobType represents the employment type of a posting.
type JobType int

// supported employment types
const (
	TypeFullTime JobType = iota
	TypePartTime
	TypeContract
	TypeIntern
)

// String returns the wire representation of the job type
func (t JobType) String() string {
	switch t {
	case TypeFullTime:
		return "Full-time"
	case TypePartTime:
		return "Part-time"
	case TypeContract:
		return "Contract"
	case TypeIntern:
		return "Intern"
	default:
		return fmt.Sprintf("JobType(%d)", int(t))
	}
}

// ParseJobType converts a wire string to JobType
func ParseJobType(v string) (JobType, error) {
	switch v {
	case "Full-time":
		return TypeFullTime, nil
	case "Part-time":
		return TypePartTime, nil
	case "Contract":
		return TypeContract, nil
	case "Intern":
		return TypeIntern, nil
	default:
		return TypeFullTime, fmt.Errorf("invalid job type %q", v)
	}
}

// MarshalText implements encoding.TextMarshaler
func (t JobType) MarshalText() ([]byte, error) {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeIntern:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("invalid job type value %d", int(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *JobType) UnmarshalText(text []byte) error {
	parsed, err := ParseJobType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
