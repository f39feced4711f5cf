package persistence

import "sync"

// Memory is an in-memory storage slot, used in tests and for ephemeral runs
type Memory struct {
	mu      sync.Mutex
	payload []byte
	present bool
}

// NewMemory makes an empty in-memory slot
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the stored payload, ok=false until the first Save
func (m *Memory) Load() (data []byte, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return nil, false, nil
	}
	cp := make([]byte, len(m.payload))
	copy(cp, m.payload)
	return cp, true, nil
}

// Save stores a copy of the payload
func (m *Memory) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = make([]byte, len(data))
	copy(m.payload, data)
	m.present = true
	return nil
}

// Clear drops the payload, the slot becomes absent again
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = nil
	m.present = false
	return nil
}

func (m *Memory) String() string {
	return "in-memory slot"
}
