// Package custody implements the chain-of-custody log: an append-only,
// hash-chained record of pipeline actions within one case run. The log is a
// value threaded through and returned by each pipeline stage, never a field
// mutated by side effect, so stages stay independently testable.
package custody

import (
	"fmt"
	"time"

	"github.com/caselight-labs/leveler/pkg/crypto"
)

const genesisHash = "genesis"

// Entry is one immutable, hash-chained custody record.
type Entry struct {
	Sequence  uint64            `json:"sequence"`
	Action    string            `json:"action"`
	Hash      string            `json:"hash"`
	PrevHash  string            `json:"prev_hash"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}

// Log is an append-only custody chain with value semantics: Append returns a
// new Log and leaves the receiver untouched.
type Log struct {
	Entries []Entry `json:"entries"`
}

// NewLog creates an empty custody log.
func NewLog() Log {
	return Log{}
}

// chainInput is the hashed portion of an entry. The timestamp stays outside
// the chain hash; it is the one field allowed to differ between reruns.
type chainInput struct {
	Sequence uint64            `json:"sequence"`
	Action   string            `json:"action"`
	Data     map[string]string `json:"data"`
	PrevHash string            `json:"prev_hash"`
}

// Append records an action and returns the extended log.
func (l Log) Append(action string, at time.Time, data map[string]string) (Log, error) {
	seq := uint64(len(l.Entries)) + 1
	hash, err := crypto.CanonicalHash(chainInput{
		Sequence: seq,
		Action:   action,
		Data:     data,
		PrevHash: l.Head(),
	})
	if err != nil {
		return l, fmt.Errorf("custody append %q: %w", action, err)
	}

	entries := make([]Entry, len(l.Entries), len(l.Entries)+1)
	copy(entries, l.Entries)
	entries = append(entries, Entry{
		Sequence:  seq,
		Action:    action,
		Hash:      hash,
		PrevHash:  l.Head(),
		Timestamp: at.UTC(),
		Data:      data,
	})
	return Log{Entries: entries}, nil
}

// Head returns the hash of the newest entry, or the genesis marker.
func (l Log) Head() string {
	if len(l.Entries) == 0 {
		return genesisHash
	}
	return l.Entries[len(l.Entries)-1].Hash
}

// Len returns the number of entries.
func (l Log) Len() int {
	return len(l.Entries)
}

// Verify recomputes the whole chain and reports the first break, if any.
func (l Log) Verify() (bool, string) {
	prev := genesisHash
	for i, e := range l.Entries {
		if e.PrevHash != prev {
			return false, fmt.Sprintf("chain broken at entry %d: expected prev %s, got %s", i+1, prev, e.PrevHash)
		}
		computed, err := crypto.CanonicalHash(chainInput{
			Sequence: e.Sequence,
			Action:   e.Action,
			Data:     e.Data,
			PrevHash: e.PrevHash,
		})
		if err != nil {
			return false, fmt.Sprintf("failed to rehash entry %d", i+1)
		}
		if computed != e.Hash {
			return false, fmt.Sprintf("hash mismatch at entry %d", i+1)
		}
		prev = e.Hash
	}
	return true, "chain verified"
}
