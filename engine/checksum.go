package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/saltmarsh/skirmish/battle"
)

// Checksum is a digest of a battle state snapshot. Equal states yield equal
// checksums; the timeline records one per applied event so replay can prove
// it reproduced history exactly.
type Checksum uint64

// String renders the checksum as fixed-width hex.
func (c Checksum) String() string { return fmt.Sprintf("%016x", uint64(c)) }

// StateChecksum digests a state snapshot through canonical JSON.
func StateChecksum(s *battle.State) (Checksum, error) {
	snap := s.Snapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("state checksum: %w", err)
	}
	// Round-trip through a generic value with json.Number so the canonical
	// marshaller never sees floats.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return 0, fmt.Errorf("state checksum: %w", err)
	}
	canonical, err := marshalCanonical(generic)
	if err != nil {
		return 0, fmt.Errorf("state checksum: %w", err)
	}
	return Checksum(xxhash.Sum64(canonical)), nil
}
