package fine

import (
	"encoding/json"

	"github.com/google/uuid"

	"sessionstore/backend/services/attributes-service/internal/kv"
)

// DecodeNames parses a stored name index. An absent or empty value decodes to
// an empty, never nil, map.
func DecodeNames(data []byte) (map[string]uuid.UUID, error) {
	names := make(map[string]uuid.UUID)
	if len(data) == 0 {
		return names, nil
	}
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// EncodeNames renders a name index into its stored form.
func EncodeNames(names map[string]uuid.UUID) ([]byte, error) {
	return json.Marshal(names)
}

// PutName returns the compound update indexing name under id. An existing
// entry for name wins and the index is left unchanged, so the first writer of
// a name is authoritative for its id. copyOnWrite selects the update
// strategy: build a fresh map leaving the current one untouched (required
// when the backing store is transactional and may roll back), or update the
// decoded map in place.
func PutName(name string, id uuid.UUID, copyOnWrite bool) kv.ComputeFunc {
	return func(current []byte, exists bool) ([]byte, bool, error) {
		names, err := DecodeNames(current)
		if err != nil {
			return nil, false, err
		}
		if _, ok := names[name]; ok {
			return current, true, nil
		}

		if copyOnWrite {
			next := make(map[string]uuid.UUID, len(names)+1)
			for n, v := range names {
				next[n] = v
			}
			next[name] = id
			names = next
		} else {
			names[name] = id
		}

		encoded, err := EncodeNames(names)
		if err != nil {
			return nil, false, err
		}
		return encoded, true, nil
	}
}

// RemoveName returns the compound update dropping name from the index. A
// missing name leaves the index unchanged; an empty index stays stored so the
// key survives for the next add.
func RemoveName(name string, copyOnWrite bool) kv.ComputeFunc {
	return func(current []byte, exists bool) ([]byte, bool, error) {
		if !exists {
			return nil, false, nil
		}
		names, err := DecodeNames(current)
		if err != nil {
			return nil, false, err
		}
		if _, ok := names[name]; !ok {
			return current, true, nil
		}

		if copyOnWrite {
			next := make(map[string]uuid.UUID, len(names)-1)
			for n, v := range names {
				if n != name {
					next[n] = v
				}
			}
			names = next
		} else {
			delete(names, name)
		}

		encoded, err := EncodeNames(names)
		if err != nil {
			return nil, false, err
		}
		return encoded, true, nil
	}
}
