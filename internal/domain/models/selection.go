package models

import "encoding/json"

// Selection maps a service kind to the line ids chosen for confirmation.
type Selection map[ServiceKind][]int

// UnmarshalJSON accepts wire values and collection aliases as keys, so both
// {"hotel":[1]} and {"hotels":[1]} decode. Ids listed under two aliases of
// the same kind are merged.
func (s *Selection) UnmarshalJSON(b []byte) error {
	var raw map[string][]int
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := Selection{}
	for key, ids := range raw {
		kind, err := ParseServiceKind(key)
		if err != nil {
			return err
		}
		out[kind] = append(out[kind], ids...)
	}
	*s = out
	return nil
}

// IsEmpty reports whether no id is selected in any kind.
func (s Selection) IsEmpty() bool {
	for _, ids := range s {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

// Normalized drops duplicate ids per kind, keeping first-seen order.
func (s Selection) Normalized() Selection {
	out := Selection{}
	for kind, ids := range s {
		seen := map[int]bool{}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			out[kind] = append(out[kind], id)
		}
	}
	return out
}

// SelectionRef names one selected line.
type SelectionRef struct {
	Kind ServiceKind `json:"kind"`
	ID   int         `json:"id"`
}
