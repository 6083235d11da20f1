package qdrant

import (
	"bytes"
	"encoding/json"
	"strings"
)

// envelope is the shape of every qdrant HTTP response: a status plus an
// operation-specific result.
type envelope[T any] struct {
	Status apiStatus `json:"status"`
	Result T         `json:"result"`
}

// apiStatus is "ok" as a bare string on success and an object carrying an
// error message otherwise.
type apiStatus struct {
	State string `json:"status"`
	Error string `json:"error,omitempty"`
}

func (s *apiStatus) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if bytes.HasPrefix(trimmed, []byte(`"`)) {
		var state string
		if err := json.Unmarshal(trimmed, &state); err != nil {
			return err
		}
		s.State = strings.ToLower(state)
		return nil
	}

	var detail struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &detail); err != nil {
		return err
	}

	if len(detail.Error) > 0 {
		s.State = "error"
		s.Error = detail.Error
	}

	return nil
}

// searchHit is one scored point from a search. Records are read from the
// payload; the point id is only a fallback for points written by other
// clients.
type searchHit struct {
	Id      hitId          `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// hitId tolerates both forms qdrant allows for point ids, UUID strings and
// unsigned integers.
type hitId string

func (h *hitId) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if bytes.HasPrefix(trimmed, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*h = hitId(s)
		return nil
	}

	*h = hitId(trimmed)

	return nil
}
