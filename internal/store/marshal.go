package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/pybridge/internal/ir"
)

// timeLayout stores timestamps as sortable UTC text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// marshalSignatures converts signatures to canonical JSON TEXT: an array
// of their compact string forms.
func marshalSignatures(sigs []*ir.Signature) (string, error) {
	forms := make([]string, len(sigs))
	for i, s := range sigs {
		forms[i] = s.String()
	}
	data, err := ir.MarshalCanonical(forms)
	if err != nil {
		return "", fmt.Errorf("marshal signatures: %w", err)
	}
	return string(data), nil
}

// unmarshalSignatures reverses marshalSignatures.
func unmarshalSignatures(data string) ([]string, error) {
	var forms []string
	if err := json.Unmarshal([]byte(data), &forms); err != nil {
		return nil, fmt.Errorf("unmarshal signatures: %w", err)
	}
	if forms == nil {
		forms = []string{}
	}
	return forms, nil
}
