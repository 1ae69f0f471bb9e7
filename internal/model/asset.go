package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// An Asset is the durable metadata record for one uploaded object.
//
// It is created as a provisional record when a write capability is issued
// (no tags, size unknown) and enriched out-of-band by the tagging worker.
// Readers must tolerate the empty/partial tag state.
type Asset struct {
	Base `json:",inline" storm:"inline"`

	OwnerID     string `json:"owner_id"     storm:"index"`
	ObjectKey   string `json:"file_name"    storm:"unique"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
	Tags        []Tag  `json:"tags,omitempty"`
}

// A Tag is one enrichment label. The tagging worker is not consistent about
// the shape it writes: labels appear as bare strings or as wrapper values
// ({"S": "cat"} or {"value": "cat"}). Tag decodes all of them.
type Tag struct {
	Value string
}

func (t Tag) String() string {
	return t.Value
}

// MarshalJSON always writes the bare string form.
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value)
}

// UnmarshalJSON accepts a bare string or a wrapper object.
func (t *Tag) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return errors.Wrap(json.Unmarshal(b, &t.Value), "could not decode tag")
	}

	var wrapper struct {
		S     string `json:"S"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &wrapper); err != nil {
		return errors.Wrap(err, "could not decode tag")
	}

	t.Value = wrapper.S
	if t.Value == "" {
		t.Value = wrapper.Value
	}
	return nil
}

// TagStrings coerces tags to a plain ordered sequence of strings.
// It never returns nil so delivered views render an empty list rather
// than a null.
func TagStrings(tags []Tag) []string {
	sl := make([]string, 0, len(tags))

	for _, tag := range tags {
		if tag.Value == "" {
			continue
		}
		sl = append(sl, tag.Value)
	}

	return sl
}
