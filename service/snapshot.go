package service

import (
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"github.com/IvanBrykalov/tagcloud/cloud"
)

// ErrCorrupt is returned when a cached snapshot cannot be turned back into a cloud.
var ErrCorrupt = errors.New("service: corrupt cloud snapshot")

const snapshotVersion = 1

// snapshot is the cached form of a cloud. Weights are not stored; they are
// a pure function of the tags and steps and are recomputed on first read.
type snapshot struct {
	Version int         `json:"v"`
	ID      string      `json:"id"`
	Steps   int         `json:"steps"`
	Locale  string      `json:"locale,omitempty"`
	Tags    []cloud.Tag `json:"tags"`
}

// encode serializes c, keeping its current tag order.
func encode(c *cloud.Cloud) ([]byte, error) {
	weighted := c.Tags()
	snap := snapshot{
		Version: snapshotVersion,
		ID:      c.ID(),
		Steps:   c.Steps(),
		Tags:    make([]cloud.Tag, len(weighted)),
	}
	if loc := c.Locale(); loc != language.Und {
		snap.Locale = loc.String()
	}
	for i, w := range weighted {
		snap.Tags[i] = w.Tag
	}
	b, err := json.Marshal(snap)
	return b, errors.Wrapf(err, "encoding cloud %q", c.ID())
}

// decode rebuilds the cloud stored under id. Any mismatch is ErrCorrupt.
func decode(id string, b []byte) (*cloud.Cloud, error) {
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "cloud %q: %v", id, err)
	}
	switch {
	case snap.Version != snapshotVersion:
		return nil, errors.Wrapf(ErrCorrupt, "cloud %q: version %d", id, snap.Version)
	case snap.ID != id:
		return nil, errors.Wrapf(ErrCorrupt, "cloud %q: snapshot belongs to %q", id, snap.ID)
	case snap.Steps <= 0:
		return nil, errors.Wrapf(ErrCorrupt, "cloud %q: steps %d", id, snap.Steps)
	}

	opt := cloud.Options{Steps: snap.Steps}
	if snap.Locale != "" {
		loc, err := language.Parse(snap.Locale)
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "cloud %q: locale %q", id, snap.Locale)
		}
		opt.Locale = loc
	}
	c, err := cloud.New(snap.ID, opt, snap.Tags...)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "cloud %q: %v", id, err)
	}
	return c, nil
}
