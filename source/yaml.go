package source

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/tagcloud/cloud"
)

// yamlTag mirrors cloud.Tag with an optional distributed value.
type yamlTag struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Count       int      `yaml:"count"`
	Distributed *float64 `yaml:"distributed"`
	Description string   `yaml:"description"`
	Link        string   `yaml:"link"`
}

// DecodeYAML reads a YAML sequence of tags. A tag without a distributed
// value gets cloud.Distribute(count). Names are required.
func DecodeYAML(r io.Reader) ([]cloud.Tag, error) {
	var in []yamlTag
	if err := yaml.NewDecoder(r).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decoding tags")
	}
	tags := make([]cloud.Tag, 0, len(in))
	for i, t := range in {
		if t.Name == "" {
			return nil, errors.Errorf("tag #%d has no name", i+1)
		}
		d := cloud.Distribute(t.Count)
		if t.Distributed != nil {
			d = *t.Distributed
		}
		tags = append(tags, cloud.Tag{
			ID:          t.ID,
			Name:        t.Name,
			Count:       t.Count,
			Distributed: d,
			Description: t.Description,
			Link:        t.Link,
		})
	}
	return tags, nil
}
