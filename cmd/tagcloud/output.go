package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/tagcloud/cloud"
)

var formats = []string{"text", "json", "yaml", "html"}

// writeTags prints weighted tags in one of formats.
func writeTags(w io.Writer, format string, tags []cloud.WeightedTag) error {
	switch strings.ToLower(format) {
	case "", "text":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WEIGHT\tNAME\tCOUNT")
		for _, t := range tags {
			fmt.Fprintf(tw, "%d\t%s\t%d\n", t.Weight, t.Name, t.Count)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tags)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tags); err != nil {
			return err
		}
		return enc.Close()
	case "html":
		return writeHTML(w, tags)
	default:
		return errors.Errorf("unknown format %q (use %s)", format, strings.Join(formats, ", "))
	}
}

// writeHTML emits one anchor per tag with a "level<weight>" class for styling.
func writeHTML(w io.Writer, tags []cloud.WeightedTag) error {
	var b strings.Builder
	b.WriteString(`<div class="tagcloud">` + "\n")
	for _, t := range tags {
		href := safeHref(t.Link)
		fmt.Fprintf(&b, `  <a href="%s" class="tag level%d" rel="tag"`, html.EscapeString(href), t.Weight)
		if t.Description != "" {
			fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(t.Description))
		}
		fmt.Fprintf(&b, ">%s</a>\n", html.EscapeString(t.Name))
	}
	b.WriteString("</div>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// safeHref returns link if it is relative or http(s), "#" otherwise.
func safeHref(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if link == "" || err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return link
	}
	return "#"
}
