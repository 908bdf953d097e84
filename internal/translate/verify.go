package translate

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// structure is the HTML skeleton of a fragment: the ordered sequence of tag
// open/close tokens and the ordered list of href/src attribute values. A
// translation must preserve both exactly; only text content may change.
type structure struct {
	tags []string
	urls []string
}

// extractStructure tokenizes an HTML fragment into its skeleton.
func extractStructure(fragment string) (structure, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var s structure
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return structure{}, fmt.Errorf("translate: tokenize fragment: %w", err)
			}
			return s, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			s.tags = append(s.tags, "<"+token.Data+">")
			for _, attr := range token.Attr {
				if attr.Key == "href" || attr.Key == "src" {
					s.urls = append(s.urls, attr.Val)
				}
			}

		case html.EndTagToken:
			token := tokenizer.Token()
			s.tags = append(s.tags, "</"+token.Data+">")
		}
	}
}

// StructurePreserved reports whether the translated fragment kept the
// original's tag sequence and URL set intact.
//
// Any divergence rejects the translation: a translator that drops a closing
// tag, reorders elements, or rewrites a link has corrupted the content even
// if the visible text reads fine.
func StructurePreserved(original, translated string) error {
	before, err := extractStructure(original)
	if err != nil {
		return err
	}
	after, err := extractStructure(translated)
	if err != nil {
		return err
	}

	if !equalSequences(before.tags, after.tags) {
		return fmt.Errorf("translate: tag structure altered (had %d tags, got %d)",
			len(before.tags), len(after.tags))
	}
	if !equalSequences(before.urls, after.urls) {
		return fmt.Errorf("translate: link targets altered (had %d urls, got %d)",
			len(before.urls), len(after.urls))
	}
	return nil
}

func equalSequences(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
