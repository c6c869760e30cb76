package beauty

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key names one beautification parameter. Values match the engine's
// beautify configuration names.
type Key string

const (
	Whiten          Key = "whiten"
	Dermabrasion    Key = "dermabrasion"
	Lift            Key = "lift"
	Shave           Key = "shave"
	Eye             Key = "eye"
	Chin            Key = "chin"
	DarkCircle      Key = "darkCircle"
	NasolabialFolds Key = "nasolabialFolds"
	Cheekbone       Key = "cheekbone"
	Head            Key = "head"
	EyeBrightness   Key = "eyeBrightness"
	Lip             Key = "lip"
	Forehead        Key = "forehead"
	Nose            Key = "nose"
	Usm             Key = "usm"
)

var orderedKeys = []Key{
	Whiten, Dermabrasion, Lift, Shave, Eye, Chin, DarkCircle, NasolabialFolds,
	Cheekbone, Head, EyeBrightness, Lip, Forehead, Nose, Usm,
}

// Keys returns all parameter keys in canonical order.
func Keys() []Key {
	return append([]Key(nil), orderedKeys...)
}

var labelOverrides = map[Key]string{
	Dermabrasion: "Smooth",
	Eye:          "Big eyes",
	Usm:          "Sharpness",
	Lift:         "Slim face",
	Shave:        "V shape",
	Head:         "Small head",
}

var titleCaser = cases.Title(language.Und)

// Label returns the human readable name shown in the control panel.
func (k Key) Label() string {
	if label, ok := labelOverrides[k]; ok {
		return label
	}
	return titleCaser.String(strings.Join(splitCamel(string(k)), " "))
}

// Snake returns the snake_case spelling used on the command line.
func (k Key) Snake() string {
	return strings.Join(splitCamel(string(k)), "_")
}

func (k Key) String() string { return string(k) }

func splitCamel(s string) []string {
	var words []string
	var current strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) && current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
		current.WriteRune(unicode.ToLower(r))
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

// ParseKey resolves a key from its camelCase or snake_case spelling,
// ignoring case.
func ParseKey(raw string) (Key, error) {
	needle := normalizeKey(raw)
	if needle == "" {
		return "", fmt.Errorf("parameter key is empty")
	}
	for _, k := range orderedKeys {
		if normalizeKey(string(k)) == needle {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown parameter %q", raw)
}

func normalizeKey(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.NewReplacer("_", "", "-", "").Replace(raw)
	return strings.ToLower(raw)
}

// Group is a presentation group of related parameters.
type Group struct {
	Name string
	Keys []Key
}

// Groups returns parameters grouped the way the control panel lists them.
func Groups() []Group {
	return []Group{
		{Name: "Skin", Keys: []Key{Whiten, Dermabrasion, NasolabialFolds, Usm}},
		{Name: "Shape", Keys: []Key{Cheekbone, Lift, Shave, Forehead, Head}},
		{Name: "Features", Keys: []Key{Lip, Nose, Eye, EyeBrightness, DarkCircle, Chin}},
	}
}
