package features

import (
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Category is the collision class of a line feature.
type Category int

const (
	Ignored Category = iota
	CityWall
	LongWall
)

func (c Category) String() string {
	switch c {
	case CityWall:
		return "city_wall"
	case LongWall:
		return "long_wall"
	}
	return "ignored"
}

// Rule assigns Category to features whose property Key contains Match,
// compared case-insensitively.
type Rule struct {
	Key      string
	Match    string
	Category Category
}

// DefaultRules is the built-in classification table. Kind rules come first;
// name rules only apply to features without a kind.
var DefaultRules = []Rule{
	{KeyKind, "city_wall", CityWall},
	{KeyKind, "fortification", CityWall},
	{KeyKind, "wall_corridor", LongWall},
	{KeyKind, "long_wall", LongWall},
	{KeyName, "city wall", CityWall},
	{KeyName, "long wall", LongWall},
	{KeyName, "phaleric wall", LongWall},
	{KeyName, "makra teiche", LongWall},
}

// Classify evaluates rules top to bottom and returns the category of the
// first match. A feature carrying a non-empty string kind is classified by
// kind rules alone; rules on any other key act as the fallback for features
// without one.
func Classify(props geojson.Properties, rules []Rule) Category {
	hasKind := stringProp(props, KeyKind) != ""
	for _, r := range rules {
		if hasKind && r.Key != KeyKind {
			continue
		}
		v := stringProp(props, r.Key)
		if v == "" {
			continue
		}
		if strings.Contains(strings.ToLower(v), strings.ToLower(r.Match)) {
			return r.Category
		}
	}
	return Ignored
}

// IsHill reports whether a point feature name marks a hill.
func IsHill(name string) bool {
	return strings.Contains(strings.ToLower(name), "hill")
}
