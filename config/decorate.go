package config

import (
	"strings"
	"unicode"
)

// DisplayLabel builds the menu label for an add-on identifier: the
// configured nickname when one exists, otherwise the identifier
// title-cased with underscores and dashes read as spaces. A configured
// emoji is appended after a space either way.
func (c Config) DisplayLabel(id string) string {
	base := c.AddonNicknames[id]
	if base == "" {
		base = titleCase(id)
	}
	if emoji := c.AddonEmojis[id]; emoji != "" {
		return base + " " + emoji
	}
	return base
}

func titleCase(id string) string {
	replaced := strings.NewReplacer("_", " ", "-", " ").Replace(id)
	words := strings.Fields(replaced)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
