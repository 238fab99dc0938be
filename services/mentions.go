package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/LepeyevaEmiliya/projects/models"
)

// ExtractMentions resolves "@Name" tokens against the member list. Names
// match exactly and case-sensitively; at each '@' the longest matching name
// wins, and it must not run into a following letter, digit or '_'.
// Each member is returned once, in order of first mention.
func ExtractMentions(text string, members []models.Member) []models.Member {
	var (
		out  []models.Member
		seen = make(map[string]bool)
	)

	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		rest := text[i+1:]

		best := -1
		for j, m := range members {
			if m.Name == "" || !strings.HasPrefix(rest, m.Name) || !boundaryAfter(rest[len(m.Name):]) {
				continue
			}
			if best < 0 || len(m.Name) > len(members[best].Name) {
				best = j
			}
		}
		if best < 0 {
			continue
		}

		m := members[best]
		if !seen[m.ID] {
			seen[m.ID] = true
			out = append(out, m)
		}
		i += len(m.Name)
	}
	return out
}

func boundaryAfter(s string) bool {
	if s == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
