package share

import (
	"fmt"

	"call-rewind-go/internal/types"
)

// aliasPool doubles as the pseudonym rotation for public shares. Names past
// the pool length get a numeric suffix instead of collapsing together.
var aliasPool = []string{
	"An anonymous llama",
	"Mystery caller",
	"Unnamed legend",
	"Secret hotline",
	"A stealthy penguin",
	"Shadowy sparrow",
	"Incognito otter",
	"Low-key lynx",
	"Secretive badger",
	"Silent hedgehog",
}

// Sanitize returns a copy of the review with every contact name replaced by
// a rotating placeholder alias. The same input name always maps to the same
// alias within one sanitized review, so the top list and the longest call
// stay consistent.
func Sanitize(review types.YearReview) types.YearReview {
	aliases := map[string]string{}
	next := 0

	nextAlias := func() string {
		base := aliasPool[next%len(aliasPool)]
		if next >= len(aliasPool) {
			base = fmt.Sprintf("%s #%d", base, next/len(aliasPool)+1)
		}
		next++
		return base
	}

	aliasFor := func(name string) string {
		if name == "" {
			return nextAlias()
		}
		alias, ok := aliases[name]
		if !ok {
			alias = nextAlias()
			aliases[name] = alias
		}
		return alias
	}

	out := review
	out.TopContacts = make([]types.ContactStat, len(review.TopContacts))
	for i, contact := range review.TopContacts {
		contact.Name = aliasFor(contact.Name)
		out.TopContacts[i] = contact
	}
	if review.LongestCall != nil {
		out.LongestCall = &types.LongestCall{
			Minutes: review.LongestCall.Minutes,
			Contact: aliasFor(review.LongestCall.Contact),
		}
	}
	return out
}
