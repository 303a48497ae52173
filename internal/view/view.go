package view

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"you-sub/internal/models"
)

// Builder projects the persisted state into the grouped list the renderer shows.
type Builder struct {
	locale language.Tag
}

// NewBuilder returns a Builder that collates names for locale.
func NewBuilder(locale language.Tag) *Builder {
	return &Builder{locale: locale}
}

// Build groups subscriptions by their group label. Groups without members
// are left out; groups that are not in the group list still show up. Group
// names and members are ordered with the locale's collation.
func (b *Builder) Build(state models.State) models.ViewModel {
	// A Collator is not safe for concurrent use.
	col := collate.New(b.locale)

	buckets := make(map[string][]models.Subscription)
	for _, sub := range state.Subscriptions {
		buckets[sub.Group] = append(buckets[sub.Group], sub)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, c string) int { return compare(col, a, c) })

	vm := models.ViewModel{
		Groups:  make([]models.GroupView, 0, len(names)),
		Options: sortedOptions(col, state.Groups),
	}
	for _, name := range names {
		members := buckets[name]
		slices.SortFunc(members, func(x, y models.Subscription) int {
			if c := col.CompareString(x.Name, y.Name); c != 0 {
				return c
			}
			return compare(col, x.ChannelID, y.ChannelID)
		})
		vm.Groups = append(vm.Groups, models.GroupView{
			Name:      name,
			Deletable: name != models.DefaultGroup,
			Members:   members,
		})
	}

	return vm
}

func sortedOptions(col *collate.Collator, groups []string) []string {
	options := slices.Clone(groups)
	slices.SortFunc(options, func(a, c string) int { return compare(col, a, c) })
	return slices.Compact(options)
}

// compare falls back to byte order when the collator sees two strings as equal.
func compare(col *collate.Collator, a, b string) int {
	if c := col.CompareString(a, b); c != 0 {
		return c
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
