package models

// DefaultGroup is the reserved group that new channels land in and that
// deleted groups fall back to. It cannot be deleted.
const DefaultGroup = "Ungrouped"

// Subscription represents a YouTube channel the user is subscribed to.
type Subscription struct {
	ChannelID string `json:"channelId"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Icon      string `json:"icon"`
	Group     string `json:"group"`
}

// RawSubscription is a channel entry as harvested from the channel-list page.
type RawSubscription struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl"`
	IconURL    string `json:"iconUrl"`
}

// State is the persisted pair. Both halves are always read and written together.
type State struct {
	Subscriptions map[string]Subscription `json:"subscriptions"`
	Groups        []string                `json:"groups"`
}

// NewState returns an empty state holding only the default group.
func NewState() State {
	return State{
		Subscriptions: map[string]Subscription{},
		Groups:        []string{DefaultGroup},
	}
}

// Normalized fills in missing halves and makes sure the default group is listed.
func (s State) Normalized() State {
	if s.Subscriptions == nil {
		s.Subscriptions = map[string]Subscription{}
	}
	for _, g := range s.Groups {
		if g == DefaultGroup {
			return s
		}
	}
	groups := make([]string, 0, len(s.Groups)+1)
	groups = append(groups, DefaultGroup)
	s.Groups = append(groups, s.Groups...)
	return s
}

// HasGroup reports whether name is in the group list.
func (s State) HasGroup(name string) bool {
	for _, g := range s.Groups {
		if g == name {
			return true
		}
	}
	return false
}
