package models

// GroupView is one rendered group with its members in display order.
type GroupView struct {
	Name      string         `json:"name"`
	Deletable bool           `json:"deletable"`
	Members   []Subscription `json:"members"`
}

// ViewModel is the grouped projection handed to the renderer.
// Options lists every known group in display order for the group selector.
type ViewModel struct {
	Groups  []GroupView `json:"groups"`
	Options []string    `json:"options"`
}

// Group returns the named group, if it has members.
func (vm ViewModel) Group(name string) (GroupView, bool) {
	for _, g := range vm.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return GroupView{}, false
}
