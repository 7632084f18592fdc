package form

import "github.com/nebari-dev/attributes/internal/i18n"

// Form is a rendered form.
type Form struct {
	ID       string      `json:"id"`
	Title    i18n.Markup `json:"title,omitempty"`
	Elements []*Element  `json:"elements"`
	Actions  []*Element  `json:"actions"`
}

// New returns an empty form.
func New(id string) *Form {
	return &Form{ID: id, Elements: []*Element{}, Actions: []*Element{}}
}

// Add appends a top-level element.
func (f *Form) Add(e *Element) *Element {
	f.Elements = append(f.Elements, e)
	return e
}

// Element finds an element by key at any depth.
func (f *Form) Element(key string) *Element {
	return find(f.Elements, key)
}

// Remove drops a top-level element.
func (f *Form) Remove(key string) {
	for i, e := range f.Elements {
		if e.Key == key {
			f.Elements = append(f.Elements[:i], f.Elements[i+1:]...)
			return
		}
	}
}

// Move detaches the top-level element key and appends it to parent's
// children. It returns false when either is missing.
func (f *Form) Move(key, parent string) bool {
	p := f.Element(parent)
	var moved *Element
	for i, e := range f.Elements {
		if e.Key == key {
			moved = e
			f.Elements = append(f.Elements[:i], f.Elements[i+1:]...)
			break
		}
	}
	if p == nil || moved == nil {
		if moved != nil {
			f.Elements = append(f.Elements, moved)
		}
		return false
	}
	p.AddChild(moved)
	return true
}

// AddAction appends a button or link to the actions.
func (f *Form) AddAction(e *Element) *Element {
	f.Actions = append(f.Actions, e)
	return e
}

// Action returns the action with key, or nil.
func (f *Form) Action(key string) *Element {
	return find(f.Actions, key)
}

// Sort orders elements and actions by weight.
func (f *Form) Sort() {
	sortByWeight(f.Elements)
	sortByWeight(f.Actions)
}
