package board

// Priority is the derived severity of a card.
type Priority string

const (
	High   Priority = "High"
	Medium Priority = "Medium"
	Low    Priority = "Low"
	Other  Priority = "Other"
)

// PriorityFieldName is the custom field whose options carry the priority.
const PriorityFieldName = "Priority"

// Priorities lists every priority in display order.
var Priorities = []Priority{High, Medium, Low, Other}

// ParsePriority maps option text onto the fixed priority set.
func ParsePriority(text string) (Priority, bool) {
	switch Priority(text) {
	case High, Medium, Low, Other:
		return Priority(text), true
	}
	return Other, false
}

// Heading is the label used for sub-headings, e.g. "High priority:" or "Other:".
func (p Priority) Heading() string {
	if p == Other {
		return "Other:"
	}
	return string(p) + " priority:"
}

// Resolution says which hop of the field -> value -> option chain decided
// the priority.
type Resolution int

const (
	Found        Resolution = iota
	Undefined                // board has no Priority field
	Unset                    // card has no value for the field
	Stale                    // value references an option that no longer exists
	Unrecognized             // option text is outside the priority set
)

func (r Resolution) String() string {
	switch r {
	case Found:
		return "found"
	case Undefined:
		return "undefined"
	case Unset:
		return "unset"
	case Stale:
		return "stale"
	case Unrecognized:
		return "unrecognized"
	}
	return "unknown"
}

type PriorityResult struct {
	Label      Priority
	Resolution Resolution
}

// Resolver derives card priorities against one board's field definitions.
type Resolver struct {
	field *FieldDefinition
}

func NewResolver(fields []FieldDefinition) *Resolver {
	r := &Resolver{}
	for i := range fields {
		if fields[i].Name == PriorityFieldName {
			r.field = &fields[i]
			break
		}
	}
	return r
}

// Resolve always yields exactly one priority; every failed hop falls back
// to Other.
func (r *Resolver) Resolve(card Card) PriorityResult {
	if r.field == nil {
		return PriorityResult{Label: Other, Resolution: Undefined}
	}

	value, ok := r.value(card)
	if !ok {
		return PriorityResult{Label: Other, Resolution: Unset}
	}

	option, ok := r.option(value.OptionID)
	if !ok {
		return PriorityResult{Label: Other, Resolution: Stale}
	}

	label, ok := ParsePriority(option.Text)
	if !ok {
		return PriorityResult{Label: Other, Resolution: Unrecognized}
	}
	return PriorityResult{Label: label, Resolution: Found}
}

func (r *Resolver) value(card Card) (FieldValue, bool) {
	for _, v := range card.FieldValues {
		if v.FieldID == r.field.ID {
			return v, true
		}
	}
	return FieldValue{}, false
}

func (r *Resolver) option(id string) (Option, bool) {
	for _, o := range r.field.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// ResolvePriority is a convenience wrapper for one-off lookups.
func ResolvePriority(card Card, fields []FieldDefinition) Priority {
	return NewResolver(fields).Resolve(card).Label
}
