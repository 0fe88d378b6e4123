package domain

// TagSet is a deduplicated set of tags, the unit Qualification rules
// evaluate against.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from a slice, deduplicating as it goes.
func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether tag is a member.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// ruleKind identifies a Qualification leaf's predicate.
type ruleKind int

const (
	ruleHasAll ruleKind = iota
	ruleHasAny
	ruleHasNone
	ruleGroup
)

// Rule is one leaf (or nested Group) of a Qualification tree.
type Rule struct {
	kind  ruleKind
	tags  TagSet
	group Qualification
}

// HasAll builds a rule matching when item_tags ⊇ tags.
func HasAll(tags ...string) Rule {
	return Rule{kind: ruleHasAll, tags: NewTagSet(tags...)}
}

// HasAny builds a rule matching when item_tags ∩ tags ≠ ∅. An empty tag
// set is vacuously true.
func HasAny(tags ...string) Rule {
	return Rule{kind: ruleHasAny, tags: NewTagSet(tags...)}
}

// HasNone builds a rule matching when item_tags ∩ tags = ∅.
func HasNone(tags ...string) Rule {
	return Rule{kind: ruleHasNone, tags: NewTagSet(tags...)}
}

// GroupRule nests a whole Qualification as a single rule, so And/Or trees
// can be arbitrarily deep.
func GroupRule(q Qualification) Rule {
	return Rule{kind: ruleGroup, group: q}
}

func (r Rule) matches(itemTags TagSet) bool {
	switch r.kind {
	case ruleHasAll:
		for t := range r.tags {
			if !itemTags.Has(t) {
				return false
			}
		}
		return true
	case ruleHasAny:
		if len(r.tags) == 0 {
			return true
		}
		for t := range r.tags {
			if itemTags.Has(t) {
				return true
			}
		}
		return false
	case ruleHasNone:
		for t := range r.tags {
			if itemTags.Has(t) {
				return false
			}
		}
		return true
	case ruleGroup:
		return r.group.Matches(itemTags)
	default:
		return false
	}
}

// qualOp is the boolean combinator joining a Qualification's rules.
type qualOp int

const (
	opAnd qualOp = iota
	opOr
)

// Qualification is a boolean predicate tree over an item's tag set.
// Evaluation is bottom-up and short-circuiting: And stops at the first
// failing rule, Or at the first succeeding one. It performs no
// allocation and is purely functional.
type Qualification struct {
	op    qualOp
	rules []Rule
}

// MatchAll returns the zero-rule And — universally true.
func MatchAll() Qualification {
	return Qualification{op: opAnd}
}

// MatchAny is sugar for the single-rule HasAny Qualification: true when
// the item carries any of tags (or when tags is empty).
func MatchAny(tags ...string) Qualification {
	return Or(HasAny(tags...))
}

// And combines rules with AND semantics. An empty rule list is true.
func And(rules ...Rule) Qualification {
	return Qualification{op: opAnd, rules: rules}
}

// Or combines rules with OR semantics. An empty rule list is false.
func Or(rules ...Rule) Qualification {
	return Qualification{op: opOr, rules: rules}
}

// Matches evaluates the tree against an item's tags.
func (q Qualification) Matches(itemTags TagSet) bool {
	switch q.op {
	case opAnd:
		for _, r := range q.rules {
			if !r.matches(itemTags) {
				return false
			}
		}
		return true
	case opOr:
		for _, r := range q.rules {
			if r.matches(itemTags) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
