// Package fixture loads YAML stack/promotion documents into domain
// types, per the fixture schema: a `stack` (root + nodes) and a
// `promotions` catalogue, plus an `items` catalogue the CLI draws
// baskets from. It is pure plumbing around the engine — the engine
// never imports it.
package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the top-level shape of a fixture file.
type Document struct {
	Stack      StackDTO                `yaml:"stack" validate:"required"`
	Promotions map[string]PromotionDTO `yaml:"promotions" validate:"required,dive"`
	Items      []ItemDTO               `yaml:"items" validate:"dive"`
}

// StackDTO is the `stack:` section: a root layer key and the node map.
type StackDTO struct {
	Root  string              `yaml:"root" validate:"required"`
	Nodes map[string]LayerDTO `yaml:"nodes" validate:"required,dive"`
}

// LayerDTO is one entry of `stack.nodes`.
type LayerDTO struct {
	Promotions []string  `yaml:"promotions"`
	Output     OutputDTO `yaml:"output"`
}

// OutputDTO decodes the polymorphic `output` field: the bare scalar
// "pass-through" (a terminal layer with no successor), a
// `{ pass_through: <layer-key> }` mapping (a non-terminal pass-through,
// naming its successor explicitly — the schema's bare scalar form is
// ambiguous about a successor, so this mapping form is how a fixture
// names one; see DESIGN.md), or a `{ split: { participating,
// non_participating } }` mapping.
type OutputDTO struct {
	Kind             string // "pass_through" or "split"
	Successor        string
	Participating    string
	NonParticipating string
}

func (o *OutputDTO) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s != "pass-through" {
			return fmt.Errorf("output: unrecognised scalar %q, want \"pass-through\"", s)
		}
		o.Kind = "pass_through"
		return nil
	}

	var mapping struct {
		PassThrough *string `yaml:"pass_through"`
		Split       *struct {
			Participating    string `yaml:"participating"`
			NonParticipating string `yaml:"non_participating"`
		} `yaml:"split"`
	}
	if err := value.Decode(&mapping); err != nil {
		return err
	}
	switch {
	case mapping.Split != nil:
		o.Kind = "split"
		o.Participating = mapping.Split.Participating
		o.NonParticipating = mapping.Split.NonParticipating
	case mapping.PassThrough != nil:
		o.Kind = "pass_through"
		o.Successor = *mapping.PassThrough
	default:
		return fmt.Errorf(`output must be "pass-through" or a mapping with "pass_through" or "split"`)
	}
	return nil
}

// QualificationDTO decodes a qualification tree: an op (default "and")
// combining rules, each rule one of has_all/has_any/has_none/group.
type QualificationDTO struct {
	Op    string    `yaml:"op" validate:"omitempty,oneof=and or"`
	Rules []RuleDTO `yaml:"rules" validate:"dive"`
}

// RuleDTO is one leaf of a QualificationDTO, or a nested Group.
type RuleDTO struct {
	HasAll  []string          `yaml:"has_all"`
	HasAny  []string          `yaml:"has_any"`
	HasNone []string          `yaml:"has_none"`
	Group   *QualificationDTO `yaml:"group"`
}

// DiscountDTO decodes both SimpleDiscount and BundleDiscount shapes;
// which fields are meaningful depends on the promotion kind consuming
// it (see convert.go).
type DiscountDTO struct {
	Kind       string  `yaml:"kind" validate:"required,oneof=percentage_off amount_override amount_off percent_each_item amount_off_each_item percent_off_total amount_off_total fixed_total"`
	Percentage *string `yaml:"percentage"`
	Amount     *string `yaml:"amount"`
}

// BudgetDTO decodes the `budget:` section on a promotion.
type BudgetDTO struct {
	Applications *uint32 `yaml:"applications"`
	Monetary     *string `yaml:"monetary"`
}

// SlotDTO decodes one MixAndMatch slot.
type SlotDTO struct {
	Key           string            `yaml:"key" validate:"required"`
	Tags          []string          `yaml:"tags"`
	Qualification *QualificationDTO `yaml:"qualification"`
	Min           uint32            `yaml:"min"`
	Max           uint32            `yaml:"max" validate:"required"`
}

// ThresholdDTO decodes a tier's lower_threshold/upper_threshold.
type ThresholdDTO struct {
	Monetary  *string `yaml:"monetary"`
	ItemCount *uint32 `yaml:"item_count"`
}

// TierDTO decodes one TieredThreshold tier.
type TierDTO struct {
	LowerThreshold            ThresholdDTO      `yaml:"lower_threshold" validate:"required"`
	UpperThreshold            *ThresholdDTO     `yaml:"upper_threshold"`
	ContributionTags          []string          `yaml:"contribution_tags"`
	ContributionQualification *QualificationDTO `yaml:"contribution_qualification"`
	DiscountTags              []string          `yaml:"discount_tags"`
	DiscountQualification     *QualificationDTO `yaml:"discount_qualification"`
	Discount                  DiscountDTO       `yaml:"discount" validate:"required"`
}

// PromotionDTO decodes one entry of the `promotions:` catalogue. Which
// fields apply depends on Type.
type PromotionDTO struct {
	Type          string            `yaml:"type" validate:"required,oneof=direct positional mix_and_match tiered_threshold"`
	Name          string            `yaml:"name"`
	Tags          []string          `yaml:"tags"`
	Qualification *QualificationDTO `yaml:"qualification"`
	Discount      *DiscountDTO      `yaml:"discount"`
	Budget        *BudgetDTO        `yaml:"budget"`

	// positional
	Size      *uint32  `yaml:"size"`
	Positions []uint32 `yaml:"positions"`

	// mix_and_match
	Slots []SlotDTO `yaml:"slots"`

	// tiered_threshold
	Tiers []TierDTO `yaml:"tiers"`
}

// ItemDTO decodes one entry of the `items:` catalogue.
type ItemDTO struct {
	Key   string   `yaml:"key" validate:"required"`
	Name  string   `yaml:"name" validate:"required"`
	Price string   `yaml:"price" validate:"required"`
	Tags  []string `yaml:"tags"`
}
