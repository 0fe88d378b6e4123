package fixture

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qhato/basket/internal/basket/domain"
	apperrors "github.com/qhato/basket/pkg/errors"
)

// parseMoney parses a `"<decimal> <ISO-code>"` money literal into
// integer minor units, e.g. "2.99 GBP" -> Money{299, "GBP"}.
func parseMoney(literal string) (domain.Money, error) {
	parts := strings.Fields(literal)
	if len(parts) != 2 {
		return domain.Money{}, apperrors.InvalidFixture("money literal must be \"<decimal> <ISO-code>\", got " + literal)
	}
	amount, err := decimal.NewFromString(parts[0])
	if err != nil {
		return domain.Money{}, apperrors.InvalidFixture("money literal has invalid amount: " + literal)
	}
	minorUnits := amount.Mul(decimal.NewFromInt(100)).RoundBank(0).IntPart()
	return domain.NewMoney(minorUnits, parts[1])
}

func convertQualification(dto *QualificationDTO, tags []string) (domain.Qualification, error) {
	if dto == nil {
		if len(tags) > 0 {
			return domain.MatchAny(tags...), nil
		}
		return domain.MatchAll(), nil
	}

	rules := make([]domain.Rule, 0, len(dto.Rules))
	for _, r := range dto.Rules {
		rule, err := convertRule(r)
		if err != nil {
			return domain.Qualification{}, err
		}
		rules = append(rules, rule)
	}

	switch dto.Op {
	case "", "and":
		return domain.And(rules...), nil
	case "or":
		return domain.Or(rules...), nil
	default:
		return domain.Qualification{}, apperrors.InvalidFixture("qualification op must be \"and\" or \"or\", got " + dto.Op)
	}
}

func convertRule(dto RuleDTO) (domain.Rule, error) {
	set := 0
	if len(dto.HasAll) > 0 {
		set++
	}
	if len(dto.HasAny) > 0 {
		set++
	}
	if len(dto.HasNone) > 0 {
		set++
	}
	if dto.Group != nil {
		set++
	}
	if set != 1 {
		return domain.Rule{}, apperrors.InvalidFixture("rule must set exactly one of has_all/has_any/has_none/group")
	}

	switch {
	case len(dto.HasAll) > 0:
		return domain.HasAll(dto.HasAll...), nil
	case len(dto.HasAny) > 0:
		return domain.HasAny(dto.HasAny...), nil
	case len(dto.HasNone) > 0:
		return domain.HasNone(dto.HasNone...), nil
	default:
		nested, err := convertQualification(dto.Group, nil)
		if err != nil {
			return domain.Rule{}, err
		}
		return domain.GroupRule(nested), nil
	}
}

func convertPercentage(literal string) (domain.Percentage, error) {
	return domain.ParsePercentage(literal)
}

func convertSimpleDiscount(dto *DiscountDTO) (domain.SimpleDiscount, error) {
	if dto == nil {
		return domain.SimpleDiscount{}, apperrors.InvalidDiscount("discount is required")
	}
	switch dto.Kind {
	case "percentage_off":
		if dto.Percentage == nil {
			return domain.SimpleDiscount{}, apperrors.InvalidDiscount("percentage_off requires percentage")
		}
		p, err := convertPercentage(*dto.Percentage)
		if err != nil {
			return domain.SimpleDiscount{}, err
		}
		return domain.PercentageOff(p), nil
	case "amount_override":
		if dto.Amount == nil {
			return domain.SimpleDiscount{}, apperrors.InvalidDiscount("amount_override requires amount")
		}
		m, err := parseMoney(*dto.Amount)
		if err != nil {
			return domain.SimpleDiscount{}, err
		}
		return domain.AmountOverride(m), nil
	case "amount_off":
		if dto.Amount == nil {
			return domain.SimpleDiscount{}, apperrors.InvalidDiscount("amount_off requires amount")
		}
		m, err := parseMoney(*dto.Amount)
		if err != nil {
			return domain.SimpleDiscount{}, err
		}
		return domain.AmountOff(m), nil
	default:
		return domain.SimpleDiscount{}, apperrors.InvalidDiscount("unknown simple discount kind " + dto.Kind)
	}
}

func convertBundleDiscount(dto *DiscountDTO) (domain.BundleDiscount, error) {
	if dto == nil {
		return domain.BundleDiscount{}, apperrors.InvalidDiscount("discount is required")
	}
	switch dto.Kind {
	case "percent_each_item":
		p, err := requirePercentage(dto)
		if err != nil {
			return domain.BundleDiscount{}, err
		}
		return domain.PercentEachItem(p), nil
	case "amount_off_each_item":
		m, err := requireAmount(dto)
		if err != nil {
			return domain.BundleDiscount{}, err
		}
		return domain.AmountOffEachItem(m), nil
	case "percent_off_total":
		p, err := requirePercentage(dto)
		if err != nil {
			return domain.BundleDiscount{}, err
		}
		return domain.PercentOffTotal(p), nil
	case "amount_off_total":
		m, err := requireAmount(dto)
		if err != nil {
			return domain.BundleDiscount{}, err
		}
		return domain.AmountOffTotal(m), nil
	case "fixed_total":
		m, err := requireAmount(dto)
		if err != nil {
			return domain.BundleDiscount{}, err
		}
		return domain.FixedTotal(m), nil
	default:
		return domain.BundleDiscount{}, apperrors.InvalidDiscount("unknown bundle discount kind " + dto.Kind)
	}
}

func requirePercentage(dto *DiscountDTO) (domain.Percentage, error) {
	if dto.Percentage == nil {
		return domain.Percentage{}, apperrors.InvalidDiscount(dto.Kind + " requires percentage")
	}
	return convertPercentage(*dto.Percentage)
}

func requireAmount(dto *DiscountDTO) (domain.Money, error) {
	if dto.Amount == nil {
		return domain.Money{}, apperrors.InvalidDiscount(dto.Kind + " requires amount")
	}
	return parseMoney(*dto.Amount)
}

func convertBudget(dto *BudgetDTO) (domain.Budget, error) {
	if dto == nil {
		return domain.Unlimited(), nil
	}
	budget := domain.Budget{}
	if dto.Applications != nil {
		v := *dto.Applications
		budget.Applications = &v
	}
	if dto.Monetary != nil {
		m, err := parseMoney(*dto.Monetary)
		if err != nil {
			return domain.Budget{}, err
		}
		budget.Monetary = &m
	}
	return budget, nil
}

func convertThreshold(dto ThresholdDTO) (domain.Threshold, error) {
	var monetary *domain.Money
	if dto.Monetary != nil {
		m, err := parseMoney(*dto.Monetary)
		if err != nil {
			return domain.Threshold{}, err
		}
		monetary = &m
	}
	return domain.NewThreshold(monetary, dto.ItemCount)
}

func convertPromotion(key string, dto PromotionDTO) (domain.Promotion, error) {
	qualification, err := convertQualification(dto.Qualification, dto.Tags)
	if err != nil {
		return domain.Promotion{}, err
	}
	budget, err := convertBudget(dto.Budget)
	if err != nil {
		return domain.Promotion{}, err
	}

	switch dto.Type {
	case "direct":
		discount, err := convertSimpleDiscount(dto.Discount)
		if err != nil {
			return domain.Promotion{}, err
		}
		return domain.NewDirect(key, qualification, discount, budget), nil

	case "positional":
		if dto.Size == nil {
			return domain.Promotion{}, apperrors.InvalidFixture("positional promotion " + key + " requires size")
		}
		discount, err := convertSimpleDiscount(dto.Discount)
		if err != nil {
			return domain.Promotion{}, err
		}
		return domain.NewPositional(key, qualification, *dto.Size, dto.Positions, discount, budget)

	case "mix_and_match":
		slots := make([]domain.Slot, 0, len(dto.Slots))
		for _, s := range dto.Slots {
			slotQual, err := convertQualification(s.Qualification, s.Tags)
			if err != nil {
				return domain.Promotion{}, err
			}
			slot, err := domain.NewSlot(s.Key, slotQual, s.Min, s.Max)
			if err != nil {
				return domain.Promotion{}, err
			}
			slots = append(slots, slot)
		}
		discount, err := convertBundleDiscount(dto.Discount)
		if err != nil {
			return domain.Promotion{}, err
		}
		return domain.NewMixAndMatch(key, slots, discount, budget)

	case "tiered_threshold":
		tiers := make([]domain.Tier, 0, len(dto.Tiers))
		for _, t := range dto.Tiers {
			lower, err := convertThreshold(t.LowerThreshold)
			if err != nil {
				return domain.Promotion{}, err
			}
			var upper *domain.Threshold
			if t.UpperThreshold != nil {
				u, err := convertThreshold(*t.UpperThreshold)
				if err != nil {
					return domain.Promotion{}, err
				}
				upper = &u
			}
			contribQual, err := convertQualification(t.ContributionQualification, t.ContributionTags)
			if err != nil {
				return domain.Promotion{}, err
			}
			discountQual, err := convertQualification(t.DiscountQualification, t.DiscountTags)
			if err != nil {
				return domain.Promotion{}, err
			}
			tierDiscount, err := convertBundleDiscount(&t.Discount)
			if err != nil {
				return domain.Promotion{}, err
			}
			tiers = append(tiers, domain.Tier{
				LowerThreshold:            lower,
				UpperThreshold:            upper,
				ContributionQualification: contribQual,
				DiscountQualification:     discountQual,
				Discount:                  tierDiscount,
			})
		}
		return domain.NewTieredThreshold(key, tiers, budget)

	default:
		return domain.Promotion{}, apperrors.InvalidFixture("unknown promotion type " + dto.Type)
	}
}

func convertOutput(dto OutputDTO) (domain.Output, error) {
	switch dto.Kind {
	case "pass_through":
		return domain.PassThrough(dto.Successor), nil
	case "split":
		return domain.Split(dto.Participating, dto.NonParticipating), nil
	default:
		return domain.Output{}, apperrors.InvalidFixture("unknown output kind " + dto.Kind)
	}
}

func convertItem(dto ItemDTO) (domain.Item, error) {
	price, err := parseMoney(dto.Price)
	if err != nil {
		return domain.Item{}, err
	}
	return domain.NewItem(dto.Key, dto.Name, price, dto.Tags...), nil
}
