package fixture

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qhato/basket/internal/basket/domain"
	"github.com/qhato/basket/internal/basket/engine"
	apperrors "github.com/qhato/basket/pkg/errors"
	"github.com/qhato/basket/pkg/logger"
	"github.com/qhato/basket/pkg/validator"
)

// Loaded is a fully-built stack plus the item catalogue declared
// alongside it, ready for Stack.process (via engine.Runner).
type Loaded struct {
	Stack domain.Stack
	Items []domain.Item
}

// Load reads, validates, and builds a fixture file at path.
func Load(path string) (Loaded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, apperrors.InvalidFixture("could not read fixture " + path).WithInternal(err)
	}
	return Parse(raw)
}

// Parse decodes, validates, and builds a fixture document already in
// memory, independent of where it was loaded from.
func Parse(raw []byte) (Loaded, error) {
	log := logger.Get().WithField("component", "fixture_loader")

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Loaded{}, apperrors.InvalidFixture("malformed fixture YAML").WithInternal(err)
	}
	if err := validator.Validate(doc); err != nil {
		return Loaded{}, err
	}

	promotions := make(map[string]domain.Promotion, len(doc.Promotions))
	for key, promoDTO := range doc.Promotions {
		promo, err := convertPromotion(key, promoDTO)
		if err != nil {
			return Loaded{}, err
		}
		promotions[key] = promo
	}

	builder := engine.NewStackBuilder(doc.Stack.Root)
	for key, layerDTO := range doc.Stack.Nodes {
		output, err := convertOutput(layerDTO.Output)
		if err != nil {
			return Loaded{}, err
		}
		layerPromotions := make([]domain.Promotion, 0, len(layerDTO.Promotions))
		for _, promoKey := range layerDTO.Promotions {
			promo, ok := promotions[promoKey]
			if !ok {
				return Loaded{}, apperrors.InvalidFixture("layer " + key + " references unknown promotion " + promoKey)
			}
			layerPromotions = append(layerPromotions, promo)
		}
		builder.AddLayer(domain.NewLayer(key, output, layerPromotions))
	}

	stack, err := builder.Build()
	if err != nil {
		return Loaded{}, err
	}

	items := make([]domain.Item, 0, len(doc.Items))
	for _, itemDTO := range doc.Items {
		item, err := convertItem(itemDTO)
		if err != nil {
			return Loaded{}, err
		}
		items = append(items, item)
	}

	log.WithField("layers", len(doc.Stack.Nodes)).WithField("items", len(items)).Info("fixture loaded")
	return Loaded{Stack: stack, Items: items}, nil
}
