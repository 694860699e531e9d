package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallnest/ontollm/ontology"
)

var priceKeywords = []string{"가격", "얼마", "원", "price", "cost", "krw"}

// IsPriceQuestion reports whether the question asks about a price.
func IsPriceQuestion(question string) bool {
	q := strings.ToLower(question)
	for _, k := range priceKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// PriceHint looks up the first priced instance matching the question and
// renders it as a one-line Korean statement with its source. It returns
// "" when no priced instance matches.
func PriceHint(ctx context.Context, store ontology.Store, question string) (string, error) {
	pf, err := store.PriceFact(ctx, ontology.PricePredicate(ExtractTerms(question)))
	if err != nil {
		return "", err
	}
	if pf == nil || !pf.Price.Valid {
		return "", nil
	}
	name := pf.Label
	if name == "" {
		name = pf.InstanceID
	}
	return fmt.Sprintf("%s의 가격은 %s원입니다. (source: price_krw=%s)", name, pf.Price.String, pf.Price.String), nil
}
