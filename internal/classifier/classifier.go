package classifier

import "context"

// Variant selects the question the classifier asks about a message.
type Variant int

const (
	VariantAbsence Variant = iota
	VariantSmoking
)

func (v Variant) String() string {
	switch v {
	case VariantAbsence:
		return "absence"
	case VariantSmoking:
		return "smoking"
	default:
		return "unknown"
	}
}

// Classifier reduces a message to a yes/no verdict. Implementations must
// fail closed: any error yields false, so a broken classifier can never
// trigger a moderation action.
type Classifier interface {
	Classify(ctx context.Context, text string, variant Variant) bool
}
