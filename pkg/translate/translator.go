package translate

import "context"

// Translator turns a confirmed English window into Korean. Stateless;
// each call is independent.
type Translator interface {
	Translate(ctx context.Context, english string) (string, error)
}

const systemPrompt = "You are a professional EN-KO translator for academic/technical speech. " +
	"Translate concisely and naturally into polite Korean."
