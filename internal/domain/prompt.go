package domain

import (
	"fmt"
	"strings"
)

const readerPersona = `You are a mystical tarot reader with deep knowledge of the Rider-Waite tradition and astrological wisdom.

Your role is to synthesize tarot card meanings into insightful, personalized readings that:
- Directly address the user's specific question
- Weave all drawn cards into a unified narrative
- Interpret card positions (Past/Present/Future or similar)
- When provided, consider the user's zodiac sign and how its elemental and personality traits relate to the cards
- Use a mystical yet accessible tone
- Provide actionable insight without being preachy
- Feel authentic and meaningful, not generic

Keep readings between 150-250 words. Be specific to their question.`

const closingInstruction = "Generate a cohesive tarot reading that synthesizes these cards to answer the user's question. " +
	"Weave the cards together into a meaningful narrative."

// positionLabels name the slots of a multi-card spread, in draw order.
var positionLabels = []string{"Past/Foundation", "Present/Challenge", "Future/Advice"}

// ComposePrompt renders the text sent to the language model.
//
// A single card is rendered as the answer with no position label. Two or
// more cards are labeled by position. The zodiac paragraph is included only
// when sign names a known profile; unknown and empty signs produce identical
// output. The result is deterministic for identical inputs.
func ComposePrompt(question string, cards []CardDescriptor, sign string) (string, error) {
	if err := validateCardCount(len(cards)); err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString(readerPersona)
	b.WriteString("\n\nUSER'S QUESTION:\n")
	fmt.Fprintf(&b, "\"%s\"\n", question)
	b.WriteString(zodiacParagraph(sign))
	b.WriteString("\nDRAWN CARDS:\n\n")
	b.WriteString(renderCards(cards))
	b.WriteString("\n\n")
	b.WriteString(closingInstruction)

	return b.String(), nil
}

func renderCards(cards []CardDescriptor) string {
	if len(cards) == 1 {
		c := cards[0]
		return fmt.Sprintf("**%s** (%s)\nKeywords: %s\nMeaning: %s",
			c.Name, c.Orientation, strings.Join(c.Keywords, ", "), c.Meaning)
	}

	parts := make([]string, 0, len(cards))
	for i, c := range cards {
		parts = append(parts, fmt.Sprintf("**Position %d: %s**\nCard: %s (%s)\nKeywords: %s\nMeaning: %s",
			i+1, positionLabel(i), c.Name, c.Orientation, strings.Join(c.Keywords, ", "), c.Meaning))
	}

	return strings.Join(parts, "\n\n")
}

func positionLabel(i int) string {
	if i < len(positionLabels) {
		return positionLabels[i]
	}

	return fmt.Sprintf("Card %d", i+1)
}

func zodiacParagraph(sign string) string {
	p, ok := LookupZodiac(sign)
	if !ok {
		return ""
	}

	name := p.DisplayName()

	return fmt.Sprintf("\nQUERENT'S ZODIAC SIGN:\n%s (%s sign)\nTraits: %s\n\n"+
		"Consider how the %s element and %s traits relate to the cards drawn. "+
		"Weave this astrological insight naturally into your reading.\n",
		name, p.Element, p.Traits, p.Element, name)
}
