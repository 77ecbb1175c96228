package domain

import "strings"

// Element is the classical element a sign belongs to.
type Element string

const (
	Fire  Element = "Fire"
	Earth Element = "Earth"
	Air   Element = "Air"
	Water Element = "Water"
)

// ZodiacProfile is static astrological metadata for one sign.
type ZodiacProfile struct {
	Sign      string
	Element   Element
	Traits    string
	DateRange string
}

// DisplayName returns the sign with its first letter upper-cased.
func (p ZodiacProfile) DisplayName() string {
	if p.Sign == "" {
		return ""
	}

	return strings.ToUpper(p.Sign[:1]) + p.Sign[1:]
}

// zodiacOrder is calendar order starting at the spring equinox.
var zodiacOrder = []string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

var zodiacTable = map[string]ZodiacProfile{
	"aries":       {Sign: "aries", Element: Fire, Traits: "bold, pioneering, passionate, direct", DateRange: "Mar 21 - Apr 19"},
	"taurus":      {Sign: "taurus", Element: Earth, Traits: "grounded, patient, sensual, determined", DateRange: "Apr 20 - May 20"},
	"gemini":      {Sign: "gemini", Element: Air, Traits: "curious, adaptable, communicative, versatile", DateRange: "May 21 - Jun 20"},
	"cancer":      {Sign: "cancer", Element: Water, Traits: "nurturing, intuitive, emotional, protective", DateRange: "Jun 21 - Jul 22"},
	"leo":         {Sign: "leo", Element: Fire, Traits: "confident, creative, generous, charismatic", DateRange: "Jul 23 - Aug 22"},
	"virgo":       {Sign: "virgo", Element: Earth, Traits: "analytical, practical, detail-oriented, helpful", DateRange: "Aug 23 - Sep 22"},
	"libra":       {Sign: "libra", Element: Air, Traits: "diplomatic, harmonious, social, balanced", DateRange: "Sep 23 - Oct 22"},
	"scorpio":     {Sign: "scorpio", Element: Water, Traits: "intense, transformative, passionate, perceptive", DateRange: "Oct 23 - Nov 21"},
	"sagittarius": {Sign: "sagittarius", Element: Fire, Traits: "adventurous, philosophical, optimistic, free-spirited", DateRange: "Nov 22 - Dec 21"},
	"capricorn":   {Sign: "capricorn", Element: Earth, Traits: "ambitious, disciplined, responsible, pragmatic", DateRange: "Dec 22 - Jan 19"},
	"aquarius":    {Sign: "aquarius", Element: Air, Traits: "innovative, independent, humanitarian, unconventional", DateRange: "Jan 20 - Feb 18"},
	"pisces":      {Sign: "pisces", Element: Water, Traits: "empathetic, imaginative, spiritual, compassionate", DateRange: "Feb 19 - Mar 20"},
}

// LookupZodiac finds a profile by sign name, ignoring case.
// The second return value is false for empty or unknown signs.
func LookupZodiac(sign string) (ZodiacProfile, bool) {
	p, ok := zodiacTable[strings.ToLower(sign)]
	return p, ok
}

// ZodiacProfiles returns all twelve profiles in calendar order.
func ZodiacProfiles() []ZodiacProfile {
	out := make([]ZodiacProfile, 0, len(zodiacOrder))
	for _, sign := range zodiacOrder {
		out = append(out, zodiacTable[sign])
	}

	return out
}
