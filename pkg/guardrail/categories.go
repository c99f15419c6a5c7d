package guardrail

import "strings"

// ModerationCategories are the canonical moderation categories in the order
// the moderation API reports them.
var ModerationCategories = []string{
	"Toxic",
	"Insult",
	"Profanity",
	"Derogatory",
	"Sexual",
	"Death, Harm & Tragedy",
	"Violent",
	"Firearms & Weapons",
	"Public Safety",
	"Health",
	"Religion & Belief",
	"Illicit Drugs",
	"War & Conflict",
	"Politics",
	"Finance",
	"Legal",
}

// moderationAliases maps normalized surface tokens to canonical categories.
// Canonical names and their identifier forms are added in init.
var moderationAliases = map[string]string{
	"death":              "Death, Harm & Tragedy",
	"harm":               "Death, Harm & Tragedy",
	"tragedy":            "Death, Harm & Tragedy",
	"death_harm_tragedy": "Death, Harm & Tragedy",
	"firearms":           "Firearms & Weapons",
	"weapons":            "Firearms & Weapons",
	"firearms_weapons":   "Firearms & Weapons",
	"public":             "Public Safety",
	"safety":             "Public Safety",
	"public_safety":      "Public Safety",
	"religion":           "Religion & Belief",
	"belief":             "Religion & Belief",
	"religion_belief":    "Religion & Belief",
	"drugs":              "Illicit Drugs",
	"illicit":            "Illicit Drugs",
	"illicit_drugs":      "Illicit Drugs",
	"war":                "War & Conflict",
	"conflict":           "War & Conflict",
	"war_conflict":       "War & Conflict",
}

func init() {
	for _, c := range ModerationCategories {
		moderationAliases[strings.ToLower(c)] = c
		moderationAliases[identifierForm(c)] = c
	}
}

// identifierForm turns "Death, Harm & Tragedy" into "death_harm_tragedy".
func identifierForm(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "_")
}

// ResolveModerationCategory maps a user-supplied category name to its
// canonical form. Resolution is case-insensitive and uses exact lookup only.
func ResolveModerationCategory(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if c, ok := moderationAliases[n]; ok {
		return c, true
	}
	c, ok := moderationAliases[strings.NewReplacer(" ", "_", "-", "_").Replace(n)]
	return c, ok
}

// APIEntityTypes are the entity types reported by the NLP entity API.
var APIEntityTypes = []string{
	"UNKNOWN", "PERSON", "LOCATION", "ORGANIZATION", "EVENT", "WORK_OF_ART",
	"CONSUMER_GOOD", "OTHER", "PHONE_NUMBER", "ADDRESS", "EMAIL", "URL",
	"DATE", "NUMBER", "PRICE", "IBAN", "FLIGHT_NUMBER", "ID_NUMBER",
}

// RegexOnlyEntityTypes are detected by pattern matching alone.
var RegexOnlyEntityTypes = []string{"SSN", "CREDIT_CARD"}

// NormalizeEntityType upper-cases a type name and maps spaces and dashes to
// underscores.
func NormalizeEntityType(s string) string {
	return strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToUpper(strings.TrimSpace(s)))
}

// IsAPIEntityType reports whether a normalized type is reported by the API.
func IsAPIEntityType(t string) bool {
	return contains(APIEntityTypes, t)
}

// IsRegexOnlyEntityType reports whether a normalized type is regex-only.
func IsRegexOnlyEntityType(t string) bool {
	return contains(RegexOnlyEntityTypes, t)
}

// IsKnownEntityType reports whether a normalized type can be blocked at all.
func IsKnownEntityType(t string) bool {
	return IsAPIEntityType(t) || IsRegexOnlyEntityType(t)
}

// Model Armor filter names.
const (
	FilterRAI            = "rai"
	FilterSDP            = "sdp"
	FilterPIAndJailbreak = "pi_and_jailbreak"
	FilterMaliciousURIs  = "malicious_uris"
	FilterCSAM           = "csam"
)

// ModelArmorFilters lists every filter of the AI-safety filter set.
var ModelArmorFilters = []string{FilterRAI, FilterSDP, FilterPIAndJailbreak, FilterMaliciousURIs, FilterCSAM}

// IsModelArmorFilter reports whether name is a known filter.
func IsModelArmorFilter(name string) bool {
	return contains(ModelArmorFilters, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
