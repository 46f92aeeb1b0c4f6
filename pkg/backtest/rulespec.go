package backtest

// Frequency is a rule's dispatch period, named exactly per spec.md §3.
// Lives here (rather than in pkg/rule, which depends on pkg/fundctx,
// which depends on this package for Options/FundDefinition) so
// FundDefinition.Rules and SearchSpec can reference it without a cycle.
// pkg/rule re-exports it as rule.Frequency via a type alias.
type Frequency string

const (
	Once         Frequency = "once"
	Daily        Frequency = "daily"
	Weekly       Frequency = "weekly"
	Biweekly     Frequency = "biweekly"
	Monthly      Frequency = "monthly"
	Quarterly    Frequency = "quarterly"
	Semiannually Frequency = "semiannually"
	Annually     Frequency = "annually"
)

// frequencyDays maps each Frequency to its fixed day count, exactly as
// spec.md §3 enumerates: {0, 1, 7, 14, 31, 92, 183, 366}.
var frequencyDays = map[Frequency]int{
	Once:         0,
	Daily:        1,
	Weekly:       7,
	Biweekly:     14,
	Monthly:      31,
	Quarterly:    92,
	Semiannually: 183,
	Annually:     366,
}

// Days returns the fixed day count for f, or -1 if f is not a
// recognized frequency.
func (f Frequency) Days() int {
	d, ok := frequencyDays[f]
	if !ok {
		return -1
	}
	return d
}

// Valid reports whether f is one of the eight recognized frequencies.
func (f Frequency) Valid() bool {
	_, ok := frequencyDays[f]
	return ok
}

// RuleSpec is one entry of a FundDefinition's rule list: a rule name,
// its dispatch frequency, and a dynamically-typed options bag (spec.md
// §3's RuleSpec: "{ name, frequency, options: map<string, json-scalar>
// }"). pkg/rule re-exports it as rule.Spec via a type alias.
type RuleSpec struct {
	Name      string
	Frequency Frequency
	Options   map[string]any
}
