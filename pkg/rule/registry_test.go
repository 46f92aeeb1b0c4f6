package rule

import (
	"context"
	"testing"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fundctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopRule struct{ spec Spec }

func (r *noopRule) Exec(ctx context.Context, fc *fundctx.Context, date time.Time, bus *event.Bus) error {
	return nil
}
func (r *noopRule) Definition() *Spec { return &r.spec }

func TestBuildUnknownRuleErrors(t *testing.T) {
	_, err := Build(Spec{Name: "does-not-exist"})
	assert.Error(t, err)
}

func TestRegisterThenBuildConstructsRule(t *testing.T) {
	Register("registry-test-rule", func(spec Spec) (Rule, error) {
		return &noopRule{spec: spec}, nil
	})

	r, err := Build(Spec{Name: "registry-test-rule", Frequency: Once})
	require.NoError(t, err)
	assert.Equal(t, "registry-test-rule", r.Definition().Name)
}

func TestNamesIncludesRegistered(t *testing.T) {
	Register("registry-test-names", func(spec Spec) (Rule, error) {
		return &noopRule{spec: spec}, nil
	})
	assert.Contains(t, Names(), "registry-test-names")
}

func TestOptionReturnsDefaultWhenMissing(t *testing.T) {
	spec := &Spec{Options: map[string]any{}}
	assert.Equal(t, 5, Option(spec, "n", 5))
}

func TestOptionCoercesFloatLiteralToInt(t *testing.T) {
	spec := &Spec{Options: map[string]any{"n": float64(20)}}
	assert.Equal(t, 20, Option(spec, "n", 5))
}

func TestOptionReturnsTypedValueDirectly(t *testing.T) {
	spec := &Spec{Options: map[string]any{"label": "fast"}}
	assert.Equal(t, "fast", Option(spec, "label", "slow"))
}
