package silencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasedctl/hostdriver/internal/sampling"
)

type fakeActive struct {
	intensity sampling.Config
	haveI     bool
	phase     sampling.Config
	haveP     bool
}

func (f fakeActive) SamplingConfigIntensity() (sampling.Config, bool) { return f.intensity, f.haveI }
func (f fakeActive) SamplingConfigPhase() (sampling.Config, bool)     { return f.phase, f.haveP }

func Test_Validate_StrictInterlock(t *testing.T) {
	div10, err := sampling.FromDivision(10)
	require.NoError(t, err)
	active := fakeActive{intensity: div10, haveI: true}

	t.Run("exceeding the active period is rejected", func(t *testing.T) {
		cfg := Config{Mode: FixedCompletionSteps, Intensity: 11, Strict: true}
		assert.Error(t, cfg.Validate(active))
	})

	t.Run("at the active period is accepted", func(t *testing.T) {
		cfg := Config{Mode: FixedCompletionSteps, Intensity: 10, Strict: true}
		assert.NoError(t, cfg.Validate(active))
	})

	t.Run("non-strict always passes", func(t *testing.T) {
		cfg := Config{Mode: FixedCompletionSteps, Intensity: 11, Strict: false}
		assert.NoError(t, cfg.Validate(active))
	})

	t.Run("fixed update rate never checks", func(t *testing.T) {
		cfg := Config{Mode: FixedUpdateRate, Intensity: 65535}
		assert.NoError(t, cfg.Validate(active))
	})
}

func Test_Disable_IsAlwaysPermissive(t *testing.T) {
	div10, err := sampling.FromDivision(10)
	require.NoError(t, err)
	active := fakeActive{intensity: div10, haveI: true, phase: div10, haveP: true}

	cfg := Disable(65535)
	assert.NoError(t, cfg.Validate(active))
}
