package noisesuppression

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenSuppressor struct {
	*Dummy
}

func (s brokenSuppressor) SuppressFrame(_ context.Context, input []float32, outputVoice []float32) (float64, error) {
	copy(outputVoice, input)
	outputVoice[len(outputVoice)/2] = float32(math.NaN())
	return 0.9, nil
}

func TestValidatedBypassesNonFiniteOutput(t *testing.T) {
	ctx := context.Background()
	s := NewValidated(brokenSuppressor{Dummy: NewDummy(48000, 480)})

	input := make([]float32, 480)
	for i := range input {
		input[i] = 0.1
	}
	output := make([]float32, 480)

	vadProb, err := s.SuppressFrame(ctx, input, output)
	require.NoError(t, err)
	assert.Zero(t, vadProb)
	assert.Equal(t, input, output)
}

func TestValidatedPassesFiniteOutput(t *testing.T) {
	ctx := context.Background()
	s := NewValidated(NewDummy(48000, 480))

	input := make([]float32, 480)
	input[0] = 0.25
	output := make([]float32, 480)

	vadProb, err := s.SuppressFrame(ctx, input, output)
	require.NoError(t, err)
	assert.Equal(t, 1.0, vadProb)
	assert.Equal(t, input, output)
}
