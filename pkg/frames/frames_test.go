package frames

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/denoise/pkg/audio"
)

func TestAccumulator(t *testing.T) {
	t.Run("OrderAndCompleteness", func(t *testing.T) {
		acc := NewAccumulator(Size)

		var pushed []float32
		next := float32(0)
		for _, chunkSize := range []int{7, 512, 480, 1, 440, 1000, 480 * 3} {
			chunk := make([]float32, chunkSize)
			for i := range chunk {
				chunk[i] = next
				next++
			}
			pushed = append(pushed, chunk...)
			acc.Push(chunk)
		}

		var taken []float32
		frame := make([]float32, Size)
		for acc.TakeFrame(frame) {
			taken = append(taken, frame...)
		}

		require.Equal(t, (len(pushed)/Size)*Size, len(taken))
		assert.Equal(t, pushed[:len(taken)], taken)
		assert.Equal(t, len(pushed)-len(taken), acc.Pending())
	})

	t.Run("ShortInput", func(t *testing.T) {
		acc := NewAccumulator(Size)
		acc.Push(make([]float32, Size-1))

		frame := make([]float32, Size)
		assert.False(t, acc.TakeFrame(frame))
		assert.Equal(t, Size-1, acc.Pending())
	})

	t.Run("MultipleFramesFromOnePush", func(t *testing.T) {
		acc := NewAccumulator(Size)
		acc.Push(make([]float32, Size*2+5))

		frame := make([]float32, Size)
		assert.True(t, acc.TakeFrame(frame))
		assert.True(t, acc.TakeFrame(frame))
		assert.False(t, acc.TakeFrame(frame))
		assert.Equal(t, 5, acc.Pending())
	})

	t.Run("Reset", func(t *testing.T) {
		acc := NewAccumulator(Size)
		acc.Push(make([]float32, Size*2))
		acc.Reset()
		assert.Equal(t, 0, acc.Pending())
	})
}

func TestResampler(t *testing.T) {
	t.Run("Passthrough48k", func(t *testing.T) {
		r, err := NewResampler(48000)
		require.NoError(t, err)

		input := []float32{0.1, 0.2, 0.3}
		assert.Equal(t, input, r.Resample(input, nil))
	})

	t.Run("Exactly441To480", func(t *testing.T) {
		r, err := NewResampler(44100)
		require.NoError(t, err)

		input := make([]float32, 441)
		for i := range input {
			input[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 44100))
		}
		output := r.Resample(input, nil)

		require.Len(t, output, 480)
		assert.InDelta(t, input[0], output[0], 0.01)
	})

	t.Run("StatefulAcrossChunks", func(t *testing.T) {
		r, err := NewResampler(44100)
		require.NoError(t, err)

		var output []float32
		// chunk sizes deliberately not aligned to anything
		for _, chunkSize := range []int{100, 341, 441, 200, 241} {
			output = r.Resample(make([]float32, chunkSize), output)
		}
		// 1323 input samples = 3 * 441 -> exactly 3 * 480 out
		assert.Len(t, output, 3*480)
	})

	t.Run("UnsupportedRate", func(t *testing.T) {
		_, err := NewResampler(22050)
		require.Error(t, err)
		var errUnsupported ErrUnsupportedSampleRate
		require.ErrorAs(t, err, &errUnsupported)
		assert.Equal(t, audio.SampleRate(22050), errUnsupported.SampleRate)
	})
}

func TestDownmixMono(t *testing.T) {
	t.Run("Stereo", func(t *testing.T) {
		stereo := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, DownmixMono(stereo, 2, nil))
	})

	t.Run("Mono", func(t *testing.T) {
		mono := []float32{0.1, 0.2, 0.3}
		assert.Equal(t, mono, DownmixMono(mono, 1, nil))
	})
}
