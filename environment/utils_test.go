package environment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeAsync(t *testing.T) {
	task, channel := MakeAsync(func() Result[bool] {
		return Result[bool]{Value: true}
	})
	go task()

	result := <-channel
	assert.True(t, result.Value)
	assert.NoError(t, result.Err)

	_, open := <-channel
	assert.False(t, open)
}

func TestValidate(t *testing.T) {
	type config struct {
		Stop    []string `validate:"required"`
		Timeout time.Duration
		Port    int
	}

	var output config
	err := Validate(map[string]interface{}{
		"stop":    []interface{}{"sudo", "poweroff"},
		"timeout": "10s",
		"port":    "623",
	}, &output)
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo", "poweroff"}, output.Stop)
	assert.Equal(t, 10*time.Second, output.Timeout)
	assert.Equal(t, 623, output.Port)

	err = Validate(map[string]interface{}{}, &config{})
	assert.Error(t, err)
}

func TestGenerateLogarithmicIntervals(t *testing.T) {
	intervals, err := GenerateLogarithmicIntervals(3*time.Minute, 5*time.Second, 40*time.Second, 1.5)
	require.NoError(t, err)

	require.NotEmpty(t, intervals)
	assert.Equal(t, 5*time.Second, intervals[0])
	assert.Equal(t, 7500*time.Millisecond, intervals[1])

	var total time.Duration
	for i, interval := range intervals {
		assert.LessOrEqual(t, interval, 40*time.Second)
		if i > 0 {
			assert.GreaterOrEqual(t, interval, intervals[i-1])
		}
		total += interval
	}
	assert.GreaterOrEqual(t, total, 3*time.Minute)
	assert.Less(t, total-intervals[len(intervals)-1], 3*time.Minute)
}

func TestGenerateLogarithmicIntervalsInvalid(t *testing.T) {
	_, err := GenerateLogarithmicIntervals(0, time.Second, time.Second, 1.5)
	assert.Error(t, err)
	_, err = GenerateLogarithmicIntervals(time.Minute, 10*time.Second, time.Second, 1.5)
	assert.Error(t, err)
	_, err = GenerateLogarithmicIntervals(time.Minute, time.Second, 10*time.Second, 0.5)
	assert.Error(t, err)
}
