package environment

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	probing "github.com/prometheus-community/pro-bing"
)

type Result[T any] struct {
	Value T
	Err   error
}

func MakeAsync[R any](routine func() R) (func(), chan R) {
	channel := make(chan R, 1)

	return func() {
		defer close(channel)
		channel <- routine()
	}, channel
}

func Ping(addr string) (bool, error) {
	pinger, err := probing.NewPinger(addr)
	if err != nil {
		return false, fmt.Errorf("error creating new pinger: %w", err)
	}
	pinger.Count = 3
	pinger.Interval = 167 * time.Millisecond
	pinger.Timeout = 500 * time.Millisecond
	pinger.OnRecv = func(pkt *probing.Packet) {
		pinger.Stop()
	}
	err = pinger.Run()
	if err != nil {
		return false, fmt.Errorf("error sending ping: %w", err)
	}
	return pinger.PacketsRecv > 0, nil
}

func Validate[T any](input map[string]interface{}, output *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return fmt.Errorf("error creating input decoder: %w", err)
	}
	err = decoder.Decode(input)
	if err != nil {
		return fmt.Errorf("input decoding error: %w", err)
	}
	validate := validator.New()
	err = validate.Struct(output)
	if err != nil {
		return fmt.Errorf("error validating structure fields: %w", err)
	}
	return nil
}

// GenerateLogarithmicIntervals returns waiting intervals that start at first,
// grow by factor up to max and add up to at least total.
func GenerateLogarithmicIntervals(total, first, max time.Duration, factor float64) ([]time.Duration, error) {
	if total <= 0 || first <= 0 || max < first {
		return nil, errors.New("invalid interval bounds")
	}
	if factor < 1 {
		return nil, fmt.Errorf("growth factor must be at least 1, got %v", factor)
	}

	var intervals []time.Duration
	var elapsed time.Duration
	next := first
	for elapsed < total {
		intervals = append(intervals, next)
		elapsed += next
		next = time.Duration(float64(next) * factor)
		if next > max {
			next = max
		}
	}
	return intervals, nil
}
