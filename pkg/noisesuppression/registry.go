package noisesuppression

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
)

type Factory interface {
	NewNoiseSuppressor() (NoiseSuppressor, error)
}

type factoryWithPriority struct {
	Priority int
	Factory
}

var factoryRegistry = map[reflect.Type]factoryWithPriority{}

func RegisterFactory(
	priority int,
	factory Factory,
) {
	t := reflect.ValueOf(factory).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if _, ok := factoryRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a factory of NoiseSuppressor of type %v", t))
	}
	factoryRegistry[t] = factoryWithPriority{
		Priority: priority,
		Factory:  factory,
	}
}

func Factories() []Factory {
	var factoriesWithPriorities []factoryWithPriority
	for _, factory := range factoryRegistry {
		factoriesWithPriorities = append(factoriesWithPriorities, factory)
	}
	sort.Slice(factoriesWithPriorities, func(i, j int) bool {
		return factoriesWithPriorities[i].Priority > factoriesWithPriorities[j].Priority
	})

	var factories []Factory
	for _, factory := range factoriesWithPriorities {
		factories = append(factories, factory.Factory)
	}

	return factories
}

// NewAuto returns a noise suppressor from the highest-priority
// registered implementation that initializes successfully. The choice
// is made once; it does not change for the lifetime of the returned
// suppressor.
func NewAuto(
	ctx context.Context,
) (NoiseSuppressor, error) {
	var mErr *multierror.Error
	for _, factory := range Factories() {
		suppressor, err := factory.NewNoiseSuppressor()
		logger.Debugf(ctx, "initializing noise suppressor %T result is %v", suppressor, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize %T: %w", suppressor, err))
			continue
		}
		return suppressor, nil
	}
	return nil, fmt.Errorf("was unable to initialize any noise suppressor: %w", mErr.ErrorOrNil())
}
