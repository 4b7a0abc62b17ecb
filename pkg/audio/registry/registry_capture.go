package registry

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/xaionaro-go/denoise/pkg/audio/types"
)

type CaptureSourceFactory interface {
	NewCaptureSource() (types.CaptureSource, error)
}

type captureFactoryWithPriority struct {
	Priority int
	CaptureSourceFactory
}

var captureFactoryRegistry = map[reflect.Type]captureFactoryWithPriority{}

func RegisterCaptureFactory(
	priority int,
	captureSourceFactory CaptureSourceFactory,
) {
	t := reflect.ValueOf(captureSourceFactory).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if _, ok := captureFactoryRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a factory of CaptureSource of type %v", t))
	}
	captureFactoryRegistry[t] = captureFactoryWithPriority{
		Priority:             priority,
		CaptureSourceFactory: captureSourceFactory,
	}
}

func CaptureFactories() []CaptureSourceFactory {
	var factoriesWithPriorities []captureFactoryWithPriority
	for _, factory := range captureFactoryRegistry {
		factoriesWithPriorities = append(factoriesWithPriorities, factory)
	}
	sort.Slice(factoriesWithPriorities, func(i, j int) bool {
		return factoriesWithPriorities[i].Priority > factoriesWithPriorities[j].Priority
	})

	var factories []CaptureSourceFactory
	for _, factory := range factoriesWithPriorities {
		factories = append(factories, factory.CaptureSourceFactory)
	}

	return factories
}
