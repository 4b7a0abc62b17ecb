package registry

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/xaionaro-go/denoise/pkg/audio/types"
)

type PlaybackSinkFactory interface {
	NewPlaybackSink() (types.PlaybackSink, error)
}

type playbackFactoryWithPriority struct {
	Priority int
	PlaybackSinkFactory
}

var playbackFactoryRegistry = map[reflect.Type]playbackFactoryWithPriority{}

func RegisterPlaybackFactory(
	priority int,
	playbackSinkFactory PlaybackSinkFactory,
) {
	t := reflect.ValueOf(playbackSinkFactory).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if _, ok := playbackFactoryRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a factory of PlaybackSink of type %v", t))
	}
	playbackFactoryRegistry[t] = playbackFactoryWithPriority{
		Priority:            priority,
		PlaybackSinkFactory: playbackSinkFactory,
	}
}

func PlaybackFactories() []PlaybackSinkFactory {
	var factoriesWithPriorities []playbackFactoryWithPriority
	for _, factory := range playbackFactoryRegistry {
		factoriesWithPriorities = append(factoriesWithPriorities, factory)
	}
	sort.Slice(factoriesWithPriorities, func(i, j int) bool {
		return factoriesWithPriorities[i].Priority > factoriesWithPriorities[j].Priority
	})

	var factories []PlaybackSinkFactory
	for _, factory := range factoriesWithPriorities {
		factories = append(factories, factory.PlaybackSinkFactory)
	}

	return factories
}
