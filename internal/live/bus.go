package live

import (
	"log/slog"
	"sync"
)

// Topic identifies what changed.
type Topic struct {
	Kind string
	ID   int64
}

// Topics published by the workout use cases.
const (
	KindWorkouts  = "workouts"
	KindWorkout   = "workout"
	KindExercises = "exercises"
)

// WorkoutsTopic covers the list of all workouts.
func WorkoutsTopic() Topic { return Topic{Kind: KindWorkouts} }

// WorkoutTopic covers one workout row.
func WorkoutTopic(id int64) Topic { return Topic{Kind: KindWorkout, ID: id} }

// ExercisesTopic covers the exercises of one workout.
func ExercisesTopic(workoutID int64) Topic { return Topic{Kind: KindExercises, ID: workoutID} }

// Bus fans change signals out to subscribers. A signal carries no payload;
// subscribers re-read what they watch. Pending signals coalesce, so a slow
// subscriber sees at least one signal after the latest change.
type Bus struct {
	mu   sync.Mutex
	subs map[Topic]map[chan struct{}]struct{}
	log  *slog.Logger
}

// New constructs a Bus.
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		subs: make(map[Topic]map[chan struct{}]struct{}),
		log:  log,
	}
}

// Subscribe registers for changes on topic and returns the signal channel and a cancel func.
func (b *Bus) Subscribe(topic Topic) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	topicSubs := b.subs[topic]
	if topicSubs == nil {
		topicSubs = make(map[chan struct{}]struct{})
		b.subs[topic] = topicSubs
	}
	topicSubs[ch] = struct{}{}
	count := len(topicSubs)
	b.mu.Unlock()
	b.log.Debug("live subscribe", "kind", topic.Kind, "id", topic.ID, "subs", count)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if subs := b.subs[topic]; subs != nil {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.subs, topic)
				}
			}
			b.mu.Unlock()
			b.log.Debug("live unsubscribe", "kind", topic.Kind, "id", topic.ID)
		})
	}
}

// Publish signals every subscriber of each topic.
func (b *Bus) Publish(topics ...Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, topic := range topics {
		for ch := range b.subs[topic] {
			select {
			case ch <- struct{}{}:
			default:
				// already pending
			}
		}
	}
}
