package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"memories/internal/models"
	"memories/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

type GetCountsMsg struct{}

// ActivityCounts is the per-kind tally of events seen since start.
type ActivityCounts struct {
	Total  int64                      `json:"total"`
	ByKind map[models.EventKind]int64 `json:"byKind"`
}

// Broadcaster receives every processed event as JSON.
type Broadcaster interface {
	Broadcast(message []byte)
}

// ActivityActor counts post events and forwards them to live subscribers.
type ActivityActor struct {
	counts      map[models.EventKind]int64
	total       int64
	broadcaster Broadcaster
	metrics     *utils.MetricsCollector
}

func NewActivityActor(broadcaster Broadcaster, metrics *utils.MetricsCollector) actor.Actor {
	return &ActivityActor{
		counts:      make(map[models.EventKind]int64),
		broadcaster: broadcaster,
		metrics:     metrics,
	}
}

// Receive handles messages sent to the ActivityActor:
// - *models.PostEvent: counts the event and broadcasts it. Fire-and-forget.
// - *GetCountsMsg: responds with a copy of the counters.
func (a *ActivityActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("Activity actor started")

	case *models.PostEvent:
		a.counts[msg.Kind]++
		a.total++
		if a.metrics != nil {
			a.metrics.IncrementEvent(string(msg.Kind))
		}

		if a.broadcaster == nil {
			return
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Printf("Error encoding event %s: %v", msg.ID, err)
			return
		}
		a.broadcaster.Broadcast(payload)

	case *GetCountsMsg:
		counts := ActivityCounts{
			Total:  a.total,
			ByKind: make(map[models.EventKind]int64, len(a.counts)),
		}
		for kind, n := range a.counts {
			counts.ByKind[kind] = n
		}
		context.Respond(counts)
	}
}

// Engine owns the actor system and the activity actor.
type Engine struct {
	system   *actor.ActorSystem
	activity *actor.PID
	timeout  time.Duration
}

func NewEngine(system *actor.ActorSystem, broadcaster Broadcaster, metrics *utils.MetricsCollector, timeout time.Duration) *Engine {
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewActivityActor(broadcaster, metrics)
	})

	return &Engine{
		system:   system,
		activity: system.Root.Spawn(props),
		timeout:  timeout,
	}
}

// Publish hands an event to the activity actor without waiting.
func (e *Engine) Publish(event *models.PostEvent) {
	e.system.Root.Send(e.activity, event)
}

// Counts asks the activity actor for its counters.
func (e *Engine) Counts() (ActivityCounts, error) {
	result, err := e.system.Root.RequestFuture(e.activity, &GetCountsMsg{}, e.timeout).Result()
	if err != nil {
		return ActivityCounts{}, fmt.Errorf("failed to get activity counts: %w", err)
	}
	counts, ok := result.(ActivityCounts)
	if !ok {
		return ActivityCounts{}, fmt.Errorf("unexpected activity response type %T", result)
	}
	return counts, nil
}

// Stop terminates the activity actor.
func (e *Engine) Stop() {
	e.system.Root.Stop(e.activity)
}
