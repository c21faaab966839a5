package engine

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"memories/internal/models"
	"memories/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages [][]byte
}

func (r *recordingBroadcaster) Broadcast(message []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingBroadcaster) snapshot() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.messages...)
}

func TestActivityActorCountsAndBroadcasts(t *testing.T) {
	system := actor.NewActorSystem()
	hub := &recordingBroadcaster{}
	eng := NewEngine(system, hub, utils.NewMetricsCollector(), 5*time.Second)
	defer eng.Stop()

	eng.Publish(models.NewPostEvent(models.EventPostCreated, "p1", "u1"))
	eng.Publish(models.NewPostEvent(models.EventPostLiked, "p1", "u2"))
	eng.Publish(models.NewPostEvent(models.EventPostLiked, "p1", "u3"))

	// Requests are processed after the earlier sends from the same sender
	counts, err := eng.Counts()
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts.Total)
	assert.EqualValues(t, 2, counts.ByKind[models.EventPostLiked])
	assert.EqualValues(t, 1, counts.ByKind[models.EventPostCreated])

	messages := hub.snapshot()
	require.Len(t, messages, 3)

	var event models.PostEvent
	require.NoError(t, json.Unmarshal(messages[0], &event))
	assert.Equal(t, models.EventPostCreated, event.Kind)
	assert.Equal(t, "p1", event.PostID)
}

func TestCountsReturnsCopy(t *testing.T) {
	system := actor.NewActorSystem()
	eng := NewEngine(system, nil, nil, 5*time.Second)
	defer eng.Stop()

	eng.Publish(models.NewPostEvent(models.EventPostDeleted, "p1", "u1"))

	first, err := eng.Counts()
	require.NoError(t, err)
	first.ByKind[models.EventPostDeleted] = 100

	second, err := eng.Counts()
	require.NoError(t, err)
	assert.EqualValues(t, 1, second.ByKind[models.EventPostDeleted])
}
