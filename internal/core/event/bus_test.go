package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversOnNextSwapInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e PlayerJoined) { got = append(got, "join") })
	Subscribe(b, func(e EnemyDefeated) { got = append(got, "defeat") })

	Emit(b, PlayerJoined{PlayerID: 1})
	Emit(b, EnemyDefeated{EnemyID: 2})
	Emit(b, PlayerJoined{PlayerID: 3})
	assert.Equal(t, 3, b.Pending())

	assert.Equal(t, 0, b.DispatchAll(), "nothing visible before the swap")
	assert.Empty(t, got)

	b.SwapBuffers()
	Emit(b, EnemyDefeated{EnemyID: 9})
	assert.Equal(t, 3, b.DispatchAll())
	assert.Equal(t, []string{"join", "defeat", "join"}, got)

	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
	assert.Equal(t, []string{"join", "defeat", "join", "defeat"}, got)
}

func TestBusDropsEventsWithoutSubscribers(t *testing.T) {
	b := NewBus()
	Emit(b, ChatPosted{Message: "hi"})
	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll())
}
