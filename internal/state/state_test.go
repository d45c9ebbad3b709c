package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	s := ListState[int]{Status: StatusIdle}

	s = Reduce(s, Started[int]())
	assert.Equal(t, StatusLoading, s.Status)
	assert.True(t, s.Loading)

	s = Reduce(s, Succeeded([]int{1, 2}))
	assert.Equal(t, StatusLoaded, s.Status)
	assert.False(t, s.Loading)
	assert.Equal(t, []int{1, 2}, s.Items)

	s = Reduce(s, Started[int]())
	assert.Equal(t, []int{1, 2}, s.Items, "items survive a new fetch")

	boom := errors.New("boom")
	s = Reduce(s, Failed[int](boom))
	assert.Equal(t, StatusErrored, s.Status)
	assert.ErrorIs(t, s.Err, boom)
	assert.Equal(t, []int{1, 2}, s.Items, "failure keeps the last list")

	s = Reduce(Reduce(s, Started[int]()), Succeeded([]int{3}))
	assert.NoError(t, s.Err)
	assert.Equal(t, []int{3}, s.Items, "success replaces wholesale")
}

func TestReduceIsPure(t *testing.T) {
	items := []int{1, 2}
	before := ListState[int]{Status: StatusLoading, Loading: true}
	after := Reduce(before, Succeeded(items))

	items[0] = 99
	assert.Equal(t, 1, after.Items[0])
	assert.Equal(t, StatusLoading, before.Status)
	assert.Nil(t, before.Items)
}

func TestReduceEmptySuccess(t *testing.T) {
	s := Reduce(ListState[string]{}, Succeeded[string](nil))
	assert.NotNil(t, s.Items)
	assert.Empty(t, s.Items)
}

func TestStoreSubscribe(t *testing.T) {
	st := NewStore[int]()
	assert.Equal(t, StatusIdle, st.State().Status)

	var seen []Status
	unsub := st.Subscribe(func(s ListState[int]) { seen = append(seen, s.Status) })

	st.Dispatch(Started[int]())
	st.Dispatch(Succeeded([]int{1}))
	unsub()
	unsub()
	st.Dispatch(Started[int]())

	assert.Equal(t, []Status{StatusLoading, StatusLoaded}, seen)
	assert.Equal(t, StatusLoading, st.State().Status)
}

func TestStoreSnapshotsAreCopies(t *testing.T) {
	st := NewStore[int]()
	st.Dispatch(Succeeded([]int{1, 2}))

	snap := st.State()
	snap.Items[0] = 42
	assert.Equal(t, 1, st.State().Items[0])
}

func TestStoreConcurrentDispatch(t *testing.T) {
	st := NewStore[int]()
	var mu sync.Mutex
	calls := 0
	st.Subscribe(func(ListState[int]) { mu.Lock(); calls++; mu.Unlock() })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st.Dispatch(Succeeded([]int{i}))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 50, calls)
	assert.Len(t, st.State().Items, 1)
}
