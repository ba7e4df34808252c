package toolkit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder[T any] struct {
	mu  sync.Mutex
	got []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, v)
}

func (r *recorder[T]) values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.got...)
}

func TestDebouncer_OnlyLastValueFires(t *testing.T) {
	rec := &recorder[string]{}
	d := NewDebouncer(20*time.Millisecond, rec.add)

	d.Call("a")
	d.Call("ab")
	d.Call("abc")

	require.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []string{"abc"}, rec.values())
	require.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	rec := &recorder[int]{}
	d := NewDebouncer(10*time.Millisecond, rec.add)

	d.Call(1)
	require.True(t, d.Pending())
	d.Cancel()
	time.Sleep(40 * time.Millisecond)

	require.Empty(t, rec.values())
}

func TestDebouncer_Flush(t *testing.T) {
	rec := &recorder[int]{}
	d := NewDebouncer(time.Hour, rec.add)

	require.False(t, d.Flush())
	d.Call(7)
	require.True(t, d.Flush())
	require.Equal(t, []int{7}, rec.values())
	require.False(t, d.Flush())
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer[int](0, nil)
	require.Equal(t, DefaultDebounceDelay, d.delay)
}
