// Package guard runs callbacks behind panic recovery so one failed fix or
// frame update cannot take the tray app down.
package guard

import (
	"fmt"
	"runtime/debug"

	"fyne.io/fyne/v2"

	"github.com/oukeidos/typoduck/internal/logger"
)

// dispatch hands work to the UI goroutine. Tests replace it.
var dispatch = fyne.Do

// Run calls fn, recovering a panic. onPanic may be nil.
func Run(scope string, onPanic func(any), fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered panic", "scope", scope, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}

// Go runs fn on a new goroutine behind Run.
func Go(scope string, fn func()) {
	go Run(scope, nil, fn)
}

// Do runs fn on the UI goroutine behind Run.
func Do(scope string, fn func()) {
	Run(scope+".dispatch", nil, func() {
		dispatch(func() { Run(scope, nil, fn) })
	})
}

// Guard is Go and Do with a shared panic handler, typically one that
// cancels the running fix and resets the tray state.
type Guard struct {
	OnPanic func(scope string, r any)
}

func (g *Guard) handler(scope string) func(any) {
	if g == nil || g.OnPanic == nil {
		return nil
	}
	return func(r any) { g.OnPanic(scope, r) }
}

// Go is the package Go with the guard's handler.
func (g *Guard) Go(scope string, fn func()) {
	h := g.handler(scope)
	go Run(scope, h, fn)
}

// Do is the package Do with the guard's handler.
func (g *Guard) Do(scope string, fn func()) {
	Run(scope+".dispatch", g.handler(scope+".dispatch"), func() {
		dispatch(func() { Run(scope, g.handler(scope), fn) })
	})
}
