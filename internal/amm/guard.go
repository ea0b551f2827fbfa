package amm

// reentryGuard is a non-reentrant lock for pool entry points. Top-level
// operations are serialized by the execution model, so the only way to
// observe a held guard is a token calling back into the same pool
// mid-operation; that nested call must fail immediately, never block.
type reentryGuard struct {
	held bool
}

func (g *reentryGuard) enter() error {
	if g.held {
		return ErrReentrancy
	}
	g.held = true
	return nil
}

func (g *reentryGuard) exit() {
	g.held = false
}
