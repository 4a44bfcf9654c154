package engine

// maxCascade bounds how many chained phase transitions a single call may
// trigger before the runtime stops following them.
const maxCascade = 64

// ExecuteMove resolves and runs the named move against a working copy of
// state, then settles any phase transitions it caused. The returned state
// is the committed result; applied reports whether a handler ran to
// completion. Unknown moves, clone failures and panicking handlers leave
// the input state untouched.
func (g *Game[G]) ExecuteMove(state G, ctx Ctx, playerID, name string, args Args, sendChat func(payload any)) (result G, applied bool) {
	work, err := g.cloneState(state)
	if err != nil {
		return state, false
	}

	mv := &Move[G]{G: &work, Ctx: ctx, PlayerID: playerID, SendChatMessage: sendChat}
	from := PhaseOf(&work)
	fn := g.moveIn(from, name)
	if fn == nil {
		return state, false
	}

	defer func() {
		if r := recover(); r != nil {
			result, applied = state, false
		}
	}()

	fn(mv, args)
	g.settle(mv, from)
	return work, true
}

// EnterInitial runs the initial phase's OnBegin hook against a fresh state,
// following any cascade it triggers. Phase-less games pass through.
func (g *Game[G]) EnterInitial(state G, ctx Ctx, playerID string, sendChat func(payload any)) (result G, applied bool) {
	work, err := g.cloneState(state)
	if err != nil {
		return state, false
	}

	mv := &Move[G]{G: &work, Ctx: ctx, PlayerID: playerID, SendChatMessage: sendChat}
	from := PhaseOf(&work)
	if from == "" {
		return state, true
	}

	defer func() {
		if r := recover(); r != nil {
			result, applied = state, false
		}
	}()

	if cfg, ok := g.Phases[from]; ok && cfg.OnBegin != nil {
		cfg.OnBegin(mv)
	}
	g.settle(mv, from)
	return work, true
}

// settle follows phase changes to a fixed point: leaving a phase runs its
// OnEnd hook, entering the next runs OnBegin, and hooks themselves may
// transition again. OnBegin hooks frequently advance immediately when a
// phase has nothing to do for the current player configuration.
func (g *Game[G]) settle(mv *Move[G], from string) {
	cur := from
	for i := 0; i < maxCascade; i++ {
		next := PhaseOf(mv.G)
		if next == cur {
			return
		}
		if cfg, ok := g.Phases[cur]; ok && cfg.OnEnd != nil {
			cfg.OnEnd(mv)
			if PhaseOf(mv.G) == cur {
				// OnEnd reverted the transition.
				return
			}
		}
		cur = PhaseOf(mv.G)
		if cfg, ok := g.Phases[cur]; ok && cfg.OnBegin != nil {
			cfg.OnBegin(mv)
		}
	}
}
