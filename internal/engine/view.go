package engine

import "encoding/json"

// StripSecret is the default view projection applied to the JSON form of a
// state: the "secret" field is removed entirely and a "players" object is
// narrowed to the viewer's own entry. Non-object states pass through
// unchanged. The input is never mutated.
func StripSecret(state json.RawMessage, playerID string) json.RawMessage {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(state, &m); err != nil {
		return state
	}
	delete(m, "secret")
	if players, ok := m["players"]; ok {
		var byID map[string]json.RawMessage
		if err := json.Unmarshal(players, &byID); err == nil {
			narrowed := map[string]json.RawMessage{}
			if own, ok := byID[playerID]; ok {
				narrowed[playerID] = own
			}
			if data, err := json.Marshal(narrowed); err == nil {
				m["players"] = data
			}
		}
	}
	out, err := json.Marshal(m)
	if err != nil {
		return state
	}
	return out
}

// RenderView computes the wire form of what playerID may see: the game's
// PlayerView when supplied, the default secret-stripping projection
// otherwise. Canonical state is never mutated.
func (g *Game[G]) RenderView(state G, ctx Ctx, playerID string) (json.RawMessage, error) {
	if g.PlayerView != nil {
		return json.Marshal(g.PlayerView(state, ctx, playerID))
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return StripSecret(data, playerID), nil
}
