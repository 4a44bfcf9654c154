//go:build scenario

package game

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a scripted table: a deal followed by moves and expectations.
type Scenario struct {
	Name  string
	Steps []Step
}

type Step struct {
	Kind string
	Args map[string]any
}

func loadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerScenarioType(state)
	registerScenarioConstructor(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "new", Function: scenarioNew},
	}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "table", Function: scenarioTable},
	{Name: "decide", Function: scenarioMove1String("decideAction")},
	{Name: "vote", Function: scenarioMove1Int("vote")},
	{Name: "vote_conclude", Function: scenarioMove0("voteConclude")},
	{Name: "pick_player", Function: scenarioMove1String("pickPlayer")},
	{Name: "pick_other_card", Function: scenarioMove1Int("pickOtherCard")},
	{Name: "pick_card", Function: scenarioMove1Int("pickCard")},
	{Name: "pick_response", Function: scenarioPickResponse},
	{Name: "vault", Function: scenarioMove1Int("vault")},
	{Name: "next_round", Function: scenarioMove0("nextRound")},
	{Name: "expect_phase", Function: scenarioExpectPhase},
	{Name: "expect_round_score", Function: scenarioExpectField("expect_round_score")},
	{Name: "expect_score", Function: scenarioExpectField("expect_score")},
	{Name: "expect_extra", Function: scenarioExpectExtra},
	{Name: "expect_hand", Function: scenarioExpectHand},
	{Name: "expect_full_deck", Function: scenarioExpectFullDeck},
}

// scenarioTable records the deal: seats, the real outliar, hands and the
// vault, optionally a starting phase and pre-published actions.
func scenarioTable(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "table", tableToMap(state, 2))
	return 0
}

func scenarioMove0(move string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		player := lua.CheckString(state, 2)
		appendStep(scenario, "move", map[string]any{"player": player, "move": move})
		return 0
	}
}

func scenarioMove1String(move string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		player := lua.CheckString(state, 2)
		arg := lua.CheckString(state, 3)
		appendStep(scenario, "move", map[string]any{
			"player": player, "move": move, "args": []any{arg},
		})
		return 0
	}
}

func scenarioMove1Int(move string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		player := lua.CheckString(state, 2)
		arg := lua.CheckInteger(state, 3)
		appendStep(scenario, "move", map[string]any{
			"player": player, "move": move, "args": []any{arg},
		})
		return 0
	}
}

func scenarioPickResponse(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	indexes, ok := tableToGo(state, 3).([]any)
	if !ok {
		lua.ArgumentError(state, 3, "array of hand indexes expected")
		return 0
	}
	appendStep(scenario, "move", map[string]any{
		"player": player, "move": "pickResponse", "args": []any{indexes},
	})
	return 0
}

func scenarioExpectPhase(state *lua.State) int {
	scenario := checkScenario(state)
	phase := lua.CheckString(state, 2)
	appendStep(scenario, "expect_phase", map[string]any{"phase": phase})
	return 0
}

func scenarioExpectField(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		player := lua.CheckString(state, 2)
		value := lua.CheckInteger(state, 3)
		appendStep(scenario, kind, map[string]any{"player": player, "value": value})
		return 0
	}
}

func scenarioExpectExtra(state *lua.State) int {
	scenario := checkScenario(state)
	value := lua.CheckInteger(state, 2)
	appendStep(scenario, "expect_extra", map[string]any{"value": value})
	return 0
}

func scenarioExpectHand(state *lua.State) int {
	scenario := checkScenario(state)
	player := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	cards, ok := tableToGo(state, 3).([]any)
	if !ok {
		lua.ArgumentError(state, 3, "array of cards expected")
		return 0
	}
	appendStep(scenario, "expect_hand", map[string]any{"player": player, "cards": cards})
	return 0
}

func scenarioExpectFullDeck(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_full_deck", nil)
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		if math.Mod(value, 1) == 0 {
			return int(value)
		}
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo turns dense integer-keyed tables into slices and everything
// else into maps.
func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}
