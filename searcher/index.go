package searcher

import "fmt"

// StateIndex maps canonical state strings to dense ids and back.
type StateIndex struct {
	ids    map[string]StateId
	keys   []string
	states []State
}

func NewStateIndex() *StateIndex {
	return &StateIndex{ids: make(map[string]StateId)}
}

// Intern returns the id of the state's canonical string, assigning the next
// id on first sight. The second result reports whether the id is new.
func (x *StateIndex) Intern(state State) (StateId, bool) {
	key := state.String()
	if id, ok := x.ids[key]; ok {
		return id, false
	}
	id := StateId(len(x.keys))
	x.ids[key] = id
	x.keys = append(x.keys, key)
	x.states = append(x.states, state)
	return id, true
}

func (x *StateIndex) Lookup(key string) (StateId, bool) {
	id, ok := x.ids[key]
	return id, ok
}

// Resolve returns the state first interned under id.
func (x *StateIndex) Resolve(id StateId) State {
	x.check(id)
	return x.states[id]
}

func (x *StateIndex) Key(id StateId) string {
	x.check(id)
	return x.keys[id]
}

func (x *StateIndex) check(id StateId) {
	if id < 0 || int(id) >= len(x.keys) {
		panic(fmt.Sprintf("state %d was never interned", id))
	}
}

func (x *StateIndex) Len() int {
	return len(x.keys)
}

func (x *StateIndex) Clear() {
	x.ids = make(map[string]StateId)
	x.keys = nil
	x.states = nil
}
