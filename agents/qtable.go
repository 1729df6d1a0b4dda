package agents

import (
	"encoding/json"
	"math"
	"os"
)

// QTable is a tabular value store indexed by state and action hashes
type QTable struct {
	Table map[string]map[string]float64 `json:"table"`
}

func NewQTable() *QTable {
	return &QTable{
		Table: make(map[string]map[string]float64),
	}
}

func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.Table[state]; !ok {
		q.Table[state] = make(map[string]float64)
	}
	if _, ok := q.Table[state][action]; !ok {
		q.Table[state][action] = def
	}
	return q.Table[state][action]
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.Table[state]; !ok {
		q.Table[state] = make(map[string]float64)
	}
	q.Table[state][action] = val
}

func (q *QTable) HasState(state string) bool {
	_, ok := q.Table[state]
	return ok
}

// Max returns the highest valued action of the state and its value
func (q *QTable) Max(state string, def float64) (string, float64) {
	if _, ok := q.Table[state]; !ok {
		return "", def
	}
	maxAction := ""
	maxVal := math.Inf(-1)
	for a, val := range q.Table[state] {
		if val > maxVal {
			maxVal = val
			maxAction = a
		}
	}
	return maxAction, maxVal
}

// MaxAmong returns the highest valued action restricted to the given set,
// initializing unseen entries to def
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	maxAction := ""
	maxVal := math.Inf(-1)
	for _, a := range actions {
		val := q.Get(state, a, def)
		if val > maxVal {
			maxVal = val
			maxAction = a
		}
	}
	return maxAction, maxVal
}

// SaveJSON writes the table to a checkpoint file
func (q *QTable) SaveJSON(path string) error {
	bs, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

// LoadQTable reads a checkpoint written by SaveJSON
func LoadQTable(path string) (*QTable, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	q := NewQTable()
	if err := json.Unmarshal(bs, q); err != nil {
		return nil, err
	}
	return q, nil
}
