package nodes

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/waste-to-wealth/server/internal/agent/model"
)

var errFake = errors.New("fake failure")

type call struct {
	System string
	User   string
}

// fakeLLM answers free-text calls with complete and structured calls by
// decoding the JSON returned from structured.
type fakeLLM struct {
	mu         sync.Mutex
	complete   func(system, user string) (string, error)
	structured func(system, user string) (string, error)
	completes  []call
	structs    []call
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.completes = append(f.completes, call{system, user})
	f.mu.Unlock()
	if f.complete == nil {
		return "", errFake
	}
	return f.complete(system, user)
}

func (f *fakeLLM) CompleteStructured(_ context.Context, system, user string, target any) error {
	f.mu.Lock()
	f.structs = append(f.structs, call{system, user})
	f.mu.Unlock()
	if f.structured == nil {
		return errFake
	}
	raw, err := f.structured(system, user)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), target)
}

type fakeSource struct {
	content string
	err     error
	calls   int
}

func (f *fakeSource) Collect(context.Context, string) (string, error) {
	f.calls++
	return f.content, f.err
}

// analysisReply fails for any item listed in failing and otherwise returns a
// WasteItemInfo with a paraphrased name.
func analysisReply(failing ...string) func(system, user string) (string, error) {
	return func(system, user string) (string, error) {
		for _, f := range failing {
			if strings.Contains(user, "Waste Item: "+f+"\n") {
				return "", errFake
			}
		}
		if strings.Contains(user, "Waste Item:") {
			return `{"name":"renamed","category":"plastic","recyclability":"recyclable","health_risk":null,"reuse_ideas":["planter"]}`, nil
		}
		return `{"ideas":[
			{"title":"Eco bricks","description":"d1","required_materials":["bottles","sand"],"estimated_value":"Ksh 2,000"},
			{"title":"Planters","description":"d2","required_materials":null},
			{"title":"Extra","description":"d3","required_materials":[]}
		]}`, nil
	}
}

type fakeLedger struct {
	mu      sync.Mutex
	records []ledgerRecord
	err     error
}

type ledgerRecord struct {
	Model string
	Usage *schema.TokenUsage
	Cost  float64
}

func (f *fakeLedger) Record(_ context.Context, m string, u *schema.TokenUsage, cost float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, ledgerRecord{m, u, cost})
	return f.err
}

func (f *fakeLedger) Daily(context.Context, time.Time) ([]model.UsageSummary, error) {
	return nil, nil
}
