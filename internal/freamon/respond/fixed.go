package respond

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/blanksteg/freamon/internal/freamon/config"
)

// Mask strings substituted into fixed responses and greetings.
const (
	UserMask    = "%user%"
	ChannelMask = "%channel%"
)

// fixedSchema describes the triggered-response document: a flat object
// mapping trigger strings to response strings.
var fixedSchema = jsonschema.MustCompileString("fixed.schema.json", `{
	"type": "object",
	"additionalProperties": { "type": "string" }
}`)

// FixedResponses answers specific trigger messages with canned replies.
type FixedResponses struct {
	responses map[string]string
	settings  *config.Settings
}

// LoadFixedResponses reads and validates a triggered-response document.
func LoadFixedResponses(path string, settings *config.Settings) (*FixedResponses, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("respond: read fixed responses: %w", err)
	}
	return ParseFixedResponses(data, settings)
}

// ParseFixedResponses validates a raw JSON document against the schema
// and builds the trigger table from it.
func ParseFixedResponses(data []byte, settings *config.Settings) (*FixedResponses, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("respond: parse fixed responses: %w", err)
	}
	if err := fixedSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("respond: invalid fixed responses: %w", err)
	}

	responses := make(map[string]string)
	for trigger, response := range doc.(map[string]any) {
		responses[trigger] = response.(string)
	}
	return &FixedResponses{responses: responses, settings: settings}, nil
}

// Put registers or replaces a trigger at runtime.
func (f *FixedResponses) Put(trigger, response string) {
	f.responses[trigger] = response
}

// Delete removes a trigger at runtime.
func (f *FixedResponses) Delete(trigger string) {
	delete(f.responses, trigger)
}

// Len reports how many triggers are registered.
func (f *FixedResponses) Len() int {
	return len(f.responses)
}

// Stage answers messages that match a trigger exactly, moderated by the
// fixed-response chance roll. Masks in the response are filled from the
// event.
func (f *FixedResponses) Stage() Stage {
	return func(ctx context.Context, ev *Event) (string, bool) {
		response, ok := f.responses[ev.Message]
		if !ok {
			return "", false
		}
		if f.settings != nil && !f.settings.RollFixedResponse() {
			return "", false
		}
		response = strings.ReplaceAll(response, ChannelMask, ev.Room)
		response = strings.ReplaceAll(response, UserMask, ev.Sender)
		return response, true
	}
}
