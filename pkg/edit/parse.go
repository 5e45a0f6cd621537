package edit

import (
	"bytes"
	"encoding/json"

	"gitlab.com/tozd/go/errors"
)

// toolCall mirrors the generation service's tool-call envelope. Arguments is
// a stringified JSON object, as emitted by OpenAI-compatible APIs.
type toolCall struct {
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// editArgs is the argument object of an "edit" tool call. Both the native
// schema keys and the file_path/old_string/new_string aliases are accepted;
// fields outside the schema are ignored.
type editArgs struct {
	Path      string `json:"path"`
	Op        Op     `json:"op"`
	Anchor    string `json:"anchor"`
	Snippet   string `json:"snippet"`
	Limit     int    `json:"limit"`
	Rationale string `json:"rationale"`

	// Aliases used by the edit tool schema.
	FilePath  string  `json:"file_path"`
	OldString *string `json:"old_string"`
	NewString string  `json:"new_string"`
}

// ParseBatch decodes an edit batch from raw generation-service output. Two
// shapes are accepted: the direct batch object {"edits": [...]} and a
// tool-call array where each "edit" call carries its arguments as a JSON
// string. Non-edit tool calls are ignored. The parsed batch is validated;
// schema violations reject the whole batch with ErrMalformedBatch.
func ParseBatch(data []byte) (*Batch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &MalformedBatchError{Err: errors.New("empty input")}
	}

	var batch *Batch
	var err error
	switch trimmed[0] {
	case '{':
		batch, err = parseDirect(trimmed)
	case '[':
		batch, err = parseToolCalls(trimmed)
	default:
		return nil, &MalformedBatchError{Err: errors.New("input is not a JSON object or array")}
	}
	if err != nil {
		return nil, err
	}

	if err := batch.Validate(); err != nil {
		return nil, err
	}
	return batch, nil
}

func parseDirect(data []byte) (*Batch, error) {
	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, &MalformedBatchError{Err: errors.Errorf("parsing batch object: %w", err)}
	}
	return &batch, nil
}

func parseToolCalls(data []byte) (*Batch, error) {
	var calls []toolCall
	if err := json.Unmarshal(data, &calls); err != nil {
		return nil, &MalformedBatchError{Err: errors.Errorf("parsing tool calls: %w", err)}
	}

	var batch Batch
	for _, call := range calls {
		if call.Function.Name != "edit" {
			continue
		}

		var args editArgs
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return nil, &MalformedBatchError{Err: errors.Errorf("parsing edit arguments: %w", err)}
		}

		req := Request{
			Path:      args.Path,
			Op:        args.Op,
			Anchor:    args.Anchor,
			Snippet:   args.Snippet,
			Limit:     args.Limit,
			Rationale: args.Rationale,
		}
		if req.Path == "" {
			req.Path = args.FilePath
		}
		if args.OldString != nil {
			req.Op = OpReplace
			req.Anchor = *args.OldString
			req.Snippet = args.NewString
			req.Limit = 1
		}
		batch.Edits = append(batch.Edits, req)
	}
	return &batch, nil
}
