package codec

import (
	"encoding/json"
	"fmt"
)

// Command is an outbound frame. It always carries a string "type".
type Command map[string]any

func Ping() Command {
	return Command{"type": TypePing}
}

func StatusRequest() Command {
	return Command{"type": TypeStatus}
}

func ViewerID(id string) Command {
	return Command{"type": TypeViewerID, "viewer_id": id}
}

// Raw copies a caller-supplied command object.
func Raw(fields map[string]any) Command {
	out := make(Command, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (c Command) Type() string {
	t, _ := c["type"].(string)
	return t
}

func EncodeCommand(c Command) ([]byte, error) {
	if c.Type() == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidCommand)
	}
	b, err := json.Marshal(map[string]any(c))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return b, nil
}

// DecodeCommand parses a command object supplied by a local caller.
func DecodeCommand(body []byte) (Command, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	c := Command(fields)
	if c.Type() == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidCommand)
	}
	return c, nil
}
