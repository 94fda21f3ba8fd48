package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidDocument is returned when a stored game cannot be decoded
var ErrInvalidDocument = errors.New("invalid game document")

const gameSchemaJSON = `{
  "type": "object",
  "properties": {
    "guild_id": {"type": "string"},
    "flags": {
      "type": "object",
      "properties": {
        "allow_vote_abstain": {"type": "boolean"},
        "allow_vote_change": {"type": "boolean"},
        "allow_vote_multi": {"type": "boolean"},
        "player_activity_cutoff": {"type": "integer", "minimum": 0}
      }
    },
    "activity": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "integer"}
    },
    "proposals": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["n", "status"],
        "properties": {
          "n": {"type": "integer", "minimum": 1},
          "author": {"type": "string"},
          "content": {"type": "string"},
          "status": {"enum": ["voting", "passed", "failed", "deleted"]},
          "message_id": {"type": "string"},
          "votes": {
            "type": ["object", "null"],
            "additionalProperties": {"type": "integer"}
          },
          "timestamp": {"type": "string"}
        }
      }
    },
    "quantities": {
      "type": ["object", "null"],
      "additionalProperties": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"$ref": "#/$defs/quantityName"},
          "aliases": {
            "type": ["array", "null"],
            "items": {"$ref": "#/$defs/quantityName"}
          },
          "players": {
            "type": ["object", "null"],
            "additionalProperties": {"type": "number"}
          }
        }
      }
    },
    "rules": {
      "type": ["object", "null"],
      "additionalProperties": {
        "type": "object",
        "required": ["tag"],
        "properties": {
          "tag": {"type": "string", "pattern": "^[a-z0-9\\-_]+$"},
          "title": {"type": "string"},
          "content": {"type": "string"},
          "parent": {"type": "string"},
          "children": {"type": ["array", "null"], "items": {"type": "string"}},
          "message_ids": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "channels": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  },
  "$defs": {
    "quantityName": {"type": "string", "pattern": "^[a-z][0-9a-z\\-_]*$", "maxLength": 32}
  }
}`

var gameSchema = jsonschema.MustCompileString("game.schema.json", gameSchemaJSON)

// encodeGame serializes a game for storage
func encodeGame(state *models.GameState) ([]byte, error) {
	if state == nil {
		return nil, errors.New("state cannot be nil")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game: %w", err)
	}
	return data, nil
}

// decodeGame parses, validates and normalizes a stored game document
func decodeGame(guildID string, data []byte) (*models.GameState, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := gameSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var state models.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	state.Normalize()
	state.GuildID = guildID

	if err := checkConsistency(&state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &state, nil
}

// checkConsistency verifies the cross-references a schema cannot express
func checkConsistency(state *models.GameState) error {
	for i, p := range state.Proposals {
		if p == nil {
			return fmt.Errorf("proposal at index %d is null", i)
		}
		if p.N != i+1 {
			return fmt.Errorf("proposal at index %d has number %d", i, p.N)
		}
	}

	names := make(map[string]string)
	for key, q := range state.Quantities {
		if q == nil || q.Name != key {
			return fmt.Errorf("quantity %q is keyed incorrectly", key)
		}
		for _, name := range append([]string{q.Name}, q.Aliases...) {
			if owner, ok := names[name]; ok {
				return fmt.Errorf("quantity name %q used by both %q and %q", name, owner, key)
			}
			names[name] = key
		}
	}

	root := state.Rules[models.RootRuleTag]
	if root.Parent != "" {
		return errors.New("root rule has a parent")
	}
	seen := map[string]bool{models.RootRuleTag: true}
	queue := []string{models.RootRuleTag}
	for len(queue) > 0 {
		tag := queue[0]
		queue = queue[1:]
		rule := state.Rules[tag]
		if rule == nil || rule.Tag != tag {
			return fmt.Errorf("rule %q is keyed incorrectly", tag)
		}
		for _, child := range rule.Children {
			if seen[child] {
				return fmt.Errorf("rule %q is listed more than once", child)
			}
			c, ok := state.Rules[child]
			if !ok {
				return fmt.Errorf("rule %q lists missing child %q", tag, child)
			}
			if c.Parent != tag {
				return fmt.Errorf("rule %q has parent %q but is listed under %q", child, c.Parent, tag)
			}
			seen[child] = true
			queue = append(queue, child)
		}
	}
	if len(seen) != len(state.Rules) {
		return fmt.Errorf("%d rules are unreachable from the root", len(state.Rules)-len(seen))
	}
	return nil
}
