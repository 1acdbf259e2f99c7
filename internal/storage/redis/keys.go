package redis

import (
	"fmt"
	"net/url"

	"github.com/mcoot/dicearena-go/internal/model"
)

// Key prefix for all arena data
const keyPrefix = "dicearena"

// cooldownKey returns the Redis key for the invite cooldown of an ordered pair.
// IDs are escaped so a colon inside an ID cannot shift the pair boundary.
func cooldownKey(from, to model.PlayerID) string {
	return fmt.Sprintf("%s:cooldown:%s:%s", keyPrefix, url.QueryEscape(string(from)), url.QueryEscape(string(to)))
}
