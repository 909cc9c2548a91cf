package flows

import (
	"fmt"

	"github.com/MrEthical07/goFlow/flow"
)

// CSRFToken returns the value of the csrf_token input node, or "" when the
// document has none.
func CSRFToken(nodes []flow.Node) string {
	for _, node := range nodes {
		if !node.IsInput() || node.Attributes.Name != "csrf_token" {
			continue
		}
		switch v := node.Attributes.Value.(type) {
		case nil:
			return ""
		case string:
			return v
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}
