package log_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrEthical07/goFlow/flow"
	"github.com/MrEthical07/goFlow/pkg/log"
)

func TestFlowID(t *testing.T) {
	assertAttrEqual(t, log.FlowID("flow-123"), "flow_id", "flow-123")
}

func TestFlowType(t *testing.T) {
	assertAttrEqual(t, log.FlowType(flow.TypeVerification), "flow_type", "verification")
}

func TestStatus(t *testing.T) {
	attr := log.Status(303)
	assert.Equal(t, "status", attr.Key)
	assert.Equal(t, int64(303), attr.Value.Int64())
}

func TestTarget(t *testing.T) {
	assertAttrEqual(t, log.Target("/sign-in"), "target", "/sign-in")
}

func TestError(t *testing.T) {
	assertAttrEqual(t, log.Error(nil), "error", "")
	assertAttrEqual(t, log.Error(errors.New("boom")), "error", "boom")
}

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
