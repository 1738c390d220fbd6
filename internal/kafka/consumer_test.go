package kafka_test

import (
	"strings"
	"testing"

	"teamnet-go/internal/kafka"
)

func TestInstanceGroupID(t *testing.T) {
	const base = "teamnet-presence-server-group"

	a := kafka.InstanceGroupID(base)
	b := kafka.InstanceGroupID(base)

	if !strings.HasPrefix(a, base+"-") {
		t.Errorf("group id %q does not extend base %q", a, base)
	}
	if len(a) <= len(base)+1 {
		t.Errorf("group id %q carries no instance suffix", a)
	}
	// Two instances sharing a group would split partitions between them and
	// each miss the other's events; ids must differ per call.
	if a == b {
		t.Errorf("expected distinct group ids, got %q twice", a)
	}
}
