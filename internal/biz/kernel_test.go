package biz

import (
	"context"
	"strings"
	"testing"
)

func TestKernelUsecase(t *testing.T) {
	ctx := context.Background()
	sys := newFakeSystem()
	u := NewKernelUsecase(testConf(), sys, testLogger())
	if err := u.Apply(ctx); err != nil {
		t.Fatal(err)
	}

	t.Run("SysctlFile", func(t *testing.T) {
		content, ok := sys.files[SysctlConfPath]
		if !ok {
			t.Fatal("sysctl config not written")
		}
		lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
		if len(lines) != 11 {
			t.Errorf("sysctl config must have 11 entries, got %d", len(lines))
		}
		for _, want := range []string{"net.core.rmem_max=134217728", "vm.max_map_count=1000000", "fs.nr_open=1000000"} {
			if !strings.Contains(content, want) {
				t.Errorf("sysctl config missing %q", want)
			}
		}
	})

	t.Run("LimitsFile", func(t *testing.T) {
		content, ok := sys.files[LimitsConfPath]
		if !ok {
			t.Fatal("limits config not written")
		}
		lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
		if len(lines) != 2 {
			t.Errorf("limits config must have 2 entries, got %d", len(lines))
		}
		if !strings.Contains(content, "nofile") || !strings.Contains(content, "nproc") {
			t.Errorf("limits config must cover nofile and nproc: %s", content)
		}
	})

	t.Run("AppliesSysctl", func(t *testing.T) {
		if !sys.ranCommand("sysctl --system") {
			t.Errorf("sysctl --system not invoked, commands: %v", sys.commands)
		}
	})
}
