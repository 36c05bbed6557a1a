package launcher

import (
	"syscall"
	"testing"
)

func TestSysProcAttr_ParentDeathSignal(t *testing.T) {
	attr := sysProcAttr()
	if attr == nil || attr.Pdeathsig != syscall.SIGTERM {
		t.Errorf("sysProcAttr() = %+v, want Pdeathsig SIGTERM", attr)
	}
}
