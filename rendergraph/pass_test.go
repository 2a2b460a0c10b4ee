package rendergraph

import "testing"

func TestIsForceKeptViaParamsFlag(t *testing.T) {
	p := &pass{params: Params{ForceKeep: true}}
	if !p.isForceKept() {
		t.Errorf("expected ForceKeep=true in Params to force-keep the pass")
	}
}

func TestIsForceKeptViaPresentFlag(t *testing.T) {
	p := &pass{flags: FlagPresent}
	if !p.isForceKept() {
		t.Errorf("expected FlagPresent to force-keep the pass even without Params.ForceKeep")
	}
}

func TestIsForceKeptFalseByDefault(t *testing.T) {
	p := &pass{flags: FlagCompute}
	if p.isForceKept() {
		t.Errorf("expected a plain compute pass with no ForceKeep/FlagPresent to not be force-kept")
	}
}
