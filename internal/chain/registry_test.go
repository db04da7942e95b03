package chain

import (
	"errors"
	"testing"

	"givehub/internal/domain"
)

// Well-known throwaway development key; never funded on a real network.
const devSignerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const contractAddr = "0x52908400098527886E0F7030069857D2E4169EE7"

func TestLoadRegistryResolvesBindings(t *testing.T) {
	raw := `[
		{
			"chainId": 1043,
			"rpcUrl": "https://rpc.example.test",
			"signerKey": "` + devSignerKey + `",
			"bindings": [
				{"version": "v5", "address": "` + contractAddr + `", "abiVariant": "fund_v5"},
				{"version": "v6", "address": "` + contractAddr + `", "abiVariant": "fund_v6"}
			]
		}
	]`
	reg, err := LoadRegistry(raw)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	b, err := reg.ResolveBinding(1043, "v6")
	if err != nil {
		t.Fatalf("ResolveBinding: %v", err)
	}
	if b.ChainID != 1043 || b.Version != "v6" || b.ABIVariant != "fund_v6" {
		t.Fatalf("binding = %+v", b)
	}

	if _, err := reg.ResolveBinding(1043, "v7"); !errors.Is(err, domain.ErrBindingNotFound) {
		t.Fatalf("unknown version: err = %v, want ErrBindingNotFound", err)
	}
	if _, err := reg.ResolveBinding(1, "v6"); !errors.Is(err, domain.ErrBindingNotFound) {
		t.Fatalf("unknown chain: err = %v, want ErrBindingNotFound", err)
	}

	if _, err := reg.Signer(1043); err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if url, err := reg.RPCURL(1043); err != nil || url != "https://rpc.example.test" {
		t.Fatalf("RPCURL = (%q, %v)", url, err)
	}
	if _, err := reg.ABI("fund_v6"); err != nil {
		t.Fatalf("ABI: %v", err)
	}
}

func TestLoadRegistryMissingSignerIsDeferred(t *testing.T) {
	raw := `[
		{
			"chainId": 1043,
			"rpcUrl": "https://rpc.example.test",
			"bindings": [{"version": "v6", "address": "` + contractAddr + `", "abiVariant": "fund_v6"}]
		}
	]`
	reg, err := LoadRegistry(raw)
	if err != nil {
		t.Fatalf("missing signer key must not fail startup: %v", err)
	}
	if _, err := reg.ResolveBinding(1043, "v6"); err != nil {
		t.Fatalf("binding should still resolve: %v", err)
	}
	if _, err := reg.Signer(1043); !errors.Is(err, domain.ErrSignerUnavailable) {
		t.Fatalf("err = %v, want ErrSignerUnavailable", err)
	}
}

func TestLoadRegistryStartupErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty config", ""},
		{"malformed json", "{not json"},
		{"missing chain id", `[{"rpcUrl":"https://r","bindings":[]}]`},
		{"missing rpc url", `[{"chainId":1,"bindings":[]}]`},
		{"bad address", `[{"chainId":1,"rpcUrl":"https://r","bindings":[{"version":"v6","address":"nope","abiVariant":"fund_v6"}]}]`},
		{"unknown abi variant", `[{"chainId":1,"rpcUrl":"https://r","bindings":[{"version":"v6","address":"` + contractAddr + `","abiVariant":"fund_v9"}]}]`},
		{"duplicate binding", `[{"chainId":1,"rpcUrl":"https://r","bindings":[
			{"version":"v6","address":"` + contractAddr + `","abiVariant":"fund_v6"},
			{"version":"v6","address":"` + contractAddr + `","abiVariant":"fund_v6"}]}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadRegistry(tc.raw); err == nil {
				t.Fatal("expected startup error")
			}
		})
	}
}

func TestABIVariantsParseAndCoverMethods(t *testing.T) {
	v5, err := (&Registry{}).ABI("fund_v5")
	if err != nil {
		t.Fatalf("fund_v5: %v", err)
	}
	for _, m := range []string{"burn", "setTokenURI", "setBlacklist", "emergencyWithdraw"} {
		if _, ok := v5.Methods[m]; !ok {
			t.Errorf("fund_v5 missing method %s", m)
		}
	}
	if _, ok := v5.Methods["releasePayout"]; ok {
		t.Error("fund_v5 must not expose releasePayout")
	}

	v6, err := (&Registry{}).ABI("fund_v6")
	if err != nil {
		t.Fatalf("fund_v6: %v", err)
	}
	if _, ok := v6.Methods["releasePayout"]; !ok {
		t.Error("fund_v6 missing method releasePayout")
	}
}
