package detect

import (
	"strings"
	"testing"

	"chainwatch/internal/domain"
)

func TestValidAddress_Solana(t *testing.T) {
	valid := "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	if !ValidAddress(domain.ChainSolana, valid) {
		t.Errorf("expected %q to be valid", valid)
	}

	if ValidAddress(domain.ChainSolana, "tooShort") {
		t.Error("short address should be invalid")
	}
	if ValidAddress(domain.ChainSolana, strings.Repeat("a", 45)) {
		t.Error("45-char address should be invalid")
	}
	// System program / burn placeholder: a long run of 1s.
	if ValidAddress(domain.ChainSolana, strings.Repeat("1", 32)) {
		t.Error("run-of-1s placeholder should be invalid")
	}
	if ValidAddress(domain.ChainSolana, "A"+strings.Repeat("1", 40)) {
		t.Error("embedded run-of-1s should be invalid")
	}
}

func TestValidAddress_EVM(t *testing.T) {
	valid := "0x1234567890123456789012345678901234567890"
	for _, chain := range []domain.Chain{domain.ChainBSC, domain.ChainEthereum, domain.ChainBase, domain.ChainArbitrum} {
		if !ValidAddress(chain, valid) {
			t.Errorf("expected %q valid on %s", valid, chain)
		}
	}

	if ValidAddress(domain.ChainBSC, "0x0000000000000000000000000000000000000000") {
		t.Error("zero address should be invalid")
	}
	if ValidAddress(domain.ChainEthereum, "0xdead000000000000000000000000000000000000") {
		t.Error("dead address should be invalid")
	}
	if ValidAddress(domain.ChainEthereum, "0xDEAD000000000000000000000000000000000000") {
		t.Error("dead address check must be case-insensitive")
	}
	if ValidAddress(domain.ChainBSC, "0x12345678901234567890123456789012345678") {
		t.Error("40-char total should be invalid")
	}
	if ValidAddress(domain.ChainBSC, "1234567890123456789012345678901234567890ab") {
		t.Error("missing 0x prefix should be invalid")
	}
}

func TestValidAddress_Tron(t *testing.T) {
	valid := "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	if !ValidAddress(domain.ChainTron, valid) {
		t.Errorf("expected %q to be valid", valid)
	}
	if ValidAddress(domain.ChainTron, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6") {
		t.Error("33-char address should be invalid")
	}
	if ValidAddress(domain.ChainTron, "AR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t") {
		t.Error("missing T prefix should be invalid")
	}
}

func TestValidAddress_UnknownChain(t *testing.T) {
	if ValidAddress(domain.Chain("dogecoin"), "whatever") {
		t.Error("unknown chain should never validate")
	}
}
