package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/coinbase/cb-rsa-go"

// corePackages hold key material or the arithmetic on it.
var corePackages = []string{
	modulePath + "/pkg/bignum",
	modulePath + "/pkg/numtheory",
	modulePath + "/pkg/rsa",
	modulePath + "/pkg/rsa/jwk",
	modulePath + "/pkg/dh",
	modulePath + "/pkg/seed",
}

func load(t *testing.T, mode packages.LoadMode, patterns ...string) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: mode}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages contain errors")
	}
	return pkgs
}
