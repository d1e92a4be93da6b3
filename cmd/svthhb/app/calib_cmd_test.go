package app

import (
	"testing"
)

func TestCalibDefaultsAreReproducible(t *testing.T) {
	cmd := NewCalibCommand(&GlobalOptions{})

	// A fixed default seed makes default reruns byte-stable.
	seed := cmd.Flags().Lookup("seed")
	if seed == nil {
		t.Fatalf("calib command is missing the --seed flag")
	}
	if seed.DefValue != "42" {
		t.Fatalf("unexpected default seed: %s", seed.DefValue)
	}

	num := cmd.Flags().Lookup("num")
	if num == nil || num.DefValue != "300" {
		t.Fatalf("unexpected default sample size: %+v", num)
	}

	quality := cmd.Flags().Lookup("quality")
	if quality == nil || quality.DefValue != "95" {
		t.Fatalf("unexpected default JPEG quality: %+v", quality)
	}
}
