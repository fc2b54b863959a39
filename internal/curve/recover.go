package curve

import "github.com/consensys/gnark-crypto/ecc/bn254"

// RecoverValue finds v in [0, ceiling] with v·gamma == gammaK by walking the
// multiples of gamma one addition at a time. Cost is linear in ceiling, so
// callers keep it small (a few hundred thousand at most).
//
// An identity gammaK short-circuits to 1.
func RecoverValue(gamma, gammaK *bn254.G1Affine, ceiling uint64) (uint64, error) {
	if gammaK.IsInfinity() {
		return 1, nil
	}
	var acc, target bn254.G1Jac
	acc.FromAffine(&bn254.G1Affine{})
	target.FromAffine(gammaK)
	for v := uint64(0); ; v++ {
		if acc.Equal(&target) {
			return v, nil
		}
		if v == ceiling {
			return 0, ErrValueNotFound
		}
		acc.AddMixed(gamma)
	}
}
